package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rentaride/rental-system/internal/api/metrics"
	"github.com/rentaride/rental-system/internal/core/domain"
	"github.com/rentaride/rental-system/internal/core/ports"
)

// ReservationHandler handles booking lifecycle requests.
type ReservationHandler struct {
	reservations ports.ReservationService
}

func NewReservationHandler(reservations ports.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservations: reservations}
}

// Create books a car for the caller.
//
// @Summary      Create a reservation
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createReservationRequest  true  "Booking details"
// @Success      201   {object}  reservationResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	customerID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start, returnDate, err := parseDates(req.StartDate, req.ReturnDate)
	if err != nil {
		return err
	}

	reservation, err := h.reservations.Create(c.Request().Context(), ports.CreateReservationInput{
		CustomerID: customerID,
		CarID:      req.CarID,
		StartDate:  start,
		ReturnDate: returnDate,
	})
	if err != nil {
		return err
	}
	metrics.ReservationsCreatedTotal.Inc()

	return c.JSON(http.StatusCreated, reservationResponse{Reservation: reservation})
}

// UpdateStatus moves the reservation through the state machine.
//
// @Summary      Update reservation status
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Reservation id"
// @Param        body  body      reservationStatusRequest  true  "Target status"
// @Success      200   {object}  reservationResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/reservations/{id}/status [patch]
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	if _, _, err := ctxIdentity(c); err != nil {
		return err
	}

	var req reservationStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	reservation, err := h.reservations.UpdateStatus(c.Request().Context(), c.Param("id"), domain.ReservationStatus(req.Status))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			metrics.ReservationTransitionsTotal.WithLabelValues(req.Status, "rejected").Inc()
		}
		return err
	}
	metrics.ReservationTransitionsTotal.WithLabelValues(req.Status, "ok").Inc()

	return c.JSON(http.StatusOK, reservationResponse{Reservation: reservation})
}

// Update replaces the reservation's booking dates. Status is untouchable
// here; it only moves through UpdateStatus.
//
// @Summary      Update reservation dates
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Reservation id"
// @Param        body  body      updateReservationRequest  true  "New dates"
// @Success      200   {object}  reservationResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/reservations/{id} [put]
func (h *ReservationHandler) Update(c echo.Context) error {
	if _, _, err := ctxIdentity(c); err != nil {
		return err
	}

	var req updateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start, returnDate, err := parseDates(req.StartDate, req.ReturnDate)
	if err != nil {
		return err
	}

	reservation, err := h.reservations.Update(c.Request().Context(), c.Param("id"), ports.ReservationPatch{
		StartDate:  start,
		ReturnDate: returnDate,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reservationResponse{Reservation: reservation})
}

// Delete cancels or removes a reservation depending on who is asking:
// admins cascade-delete the row, customers cancel and unlink their own side,
// renters cancel and unlink the car side.
//
// @Summary      Delete a reservation
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Reservation id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/reservations/{id} [delete]
func (h *ReservationHandler) Delete(c echo.Context) error {
	profileID, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	reservationID := c.Param("id")
	ctx := c.Request().Context()

	switch role {
	case string(domain.RoleAdmin):
		err = h.reservations.Delete(ctx, reservationID)
	case string(domain.RoleRenter):
		err = h.reservations.RenterDelete(ctx, reservationID)
	default:
		err = h.reservations.CustomerDelete(ctx, reservationID, profileID)
	}
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func parseDates(start, returnDate string) (time.Time, time.Time, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "start_date must be YYYY-MM-DD")
	}
	r, err := time.Parse(dateLayout, returnDate)
	if err != nil {
		return time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "return_date must be YYYY-MM-DD")
	}
	if !r.After(s) {
		return time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "return_date must be after start_date")
	}
	return s, r, nil
}
