package handler

import (
	"net/http"
	"path"

	"github.com/labstack/echo/v4"

	"github.com/rentaride/rental-system/internal/api/metrics"
	"github.com/rentaride/rental-system/internal/core/domain"
	"github.com/rentaride/rental-system/internal/core/ports"
)

// CarHandler handles fleet operations. Mutating routes are renter-only and
// owner-scoped: the owner id always comes from the token.
type CarHandler struct {
	fleet ports.FleetService
	media ports.MediaDispatcher
}

func NewCarHandler(fleet ports.FleetService, media ports.MediaDispatcher) *CarHandler {
	return &CarHandler{fleet: fleet, media: media}
}

// Available lists every car currently open for booking. Public.
//
// @Summary      List available cars
// @Tags         cars
// @Produce      json
// @Success      200  {object}  carListResponse
// @Router       /v1/cars [get]
func (h *CarHandler) Available(c echo.Context) error {
	cars, err := h.fleet.FindAvailableCars(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, carListResponse{Cars: cars})
}

// Mine lists the caller's own fleet.
//
// @Summary      List own cars
// @Tags         cars
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  carListResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/cars/mine [get]
func (h *CarHandler) Mine(c echo.Context) error {
	ownerID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	cars, err := h.fleet.RenterCars(c.Request().Context(), ownerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, carListResponse{Cars: cars})
}

// Add lists a new car under the caller's fleet. Uploaded media files are
// handed to the compression pipeline; their URLs are rewritten later by the
// pipeline callback.
//
// @Summary      Add a car
// @Tags         cars
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addCarRequest  true  "Car details"
// @Success      201   {object}  carResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/cars [post]
func (h *CarHandler) Add(c echo.Context) error {
	ownerID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req addCarRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	car, err := h.fleet.AddCar(c.Request().Context(), ports.AddCarInput{
		OwnerID:            ownerID,
		Make:               req.Make,
		Model:              req.Model,
		Capacity:           req.Capacity,
		YearOfManufacture:  req.YearOfManufacture,
		RegistrationNumber: req.RegistrationNumber,
		Condition:          req.Condition,
		Rate:               req.Rate,
		Plan:               req.Plan,
		Type:               req.Type,
		Location:           req.Location,
		MaxDuration:        req.MaxDuration,
		Description:        req.Description,
		Terms:              req.Terms,
		Media:              toDomainMedia(req.Media),
	})
	if err != nil {
		return err
	}
	metrics.CarsAddedTotal.Inc()

	h.submitMedia(ownerID, car.ID, req.Media)

	return c.JSON(http.StatusCreated, carResponse{Car: car})
}

// Update replaces the car's descriptive fields. Extra media entries are
// appended, never replaced.
//
// @Summary      Update a car
// @Tags         cars
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Car id"
// @Param        body  body      updateCarRequest  true  "Car fields"
// @Success      200   {object}  carResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/cars/{id} [put]
func (h *CarHandler) Update(c echo.Context) error {
	ownerID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateCarRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	carID := c.Param("id")
	car, err := h.fleet.UpdateCar(c.Request().Context(), carID, ownerID, ports.CarPatch{
		Make:               req.Make,
		Model:              req.Model,
		Capacity:           req.Capacity,
		YearOfManufacture:  req.YearOfManufacture,
		RegistrationNumber: req.RegistrationNumber,
		Condition:          req.Condition,
		Rate:               req.Rate,
		Plan:               req.Plan,
		Type:               req.Type,
		Location:           req.Location,
		MaxDuration:        req.MaxDuration,
		Description:        req.Description,
		Terms:              req.Terms,
		AddMedia:           toDomainMedia(req.AddMedia),
	})
	if err != nil {
		return err
	}

	h.submitMedia(ownerID, car.ID, req.AddMedia)

	return c.JSON(http.StatusOK, carResponse{Car: car})
}

// Delete removes a car from the caller's fleet.
//
// @Summary      Delete a car
// @Tags         cars
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Car id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/cars/{id} [delete]
func (h *CarHandler) Delete(c echo.Context) error {
	ownerID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.fleet.DeleteCar(c.Request().Context(), c.Param("id"), ownerID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangeAvailability toggles whether the car can be booked.
//
// @Summary      Change car availability
// @Tags         cars
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Car id"
// @Param        body  body      availabilityRequest  true  "New availability"
// @Success      200   {object}  carResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/cars/{id}/availability [patch]
func (h *CarHandler) ChangeAvailability(c echo.Context) error {
	ownerID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req availabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	car, err := h.fleet.ChangeAvailability(c.Request().Context(), c.Param("id"), ownerID, domain.Availability(req.Availability))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, carResponse{Car: car})
}

// History lists the reservations recorded against one of the caller's cars.
//
// @Summary      Car rental history
// @Tags         cars
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Car id"
// @Success      200  {object}  reservationListResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/cars/{id}/history [get]
func (h *CarHandler) History(c echo.Context) error {
	ownerID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	reservations, err := h.fleet.CarHistory(c.Request().Context(), c.Param("id"), ownerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reservationListResponse{Reservations: reservations})
}

func (h *CarHandler) submitMedia(ownerID, carID string, files []mediaRequest) {
	if len(files) == 0 {
		return
	}
	mediaFiles := make([]ports.MediaFile, 0, len(files))
	for _, f := range files {
		mediaFiles = append(mediaFiles, ports.MediaFile{Path: f.URL, MimeType: f.MimeType})
	}
	h.media.Submit(ports.MediaJob{
		OwnerID:         ownerID,
		TargetID:        carID,
		Files:           mediaFiles,
		DestinationPath: path.Join("cars", ownerID, carID, "compressed"),
		Category:        ports.MediaCategoryCar,
	})
}
