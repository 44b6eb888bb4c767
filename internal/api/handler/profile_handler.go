package handler

import (
	"net/http"
	"path"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rentaride/rental-system/internal/core/domain"
	"github.com/rentaride/rental-system/internal/core/ports"
)

// ProfileHandler handles the caller's own profile. Every route here is
// self-scoped: the profile id always comes from the token, never the path.
type ProfileHandler struct {
	identity ports.IdentityService
	media    ports.MediaDispatcher
}

func NewProfileHandler(identity ports.IdentityService, media ports.MediaDispatcher) *ProfileHandler {
	return &ProfileHandler{identity: identity, media: media}
}

// Get returns the caller's profile.
//
// @Summary      Get own profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	profileID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	profile, err := h.identity.GetProfile(c.Request().Context(), profileID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{Profile: profile})
}

// Update replaces the caller's mutable profile fields.
//
// @Summary      Update own profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile fields"
// @Success      200   {object}  profileResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/profile [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	profileID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
	}

	profile, err := h.identity.UpdateProfile(c.Request().Context(), profileID, ports.ProfilePatch{
		Name:             req.Name,
		DateOfBirth:      dob,
		PhoneNumber:      req.PhoneNumber,
		PlaceOfResidence: domain.Coordinates{Lat: req.PlaceOfResidence.Lat, Lng: req.PlaceOfResidence.Lng},
		IdentityCard:     req.IdentityCard,
		ProfilePicture:   req.ProfilePicture,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{Profile: profile})
}

// Delete retires the caller's identity: owned cars, credential, session and
// profile, in that order.
//
// @Summary      Delete own identity
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/profile [delete]
func (h *ProfileHandler) Delete(c echo.Context) error {
	profileID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	sessionID, err := ctxSession(c)
	if err != nil {
		return err
	}

	if err := h.identity.DeleteIdentity(c.Request().Context(), profileID, sessionID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Upgrade converts a customer profile into a renter. One-way.
//
// @Summary      Upgrade to renter
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/profile/upgrade [post]
func (h *ProfileHandler) Upgrade(c echo.Context) error {
	profileID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	profile, err := h.identity.UpgradeToRenter(c.Request().Context(), profileID)
	if err != nil {
		return err
	}

	// The token still carries the old role; clients re-login (or refresh)
	// to pick up renter routes.
	return c.JSON(http.StatusOK, profileResponse{Profile: profile})
}

// UploadPicture registers an uploaded profile picture with the compression
// pipeline. The profile's picture URL is rewritten by the pipeline callback,
// not here.
//
// @Summary      Submit a profile picture for processing
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  uploadPictureRequest  true  "Uploaded file descriptor"
// @Success      202
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/profile/picture [post]
func (h *ProfileHandler) UploadPicture(c echo.Context) error {
	profileID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req uploadPictureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.media.Submit(ports.MediaJob{
		OwnerID:         profileID,
		TargetID:        profileID,
		Files:           []ports.MediaFile{{Path: req.Path, MimeType: req.MimeType}},
		DestinationPath: path.Join("users", profileID, "compressed"),
		Category:        ports.MediaCategoryProfile,
	})

	return c.NoContent(http.StatusAccepted)
}

// ReservationHistory lists the reservations referenced by the caller's
// profile.
//
// @Summary      Own reservation history
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  reservationListResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/profile/reservations [get]
func (h *ProfileHandler) ReservationHistory(c echo.Context) error {
	profileID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	reservations, err := h.identity.ReservationHistory(c.Request().Context(), profileID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reservationListResponse{Reservations: reservations})
}

// ClearReservationHistory empties the caller's reservation list. The
// reservation rows themselves survive.
//
// @Summary      Clear own reservation history
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /v1/profile/reservations [delete]
func (h *ProfileHandler) ClearReservationHistory(c echo.Context) error {
	profileID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.identity.ClearReservationHistory(c.Request().Context(), profileID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
