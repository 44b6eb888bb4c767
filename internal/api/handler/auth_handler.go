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

// AuthHandler handles signup, login and logout.
type AuthHandler struct {
	identity ports.IdentityService
	sessions ports.SessionService
}

func NewAuthHandler(identity ports.IdentityService, sessions ports.SessionService) *AuthHandler {
	return &AuthHandler{identity: identity, sessions: sessions}
}

// Signup creates a new account and opens its first session.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
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

	result, err := h.identity.SignUp(c.Request().Context(), ports.SignUpInput{
		Email:            req.Email,
		Password:         req.Password,
		Name:             req.Name,
		Role:             domain.Role(req.Role),
		DateOfBirth:      dob,
		PhoneNumber:      req.PhoneNumber,
		PlaceOfResidence: domain.Coordinates{Lat: req.PlaceOfResidence.Lat, Lng: req.PlaceOfResidence.Lng},
		IdentityCard:     req.IdentityCard,
		ProfilePicture:   req.ProfilePicture,
		UserAgent:        c.Request().UserAgent(),
	})
	if err != nil {
		metrics.SignupsTotal.WithLabelValues(req.Role, "error").Inc()
		return err
	}
	metrics.SignupsTotal.WithLabelValues(req.Role, "ok").Inc()

	return c.JSON(http.StatusCreated, authResponse{
		Profile: result.Profile,
		Session: toSessionResponse(result.Session),
	})
}

// Login authenticates a credential and opens a new session.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	profile, err := h.identity.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	tokens, err := h.sessions.Create(c.Request().Context(), profile, c.Request().UserAgent())
	if err != nil {
		return err
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()

	return c.JSON(http.StatusOK, authResponse{
		Profile: profile,
		Session: toSessionResponse(tokens),
	})
}

// Logout revokes the session bound into the caller's access token.
//
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	sessionID, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.identity.Logout(c.Request().Context(), sessionID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
