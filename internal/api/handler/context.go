package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxIdentity extracts the auth claims injected by the Authenticate
// middleware and performs a fast-fail check before any service call:
// a non-empty profile_id proves the middleware attached a verified token.
func ctxIdentity(c echo.Context) (profileID, role string, err error) {
	profileID, _ = c.Get("profile_id").(string)
	if profileID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	role, _ = c.Get("role").(string)
	return profileID, role, nil
}

// ctxSession returns the session id bound into the access token. Session
// scoped operations (logout, identity deletion) cannot proceed without it.
func ctxSession(c echo.Context) (string, error) {
	sessionID, _ := c.Get("session_id").(string)
	if sessionID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "token missing session identity")
	}
	return sessionID, nil
}
