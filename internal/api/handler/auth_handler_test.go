package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/rentaride/rental-system/internal/core/domain"
	"github.com/rentaride/rental-system/internal/core/ports"
)

type stubIdentityService struct {
	signUpResult *ports.SignUpResult
	signUpErr    error
	loginProfile *domain.Profile
	loginErr     error
	loggedOut    []string
}

func (s *stubIdentityService) SignUp(context.Context, ports.SignUpInput) (*ports.SignUpResult, error) {
	return s.signUpResult, s.signUpErr
}

func (s *stubIdentityService) Login(context.Context, string, string) (*domain.Profile, error) {
	return s.loginProfile, s.loginErr
}

func (s *stubIdentityService) Logout(_ context.Context, sessionID string) error {
	s.loggedOut = append(s.loggedOut, sessionID)
	return nil
}

func (s *stubIdentityService) DeleteIdentity(context.Context, string, string) error { return nil }

func (s *stubIdentityService) UpgradeToRenter(context.Context, string) (*domain.Profile, error) {
	return nil, nil
}

func (s *stubIdentityService) GetProfile(context.Context, string) (*domain.Profile, error) {
	return nil, nil
}

func (s *stubIdentityService) UpdateProfile(context.Context, string, ports.ProfilePatch) (*domain.Profile, error) {
	return nil, nil
}

func (s *stubIdentityService) UpdateProfileMedia(context.Context, string, string) error { return nil }

func (s *stubIdentityService) ReservationHistory(context.Context, string) ([]*domain.Reservation, error) {
	return nil, nil
}

func (s *stubIdentityService) ClearReservationHistory(context.Context, string) error { return nil }

type stubSessionService struct {
	tokens *ports.SessionTokens
}

func (s *stubSessionService) Create(context.Context, *domain.Profile, string) (*ports.SessionTokens, error) {
	return s.tokens, nil
}

func (s *stubSessionService) Refresh(context.Context, string) (string, bool) { return "", false }

func (s *stubSessionService) Revoke(context.Context, string) error { return nil }

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func doJSON(e *echo.Echo, h echo.HandlerFunc, body string) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, h(c)
}

const validSignupBody = `{
	"email": "alice@example.com",
	"password": "hunter2hunter2",
	"name": "Alice",
	"role": "customer",
	"date_of_birth": "1990-04-01",
	"phone_number": "+49123456789",
	"place_of_residence": {"lat": "52.52", "lng": "13.40"}
}`

func TestAuthHandler_Signup_Success(t *testing.T) {
	e := newTestEcho()
	identity := &stubIdentityService{
		signUpResult: &ports.SignUpResult{
			Profile: &domain.Profile{ID: "profile-1", Role: domain.RoleCustomer},
			Session: &ports.SessionTokens{SessionID: "session-1", AccessToken: "a", RefreshToken: "r"},
		},
	}
	h := NewAuthHandler(identity, &stubSessionService{})

	rec, err := doJSON(e, h.Signup, validSignupBody)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"session_id":"session-1"`) {
		t.Fatalf("session missing from response: %s", rec.Body.String())
	}
}

func TestAuthHandler_Signup_ValidationFailure(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubIdentityService{}, &stubSessionService{})

	_, err := doJSON(e, h.Signup, `{"email": "not-an-email"}`)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected a 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Signup_DuplicateEmail(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubIdentityService{signUpErr: domain.ErrCredentialExists}, &stubSessionService{})

	// Domain errors pass through untouched; the echo error handler owns the
	// HTTP mapping.
	if _, err := doJSON(e, h.Signup, validSignupBody); !errors.Is(err, domain.ErrCredentialExists) {
		t.Fatalf("expected ErrCredentialExists, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	identity := &stubIdentityService{loginProfile: &domain.Profile{ID: "profile-1"}}
	sessions := &stubSessionService{tokens: &ports.SessionTokens{SessionID: "session-1", AccessToken: "a", RefreshToken: "r"}}
	h := NewAuthHandler(identity, sessions)

	rec, err := doJSON(e, h.Login, `{"email": "alice@example.com", "password": "hunter2"}`)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"access_token":"a"`) {
		t.Fatalf("tokens missing from response: %s", rec.Body.String())
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubIdentityService{loginErr: domain.ErrInvalidCredentials}, &stubSessionService{})

	if _, err := doJSON(e, h.Login, `{"email": "alice@example.com", "password": "wrong"}`); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newTestEcho()
	identity := &stubIdentityService{}
	h := NewAuthHandler(identity, &stubSessionService{})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("session_id", "session-1")

	if err := h.Logout(c); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(identity.loggedOut) != 1 || identity.loggedOut[0] != "session-1" {
		t.Fatalf("logout not delegated: %v", identity.loggedOut)
	}
}

func TestAuthHandler_Logout_NoSession(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubIdentityService{}, &stubSessionService{})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Logout(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected a 401 HTTPError, got %v", err)
	}
}
