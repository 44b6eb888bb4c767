package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/rentaride/rental-system/internal/core/domain"
	"github.com/rentaride/rental-system/internal/core/ports"
	"github.com/rentaride/rental-system/internal/core/token"
)

func testCodec(t *testing.T) *token.Codec {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	codec, err := token.NewCodec(privPEM, pubPEM)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

type stubSessions struct {
	access    string
	ok        bool
	refreshed int
}

func (s *stubSessions) Create(context.Context, *domain.Profile, string) (*ports.SessionTokens, error) {
	return nil, nil
}

func (s *stubSessions) Refresh(context.Context, string) (string, bool) {
	s.refreshed++
	return s.access, s.ok
}

func (s *stubSessions) Revoke(context.Context, string) error { return nil }

func issue(t *testing.T, codec *token.Codec, ttl time.Duration) string {
	t.Helper()
	signed, err := codec.Issue(jwt.MapClaims{
		"profile_id": "profile-1",
		"role":       "renter",
		"name":       "Alice",
		"email":      "alice@example.com",
		"session":    "session-1",
	}, ttl)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return signed
}

func run(t *testing.T, codec *token.Codec, sessions ports.SessionService, req *http.Request) (echo.Context, *httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Authenticate(codec, sessions)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return c, rec, called
}

func TestAuthenticate_ValidToken(t *testing.T) {
	codec := testCodec(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, codec, time.Minute))

	c, _, called := run(t, codec, &stubSessions{}, req)

	if !called {
		t.Fatalf("next not called")
	}
	if c.Get("profile_id") != "profile-1" {
		t.Fatalf("profile_id not attached")
	}
	if c.Get("role") != "renter" {
		t.Fatalf("role not attached")
	}
	if c.Get("session_id") != "session-1" {
		t.Fatalf("session_id not attached")
	}
}

func TestAuthenticate_NoToken_PassesThroughUnauthenticated(t *testing.T) {
	codec := testCodec(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	c, _, called := run(t, codec, &stubSessions{}, req)

	if !called {
		t.Fatalf("next not called")
	}
	if c.Get("profile_id") != nil {
		t.Fatalf("claims attached without a token")
	}
}

func TestAuthenticate_GarbageToken_PassesThroughUnauthenticated(t *testing.T) {
	codec := testCodec(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")

	c, _, called := run(t, codec, &stubSessions{}, req)

	if !called {
		t.Fatalf("next not called")
	}
	if c.Get("profile_id") != nil {
		t.Fatalf("claims attached for a garbage token")
	}
}

func TestAuthenticate_ExpiredWithRefresh_RotatesToken(t *testing.T) {
	codec := testCodec(t)
	sessions := &stubSessions{access: issue(t, codec, time.Minute), ok: true}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, codec, -time.Minute))
	req.Header.Set(RefreshTokenHeader, "refresh-token")

	c, rec, called := run(t, codec, sessions, req)

	if !called {
		t.Fatalf("next not called")
	}
	if sessions.refreshed != 1 {
		t.Fatalf("refresh called %d times, want 1", sessions.refreshed)
	}
	if c.Get("profile_id") != "profile-1" {
		t.Fatalf("claims not attached after rotation")
	}
	if rec.Header().Get(AccessTokenHeader) != sessions.access {
		t.Fatalf("rotated token not surfaced in %s header", AccessTokenHeader)
	}
}

func TestAuthenticate_ExpiredRefreshDenied(t *testing.T) {
	codec := testCodec(t)
	sessions := &stubSessions{ok: false}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, codec, -time.Minute))
	req.Header.Set(RefreshTokenHeader, "refresh-token")

	c, rec, called := run(t, codec, sessions, req)

	if !called {
		t.Fatalf("next not called")
	}
	if c.Get("profile_id") != nil {
		t.Fatalf("claims attached after denied refresh")
	}
	if rec.Header().Get(AccessTokenHeader) != "" {
		t.Fatalf("access token header set after denied refresh")
	}
}

func TestAuthenticate_ExpiredWithoutRefreshHeader(t *testing.T) {
	codec := testCodec(t)
	sessions := &stubSessions{}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, codec, -time.Minute))

	c, _, called := run(t, codec, sessions, req)

	if !called {
		t.Fatalf("next not called")
	}
	if sessions.refreshed != 0 {
		t.Fatalf("refresh should not be attempted without the header")
	}
	if c.Get("profile_id") != nil {
		t.Fatalf("claims attached for an expired token")
	}
}
