package ports

import (
	"context"

	"github.com/rentaride/rental-system/internal/core/domain"
)

// SessionTokens is the pair issued when a session is opened. Both tokens
// embed the profile claims plus the session id.
type SessionTokens struct {
	SessionID    string
	AccessToken  string
	RefreshToken string
}

// SessionService opens, refreshes and revokes sessions.
type SessionService interface {
	Create(ctx context.Context, profile *domain.Profile, userAgent string) (*SessionTokens, error)

	// Refresh exchanges a refresh token for a new access token. It reports
	// ok=false, never an error, when the token is invalid, the session
	// row is gone or flagged invalid, or the owner no longer exists. The
	// claims are re-read from the current profile, not the ones frozen at
	// login. Refresh tokens are not single-use.
	Refresh(ctx context.Context, refreshToken string) (accessToken string, ok bool)

	Revoke(ctx context.Context, sessionID string) error
}
