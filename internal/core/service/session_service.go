package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/rentaride/rental-system/internal/core/domain"
	"github.com/rentaride/rental-system/internal/core/ports"
	"github.com/rentaride/rental-system/internal/core/token"
)

// SessionService implements ports.SessionService on top of the token codec
// and the session store.
type SessionService struct {
	sessions   ports.SessionRepository
	profiles   ports.ProfileRepository
	codec      *token.Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        zerolog.Logger
}

func NewSessionService(
	sessions ports.SessionRepository,
	profiles ports.ProfileRepository,
	codec *token.Codec,
	accessTTL, refreshTTL time.Duration,
	log zerolog.Logger,
) *SessionService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 365 * 24 * time.Hour
	}
	return &SessionService{
		sessions:   sessions,
		profiles:   profiles,
		codec:      codec,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		log:        log,
	}
}

// profileClaims builds the claim set embedded in both tokens. Claims are a
// snapshot of the profile at issue time; Refresh re-reads the profile so
// later tokens pick up role upgrades.
func profileClaims(p *domain.Profile) jwt.MapClaims {
	return jwt.MapClaims{
		"profile_id": p.ID,
		"role":       string(p.Role),
		"name":       p.Name,
		"email":      p.Email,
	}
}

// Create persists a new session row and issues the access/refresh token
// pair bound to it.
func (s *SessionService) Create(ctx context.Context, profile *domain.Profile, userAgent string) (*ports.SessionTokens, error) {
	session, err := s.sessions.Create(ctx, profile.ID, userAgent)
	if err != nil {
		return nil, err
	}

	claims := profileClaims(profile)
	claims["session"] = session.ID

	accessToken, err := s.codec.Issue(claims, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.codec.Issue(claims, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("session_id", session.ID).Str("profile_id", profile.ID).Msg("session created")

	return &ports.SessionTokens{
		SessionID:    session.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a refresh token for a fresh access token bound to the
// same session. Every failure mode reports ok=false; refresh never errors.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (string, bool) {
	res := s.codec.Verify(refreshToken)
	if !res.Valid {
		return "", false
	}

	sessionID, _ := res.Claims["session"].(string)
	if sessionID == "" {
		return "", false
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		s.log.Debug().Err(err).Str("session_id", sessionID).Msg("refresh rejected: session missing")
		return "", false
	}
	if !session.Valid {
		return "", false
	}

	// Re-read the profile so the new token reflects the latest state, not
	// the state at login. No lock is held across this gap.
	profile, err := s.profiles.FindByID(ctx, session.Owner)
	if err != nil {
		s.log.Debug().Err(err).Str("profile_id", session.Owner).Msg("refresh rejected: owner missing")
		return "", false
	}

	claims := profileClaims(profile)
	claims["session"] = session.ID

	accessToken, err := s.codec.Issue(claims, s.accessTTL)
	if err != nil {
		s.log.Error().Err(err).Msg("refresh: issuing access token failed")
		return "", false
	}
	return accessToken, true
}

// Revoke deletes the session row. Outstanding access tokens remain
// cryptographically valid until their own TTL elapses; only refresh is
// blocked from here on.
func (s *SessionService) Revoke(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}
