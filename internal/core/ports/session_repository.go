package ports

import (
	"context"

	"github.com/rentaride/rental-system/internal/core/domain"
)

// SessionRepository persists session rows. Deleting a row is the sole
// revocation mechanism for the refresh tokens that reference it.
type SessionRepository interface {
	Create(ctx context.Context, ownerID, userAgent string) (*domain.Session, error)
	FindByID(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}
