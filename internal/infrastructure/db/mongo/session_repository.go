package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rentaride/rental-system/internal/core/domain"
)

const collectionSessions = "sessions"

// SessionRepository implements ports.SessionRepository using MongoDB.
type SessionRepository struct {
	coll *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{coll: db.Collection(collectionSessions)}
}

type mongoSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Owner     string             `bson:"owner"`
	Valid     bool               `bson:"valid"`
	UserAgent string             `bson:"user_agent,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (r *SessionRepository) Create(ctx context.Context, ownerID, userAgent string) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	doc := mongoSession{
		Owner:     ownerID,
		Valid:     true,
		UserAgent: userAgent,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	return &domain.Session{
		ID:        res.InsertedID.(primitive.ObjectID).Hex(),
		Owner:     ownerID,
		Valid:     true,
		UserAgent: userAgent,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	oid, err := oidFromHex(id, domain.ErrSessionNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ms mongoSession
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&ms); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	return &domain.Session{
		ID:        ms.ID.Hex(),
		Owner:     ms.Owner,
		Valid:     ms.Valid,
		UserAgent: ms.UserAgent,
		CreatedAt: ms.CreatedAt,
		UpdatedAt: ms.UpdatedAt,
	}, nil
}

// Delete removes the session row. Deleting an already-deleted session is
// not an error; revocation is idempotent.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	oid, err := oidFromHex(id, domain.ErrSessionNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
