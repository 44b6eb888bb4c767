package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rentaride/rental-system/internal/core/domain"
	"github.com/rentaride/rental-system/internal/core/ports"
)

const collectionReservations = "reservations"

// ReservationRepository implements ports.ReservationRepository using MongoDB.
type ReservationRepository struct {
	coll *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	return &ReservationRepository{coll: db.Collection(collectionReservations)}
}

type mongoReservationCustomer struct {
	ID   string `bson:"id"`
	Name string `bson:"name"`
}

type mongoReservation struct {
	ID         primitive.ObjectID       `bson:"_id,omitempty"`
	Customer   mongoReservationCustomer `bson:"customer"`
	Renter     string                   `bson:"renter"`
	Car        string                   `bson:"car"`
	StartDate  time.Time                `bson:"start_date"`
	ReturnDate time.Time                `bson:"return_date"`
	Status     string                   `bson:"status"`
}

func toDomainReservation(mr mongoReservation) *domain.Reservation {
	return &domain.Reservation{
		ID:         mr.ID.Hex(),
		Customer:   domain.Customer{ID: mr.Customer.ID, Name: mr.Customer.Name},
		Renter:     mr.Renter,
		Car:        mr.Car,
		StartDate:  mr.StartDate,
		ReturnDate: mr.ReturnDate,
		Status:     domain.ReservationStatus(mr.Status),
	}
}

func (r *ReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, mongoReservation{
		Customer:   mongoReservationCustomer{ID: reservation.Customer.ID, Name: reservation.Customer.Name},
		Renter:     reservation.Renter,
		Car:        reservation.Car,
		StartDate:  reservation.StartDate.UTC(),
		ReturnDate: reservation.ReturnDate.UTC(),
		Status:     string(reservation.Status),
	})
	if err != nil {
		return nil, fmt.Errorf("insert reservation: %w", err)
	}

	created := *reservation
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id string) (*domain.Reservation, error) {
	oid, err := oidFromHex(id, domain.ErrReservationNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mr mongoReservation
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return toDomainReservation(mr), nil
}

func (r *ReservationRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Reservation, error) {
	if len(ids) == 0 {
		return []*domain.Reservation{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oidsFromHex(ids)}})
	if err != nil {
		return nil, fmt.Errorf("find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	reservations := []*domain.Reservation{}
	for cursor.Next(ctx) {
		var mr mongoReservation
		if err := cursor.Decode(&mr); err != nil {
			return nil, fmt.Errorf("decode reservation: %w", err)
		}
		reservations = append(reservations, toDomainReservation(mr))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}
	return reservations, nil
}

func (r *ReservationRepository) Update(ctx context.Context, id string, patch ports.ReservationPatch) (*domain.Reservation, error) {
	oid, err := oidFromHex(id, domain.ErrReservationNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mr mongoReservation
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{
			"start_date":  patch.StartDate.UTC(),
			"return_date": patch.ReturnDate.UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&mr)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("update reservation: %w", err)
	}
	return toDomainReservation(mr), nil
}

func (r *ReservationRepository) SetStatus(ctx context.Context, id string, status domain.ReservationStatus) (*domain.Reservation, error) {
	oid, err := oidFromHex(id, domain.ErrReservationNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mr mongoReservation
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": string(status)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&mr)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("set reservation status: %w", err)
	}
	return toDomainReservation(mr), nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	oid, err := oidFromHex(id, domain.ErrReservationNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}
