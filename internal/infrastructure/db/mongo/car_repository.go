package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rentaride/rental-system/internal/core/domain"
	"github.com/rentaride/rental-system/internal/core/ports"
)

const collectionCars = "cars"

// CarRepository implements ports.CarRepository using MongoDB.
type CarRepository struct {
	coll *mongo.Collection
}

func NewCarRepository(db *mongo.Database) *CarRepository {
	return &CarRepository{coll: db.Collection(collectionCars)}
}

type mongoCar struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Owner              string             `bson:"owner"`
	Make               string             `bson:"make"`
	Model              string             `bson:"model"`
	Capacity           int                `bson:"capacity"`
	YearOfManufacture  string             `bson:"year_of_manufacture"`
	RegistrationNumber string             `bson:"registration_number"`
	Condition          string             `bson:"condition"`
	Rate               float64            `bson:"rate"`
	Plan               string             `bson:"plan"`
	Type               string             `bson:"type"`
	Availability       string             `bson:"availability"`
	Location           string             `bson:"location"`
	MaxDuration        int                `bson:"max_duration"`
	Description        string             `bson:"description"`
	Terms              string             `bson:"terms"`
	RentalHistory      []string           `bson:"rental_history"`
	Media              []domain.Media     `bson:"media"`
}

func toMongoCar(c *domain.Car) mongoCar {
	return mongoCar{
		Owner:              c.Owner,
		Make:               c.Make,
		Model:              c.Model,
		Capacity:           c.Capacity,
		YearOfManufacture:  c.YearOfManufacture,
		RegistrationNumber: c.RegistrationNumber,
		Condition:          c.Condition,
		Rate:               c.Rate,
		Plan:               c.Plan,
		Type:               c.Type,
		Availability:       string(c.Availability),
		Location:           c.Location,
		MaxDuration:        c.MaxDuration,
		Description:        c.Description,
		Terms:              c.Terms,
		RentalHistory:      c.RentalHistory,
		Media:              c.Media,
	}
}

func toDomainCar(mc mongoCar) *domain.Car {
	c := &domain.Car{
		ID:                 mc.ID.Hex(),
		Owner:              mc.Owner,
		Make:               mc.Make,
		Model:              mc.Model,
		Capacity:           mc.Capacity,
		YearOfManufacture:  mc.YearOfManufacture,
		RegistrationNumber: mc.RegistrationNumber,
		Condition:          mc.Condition,
		Rate:               mc.Rate,
		Plan:               mc.Plan,
		Type:               mc.Type,
		Availability:       domain.Availability(mc.Availability),
		Location:           mc.Location,
		MaxDuration:        mc.MaxDuration,
		Description:        mc.Description,
		Terms:              mc.Terms,
		RentalHistory:      mc.RentalHistory,
		Media:              mc.Media,
	}
	if c.RentalHistory == nil {
		c.RentalHistory = []string{}
	}
	if c.Media == nil {
		c.Media = []domain.Media{}
	}
	return c
}

func (r *CarRepository) Create(ctx context.Context, car *domain.Car) (*domain.Car, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, toMongoCar(car))
	if err != nil {
		return nil, fmt.Errorf("insert car: %w", err)
	}

	created := *car
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *CarRepository) FindByID(ctx context.Context, id string) (*domain.Car, error) {
	oid, err := oidFromHex(id, domain.ErrCarNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByIDAndOwner reports the same not-found for a missing car and for an
// owner mismatch; callers cannot probe other renters' fleets.
func (r *CarRepository) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*domain.Car, error) {
	oid, err := oidFromHex(id, domain.ErrCarNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid, "owner": ownerID})
}

func (r *CarRepository) findOne(ctx context.Context, filter bson.M) (*domain.Car, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoCar
	if err := r.coll.FindOne(ctx, filter).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCarNotFound
		}
		return nil, fmt.Errorf("find car: %w", err)
	}
	return toDomainCar(mc), nil
}

func (r *CarRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Car, error) {
	if len(ids) == 0 {
		return []*domain.Car{}, nil
	}
	return r.findMany(ctx, bson.M{"_id": bson.M{"$in": oidsFromHex(ids)}})
}

func (r *CarRepository) FindAvailable(ctx context.Context) ([]*domain.Car, error) {
	return r.findMany(ctx, bson.M{"availability": string(domain.CarAvailable)})
}

func (r *CarRepository) findMany(ctx context.Context, filter bson.M) ([]*domain.Car, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find cars: %w", err)
	}
	defer cursor.Close(ctx)

	cars := []*domain.Car{}
	for cursor.Next(ctx) {
		var mc mongoCar
		if err := cursor.Decode(&mc); err != nil {
			return nil, fmt.Errorf("decode car: %w", err)
		}
		cars = append(cars, toDomainCar(mc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate cars: %w", err)
	}
	return cars, nil
}

// Update replaces the descriptive fields and appends any new media entries.
// The filter includes the owner, so ownership is enforced and immutable here.
func (r *CarRepository) Update(ctx context.Context, id, ownerID string, patch ports.CarPatch) (*domain.Car, error) {
	oid, err := oidFromHex(id, domain.ErrCarNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"make":                patch.Make,
		"model":               patch.Model,
		"capacity":            patch.Capacity,
		"year_of_manufacture": patch.YearOfManufacture,
		"registration_number": patch.RegistrationNumber,
		"condition":           patch.Condition,
		"rate":                patch.Rate,
		"plan":                patch.Plan,
		"type":                patch.Type,
		"location":            patch.Location,
		"max_duration":        patch.MaxDuration,
		"description":         patch.Description,
		"terms":               patch.Terms,
	}}
	if len(patch.AddMedia) > 0 {
		update["$push"] = bson.M{"media": bson.M{"$each": patch.AddMedia}}
	}

	var mc mongoCar
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid, "owner": ownerID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&mc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCarNotFound
		}
		return nil, fmt.Errorf("update car: %w", err)
	}
	return toDomainCar(mc), nil
}

func (r *CarRepository) Delete(ctx context.Context, id string) error {
	oid, err := oidFromHex(id, domain.ErrCarNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete car: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCarNotFound
	}
	return nil
}

func (r *CarRepository) SetAvailability(ctx context.Context, id, ownerID string, availability domain.Availability) (*domain.Car, error) {
	oid, err := oidFromHex(id, domain.ErrCarNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoCar
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "owner": ownerID},
		bson.M{"$set": bson.M{"availability": string(availability)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&mc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCarNotFound
		}
		return nil, fmt.Errorf("set car availability: %w", err)
	}
	return toDomainCar(mc), nil
}

func (r *CarRepository) AppendReservation(ctx context.Context, carID, reservationID string) error {
	return r.updateList(ctx, carID, bson.M{"$push": bson.M{"rental_history": reservationID}})
}

func (r *CarRepository) RemoveReservation(ctx context.Context, carID, reservationID string) error {
	return r.updateList(ctx, carID, bson.M{"$pull": bson.M{"rental_history": reservationID}})
}

func (r *CarRepository) updateList(ctx context.Context, carID string, update bson.M) error {
	oid, err := oidFromHex(carID, domain.ErrCarNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update car list: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCarNotFound
	}
	return nil
}

// ReplaceMediaURL swaps a single media entry in place via the positional
// operator. No match means the callback already ran (or the car is gone);
// both are no-ops so replays stay harmless.
func (r *CarRepository) ReplaceMediaURL(ctx context.Context, carID, oldURL, newURL string) error {
	oid, err := oidFromHex(carID, domain.ErrCarNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "media.url": oldURL},
		bson.M{"$set": bson.M{"media.$.url": newURL}}); err != nil {
		return fmt.Errorf("replace car media url: %w", err)
	}
	return nil
}
