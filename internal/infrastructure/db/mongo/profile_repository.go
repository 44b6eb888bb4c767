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

const collectionProfiles = "profiles"

// ProfileRepository implements ports.ProfileRepository using MongoDB.
type ProfileRepository struct {
	coll *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{coll: db.Collection(collectionProfiles)}
}

type mongoCoordinates struct {
	Lat string `bson:"lat"`
	Lng string `bson:"lng"`
}

type mongoProfile struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Role             string             `bson:"role"`
	Name             string             `bson:"name"`
	Email            string             `bson:"email"`
	DateOfBirth      time.Time          `bson:"date_of_birth"`
	PhoneNumber      string             `bson:"phone_number"`
	PlaceOfResidence mongoCoordinates   `bson:"place_of_residence"`
	ProfilePicture   string             `bson:"profile_picture"`
	IdentityCard     string             `bson:"identity_card,omitempty"`
	Reservations     []string           `bson:"reservations"`
	Cars             []string           `bson:"cars,omitempty"`
}

func toMongoProfile(p *domain.Profile) mongoProfile {
	return mongoProfile{
		Role:             string(p.Role),
		Name:             p.Name,
		Email:            p.Email,
		DateOfBirth:      p.DateOfBirth.UTC(),
		PhoneNumber:      p.PhoneNumber,
		PlaceOfResidence: mongoCoordinates{Lat: p.PlaceOfResidence.Lat, Lng: p.PlaceOfResidence.Lng},
		ProfilePicture:   p.ProfilePicture,
		IdentityCard:     p.IdentityCard,
		Reservations:     p.Reservations,
		Cars:             p.Cars,
	}
}

func toDomainProfile(mp mongoProfile) *domain.Profile {
	p := &domain.Profile{
		ID:               mp.ID.Hex(),
		Role:             domain.Role(mp.Role),
		Name:             mp.Name,
		Email:            mp.Email,
		DateOfBirth:      mp.DateOfBirth,
		PhoneNumber:      mp.PhoneNumber,
		PlaceOfResidence: domain.Coordinates{Lat: mp.PlaceOfResidence.Lat, Lng: mp.PlaceOfResidence.Lng},
		ProfilePicture:   mp.ProfilePicture,
		IdentityCard:     mp.IdentityCard,
		Reservations:     mp.Reservations,
		Cars:             mp.Cars,
	}
	if p.Reservations == nil {
		p.Reservations = []string{}
	}
	// bson omitempty drops empty lists; a renter with no cars still has one.
	if p.Role == domain.RoleRenter && p.Cars == nil {
		p.Cars = []string{}
	}
	return p
}

func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, toMongoProfile(p))
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}

	created := *p
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	oid, err := oidFromHex(id, domain.ErrProfileNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *ProfileRepository) findOne(ctx context.Context, filter bson.M) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoProfile
	if err := r.coll.FindOne(ctx, filter).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return toDomainProfile(mp), nil
}

func (r *ProfileRepository) Update(ctx context.Context, id string, patch ports.ProfilePatch) (*domain.Profile, error) {
	oid, err := oidFromHex(id, domain.ErrProfileNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":               patch.Name,
		"date_of_birth":      patch.DateOfBirth.UTC(),
		"phone_number":       patch.PhoneNumber,
		"place_of_residence": mongoCoordinates{Lat: patch.PlaceOfResidence.Lat, Lng: patch.PlaceOfResidence.Lng},
		"identity_card":      patch.IdentityCard,
		"profile_picture":    patch.ProfilePicture,
	}}

	var mp mongoProfile
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&mp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return toDomainProfile(mp), nil
}

func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	oid, err := oidFromHex(id, domain.ErrProfileNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepository) SetRole(ctx context.Context, id string, role domain.Role) (*domain.Profile, error) {
	oid, err := oidFromHex(id, domain.ErrProfileNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"role": string(role)}
	if role == domain.RoleRenter {
		// Renter capability comes with an (initially empty) car list.
		set["cars"] = []string{}
	}

	var mp mongoProfile
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&mp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("set profile role: %w", err)
	}
	return toDomainProfile(mp), nil
}

// SetProfilePicture applies the media callback. A missing profile is a
// no-op: the callback may arrive after the profile was deleted.
func (r *ProfileRepository) SetProfilePicture(ctx context.Context, id, url string) error {
	oid, err := oidFromHex(id, domain.ErrProfileNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"profile_picture": url}}); err != nil {
		return fmt.Errorf("set profile picture: %w", err)
	}
	return nil
}

// AppendCar only matches renter profiles; appending a car to a customer
// reports not-found rather than silently creating the list.
func (r *ProfileRepository) AppendCar(ctx context.Context, ownerID, carID string) error {
	return r.updateList(ctx, ownerID,
		bson.M{"role": string(domain.RoleRenter)},
		bson.M{"$push": bson.M{"cars": carID}})
}

func (r *ProfileRepository) RemoveCar(ctx context.Context, ownerID, carID string) error {
	return r.updateList(ctx, ownerID, nil,
		bson.M{"$pull": bson.M{"cars": carID}})
}

func (r *ProfileRepository) AppendReservation(ctx context.Context, profileID, reservationID string) error {
	return r.updateList(ctx, profileID, nil,
		bson.M{"$push": bson.M{"reservations": reservationID}})
}

func (r *ProfileRepository) RemoveReservation(ctx context.Context, profileID, reservationID string) error {
	return r.updateList(ctx, profileID, nil,
		bson.M{"$pull": bson.M{"reservations": reservationID}})
}

// updateList runs a single-document list mutation against the profile with
// the given id, merged with any extra filter criteria.
func (r *ProfileRepository) updateList(ctx context.Context, id string, extra, update bson.M) error {
	oid, err := oidFromHex(id, domain.ErrProfileNotFound)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": oid}
	for k, v := range extra {
		filter[k] = v
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update profile list: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}
