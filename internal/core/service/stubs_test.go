package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"testing"
	"time"

	"github.com/rentaride/rental-system/internal/core/domain"
	"github.com/rentaride/rental-system/internal/core/ports"
	"github.com/rentaride/rental-system/internal/core/token"
)

// In-memory stand-ins for the mongo repositories. They mirror the real
// repositories' semantics (not-found sentinels, renter-only car appends,
// idempotent deletes) so the services under test see the same contract.

// --- credentials ---

type stubCredentialRepo struct {
	creds      map[string]*domain.Credential
	seq        int
	failCreate error
}

func newStubCredentialRepo() *stubCredentialRepo {
	return &stubCredentialRepo{creds: make(map[string]*domain.Credential)}
}

func (r *stubCredentialRepo) Create(_ context.Context, cred *domain.Credential) (*domain.Credential, error) {
	if r.failCreate != nil {
		return nil, r.failCreate
	}
	if _, exists := r.creds[cred.Email]; exists {
		return nil, domain.ErrCredentialExists
	}
	r.seq++
	clone := *cred
	clone.ID = fmt.Sprintf("cred-%d", r.seq)
	r.creds[clone.Email] = &clone
	out := clone
	return &out, nil
}

func (r *stubCredentialRepo) FindByEmail(_ context.Context, email string) (*domain.Credential, error) {
	cred, ok := r.creds[email]
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	out := *cred
	return &out, nil
}

func (r *stubCredentialRepo) DeleteByEmail(_ context.Context, email string) error {
	delete(r.creds, email)
	return nil
}

// --- profiles ---

type stubProfileRepo struct {
	profiles   map[string]*domain.Profile
	seq        int
	failCreate error
	failAppend error // injected into AppendCar / AppendReservation
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{profiles: make(map[string]*domain.Profile)}
}

func cloneProfile(p *domain.Profile) *domain.Profile {
	clone := *p
	if p.Reservations != nil {
		clone.Reservations = append([]string{}, p.Reservations...)
	}
	if p.Cars != nil {
		clone.Cars = append([]string{}, p.Cars...)
	}
	return &clone
}

func (r *stubProfileRepo) Create(_ context.Context, p *domain.Profile) (*domain.Profile, error) {
	if r.failCreate != nil {
		return nil, r.failCreate
	}
	r.seq++
	clone := cloneProfile(p)
	clone.ID = fmt.Sprintf("profile-%d", r.seq)
	r.profiles[clone.ID] = clone
	return cloneProfile(clone), nil
}

func (r *stubProfileRepo) FindByID(_ context.Context, id string) (*domain.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return cloneProfile(p), nil
}

func (r *stubProfileRepo) FindByEmail(_ context.Context, email string) (*domain.Profile, error) {
	for _, p := range r.profiles {
		if p.Email == email {
			return cloneProfile(p), nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (r *stubProfileRepo) Update(_ context.Context, id string, patch ports.ProfilePatch) (*domain.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	p.Name = patch.Name
	p.DateOfBirth = patch.DateOfBirth
	p.PhoneNumber = patch.PhoneNumber
	p.PlaceOfResidence = patch.PlaceOfResidence
	p.IdentityCard = patch.IdentityCard
	p.ProfilePicture = patch.ProfilePicture
	return cloneProfile(p), nil
}

func (r *stubProfileRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.profiles[id]; !ok {
		return domain.ErrProfileNotFound
	}
	delete(r.profiles, id)
	return nil
}

func (r *stubProfileRepo) SetRole(_ context.Context, id string, role domain.Role) (*domain.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	p.Role = role
	if role == domain.RoleRenter && p.Cars == nil {
		p.Cars = []string{}
	}
	return cloneProfile(p), nil
}

func (r *stubProfileRepo) SetProfilePicture(_ context.Context, id, url string) error {
	if p, ok := r.profiles[id]; ok {
		p.ProfilePicture = url
	}
	return nil
}

func (r *stubProfileRepo) AppendCar(_ context.Context, ownerID, carID string) error {
	if r.failAppend != nil {
		return r.failAppend
	}
	p, ok := r.profiles[ownerID]
	if !ok || !p.IsRenter() {
		return domain.ErrProfileNotFound
	}
	p.Cars = append(p.Cars, carID)
	return nil
}

func (r *stubProfileRepo) RemoveCar(_ context.Context, ownerID, carID string) error {
	p, ok := r.profiles[ownerID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.Cars = removeString(p.Cars, carID)
	return nil
}

func (r *stubProfileRepo) AppendReservation(_ context.Context, profileID, reservationID string) error {
	if r.failAppend != nil {
		return r.failAppend
	}
	p, ok := r.profiles[profileID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.Reservations = append(p.Reservations, reservationID)
	return nil
}

func (r *stubProfileRepo) RemoveReservation(_ context.Context, profileID, reservationID string) error {
	p, ok := r.profiles[profileID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.Reservations = removeString(p.Reservations, reservationID)
	return nil
}

// --- cars ---

type stubCarRepo struct {
	cars map[string]*domain.Car
	seq  int
}

func newStubCarRepo() *stubCarRepo {
	return &stubCarRepo{cars: make(map[string]*domain.Car)}
}

func cloneCar(c *domain.Car) *domain.Car {
	clone := *c
	clone.RentalHistory = append([]string(nil), c.RentalHistory...)
	clone.Media = append([]domain.Media(nil), c.Media...)
	return &clone
}

func (r *stubCarRepo) Create(_ context.Context, car *domain.Car) (*domain.Car, error) {
	r.seq++
	clone := cloneCar(car)
	clone.ID = fmt.Sprintf("car-%d", r.seq)
	r.cars[clone.ID] = clone
	return cloneCar(clone), nil
}

func (r *stubCarRepo) FindByID(_ context.Context, id string) (*domain.Car, error) {
	c, ok := r.cars[id]
	if !ok {
		return nil, domain.ErrCarNotFound
	}
	return cloneCar(c), nil
}

func (r *stubCarRepo) FindByIDAndOwner(_ context.Context, id, ownerID string) (*domain.Car, error) {
	c, ok := r.cars[id]
	if !ok || c.Owner != ownerID {
		return nil, domain.ErrCarNotFound
	}
	return cloneCar(c), nil
}

func (r *stubCarRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.Car, error) {
	out := make([]*domain.Car, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.cars[id]; ok {
			out = append(out, cloneCar(c))
		}
	}
	return out, nil
}

func (r *stubCarRepo) FindAvailable(_ context.Context) ([]*domain.Car, error) {
	var out []*domain.Car
	for _, c := range r.cars {
		if c.Availability == domain.CarAvailable {
			out = append(out, cloneCar(c))
		}
	}
	return out, nil
}

func (r *stubCarRepo) Update(_ context.Context, id, ownerID string, patch ports.CarPatch) (*domain.Car, error) {
	c, ok := r.cars[id]
	if !ok || c.Owner != ownerID {
		return nil, domain.ErrCarNotFound
	}
	c.Make = patch.Make
	c.Model = patch.Model
	c.Capacity = patch.Capacity
	c.Rate = patch.Rate
	c.Media = append(c.Media, patch.AddMedia...)
	return cloneCar(c), nil
}

func (r *stubCarRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.cars[id]; !ok {
		return domain.ErrCarNotFound
	}
	delete(r.cars, id)
	return nil
}

func (r *stubCarRepo) SetAvailability(_ context.Context, id, ownerID string, availability domain.Availability) (*domain.Car, error) {
	c, ok := r.cars[id]
	if !ok || c.Owner != ownerID {
		return nil, domain.ErrCarNotFound
	}
	c.Availability = availability
	return cloneCar(c), nil
}

func (r *stubCarRepo) AppendReservation(_ context.Context, carID, reservationID string) error {
	c, ok := r.cars[carID]
	if !ok {
		return domain.ErrCarNotFound
	}
	c.RentalHistory = append(c.RentalHistory, reservationID)
	return nil
}

func (r *stubCarRepo) RemoveReservation(_ context.Context, carID, reservationID string) error {
	c, ok := r.cars[carID]
	if !ok {
		return domain.ErrCarNotFound
	}
	c.RentalHistory = removeString(c.RentalHistory, reservationID)
	return nil
}

func (r *stubCarRepo) ReplaceMediaURL(_ context.Context, carID, oldURL, newURL string) error {
	c, ok := r.cars[carID]
	if !ok {
		return nil
	}
	for i := range c.Media {
		if c.Media[i].URL == oldURL {
			c.Media[i].URL = newURL
			return nil
		}
	}
	return nil
}

// --- reservations ---

type stubReservationRepo struct {
	reservations map[string]*domain.Reservation
	seq          int
}

func newStubReservationRepo() *stubReservationRepo {
	return &stubReservationRepo{reservations: make(map[string]*domain.Reservation)}
}

func (r *stubReservationRepo) Create(_ context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	r.seq++
	clone := *res
	clone.ID = fmt.Sprintf("reservation-%d", r.seq)
	r.reservations[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubReservationRepo) FindByID(_ context.Context, id string) (*domain.Reservation, error) {
	res, ok := r.reservations[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	out := *res
	return &out, nil
}

func (r *stubReservationRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.Reservation, error) {
	out := make([]*domain.Reservation, 0, len(ids))
	for _, id := range ids {
		if res, ok := r.reservations[id]; ok {
			clone := *res
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubReservationRepo) Update(_ context.Context, id string, patch ports.ReservationPatch) (*domain.Reservation, error) {
	res, ok := r.reservations[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	res.StartDate = patch.StartDate
	res.ReturnDate = patch.ReturnDate
	out := *res
	return &out, nil
}

func (r *stubReservationRepo) SetStatus(_ context.Context, id string, status domain.ReservationStatus) (*domain.Reservation, error) {
	res, ok := r.reservations[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	res.Status = status
	out := *res
	return &out, nil
}

func (r *stubReservationRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.reservations[id]; !ok {
		return domain.ErrReservationNotFound
	}
	delete(r.reservations, id)
	return nil
}

// --- sessions ---

type stubSessionRepo struct {
	sessions map[string]*domain.Session
	seq      int
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *stubSessionRepo) Create(_ context.Context, ownerID, userAgent string) (*domain.Session, error) {
	r.seq++
	session := &domain.Session{
		ID:        fmt.Sprintf("session-%d", r.seq),
		Owner:     ownerID,
		Valid:     true,
		UserAgent: userAgent,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	r.sessions[session.ID] = session
	out := *session
	return &out, nil
}

func (r *stubSessionRepo) FindByID(_ context.Context, id string) (*domain.Session, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	out := *session
	return &out, nil
}

func (r *stubSessionRepo) Delete(_ context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

// --- session service (for injecting create failures into signup) ---

type stubSessionService struct {
	created    []string
	revoked    []string
	failCreate error
}

func (s *stubSessionService) Create(_ context.Context, profile *domain.Profile, _ string) (*ports.SessionTokens, error) {
	if s.failCreate != nil {
		return nil, s.failCreate
	}
	id := fmt.Sprintf("session-%d", len(s.created)+1)
	s.created = append(s.created, id)
	return &ports.SessionTokens{SessionID: id, AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (s *stubSessionService) Refresh(_ context.Context, _ string) (string, bool) {
	return "", false
}

func (s *stubSessionService) Revoke(_ context.Context, sessionID string) error {
	s.revoked = append(s.revoked, sessionID)
	return nil
}

// --- storage / dedup ---

type stubCleaner struct {
	deletedFiles []string
	deletedTrees []string
}

func (c *stubCleaner) DeleteFile(path string) { c.deletedFiles = append(c.deletedFiles, path) }
func (c *stubCleaner) DeleteTree(path string) { c.deletedTrees = append(c.deletedTrees, path) }

type stubDedup struct {
	seen map[string]bool
}

func newStubDedup() *stubDedup {
	return &stubDedup{seen: make(map[string]bool)}
}

func (d *stubDedup) IsProcessed(_ context.Context, key string) (bool, error) {
	return d.seen[key], nil
}

func (d *stubDedup) Mark(_ context.Context, key string) error {
	d.seen[key] = true
	return nil
}

// --- helpers ---

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

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
