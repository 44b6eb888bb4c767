package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/rentaride/rental-system/internal/core/domain"
	"github.com/rentaride/rental-system/internal/core/ports"
)

type identityFixture struct {
	svc          *IdentityService
	credentials  *stubCredentialRepo
	profiles     *stubProfileRepo
	reservations *stubReservationRepo
	cars         *stubCarRepo
	sessions     *stubSessionService
	fleet        *FleetService
	cleaner      *stubCleaner
}

func newIdentityFixture() *identityFixture {
	f := &identityFixture{
		credentials:  newStubCredentialRepo(),
		profiles:     newStubProfileRepo(),
		reservations: newStubReservationRepo(),
		cars:         newStubCarRepo(),
		sessions:     &stubSessionService{},
		cleaner:      &stubCleaner{},
	}
	f.fleet = NewFleetService(f.cars, f.profiles, f.reservations, f.cleaner, zerolog.Nop())
	f.svc = NewIdentityService(f.credentials, f.profiles, f.reservations, f.sessions, f.fleet, f.cleaner, bcrypt.MinCost, zerolog.Nop())
	return f
}

func signupInput(role domain.Role) ports.SignUpInput {
	return ports.SignUpInput{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
		Name:     "Alice",
		Role:     role,
	}
}

func TestIdentityService_SignUp_Success(t *testing.T) {
	f := newIdentityFixture()

	result, err := f.svc.SignUp(context.Background(), signupInput(domain.RoleCustomer))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if result.Profile.ID == "" || result.Profile.Role != domain.RoleCustomer {
		t.Fatalf("unexpected profile: %+v", result.Profile)
	}
	if result.Session == nil || result.Session.SessionID == "" {
		t.Fatalf("expected a session, got %+v", result.Session)
	}

	cred, err := f.credentials.FindByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("credential missing after signup: %v", err)
	}
	if cred.PasswordHash == "hunter2hunter2" {
		t.Fatalf("password stored unhashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte("hunter2hunter2")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestIdentityService_SignUp_RenterGetsCarList(t *testing.T) {
	f := newIdentityFixture()

	result, err := f.svc.SignUp(context.Background(), signupInput(domain.RoleRenter))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if result.Profile.Cars == nil {
		t.Fatalf("renter profile should carry an initialised car list")
	}
}

func TestIdentityService_SignUp_AdminForbidden(t *testing.T) {
	f := newIdentityFixture()

	if _, err := f.svc.SignUp(context.Background(), signupInput(domain.RoleAdmin)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestIdentityService_SignUp_DuplicateEmail(t *testing.T) {
	f := newIdentityFixture()

	if _, err := f.svc.SignUp(context.Background(), signupInput(domain.RoleCustomer)); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := f.svc.SignUp(context.Background(), signupInput(domain.RoleCustomer)); !errors.Is(err, domain.ErrCredentialExists) {
		t.Fatalf("expected ErrCredentialExists, got %v", err)
	}
}

func TestIdentityService_SignUp_ProfileFailureRollsBackCredential(t *testing.T) {
	f := newIdentityFixture()
	f.profiles.failCreate = errors.New("profiles down")

	if _, err := f.svc.SignUp(context.Background(), signupInput(domain.RoleCustomer)); err == nil {
		t.Fatalf("expected signup to fail")
	}

	if _, err := f.credentials.FindByEmail(context.Background(), "alice@example.com"); !errors.Is(err, domain.ErrCredentialNotFound) {
		t.Fatalf("credential should be rolled back, got %v", err)
	}
}

func TestIdentityService_SignUp_SessionFailureRollsBackBoth(t *testing.T) {
	f := newIdentityFixture()
	f.sessions.failCreate = errors.New("sessions down")

	if _, err := f.svc.SignUp(context.Background(), signupInput(domain.RoleCustomer)); err == nil {
		t.Fatalf("expected signup to fail")
	}

	if _, err := f.credentials.FindByEmail(context.Background(), "alice@example.com"); !errors.Is(err, domain.ErrCredentialNotFound) {
		t.Fatalf("credential should be rolled back, got %v", err)
	}
	if len(f.profiles.profiles) != 0 {
		t.Fatalf("profile should be rolled back, %d rows remain", len(f.profiles.profiles))
	}
}

func TestIdentityService_Login_FailuresIndistinguishable(t *testing.T) {
	f := newIdentityFixture()
	if _, err := f.svc.SignUp(context.Background(), signupInput(domain.RoleCustomer)); err != nil {
		t.Fatalf("signup: %v", err)
	}

	_, unknownErr := f.svc.Login(context.Background(), "nobody@example.com", "whatever")
	_, wrongErr := f.svc.Login(context.Background(), "alice@example.com", "wrong-password")

	if !errors.Is(unknownErr, domain.ErrInvalidCredentials) || !errors.Is(wrongErr, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", unknownErr, wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("unknown email and wrong password must be indistinguishable: %q vs %q", unknownErr, wrongErr)
	}
}

func TestIdentityService_Login_Success(t *testing.T) {
	f := newIdentityFixture()
	result, err := f.svc.SignUp(context.Background(), signupInput(domain.RoleCustomer))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	profile, err := f.svc.Login(context.Background(), "alice@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if profile.ID != result.Profile.ID {
		t.Fatalf("login returned profile %s, want %s", profile.ID, result.Profile.ID)
	}
}

func TestIdentityService_DeleteIdentity_RenterCascade(t *testing.T) {
	f := newIdentityFixture()
	result, err := f.svc.SignUp(context.Background(), signupInput(domain.RoleRenter))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	ownerID := result.Profile.ID

	for i := 0; i < 2; i++ {
		if _, err := f.fleet.AddCar(context.Background(), ports.AddCarInput{OwnerID: ownerID, Make: "VW"}); err != nil {
			t.Fatalf("add car: %v", err)
		}
	}

	if err := f.svc.DeleteIdentity(context.Background(), ownerID, result.Session.SessionID); err != nil {
		t.Fatalf("delete identity: %v", err)
	}

	if len(f.cars.cars) != 0 {
		t.Fatalf("expected zero cars after cascade, %d remain", len(f.cars.cars))
	}
	if _, err := f.credentials.FindByEmail(context.Background(), "alice@example.com"); !errors.Is(err, domain.ErrCredentialNotFound) {
		t.Fatalf("credential should be gone, got %v", err)
	}
	if _, err := f.profiles.FindByID(context.Background(), ownerID); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("profile should be gone, got %v", err)
	}
	if len(f.sessions.revoked) != 1 || f.sessions.revoked[0] != result.Session.SessionID {
		t.Fatalf("session not revoked: %v", f.sessions.revoked)
	}
	if len(f.cleaner.deletedTrees) == 0 {
		t.Fatalf("expected upload tree cleanup to fire")
	}
}

func TestIdentityService_UpgradeToRenter(t *testing.T) {
	f := newIdentityFixture()
	result, err := f.svc.SignUp(context.Background(), signupInput(domain.RoleCustomer))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	upgraded, err := f.svc.UpgradeToRenter(context.Background(), result.Profile.ID)
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if upgraded.Role != domain.RoleRenter {
		t.Fatalf("role = %s, want renter", upgraded.Role)
	}
	if upgraded.Cars == nil {
		t.Fatalf("upgrade should initialise the car list")
	}

	if _, err := f.svc.UpgradeToRenter(context.Background(), result.Profile.ID); !errors.Is(err, domain.ErrAlreadyRenter) {
		t.Fatalf("expected ErrAlreadyRenter, got %v", err)
	}
}

func TestIdentityService_ClearReservationHistory(t *testing.T) {
	f := newIdentityFixture()
	result, err := f.svc.SignUp(context.Background(), signupInput(domain.RoleCustomer))
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	profileID := result.Profile.ID

	res, err := f.reservations.Create(context.Background(), &domain.Reservation{Customer: domain.Customer{ID: profileID}})
	if err != nil {
		t.Fatalf("seed reservation: %v", err)
	}
	if err := f.profiles.AppendReservation(context.Background(), profileID, res.ID); err != nil {
		t.Fatalf("append reservation: %v", err)
	}

	history, err := f.svc.ReservationHistory(context.Background(), profileID)
	if err != nil || len(history) != 1 {
		t.Fatalf("history = %v, %v; want one entry", history, err)
	}

	if err := f.svc.ClearReservationHistory(context.Background(), profileID); err != nil {
		t.Fatalf("clear history: %v", err)
	}

	history, err = f.svc.ReservationHistory(context.Background(), profileID)
	if err != nil || len(history) != 0 {
		t.Fatalf("history should be empty after clear, got %v, %v", history, err)
	}

	// The reservation row itself survives; only the projection is emptied.
	if _, err := f.reservations.FindByID(context.Background(), res.ID); err != nil {
		t.Fatalf("reservation row should survive a history clear: %v", err)
	}
}
