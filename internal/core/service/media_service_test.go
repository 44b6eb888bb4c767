package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/rentaride/rental-system/internal/core/domain"
	"github.com/rentaride/rental-system/internal/core/ports"
)

type mediaFixture struct {
	svc      *MediaService
	cars     *stubCarRepo
	profiles *stubProfileRepo
	dedup    *stubDedup
}

func newMediaFixture() *mediaFixture {
	f := &mediaFixture{
		cars:     newStubCarRepo(),
		profiles: newStubProfileRepo(),
		dedup:    newStubDedup(),
	}
	reservations := newStubReservationRepo()
	cleaner := &stubCleaner{}
	fleet := NewFleetService(f.cars, f.profiles, reservations, cleaner, zerolog.Nop())
	identity := NewIdentityService(newStubCredentialRepo(), f.profiles, reservations, &stubSessionService{}, fleet, cleaner, bcrypt.MinCost, zerolog.Nop())
	f.svc = NewMediaService(fleet, identity, f.dedup, zerolog.Nop())
	return f
}

func TestMediaService_Process_CarJob(t *testing.T) {
	f := newMediaFixture()
	car, err := f.cars.Create(context.Background(), &domain.Car{
		Owner: "owner-1",
		Media: []domain.Media{{URL: "uploads/a.jpg"}, {URL: "uploads/b.jpg"}},
	})
	if err != nil {
		t.Fatalf("seed car: %v", err)
	}

	job := ports.MediaJob{
		OwnerID:         "owner-1",
		TargetID:        car.ID,
		Files:           []ports.MediaFile{{Path: "uploads/a.jpg"}, {Path: "uploads/b.jpg"}},
		DestinationPath: "cars/owner-1/" + car.ID + "/compressed",
		Category:        ports.MediaCategoryCar,
	}
	if err := f.svc.Process(context.Background(), job); err != nil {
		t.Fatalf("process: %v", err)
	}

	updated, _ := f.cars.FindByID(context.Background(), car.ID)
	want := "cars/owner-1/" + car.ID + "/compressed/a.jpg"
	if updated.Media[0].URL != want {
		t.Fatalf("media[0] = %s, want %s", updated.Media[0].URL, want)
	}
}

func TestMediaService_Process_ProfileJob(t *testing.T) {
	f := newMediaFixture()
	profile, err := f.profiles.Create(context.Background(), &domain.Profile{Role: domain.RoleCustomer})
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	job := ports.MediaJob{
		OwnerID:         profile.ID,
		TargetID:        profile.ID,
		Files:           []ports.MediaFile{{Path: "uploads/avatar.png"}},
		DestinationPath: "users/" + profile.ID + "/compressed",
		Category:        ports.MediaCategoryProfile,
	}
	if err := f.svc.Process(context.Background(), job); err != nil {
		t.Fatalf("process: %v", err)
	}

	updated, _ := f.profiles.FindByID(context.Background(), profile.ID)
	want := "users/" + profile.ID + "/compressed/avatar.png"
	if updated.ProfilePicture != want {
		t.Fatalf("profile picture = %s, want %s", updated.ProfilePicture, want)
	}
}

func TestMediaService_Process_DedupSkipsReplay(t *testing.T) {
	f := newMediaFixture()
	car, err := f.cars.Create(context.Background(), &domain.Car{
		Owner: "owner-1",
		Media: []domain.Media{{URL: "uploads/a.jpg"}},
	})
	if err != nil {
		t.Fatalf("seed car: %v", err)
	}

	job := ports.MediaJob{
		OwnerID:         "owner-1",
		TargetID:        car.ID,
		Files:           []ports.MediaFile{{Path: "uploads/a.jpg"}},
		DestinationPath: "first",
		Category:        ports.MediaCategoryCar,
	}
	if err := f.svc.Process(context.Background(), job); err != nil {
		t.Fatalf("first process: %v", err)
	}

	// Redelivery with a different destination is skipped by the dedup key.
	job.DestinationPath = "second"
	if err := f.svc.Process(context.Background(), job); err != nil {
		t.Fatalf("replay: %v", err)
	}

	updated, _ := f.cars.FindByID(context.Background(), car.ID)
	if updated.Media[0].URL != "first/a.jpg" {
		t.Fatalf("replay was applied: %s", updated.Media[0].URL)
	}
}

func TestMediaService_Process_UnknownCategory(t *testing.T) {
	f := newMediaFixture()

	job := ports.MediaJob{
		TargetID: "whatever",
		Files:    []ports.MediaFile{{Path: "x"}},
		Category: ports.MediaCategory("video"),
	}
	if err := f.svc.Process(context.Background(), job); err == nil {
		t.Fatalf("expected an error for an unknown category")
	}
}
