package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Dosada05/sports-center/apperr"
	"github.com/Dosada05/sports-center/models"
)

func newFacilityFixture(reservations ...models.Reservation) (FacilityService, *fakeFacilityRepo, *fakeReservationRepo) {
	inactive := padelCourt()
	inactive.ID, inactive.Active, inactive.Name = 2, false, "Pista cerrada"
	facilities := newFakeFacilityRepo(padelCourt(), inactive)
	resRepo := newFakeReservationRepo(reservations...)
	svc := NewFacilityService(facilities, resRepo, nil, nil, fixedClock(testNow), nil)
	return svc, facilities, resRepo
}

func TestFacilityList_OnlyActiveForPublic(t *testing.T) {
	svc, _, _ := newFacilityFixture()

	public, err := svc.List(context.Background(), "", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(public) != 1 || public[0].ID != 1 {
		t.Fatalf("expected only the active facility, got %+v", public)
	}
	all, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected admins to see inactive facilities too, got %d", len(all))
	}
	if _, err := svc.List(context.Background(), "", "curling"); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	if _, err := svc.Get(context.Background(), 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected inactive facilities to be hidden, got %v", err)
	}
}

func TestFacilityAvailability(t *testing.T) {
	tomorrow := testToday.AddDays(1)
	svc, _, _ := newFacilityFixture(
		booked(1, tomorrow, "18:00", "19:00", models.ReservationConfirmed),
		booked(2, tomorrow, "10:00", "11:00", models.ReservationCancelled),
		booked(3, tomorrow, "09:00", "10:00", models.ReservationPending),
	)

	got, err := svc.Availability(context.Background(), 1, tomorrow.String())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got.Occupied) != 2 {
		t.Fatalf("expected pending and confirmed slots only, got %+v", got.Occupied)
	}
	if got.Occupied[0].Start != "09:00" || got.Occupied[1].Start != "18:00" {
		t.Fatalf("expected slots ordered by start, got %+v", got.Occupied)
	}
	if _, err := svc.Availability(context.Background(), 1, "14/03/2025"); !errors.Is(err, apperr.ErrFormat) {
		t.Fatalf("expected a format error, got %v", err)
	}
}

func TestFacilityDelete_BlockedByActiveReservations(t *testing.T) {
	svc, facilities, resRepo := newFacilityFixture(booked(1, testToday.AddDays(1), "18:00", "19:00", models.ReservationConfirmed))

	if err := svc.Delete(context.Background(), 1); !errors.Is(err, ErrFacilityHasBookings) {
		t.Fatalf("expected ErrFacilityHasBookings, got %v", err)
	}
	_ = resRepo.CancelActive(context.Background(), nil, 1)
	if err := svc.Delete(context.Background(), 1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := facilities.GetByID(context.Background(), 1); err == nil {
		t.Fatalf("expected facility 1 to be gone")
	}
}

func TestFacilityCreateAndUpdate(t *testing.T) {
	svc, _, _ := newFacilityFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateFacilityInput{
		Name:        " Piscina cubierta ",
		Category:    models.CategoryPool,
		HourlyPrice: models.MoneyFromString("12.505"),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.Name != "Piscina cubierta" || !created.Active || created.HourlyPrice.String() != "12.51" {
		t.Fatalf("unexpected facility %+v", created)
	}

	negative := models.MoneyFromString("-1")
	if _, err := svc.Update(ctx, created.ID, models.FacilityPatch{HourlyPrice: &negative}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	inactive := false
	updated, err := svc.Update(ctx, created.ID, models.FacilityPatch{Active: &inactive})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Active {
		t.Fatalf("expected the facility to be deactivated")
	}
}

func TestFacilityUploadImage_StorageDisabled(t *testing.T) {
	svc, _, _ := newFacilityFixture()

	if _, err := svc.UploadImage(context.Background(), 1, "image/gif", strings.NewReader("x")); !errors.Is(err, ErrImageTypeUnsupported) {
		t.Fatalf("expected ErrImageTypeUnsupported, got %v", err)
	}
	if _, err := svc.UploadImage(context.Background(), 1, "image/png", strings.NewReader("x")); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}
