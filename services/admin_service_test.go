package services

import (
	"context"
	"testing"

	"github.com/Dosada05/sports-center/models"
)

func TestAdminStats(t *testing.T) {
	stats := &fakeStatsRepo{}
	resRepo := newFakeReservationRepo(
		booked(1, testToday.AddDays(-2), "18:00", "19:00", models.ReservationConfirmed),
		booked(2, testToday.AddDays(3), "18:00", "19:00", models.ReservationConfirmed),
	)
	svc := NewAdminService(stats, resRepo, &fakeEnrollmentRepo{}, fixedClock(testNow), nil)

	got, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ConfirmedCount != 2 || got.ConfirmedRevenue.String() != "37.50" {
		t.Fatalf("unexpected totals %d / %s", got.ConfirmedCount, got.ConfirmedRevenue)
	}
	if !stats.dailySince.Equal(testToday.AddDays(-30)) {
		t.Fatalf("expected a 30 day window, got %s", stats.dailySince)
	}
	if !stats.monthlySince.Equal(testToday.AddMonths(-12)) {
		t.Fatalf("expected a 12 month window, got %s", stats.monthlySince)
	}
	if len(got.Reservations) != 2 || got.Reservations[0].Status != models.ReservationCompleted {
		t.Fatalf("expected the elapsed reservation to read completed, got %+v", got.Reservations)
	}
}

func TestAdminEnrollments(t *testing.T) {
	enrollments := &fakeEnrollmentRepo{}
	_ = enrollments.Create(context.Background(), nil, 1, 7)
	_ = enrollments.Create(context.Background(), nil, 1, 8)
	_ = enrollments.Create(context.Background(), nil, 2, 7)
	svc := NewAdminService(&fakeStatsRepo{}, newFakeReservationRepo(), enrollments, fixedClock(testNow), nil)

	report, err := svc.Enrollments(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(report.Enrollments) != 3 || len(report.Totals) != 2 {
		t.Fatalf("expected 3 enrollments over 2 tournaments, got %d / %d", len(report.Enrollments), len(report.Totals))
	}
	if report.Totals[0].Enrolled != 2 {
		t.Fatalf("expected tournament 1 to have 2 entrants, got %d", report.Totals[0].Enrolled)
	}
}
