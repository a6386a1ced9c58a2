package lifecycle

import (
	"testing"
	"time"

	"github.com/Dosada05/sports-center/models"
	"github.com/Dosada05/sports-center/schedule"
)

var today = schedule.NewDate(2025, time.March, 14)

func TestDeriveTournamentStatus_FullBeforeStartIsClosed(t *testing.T) {
	got := DeriveTournamentStatus(models.TournamentOpen, today.AddDays(10), today.AddDays(11), 10, 10, today)
	if got != models.TournamentClosed {
		t.Fatalf("expected closed, got %s", got)
	}
}

func TestDeriveTournamentStatus_PastEndIsFinishedRegardlessOfStored(t *testing.T) {
	for _, stored := range []models.TournamentStatus{models.TournamentOpen, models.TournamentClosed, models.TournamentFinished} {
		got := DeriveTournamentStatus(stored, today.AddDays(-3), today.AddDays(-1), 3, 10, today)
		if got != models.TournamentFinished {
			t.Fatalf("stored %s: expected finished, got %s", stored, got)
		}
	}
}

func TestDeriveTournamentStatus_StartedOpenIsClosed(t *testing.T) {
	got := DeriveTournamentStatus(models.TournamentOpen, today, today.AddDays(2), 0, 10, today)
	if got != models.TournamentClosed {
		t.Fatalf("expected closed on start day, got %s", got)
	}
}

func TestDeriveTournamentStatus_EndingTodayIsNotFinished(t *testing.T) {
	got := DeriveTournamentStatus(models.TournamentClosed, today.AddDays(-1), today, 0, 10, today)
	if got != models.TournamentClosed {
		t.Fatalf("expected stored status on end day, got %s", got)
	}
}

func TestDeriveTournamentStatus_FallsBackToStored(t *testing.T) {
	if got := DeriveTournamentStatus(models.TournamentOpen, today.AddDays(5), today.AddDays(5), 3, 10, today); got != models.TournamentOpen {
		t.Fatalf("expected open, got %s", got)
	}
	if got := DeriveTournamentStatus(models.TournamentClosed, today.AddDays(5), today.AddDays(5), 0, 10, today); got != models.TournamentClosed {
		t.Fatalf("expected admin-closed tournament to stay closed, got %s", got)
	}
}

func TestEffectiveTournament_UsesLiveCount(t *testing.T) {
	tour := models.Tournament{
		Status:    models.TournamentOpen,
		StartDate: today.AddDays(7),
		EndDate:   today.AddDays(8),
		Capacity:  4,
		Enrolled:  1,
	}
	got := EffectiveTournament(tour, 4, today)
	if got.Enrolled != 4 {
		t.Fatalf("expected enrolled 4, got %d", got.Enrolled)
	}
	if got.Status != models.TournamentClosed {
		t.Fatalf("expected closed, got %s", got.Status)
	}
	if tour.Status != models.TournamentOpen {
		t.Fatalf("expected input to stay untouched")
	}
}

func TestShouldReopen(t *testing.T) {
	end := today.AddDays(10)
	if !ShouldReopen(models.TournamentClosed, end, 9, 10, today) {
		t.Fatalf("expected closed tournament with a free place to reopen")
	}
	if ShouldReopen(models.TournamentClosed, end, 10, 10, today) {
		t.Fatalf("expected full tournament to stay closed")
	}
	if ShouldReopen(models.TournamentFinished, end, 1, 10, today) {
		t.Fatalf("expected finished tournament never to reopen")
	}
	if ShouldReopen(models.TournamentClosed, today.AddDays(-1), 1, 10, today) {
		t.Fatalf("expected past tournament never to reopen")
	}
}

func TestRegistrationClosed(t *testing.T) {
	if !RegistrationClosed(today, today) {
		t.Fatalf("expected registration closed on start day")
	}
	if RegistrationClosed(today.AddDays(1), today) {
		t.Fatalf("expected registration open the day before")
	}
}

func TestOpenForRegistration_IgnoresCapacity(t *testing.T) {
	if !OpenForRegistration(models.TournamentOpen, today.AddDays(5), today.AddDays(6), today) {
		t.Fatalf("expected future open tournament to accept registrations")
	}
	if OpenForRegistration(models.TournamentClosed, today.AddDays(5), today.AddDays(6), today) {
		t.Fatalf("expected stored closed to stay closed")
	}
	if OpenForRegistration(models.TournamentOpen, today, today.AddDays(6), today) {
		t.Fatalf("expected tournament starting today to be closed")
	}
}
