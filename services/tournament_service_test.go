package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/sports-center/apperr"
	"github.com/Dosada05/sports-center/brackets"
	"github.com/Dosada05/sports-center/events"
	"github.com/Dosada05/sports-center/models"
	"github.com/Dosada05/sports-center/realtime"
	"github.com/Dosada05/sports-center/schedule"
)

func openTournament(id, capacity int, start schedule.Date) models.Tournament {
	return models.Tournament{
		ID:        id,
		Name:      "Open de Primavera",
		Sport:     "padel",
		StartDate: start,
		EndDate:   start.AddDays(1),
		Province:  "Sevilla",
		City:      "Sevilla",
		Capacity:  capacity,
		Status:    models.TournamentOpen,
		Active:    true,
	}
}

type tournamentFixture struct {
	svc         TournamentService
	repo        *fakeTournamentRepo
	enrollments *fakeEnrollmentRepo
	broadcaster *recordingBroadcaster
	publisher   *recordingPublisher
}

func newTournamentFixture(tournaments ...models.Tournament) *tournamentFixture {
	enrollments := &fakeEnrollmentRepo{}
	repo := newFakeTournamentRepo(enrollments, tournaments...)
	b := &recordingBroadcaster{}
	p := &recordingPublisher{}
	svc := NewTournamentService(repo, enrollments, fakeTx{}, b, p, fixedClock(testNow), nil)
	return &tournamentFixture{svc: svc, repo: repo, enrollments: enrollments, broadcaster: b, publisher: p}
}

func player(id int) models.Identity { return models.Identity{UserID: id} }

func TestEnroll_Success(t *testing.T) {
	f := newTournamentFixture(openTournament(1, 4, testToday.AddDays(10)))

	result, err := f.svc.Enroll(context.Background(), player(7), 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Message != msgEnrolled {
		t.Fatalf("expected message %q, got %q", msgEnrolled, result.Message)
	}
	if result.Tournament.Enrolled != 1 || result.Tournament.Status != models.TournamentOpen {
		t.Fatalf("expected 1 enrolled and open, got %d and %s", result.Tournament.Enrolled, result.Tournament.Status)
	}
	if result.Tournament.IsEnrolled == nil || !*result.Tournament.IsEnrolled {
		t.Fatalf("expected the result to be marked as enrolled")
	}
	if len(f.broadcaster.rooms) != 1 || f.broadcaster.rooms[0] != realtime.TournamentRoom(1) {
		t.Fatalf("expected a broadcast to the tournament room, got %v", f.broadcaster.rooms)
	}
	if len(f.publisher.keys) != 1 || f.publisher.keys[0] != events.TournamentEnrolled {
		t.Fatalf("expected an enrolled event, got %v", f.publisher.keys)
	}
}

func TestEnroll_DuplicateIsConflict(t *testing.T) {
	f := newTournamentFixture(openTournament(1, 4, testToday.AddDays(10)))

	if _, err := f.svc.Enroll(context.Background(), player(7), 1); err != nil {
		t.Fatalf("expected first enrollment to succeed, got %v", err)
	}
	_, err := f.svc.Enroll(context.Background(), player(7), 1)
	if !errors.Is(err, ErrAlreadyEnrolled) || !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected ErrAlreadyEnrolled, got %v", err)
	}
	if n, _ := f.enrollments.Count(context.Background(), nil, 1); n != 1 {
		t.Fatalf("expected exactly one enrollment row, got %d", n)
	}
}

func TestEnroll_LastSeatClosesTournament(t *testing.T) {
	f := newTournamentFixture(openTournament(1, 2, testToday.AddDays(10)))
	ctx := context.Background()

	if _, err := f.svc.Enroll(ctx, player(7), 1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	result, err := f.svc.Enroll(ctx, player(8), 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Tournament.Status != models.TournamentClosed {
		t.Fatalf("expected closed once full, got %s", result.Tournament.Status)
	}
	if got := f.repo.stored(1); got.Status != models.TournamentClosed || got.Enrolled != 2 {
		t.Fatalf("expected stored closed with 2 enrolled, got %s with %d", got.Status, got.Enrolled)
	}

	_, err = f.svc.Enroll(ctx, player(9), 1)
	if !errors.Is(err, ErrTournamentNotOpen) || !errors.Is(err, apperr.ErrState) {
		t.Fatalf("expected ErrTournamentNotOpen once closed, got %v", err)
	}
}

func TestEnroll_ClosedWhenFullIsNotOpen(t *testing.T) {
	f := newTournamentFixture(openTournament(1, 1, testToday.AddDays(10)))
	ctx := context.Background()

	if _, err := f.svc.Enroll(ctx, player(7), 1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := f.repo.stored(1); got.Status != models.TournamentClosed {
		t.Fatalf("expected the single seat to close the tournament, got %s", got.Status)
	}

	_, err := f.svc.Enroll(ctx, player(8), 1)
	if !errors.Is(err, ErrTournamentNotOpen) {
		t.Fatalf("expected ErrTournamentNotOpen, got %v", err)
	}
	if n, _ := f.enrollments.Count(ctx, nil, 1); n != 1 {
		t.Fatalf("expected one enrollment row, got %d", n)
	}
}

func TestEnroll_FullRejectionPersistsClosedStatus(t *testing.T) {
	f := newTournamentFixture(openTournament(1, 1, testToday.AddDays(10)))
	// Stored status still says open while the live count already fills it.
	_ = f.enrollments.Create(context.Background(), nil, 1, 7)

	_, err := f.svc.Enroll(context.Background(), player(8), 1)
	if !errors.Is(err, ErrTournamentFull) {
		t.Fatalf("expected ErrTournamentFull, got %v", err)
	}
	if got := f.repo.stored(1); got.Status != models.TournamentClosed {
		t.Fatalf("expected the rejection to persist closed, got %s", got.Status)
	}
	if n, _ := f.enrollments.Count(context.Background(), nil, 1); n != 1 {
		t.Fatalf("expected no new enrollment, got %d rows", n)
	}
	if len(f.publisher.keys) != 0 {
		t.Fatalf("expected no events for a rejected enrollment, got %v", f.publisher.keys)
	}
}

func TestEnroll_Rejections(t *testing.T) {
	adminClosed := openTournament(4, 4, testToday.AddDays(10))
	adminClosed.Status = models.TournamentClosed
	inactive := openTournament(5, 4, testToday.AddDays(10))
	inactive.Active = false

	f := newTournamentFixture(
		openTournament(1, 4, testToday.AddDays(10)),
		openTournament(2, 4, testToday),
		openTournament(3, 4, testToday.AddDays(-1)),
		adminClosed,
		inactive,
	)

	tests := []struct {
		name   string
		caller models.Identity
		id     int
		want   error
	}{
		{name: "admin", caller: models.Identity{UserID: 1, IsAdmin: true}, id: 1, want: ErrAdminCannotEnroll},
		{name: "starts today", caller: player(7), id: 2, want: ErrEnrollmentClosed},
		{name: "already started", caller: player(7), id: 3, want: ErrEnrollmentClosed},
		{name: "closed by admin", caller: player(7), id: 4, want: ErrTournamentNotOpen},
		{name: "inactive", caller: player(7), id: 5, want: ErrTournamentInactive},
		{name: "missing", caller: player(7), id: 99, want: ErrTournamentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Enroll(context.Background(), tt.caller, tt.id)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestWithdraw_ReopensTournamentClosedForCapacity(t *testing.T) {
	f := newTournamentFixture(openTournament(1, 2, testToday.AddDays(10)))
	ctx := context.Background()
	for _, id := range []int{7, 8} {
		if _, err := f.svc.Enroll(ctx, player(id), 1); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	result, err := f.svc.Withdraw(ctx, player(8), 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Message != msgWithdrawn {
		t.Fatalf("expected message %q, got %q", msgWithdrawn, result.Message)
	}
	if got := f.repo.stored(1); got.Status != models.TournamentOpen || got.Enrolled != 1 {
		t.Fatalf("expected stored open with 1 enrolled, got %s with %d", got.Status, got.Enrolled)
	}
	if result.Tournament.IsEnrolled == nil || *result.Tournament.IsEnrolled {
		t.Fatalf("expected the result to be marked as not enrolled")
	}
}

func TestWithdraw_NeverReopensFinishedTournament(t *testing.T) {
	finished := openTournament(1, 1, testToday.AddDays(-5))
	finished.Status = models.TournamentFinished
	f := newTournamentFixture(finished)
	_ = f.enrollments.Create(context.Background(), nil, 1, 7)

	result, err := f.svc.Withdraw(context.Background(), player(7), 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Tournament.Status != models.TournamentFinished {
		t.Fatalf("expected finished, got %s", result.Tournament.Status)
	}
	if got := f.repo.stored(1); got.Status != models.TournamentFinished {
		t.Fatalf("expected stored status untouched, got %s", got.Status)
	}
}

func TestWithdraw_NotEnrolled(t *testing.T) {
	f := newTournamentFixture(openTournament(1, 2, testToday.AddDays(10)))

	_, err := f.svc.Withdraw(context.Background(), player(7), 1)
	if !errors.Is(err, ErrNotEnrolled) || !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}
}

func TestGet_DerivesStatus(t *testing.T) {
	f := newTournamentFixture(openTournament(1, 4, testToday))

	got, err := f.svc.Get(context.Background(), nil, 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Status != models.TournamentClosed {
		t.Fatalf("expected a tournament starting today to read closed, got %s", got.Status)
	}
	if got.IsEnrolled != nil {
		t.Fatalf("expected no enrollment flag for anonymous viewers")
	}
}

func TestList_HidesEndedAndFiltersByDerivedStatus(t *testing.T) {
	ended := openTournament(3, 4, testToday.AddDays(-5))
	f := newTournamentFixture(
		openTournament(1, 4, testToday.AddDays(10)),
		openTournament(2, 4, testToday),
		ended,
	)
	ctx := context.Background()
	if _, err := f.svc.Enroll(ctx, player(7), 1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	all, err := f.svc.List(ctx, &models.Identity{UserID: 7}, TournamentFilter{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected ended tournaments to be hidden, got %d", len(all))
	}
	if all[0].IsEnrolled == nil || !*all[0].IsEnrolled {
		t.Fatalf("expected tournament 1 to be marked as enrolled")
	}
	if all[1].IsEnrolled == nil || *all[1].IsEnrolled {
		t.Fatalf("expected tournament 2 to be marked as not enrolled")
	}

	open, err := f.svc.List(ctx, nil, TournamentFilter{Status: models.TournamentOpen})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(open) != 1 || open[0].ID != 1 {
		t.Fatalf("expected only tournament 1 to be open, got %+v", open)
	}
}

func TestUpdate_FinishedTournamentIsImmutable(t *testing.T) {
	f := newTournamentFixture(openTournament(1, 4, testToday.AddDays(-3)))
	name := "Nuevo nombre"

	_, err := f.svc.Update(context.Background(), 1, models.TournamentPatch{Name: &name})
	if !errors.Is(err, ErrTournamentFinished) || !errors.Is(err, apperr.ErrImmutableState) {
		t.Fatalf("expected ErrTournamentFinished, got %v", err)
	}
	if err := f.svc.Delete(context.Background(), 1); err != nil {
		t.Fatalf("expected finished tournaments to stay deletable, got %v", err)
	}
}

func TestUpdate_RejectsEndBeforeStart(t *testing.T) {
	f := newTournamentFixture(openTournament(1, 4, testToday.AddDays(10)))
	end := testToday.AddDays(5)

	_, err := f.svc.Update(context.Background(), 1, models.TournamentPatch{EndDate: &end})
	if !errors.Is(err, apperr.ErrInvalidRange) {
		t.Fatalf("expected invalid range, got %v", err)
	}
}

func TestCreate_ValidatesDates(t *testing.T) {
	f := newTournamentFixture()
	input := CreateTournamentInput{
		Name:     "Liga de invierno",
		Sport:    "tenis",
		Province: "Madrid",
		City:     "Madrid",
		Capacity: 16,
	}

	if _, err := f.svc.Create(context.Background(), input); !errors.Is(err, ErrTournamentDatesRequired) {
		t.Fatalf("expected ErrTournamentDatesRequired, got %v", err)
	}

	input.StartDate = testToday.AddDays(10)
	input.EndDate = testToday.AddDays(9)
	if _, err := f.svc.Create(context.Background(), input); !errors.Is(err, ErrTournamentDates) {
		t.Fatalf("expected ErrTournamentDates, got %v", err)
	}

	input.EndDate = input.StartDate
	created, err := f.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.ID == 0 || created.Status != models.TournamentOpen || !created.Active {
		t.Fatalf("expected an active open tournament with an id, got %+v", created)
	}
}

func TestBracket_DrawsFromEnrollments(t *testing.T) {
	f := newTournamentFixture(openTournament(1, 8, testToday.AddDays(10)))
	ctx := context.Background()

	if _, err := f.svc.Bracket(ctx, 1, "", 0); !errors.Is(err, ErrNotEnoughEntrants) {
		t.Fatalf("expected ErrNotEnoughEntrants, got %v", err)
	}
	for _, id := range []int{7, 8, 9, 10} {
		if _, err := f.svc.Enroll(ctx, player(id), 1); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	view, err := f.svc.Bracket(ctx, 1, "", 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if view.Format != brackets.FormatSingleElimination {
		t.Fatalf("expected single elimination by default, got %s", view.Format)
	}
	if len(view.Entrants) != 4 || len(view.Rounds) != 2 {
		t.Fatalf("expected 4 entrants in 2 rounds, got %d and %d", len(view.Entrants), len(view.Rounds))
	}
	if view.Rounds[0].Name != "Semifinales" || view.Rounds[1].Name != "Final" {
		t.Fatalf("unexpected round names %q, %q", view.Rounds[0].Name, view.Rounds[1].Name)
	}

	league, err := f.svc.Bracket(ctx, 1, brackets.FormatRoundRobin, 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	matches := 0
	for _, r := range league.Rounds {
		matches += len(r.Matches)
	}
	if matches != 12 {
		t.Fatalf("expected 12 matches in a double round robin of 4, got %d", matches)
	}

	if _, err := f.svc.Bracket(ctx, 1, "swiss", 0); !errors.Is(err, ErrUnknownBracketFormat) {
		t.Fatalf("expected ErrUnknownBracketFormat, got %v", err)
	}
}
