// Package lifecycle derives the effective status of reservations and
// tournaments from what is stored plus the current date.
package lifecycle

import (
	"github.com/Dosada05/sports-center/models"
	"github.com/Dosada05/sports-center/schedule"
)

// DeriveTournamentStatus computes the status every decision must use.
// enrolled must be the live count from the enrollment table.
func DeriveTournamentStatus(stored models.TournamentStatus, start, end schedule.Date, enrolled, capacity int, today schedule.Date) models.TournamentStatus {
	if end.Before(today) {
		return models.TournamentFinished
	}
	if stored == models.TournamentOpen && !start.After(today) {
		return models.TournamentClosed
	}
	if stored == models.TournamentOpen && enrolled >= capacity {
		return models.TournamentClosed
	}
	return stored
}

// EffectiveTournament returns t with Status replaced by the derived value
// and Enrolled set to the live count.
func EffectiveTournament(t models.Tournament, enrolled int, today schedule.Date) models.Tournament {
	t.Enrolled = enrolled
	t.Status = DeriveTournamentStatus(t.Status, t.StartDate, t.EndDate, enrolled, t.Capacity, today)
	return t
}

// RegistrationClosed reports whether the start date leaves no room to enroll.
// A tournament starting today no longer accepts enrollments.
func RegistrationClosed(start, today schedule.Date) bool {
	return !start.After(today)
}

// ShouldReopen reports whether a withdrawal frees the tournament again. Only
// tournaments closed for being full reopen; past ones never do.
func ShouldReopen(stored models.TournamentStatus, end schedule.Date, enrolled, capacity int, today schedule.Date) bool {
	return stored == models.TournamentClosed && enrolled < capacity && !end.Before(today)
}

// OpenForRegistration reports whether the date rules leave the tournament
// open. Capacity is left out so a full tournament still surfaces as full
// rather than as not open.
func OpenForRegistration(stored models.TournamentStatus, start, end, today schedule.Date) bool {
	return DeriveTournamentStatus(stored, start, end, 0, 1, today) == models.TournamentOpen
}
