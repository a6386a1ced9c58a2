package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/sports-center/brackets"
	"github.com/Dosada05/sports-center/events"
	"github.com/Dosada05/sports-center/lifecycle"
	"github.com/Dosada05/sports-center/models"
	"github.com/Dosada05/sports-center/realtime"
	"github.com/Dosada05/sports-center/repositories"
	"github.com/Dosada05/sports-center/schedule"
)

const (
	msgEnrolled  = "Inscripción realizada correctamente"
	msgWithdrawn = "Desinscripción realizada correctamente"
)

type TournamentService interface {
	// List returns active tournaments that have not ended yet. viewer may be
	// nil for anonymous callers.
	List(ctx context.Context, viewer *models.Identity, filter TournamentFilter) ([]models.Tournament, error)
	Get(ctx context.Context, viewer *models.Identity, tournamentID int) (*models.Tournament, error)
	ListMine(ctx context.Context, caller models.Identity) ([]models.Tournament, error)
	ListAll(ctx context.Context) ([]models.Tournament, error)
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	Update(ctx context.Context, tournamentID int, patch models.TournamentPatch) (*models.Tournament, error)
	Delete(ctx context.Context, tournamentID int) error
	Enroll(ctx context.Context, caller models.Identity, tournamentID int) (*EnrollmentResult, error)
	Withdraw(ctx context.Context, caller models.Identity, tournamentID int) (*EnrollmentResult, error)
	Bracket(ctx context.Context, tournamentID int, format string, legs int) (*BracketView, error)
}

type TournamentFilter struct {
	Query    string
	Sport    string
	Province string
	// Status filters on the derived status.
	Status models.TournamentStatus
}

type CreateTournamentInput struct {
	Name        string                  `json:"name" validate:"required,min=3,max=150"`
	Sport       string                  `json:"sport" validate:"required,min=2,max=60"`
	Category    *string                 `json:"category,omitempty" validate:"omitempty,max=60"`
	StartDate   schedule.Date           `json:"start_date"`
	EndDate     schedule.Date           `json:"end_date"`
	Province    string                  `json:"province" validate:"required,max=80"`
	City        string                  `json:"city" validate:"required,max=80"`
	Venue       *string                 `json:"venue,omitempty" validate:"omitempty,max=150"`
	Description string                  `json:"description" validate:"max=4000"`
	Capacity    int                     `json:"capacity" validate:"required,gt=0"`
	Status      models.TournamentStatus `json:"status,omitempty" validate:"omitempty,oneof=open closed finished"`
	Active      *bool                   `json:"active,omitempty"`
}

type EnrollmentResult struct {
	Tournament *models.Tournament `json:"data"`
	Message    string             `json:"message"`
}

// BracketView is the draw of a tournament computed from its current entrants.
type BracketView struct {
	TournamentID   int                `json:"tournament_id"`
	TournamentName string             `json:"tournament_name"`
	Format         string             `json:"format"`
	Entrants       []brackets.Entrant `json:"entrants"`
	Rounds         []brackets.Round   `json:"rounds"`
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	enrollmentRepo repositories.EnrollmentRepository
	tx             repositories.Transactor
	broadcaster    Broadcaster
	publisher      events.Publisher
	clock          Clock
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	enrollmentRepo repositories.EnrollmentRepository,
	tx repositories.Transactor,
	broadcaster Broadcaster,
	publisher events.Publisher,
	clock Clock,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		enrollmentRepo: enrollmentRepo,
		tx:             tx,
		broadcaster:    orNopBroadcaster(broadcaster),
		publisher:      orNopPublisher(publisher),
		clock:          clock,
		logger:         orDefaultLogger(logger),
	}
}

// derive replaces the stored status of every tournament with the effective
// one. Enrolled must already hold the live count.
func (s *tournamentService) derive(tournaments []models.Tournament) []models.Tournament {
	today := s.clock.Today()
	for i := range tournaments {
		tournaments[i] = lifecycle.EffectiveTournament(tournaments[i], tournaments[i].Enrolled, today)
	}
	return tournaments
}

func (s *tournamentService) markEnrolled(ctx context.Context, viewer *models.Identity, tournaments []models.Tournament) error {
	if viewer == nil {
		return nil
	}
	ids, err := s.enrollmentRepo.EnrolledTournamentIDs(ctx, viewer.UserID)
	if err != nil {
		return fmt.Errorf("failed to load enrollments of user %d: %w", viewer.UserID, err)
	}
	for i := range tournaments {
		enrolled := ids[tournaments[i].ID]
		tournaments[i].IsEnrolled = &enrolled
	}
	return nil
}

func (s *tournamentService) List(ctx context.Context, viewer *models.Identity, filter TournamentFilter) ([]models.Tournament, error) {
	today := s.clock.Today()
	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{
		Query:          strings.TrimSpace(filter.Query),
		Sport:          strings.TrimSpace(filter.Sport),
		Province:       strings.TrimSpace(filter.Province),
		OnlyActive:     true,
		NotEndedBefore: &today,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	tournaments = s.derive(tournaments)

	if filter.Status != "" {
		filtered := make([]models.Tournament, 0, len(tournaments))
		for _, t := range tournaments {
			if t.Status == filter.Status {
				filtered = append(filtered, t)
			}
		}
		tournaments = filtered
	}

	if err := s.markEnrolled(ctx, viewer, tournaments); err != nil {
		return nil, err
	}
	return tournaments, nil
}

// loadStored returns the tournament as stored along with its live
// enrollment count.
func (s *tournamentService) loadStored(ctx context.Context, tournamentID int) (*models.Tournament, int, error) {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	count, err := s.enrollmentRepo.Count(ctx, nil, tournamentID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count enrollments of tournament %d: %w", tournamentID, err)
	}
	return t, count, nil
}

func (s *tournamentService) Get(ctx context.Context, viewer *models.Identity, tournamentID int) (*models.Tournament, error) {
	stored, count, err := s.loadStored(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !stored.Active {
		return nil, ErrNotFound
	}
	effective := lifecycle.EffectiveTournament(*stored, count, s.clock.Today())
	t := &effective
	if viewer != nil {
		enrolled, err := s.enrollmentRepo.Exists(ctx, nil, t.ID, viewer.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to check enrollment: %w", err)
		}
		t.IsEnrolled = &enrolled
	}
	return t, nil
}

func (s *tournamentService) ListMine(ctx context.Context, caller models.Identity) ([]models.Tournament, error) {
	userID := caller.UserID
	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{
		OnlyActive:     true,
		EnrolledUserID: &userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments of user %d: %w", userID, err)
	}
	tournaments = s.derive(tournaments)
	enrolled := true
	for i := range tournaments {
		tournaments[i].IsEnrolled = &enrolled
	}
	return tournaments, nil
}

func (s *tournamentService) ListAll(ctx context.Context) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return s.derive(tournaments), nil
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, ErrTournamentDatesRequired
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, ErrTournamentDates
	}
	t := &models.Tournament{
		Name:        strings.TrimSpace(input.Name),
		Sport:       strings.TrimSpace(input.Sport),
		Category:    input.Category,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Province:    strings.TrimSpace(input.Province),
		City:        strings.TrimSpace(input.City),
		Venue:       input.Venue,
		Description: input.Description,
		Capacity:    input.Capacity,
		Status:      models.TournamentOpen,
		Active:      true,
	}
	if input.Status != "" {
		t.Status = input.Status
	}
	if input.Active != nil {
		t.Active = *input.Active
	}
	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	s.logger.InfoContext(ctx, "tournament created", slog.Int("tournament_id", t.ID), slog.String("name", t.Name))
	effective := lifecycle.EffectiveTournament(*t, 0, s.clock.Today())
	return &effective, nil
}

func (s *tournamentService) Update(ctx context.Context, tournamentID int, patch models.TournamentPatch) (*models.Tournament, error) {
	stored, count, err := s.loadStored(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	today := s.clock.Today()
	if lifecycle.DeriveTournamentStatus(stored.Status, stored.StartDate, stored.EndDate, count, stored.Capacity, today) == models.TournamentFinished {
		return nil, ErrTournamentFinished
	}

	patch.Apply(stored)
	if stored.EndDate.Before(stored.StartDate) {
		return nil, ErrTournamentDates
	}

	if err := s.tournamentRepo.Update(ctx, stored); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update tournament %d: %w", tournamentID, err)
	}
	effective := lifecycle.EffectiveTournament(*stored, count, today)
	return &effective, nil
}

func (s *tournamentService) Delete(ctx context.Context, tournamentID int) error {
	if err := s.tournamentRepo.Delete(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete tournament %d: %w", tournamentID, err)
	}
	s.logger.InfoContext(ctx, "tournament deleted", slog.Int("tournament_id", tournamentID))
	return nil
}

// lockActive loads the tournament row under FOR UPDATE and rejects missing
// or inactive tournaments.
func (s *tournamentService) lockActive(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to lock tournament %d: %w", tournamentID, err)
	}
	if !t.Active {
		return nil, ErrTournamentInactive
	}
	return t, nil
}

func (s *tournamentService) Enroll(ctx context.Context, caller models.Identity, tournamentID int) (*EnrollmentResult, error) {
	if caller.IsAdmin {
		return nil, ErrAdminCannotEnroll
	}
	today := s.clock.Today()

	var (
		result *models.Tournament
		full   bool
	)
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.lockActive(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if lifecycle.RegistrationClosed(t.StartDate, today) {
			return ErrEnrollmentClosed
		}
		if !lifecycle.OpenForRegistration(t.Status, t.StartDate, t.EndDate, today) {
			return ErrTournamentNotOpen
		}

		enrolled, err := s.enrollmentRepo.Exists(ctx, exec, t.ID, caller.UserID)
		if err != nil {
			return fmt.Errorf("failed to check enrollment: %w", err)
		}
		if enrolled {
			return ErrAlreadyEnrolled
		}

		count, err := s.enrollmentRepo.Count(ctx, exec, t.ID)
		if err != nil {
			return fmt.Errorf("failed to count enrollments: %w", err)
		}
		// Stored open but already full: reject and commit the closed status.
		if count >= t.Capacity {
			full = true
			return s.tournamentRepo.UpdateStatusAndCount(ctx, exec, t.ID, models.TournamentClosed, count)
		}

		if err := s.enrollmentRepo.Create(ctx, exec, t.ID, caller.UserID); err != nil {
			return err
		}
		count, err = s.enrollmentRepo.Count(ctx, exec, t.ID)
		if err != nil {
			return fmt.Errorf("failed to count enrollments: %w", err)
		}
		if count >= t.Capacity {
			t.Status = models.TournamentClosed
		}
		if err := s.tournamentRepo.UpdateStatusAndCount(ctx, exec, t.ID, t.Status, count); err != nil {
			return err
		}
		effective := lifecycle.EffectiveTournament(*t, count, today)
		result = &effective
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrEnrollmentExists):
			return nil, ErrAlreadyEnrolled
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if full {
		return nil, ErrTournamentFull
	}

	isEnrolled := true
	result.IsEnrolled = &isEnrolled
	s.logger.InfoContext(ctx, "user enrolled in tournament",
		slog.Int("tournament_id", result.ID),
		slog.Int("user_id", caller.UserID),
		slog.Int("enrolled", result.Enrolled),
	)
	s.enrollmentChanged(ctx, events.TournamentEnrolled, result, caller.UserID)
	return &EnrollmentResult{Tournament: result, Message: msgEnrolled}, nil
}

func (s *tournamentService) Withdraw(ctx context.Context, caller models.Identity, tournamentID int) (*EnrollmentResult, error) {
	today := s.clock.Today()

	var result *models.Tournament
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.lockActive(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		enrolled, err := s.enrollmentRepo.Exists(ctx, exec, t.ID, caller.UserID)
		if err != nil {
			return fmt.Errorf("failed to check enrollment: %w", err)
		}
		if !enrolled {
			return ErrNotEnrolled
		}
		if err := s.enrollmentRepo.Delete(ctx, exec, t.ID, caller.UserID); err != nil {
			return translate(err, repositories.ErrEnrollmentNotFound, ErrNotEnrolled)
		}

		count, err := s.enrollmentRepo.Count(ctx, exec, t.ID)
		if err != nil {
			return fmt.Errorf("failed to count enrollments: %w", err)
		}
		if lifecycle.ShouldReopen(t.Status, t.EndDate, count, t.Capacity, today) {
			t.Status = models.TournamentOpen
		}
		if err := s.tournamentRepo.UpdateStatusAndCount(ctx, exec, t.ID, t.Status, count); err != nil {
			return err
		}
		effective := lifecycle.EffectiveTournament(*t, count, today)
		result = &effective
		return nil
	})
	if err != nil {
		return nil, translate(err, repositories.ErrTournamentNotFound, ErrTournamentNotFound)
	}

	isEnrolled := false
	result.IsEnrolled = &isEnrolled
	s.logger.InfoContext(ctx, "user withdrew from tournament",
		slog.Int("tournament_id", result.ID),
		slog.Int("user_id", caller.UserID),
		slog.Int("enrolled", result.Enrolled),
	)
	s.enrollmentChanged(ctx, events.TournamentWithdrawn, result, caller.UserID)
	return &EnrollmentResult{Tournament: result, Message: msgWithdrawn}, nil
}

func (s *tournamentService) enrollmentChanged(ctx context.Context, key string, t *models.Tournament, userID int) {
	s.broadcaster.BroadcastToRoom(realtime.TournamentRoom(t.ID), realtime.Message{
		Type: realtime.TypeEnrollmentChanged,
		Payload: map[string]interface{}{
			"tournament_id": t.ID,
			"enrolled":      t.Enrolled,
			"capacity":      t.Capacity,
			"status":        t.Status,
		},
	})
	publish(ctx, s.publisher, s.logger, key, events.EnrollmentEvent{
		TournamentID: t.ID,
		UserID:       userID,
		Enrolled:     t.Enrolled,
		Capacity:     t.Capacity,
		Status:       string(t.Status),
		OccurredAt:   s.clock.now(),
	})
}

func (s *tournamentService) Bracket(ctx context.Context, tournamentID int, format string, legs int) (*BracketView, error) {
	generator, ok := brackets.ForFormat(format)
	if !ok {
		return nil, ErrUnknownBracketFormat
	}
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	if !t.Active {
		return nil, ErrTournamentNotFound
	}

	enrollments, err := s.enrollmentRepo.ListByTournament(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entrants of tournament %d: %w", t.ID, err)
	}
	if len(enrollments) < 2 {
		return nil, ErrNotEnoughEntrants
	}
	entrants := make([]brackets.Entrant, len(enrollments))
	for i, e := range enrollments {
		entrants[i] = brackets.Entrant{UserID: e.UserID, Name: e.UserName}
	}

	matches, err := generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
		TournamentID: t.ID,
		Entrants:     entrants,
		Legs:         legs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to draw tournament %d: %w", t.ID, err)
	}

	return &BracketView{
		TournamentID:   t.ID,
		TournamentName: t.Name,
		Format:         generator.GetName(),
		Entrants:       entrants,
		Rounds:         brackets.GroupRounds(matches, generator.GetName() == brackets.FormatSingleElimination),
	}, nil
}
