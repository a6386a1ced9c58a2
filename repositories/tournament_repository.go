package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/sports-center/models"
	"github.com/Dosada05/sports-center/schedule"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
)

type ListTournamentsFilter struct {
	Query    string
	Sport    string
	Province string
	// OnlyActive restricts to active tournaments.
	OnlyActive bool
	// NotEndedBefore drops tournaments whose end date is earlier than this day.
	NotEndedBefore *schedule.Date
	// EnrolledUserID keeps tournaments the user is enrolled in.
	EnrolledUserID *int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	// GetByIDForUpdate locks the tournament row until the surrounding
	// transaction ends.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	// List returns the tournaments along with their live enrollment counts.
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	UpdateStatusAndCount(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus, enrolled int) error
	Delete(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `t.id, t.name, t.sport, t.category, t.start_date, t.end_date, t.province, t.city,
	t.venue, t.description, t.capacity, t.enrolled, t.status, t.active, t.created_at`

func scanTournament(row interface{ Scan(...interface{}) error }, t *models.Tournament, extra ...interface{}) error {
	dest := []interface{}{
		&t.ID, &t.Name, &t.Sport, &t.Category, &t.StartDate, &t.EndDate, &t.Province, &t.City,
		&t.Venue, &t.Description, &t.Capacity, &t.Enrolled, &t.Status, &t.Active, &t.CreatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			name, sport, category, start_date, end_date, province, city,
			venue, description, capacity, enrolled, status, active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name, t.Sport, t.Category, t.StartDate, t.EndDate, t.Province, t.City,
		t.Venue, t.Description, t.Capacity, t.Enrolled, t.Status, t.Active,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	return r.get(ctx, r.db, `SELECT `+tournamentColumns+` FROM tournaments t WHERE t.id = $1`, id)
}

func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	return r.get(ctx, r.getExecutor(exec), `SELECT `+tournamentColumns+` FROM tournaments t WHERE t.id = $1 FOR UPDATE`, id)
}

func (r *postgresTournamentRepository) get(ctx context.Context, executor SQLExecutor, query string, id int) (*models.Tournament, error) {
	t := &models.Tournament{}
	if err := scanTournament(executor.QueryRowContext(ctx, query, id), t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + `,
			(SELECT COUNT(*) FROM enrollments e WHERE e.tournament_id = t.id) AS live_enrolled
		FROM tournaments t
		WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.OnlyActive {
		query += " AND t.active = TRUE"
	}
	if filter.NotEndedBefore != nil {
		query += fmt.Sprintf(" AND t.end_date >= $%d", argID)
		args = append(args, *filter.NotEndedBefore)
		argID++
	}
	if filter.Query != "" {
		query += fmt.Sprintf(" AND (t.name ILIKE $%d OR t.city ILIKE $%d OR t.venue ILIKE $%d)", argID, argID, argID)
		args = append(args, "%"+filter.Query+"%")
		argID++
	}
	if filter.Sport != "" {
		query += fmt.Sprintf(" AND t.sport = $%d", argID)
		args = append(args, filter.Sport)
		argID++
	}
	if filter.Province != "" {
		query += fmt.Sprintf(" AND t.province = $%d", argID)
		args = append(args, filter.Province)
		argID++
	}
	if filter.EnrolledUserID != nil {
		query += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM enrollments e WHERE e.tournament_id = t.id AND e.user_id = $%d)", argID)
		args = append(args, *filter.EnrolledUserID)
	}

	query += " ORDER BY t.start_date ASC, t.province ASC, t.city ASC, t.id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		var live int
		if err := scanTournament(rows, &t, &live); err != nil {
			return nil, err
		}
		t.Enrolled = live
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			name = $1,
			sport = $2,
			category = $3,
			start_date = $4,
			end_date = $5,
			province = $6,
			city = $7,
			venue = $8,
			description = $9,
			capacity = $10,
			status = $11,
			active = $12
		WHERE id = $13`

	result, err := r.db.ExecContext(ctx, query,
		t.Name, t.Sport, t.Category, t.StartDate, t.EndDate, t.Province, t.City,
		t.Venue, t.Description, t.Capacity, t.Status, t.Active,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tournament: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatusAndCount(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus, enrolled int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1, enrolled = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, status, enrolled, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament status: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
