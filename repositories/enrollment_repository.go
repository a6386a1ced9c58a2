package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/sports-center/models"
)

var (
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrEnrollmentExists   = errors.New("user already enrolled in tournament")
)

type EnrollmentRepository interface {
	Exists(ctx context.Context, exec SQLExecutor, tournamentID, userID int) (bool, error)
	Count(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	Create(ctx context.Context, exec SQLExecutor, tournamentID, userID int) error
	Delete(ctx context.Context, exec SQLExecutor, tournamentID, userID int) error
	// EnrolledTournamentIDs returns which of the given tournaments the user joined.
	EnrolledTournamentIDs(ctx context.Context, userID int) (map[int]bool, error)
	ListAll(ctx context.Context) ([]models.Enrollment, error)
	// ListByTournament returns a tournament's entrants in enrollment order.
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Enrollment, error)
	Totals(ctx context.Context) ([]models.TournamentEnrollmentTotal, error)
}

type postgresEnrollmentRepository struct {
	db *sql.DB
}

func NewPostgresEnrollmentRepository(db *sql.DB) EnrollmentRepository {
	return &postgresEnrollmentRepository{db: db}
}

func (r *postgresEnrollmentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresEnrollmentRepository) Exists(ctx context.Context, exec SQLExecutor, tournamentID, userID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM enrollments WHERE tournament_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return exists, nil
}

func (r *postgresEnrollmentRepository) Count(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	var n int
	err := r.getExecutor(exec).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE tournament_id = $1`, tournamentID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count enrollments: %w", err)
	}
	return n, nil
}

func (r *postgresEnrollmentRepository) Create(ctx context.Context, exec SQLExecutor, tournamentID, userID int) error {
	_, err := r.getExecutor(exec).ExecContext(ctx,
		`INSERT INTO enrollments (tournament_id, user_id) VALUES ($1, $2)`, tournamentID, userID,
	)
	if err != nil {
		if pqErr, ok := pqCode(err); ok {
			switch pqErr.Code {
			case pqUniqueViolation:
				return ErrEnrollmentExists
			case pqForeignKeyViolation:
				return ErrTournamentNotFound
			}
		}
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func (r *postgresEnrollmentRepository) Delete(ctx context.Context, exec SQLExecutor, tournamentID, userID int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`DELETE FROM enrollments WHERE tournament_id = $1 AND user_id = $2`, tournamentID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}
	return checkAffectedRows(result, ErrEnrollmentNotFound)
}

func (r *postgresEnrollmentRepository) EnrolledTournamentIDs(ctx context.Context, userID int) (map[int]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT tournament_id FROM enrollments WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func (r *postgresEnrollmentRepository) ListAll(ctx context.Context) ([]models.Enrollment, error) {
	return r.list(ctx, "", "ORDER BY e.created_at DESC")
}

func (r *postgresEnrollmentRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Enrollment, error) {
	return r.list(ctx, "WHERE e.tournament_id = $1", "ORDER BY e.created_at ASC, e.user_id ASC", tournamentID)
}

func (r *postgresEnrollmentRepository) list(ctx context.Context, where, order string, args ...interface{}) ([]models.Enrollment, error) {
	query := `
		SELECT e.tournament_id, e.user_id, e.created_at, u.name, u.email, t.name
		FROM enrollments e
		JOIN users u ON u.id = e.user_id
		JOIN tournaments t ON t.id = e.tournament_id
		` + where + `
		` + order

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enrollments := make([]models.Enrollment, 0)
	for rows.Next() {
		var e models.Enrollment
		if err := rows.Scan(&e.TournamentID, &e.UserID, &e.CreatedAt, &e.UserName, &e.UserEmail, &e.TournamentName); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

func (r *postgresEnrollmentRepository) Totals(ctx context.Context) ([]models.TournamentEnrollmentTotal, error) {
	query := `
		SELECT t.id, t.name, COUNT(e.user_id), t.capacity
		FROM tournaments t
		LEFT JOIN enrollments e ON e.tournament_id = t.id
		GROUP BY t.id, t.name, t.capacity
		ORDER BY t.start_date ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make([]models.TournamentEnrollmentTotal, 0)
	for rows.Next() {
		var t models.TournamentEnrollmentTotal
		if err := rows.Scan(&t.TournamentID, &t.Name, &t.Enrolled, &t.Capacity); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
