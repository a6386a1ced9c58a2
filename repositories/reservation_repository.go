package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/sports-center/models"
	"github.com/Dosada05/sports-center/schedule"
	"github.com/lib/pq"
)

var (
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrReservationOverlap means the database refused a second active
	// reservation over the same facility slot.
	ErrReservationOverlap = errors.New("reservation overlaps an active reservation")
	// ErrReservationNotActive means the row is no longer pending or confirmed.
	ErrReservationNotActive = errors.New("reservation is not active")
)

type ReservationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, reservation *models.Reservation) error
	GetByID(ctx context.Context, id int) (*models.Reservation, error)
	// ListActiveByFacilityDate returns pending and confirmed reservations of a
	// facility on date, ordered by start time.
	ListActiveByFacilityDate(ctx context.Context, exec SQLExecutor, facilityID int, date schedule.Date) ([]models.Reservation, error)
	ListByUser(ctx context.Context, userID int) ([]models.Reservation, error)
	ListAll(ctx context.Context) ([]models.Reservation, error)
	HasActiveForFacility(ctx context.Context, facilityID int) (bool, error)
	// CancelActive cancels a pending or confirmed reservation. Any other
	// stored status yields ErrReservationNotActive.
	CancelActive(ctx context.Context, exec SQLExecutor, id int) error
	// MarkCompleted persists lazily observed completions. It only touches rows
	// still stored as confirmed.
	MarkCompleted(ctx context.Context, ids []int) error
	Delete(ctx context.Context, id int) error
}

type postgresReservationRepository struct {
	db *sql.DB
}

func NewPostgresReservationRepository(db *sql.DB) ReservationRepository {
	return &postgresReservationRepository{db: db}
}

func (r *postgresReservationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const reservationColumns = `r.id, r.facility_id, r.user_id, r.date, r.start_time, r.end_time, r.total_price, r.status, r.payment_id, r.created_at`

func scanReservation(row interface{ Scan(...interface{}) error }, res *models.Reservation, extra ...interface{}) error {
	dest := []interface{}{
		&res.ID, &res.FacilityID, &res.UserID, &res.Date, &res.StartTime, &res.EndTime,
		&res.TotalPrice, &res.Status, &res.PaymentID, &res.CreatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

func (r *postgresReservationRepository) Create(ctx context.Context, exec SQLExecutor, res *models.Reservation) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO reservations (facility_id, user_id, date, start_time, end_time, total_price, status, payment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		res.FacilityID, res.UserID, res.Date, res.StartTime, res.EndTime,
		res.TotalPrice, res.Status, res.PaymentID,
	).Scan(&res.ID, &res.CreatedAt)
	return r.handleReservationError(err)
}

func (r *postgresReservationRepository) GetByID(ctx context.Context, id int) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations r WHERE r.id = $1`

	res := &models.Reservation{}
	if err := scanReservation(r.db.QueryRowContext(ctx, query, id), res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

func (r *postgresReservationRepository) ListActiveByFacilityDate(ctx context.Context, exec SQLExecutor, facilityID int, date schedule.Date) ([]models.Reservation, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + reservationColumns + `
		FROM reservations r
		WHERE r.facility_id = $1 AND r.date = $2 AND r.status IN ('pending', 'confirmed')
		ORDER BY r.start_time ASC`

	rows, err := executor.QueryContext(ctx, query, facilityID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations for facility %d: %w", facilityID, err)
	}
	defer rows.Close()

	reservations := make([]models.Reservation, 0)
	for rows.Next() {
		var res models.Reservation
		if err := scanReservation(rows, &res); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

// listWithFacility loads reservations joined with a facility summary and,
// when the owner still exists, an owner summary.
func (r *postgresReservationRepository) listWithFacility(ctx context.Context, where string, args ...interface{}) ([]models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `, f.id, f.name, f.category, f.location, f.hourly_price, f.image_key,
			u.name, u.email
		FROM reservations r
		JOIN facilities f ON f.id = r.facility_id
		LEFT JOIN users u ON u.id = r.user_id
		` + where + `
		ORDER BY r.date DESC, r.start_time DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]models.Reservation, 0)
	for rows.Next() {
		var res models.Reservation
		f := &models.Facility{}
		var ownerName, ownerEmail sql.NullString
		if err := scanReservation(rows, &res,
			&f.ID, &f.Name, &f.Category, &f.Location, &f.HourlyPrice, &f.ImageKey,
			&ownerName, &ownerEmail,
		); err != nil {
			return nil, err
		}
		res.Facility = f
		if ownerName.Valid {
			res.User = &models.ReservationUser{Name: ownerName.String, Email: ownerEmail.String}
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func (r *postgresReservationRepository) ListByUser(ctx context.Context, userID int) ([]models.Reservation, error) {
	return r.listWithFacility(ctx, `WHERE r.user_id = $1`, userID)
}

func (r *postgresReservationRepository) ListAll(ctx context.Context) ([]models.Reservation, error) {
	return r.listWithFacility(ctx, ``)
}

func (r *postgresReservationRepository) HasActiveForFacility(ctx context.Context, facilityID int) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM reservations WHERE facility_id = $1 AND status IN ('pending', 'confirmed')
	)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, facilityID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active reservations: %w", err)
	}
	return exists, nil
}

func (r *postgresReservationRepository) CancelActive(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE reservations SET status = 'cancelled' WHERE id = $1 AND status IN ('pending', 'confirmed')`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}
	return checkAffectedRows(result, ErrReservationNotActive)
}

func (r *postgresReservationRepository) MarkCompleted(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE reservations SET status = 'completed' WHERE id = ANY($1) AND status = 'confirmed'`
	if _, err := r.db.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to mark reservations completed: %w", err)
	}
	return nil
}

func (r *postgresReservationRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	return checkAffectedRows(result, ErrReservationNotFound)
}

func (r *postgresReservationRepository) handleReservationError(err error) error {
	if err == nil {
		return nil
	}
	if isOverlapViolation(err) {
		return ErrReservationOverlap
	}
	if pqErr, ok := pqCode(err); ok && pqErr.Code == pqForeignKeyViolation {
		return ErrFacilityNotFound
	}
	return err
}
