package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/sports-center/models"
)

var (
	ErrFacilityNotFound = errors.New("facility not found")
)

type ListFacilitiesFilter struct {
	Query      string
	Category   *models.FacilityCategory
	OnlyActive bool
}

type FacilityRepository interface {
	Create(ctx context.Context, facility *models.Facility) error
	GetByID(ctx context.Context, id int) (*models.Facility, error)
	List(ctx context.Context, filter ListFacilitiesFilter) ([]models.Facility, error)
	Update(ctx context.Context, facility *models.Facility) error
	UpdateImageKey(ctx context.Context, facilityID int, imageKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresFacilityRepository struct {
	db *sql.DB
}

func NewPostgresFacilityRepository(db *sql.DB) FacilityRepository {
	return &postgresFacilityRepository{db: db}
}

const facilityColumns = `id, name, category, description, location, hourly_price, image_key, active, created_at`

func scanFacility(row interface{ Scan(...interface{}) error }, f *models.Facility) error {
	return row.Scan(
		&f.ID, &f.Name, &f.Category, &f.Description, &f.Location,
		&f.HourlyPrice, &f.ImageKey, &f.Active, &f.CreatedAt,
	)
}

func (r *postgresFacilityRepository) Create(ctx context.Context, f *models.Facility) error {
	query := `
		INSERT INTO facilities (name, category, description, location, hourly_price, image_key, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		f.Name, f.Category, f.Description, f.Location, f.HourlyPrice, f.ImageKey, f.Active,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create facility: %w", err)
	}
	return nil
}

func (r *postgresFacilityRepository) GetByID(ctx context.Context, id int) (*models.Facility, error) {
	query := `SELECT ` + facilityColumns + ` FROM facilities WHERE id = $1`

	f := &models.Facility{}
	if err := scanFacility(r.db.QueryRowContext(ctx, query, id), f); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFacilityNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *postgresFacilityRepository) List(ctx context.Context, filter ListFacilitiesFilter) ([]models.Facility, error) {
	query := `SELECT ` + facilityColumns + ` FROM facilities WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.OnlyActive {
		query += " AND active = TRUE"
	}
	if filter.Query != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d OR location ILIKE $%d)", argID, argID, argID)
		args = append(args, "%"+filter.Query+"%")
		argID++
	}
	if filter.Category != nil {
		query += fmt.Sprintf(" AND category = $%d", argID)
		args = append(args, *filter.Category)
	}
	query += " ORDER BY category ASC, name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	facilities := make([]models.Facility, 0)
	for rows.Next() {
		var f models.Facility
		if err := scanFacility(rows, &f); err != nil {
			return nil, err
		}
		facilities = append(facilities, f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return facilities, nil
}

func (r *postgresFacilityRepository) Update(ctx context.Context, f *models.Facility) error {
	query := `
		UPDATE facilities SET
			name = $1,
			category = $2,
			description = $3,
			location = $4,
			hourly_price = $5,
			active = $6
		WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		f.Name, f.Category, f.Description, f.Location, f.HourlyPrice, f.Active, f.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update facility: %w", err)
	}
	return checkAffectedRows(result, ErrFacilityNotFound)
}

func (r *postgresFacilityRepository) UpdateImageKey(ctx context.Context, facilityID int, imageKey *string) error {
	query := `UPDATE facilities SET image_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, imageKey, facilityID)
	if err != nil {
		return fmt.Errorf("failed to update facility image key: %w", err)
	}
	return checkAffectedRows(result, ErrFacilityNotFound)
}

func (r *postgresFacilityRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM facilities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete facility: %w", err)
	}
	return checkAffectedRows(result, ErrFacilityNotFound)
}
