package repositories

import (
	"context"
	"database/sql"

	"github.com/Dosada05/sports-center/models"
	"github.com/Dosada05/sports-center/schedule"
)

// StatsRepository runs the aggregate queries of the admin dashboard. Only
// confirmed reservations count as income.
type StatsRepository interface {
	ConfirmedTotals(ctx context.Context) (count int, revenue models.Money, err error)
	RevenuePerDay(ctx context.Context, since schedule.Date) ([]models.DailyRevenue, error)
	RevenuePerFacility(ctx context.Context) ([]models.FacilityRevenue, error)
	RevenuePerMonth(ctx context.Context, since schedule.Date) ([]models.MonthlyRevenue, error)
}

type postgresStatsRepository struct {
	db *sql.DB
}

func NewPostgresStatsRepository(db *sql.DB) StatsRepository {
	return &postgresStatsRepository{db: db}
}

func (r *postgresStatsRepository) ConfirmedTotals(ctx context.Context) (int, models.Money, error) {
	var count int
	var revenue models.Money
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_price), 0)
		FROM reservations WHERE status = 'confirmed'`,
	).Scan(&count, &revenue)
	return count, revenue, err
}

func (r *postgresStatsRepository) RevenuePerDay(ctx context.Context, since schedule.Date) ([]models.DailyRevenue, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT TO_CHAR(date, 'YYYY-MM-DD'), COUNT(*), COALESCE(SUM(total_price), 0)
		FROM reservations
		WHERE status = 'confirmed' AND date >= $1
		GROUP BY date
		ORDER BY date ASC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.DailyRevenue, 0)
	for rows.Next() {
		var d models.DailyRevenue
		if err := rows.Scan(&d.Date, &d.Count, &d.Revenue); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *postgresStatsRepository) RevenuePerFacility(ctx context.Context) ([]models.FacilityRevenue, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT f.id, f.name, COUNT(r.id), COALESCE(SUM(r.total_price), 0)
		FROM facilities f
		LEFT JOIN reservations r ON r.facility_id = f.id AND r.status = 'confirmed'
		GROUP BY f.id, f.name
		ORDER BY 4 DESC, f.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.FacilityRevenue, 0)
	for rows.Next() {
		var f models.FacilityRevenue
		if err := rows.Scan(&f.FacilityID, &f.FacilityName, &f.Count, &f.Revenue); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *postgresStatsRepository) RevenuePerMonth(ctx context.Context, since schedule.Date) ([]models.MonthlyRevenue, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT TO_CHAR(DATE_TRUNC('month', date), 'YYYY-MM') AS month, COUNT(*), COALESCE(SUM(total_price), 0)
		FROM reservations
		WHERE status = 'confirmed' AND date >= $1
		GROUP BY month
		ORDER BY month ASC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.MonthlyRevenue, 0)
	for rows.Next() {
		var m models.MonthlyRevenue
		if err := rows.Scan(&m.Month, &m.Count, &m.Revenue); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
