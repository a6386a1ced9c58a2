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
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("user email conflict")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// SetAPIToken replaces the user's opaque token; nil clears it.
	SetAPIToken(ctx context.Context, userID int, token *string) error
	UpdateMembership(ctx context.Context, user *models.User) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, name, email, password_hash, api_token, is_admin, is_member,
	membership_start, membership_end, subscription_cancelled, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var start, end *schedule.Date
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.APIToken, &u.IsAdmin, &u.IsMember,
		&start, &end, &u.SubscriptionCancelled, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.MembershipStart, u.MembershipEnd = start, end
	return u, nil
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, is_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.IsAdmin,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if pqErr, ok := pqCode(err); ok && pqErr.Code == pqUniqueViolation && pqErr.Constraint == "users_email_key" {
			return ErrUserEmailConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
}

func (r *postgresUserRepository) SetAPIToken(ctx context.Context, userID int, token *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET api_token = $1 WHERE id = $2`, token, userID)
	if err != nil {
		return fmt.Errorf("failed to update api token: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdateMembership(ctx context.Context, u *models.User) error {
	query := `
		UPDATE users SET
			is_member = $1,
			membership_start = $2,
			membership_end = $3,
			subscription_cancelled = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		u.IsMember, u.MembershipStart, u.MembershipEnd, u.SubscriptionCancelled, u.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}
