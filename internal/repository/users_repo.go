package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/aireap/aireap-auth/internal/domain"
)

// uniqueViolation is the Postgres error code raised when an insert collides
// with the users_email_key constraint.
const uniqueViolation = "23505"

// UsersRepository is the Postgres credential store. Email uniqueness is
// enforced by the relation itself, so concurrent inserts of the same address
// resolve to exactly one row and one ErrDuplicateEmail.
type UsersRepository struct {
	db *sql.DB
}

// NewUsersRepository creates a new users repository.
func NewUsersRepository(db *sql.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

const userColumns = `id, name, email, password_hash, login_type, google_id, picture, created_at, otp, otp_expiry, otp_used`

func scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.LoginType,
		&user.GoogleID, &user.Picture, &user.CreatedAt,
		&user.OTP, &user.OTPExpiry, &user.OTPUsed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a new user and assigns its ID and creation time.
func (r *UsersRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, login_type, google_id, picture, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.LoginType,
		user.GoogleID, user.Picture, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// FindByID retrieves a user by ID.
func (r *UsersRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// FindByEmail retrieves a user by email.
func (r *UsersRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// FindByEmailOrGoogleID retrieves a user matching either the email or the
// Google subject. This is the link-by-email policy: an email-type account
// whose address matches an incoming Google identity is considered the same
// person and becomes eligible for linking.
func (r *UsersRepository) FindByEmailOrGoogleID(ctx context.Context, email, googleID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR google_id = $2 LIMIT 1`
	return scanUser(r.db.QueryRowContext(ctx, query, email, googleID))
}

// FindByEmailAndOTP retrieves the user matching both the recovery email and
// the submitted code. No match reads as an invalid code.
func (r *UsersRepository) FindByEmailAndOTP(ctx context.Context, email, code string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND otp = $2 LIMIT 1`
	return scanUser(r.db.QueryRowContext(ctx, query, email, code))
}

// UpdatePasswordHash replaces the stored password hash.
func (r *UsersRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// LinkGoogle attaches a Google identity to the record with the given email,
// setting the picture and transitioning login_type to google. The transition
// is one-way; password login rejects non-email records afterwards.
func (r *UsersRepository) LinkGoogle(ctx context.Context, email, googleID, picture string) error {
	query := `UPDATE users SET google_id = $2, picture = $3, login_type = $4 WHERE email = $1`
	result, err := r.db.ExecContext(ctx, query, email, googleID, picture, domain.LoginTypeGoogle)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// SetOTP writes the OTP triple as one unit, replacing any outstanding code.
func (r *UsersRepository) SetOTP(ctx context.Context, email, code string, expiry time.Time) error {
	query := `UPDATE users SET otp = $2, otp_expiry = $3, otp_used = FALSE WHERE email = $1`
	result, err := r.db.ExecContext(ctx, query, email, code, expiry)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// MarkOTPUsed consumes the stored code. otp_used only ever moves false→true.
func (r *UsersRepository) MarkOTPUsed(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET otp_used = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// ClearOTP wipes the OTP triple after a completed password reset.
func (r *UsersRepository) ClearOTP(ctx context.Context, id int64) error {
	query := `UPDATE users SET otp = NULL, otp_expiry = NULL, otp_used = FALSE WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
