package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripdesk/crm-backend/internal/domain"
)

type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	FindByUserID(ctx context.Context, userID string) (*domain.Identity, error)
	UpdateProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest, logoURL *string) (*domain.Identity, error)
	SetResetToken(ctx context.Context, userID, tokenHash string, expires time.Time) error
	FindByResetToken(ctx context.Context, tokenHash string) (*domain.Identity, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateStatus(ctx context.Context, userID, status string) (*domain.Identity, error)
	IncrementLoginCount(ctx context.Context, userID string) error
	Touch(ctx context.Context, userID string) error
	List(ctx context.Context) ([]domain.Identity, error)
}

type identityRepository struct {
	pool *pgxpool.Pool
}

func NewIdentityRepository(pool *pgxpool.Pool) IdentityRepository {
	return &identityRepository{pool: pool}
}

const identityCols = `id, user_id, email, password_hash, logo, name, address, gender, designation,
	tagline, title, about, company_name, mobile, status, login_count,
	reset_token_hash, reset_token_expires, created_at, updated_at`

func scanIdentity(row pgx.Row) (*domain.Identity, error) {
	var u domain.Identity
	err := row.Scan(
		&u.ID, &u.UserID, &u.Email, &u.PasswordHash, &u.Logo, &u.Name, &u.Address, &u.Gender,
		&u.Designation, &u.Tagline, &u.Title, &u.About, &u.CompanyName, &u.Mobile, &u.Status,
		&u.LoginCount, &u.ResetTokenHash, &u.ResetTokenExpires, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *identityRepository) Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	const q = `
		INSERT INTO identities (user_id, email, password_hash, logo, name, address, gender,
			designation, tagline, title, about, company_name, mobile, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + identityCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanIdentity(r.pool.QueryRow(ctx, q,
		identity.UserID, identity.Email, identity.PasswordHash, identity.Logo, identity.Name,
		identity.Address, identity.Gender, identity.Designation, identity.Tagline, identity.Title,
		identity.About, identity.CompanyName, identity.Mobile, identity.Status,
	))
}

func (r *identityRepository) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	const q = `SELECT ` + identityCols + ` FROM identities WHERE email = lower($1)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanIdentity(r.pool.QueryRow(ctx, q, email))
}

func (r *identityRepository) FindByUserID(ctx context.Context, userID string) (*domain.Identity, error) {
	const q = `SELECT ` + identityCols + ` FROM identities WHERE user_id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanIdentity(r.pool.QueryRow(ctx, q, userID))
}

func (r *identityRepository) UpdateProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest, logoURL *string) (*domain.Identity, error) {
	const q = `
		UPDATE identities
		SET
			logo = COALESCE($2, logo),
			name = COALESCE($3, name),
			email = COALESCE($4, email),
			address = COALESCE($5, address),
			gender = COALESCE($6, gender),
			designation = COALESCE($7, designation),
			tagline = COALESCE($8, tagline),
			title = COALESCE($9, title),
			about = COALESCE($10, about),
			company_name = COALESCE($11, company_name),
			mobile = COALESCE($12, mobile),
			updated_at = now()
		WHERE user_id = $1
		RETURNING ` + identityCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanIdentity(r.pool.QueryRow(ctx, q, userID,
		logoURL, req.Name, req.Email, req.Address, req.Gender, req.Designation,
		req.Tagline, req.Title, req.About, req.CompanyName, req.Mobile,
	))
}

func (r *identityRepository) SetResetToken(ctx context.Context, userID, tokenHash string, expires time.Time) error {
	const q = `
		UPDATE identities
		SET reset_token_hash = $2, reset_token_expires = $3, updated_at = now()
		WHERE user_id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, userID, tokenHash, expires)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *identityRepository) FindByResetToken(ctx context.Context, tokenHash string) (*domain.Identity, error) {
	const q = `SELECT ` + identityCols + `
		FROM identities
		WHERE reset_token_hash = $1 AND reset_token_expires > now()`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanIdentity(r.pool.QueryRow(ctx, q, tokenHash))
}

func (r *identityRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	const q = `
		UPDATE identities
		SET password_hash = $2, reset_token_hash = '', reset_token_expires = NULL, updated_at = now()
		WHERE user_id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, userID, passwordHash)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *identityRepository) UpdateStatus(ctx context.Context, userID, status string) (*domain.Identity, error) {
	const q = `
		UPDATE identities
		SET status = $2, updated_at = now()
		WHERE user_id = $1
		RETURNING ` + identityCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanIdentity(r.pool.QueryRow(ctx, q, userID, status))
}

func (r *identityRepository) IncrementLoginCount(ctx context.Context, userID string) error {
	const q = `UPDATE identities SET login_count = login_count + 1 WHERE user_id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, userID)
	return err
}

func (r *identityRepository) Touch(ctx context.Context, userID string) error {
	const q = `UPDATE identities SET updated_at = now() WHERE user_id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *identityRepository) List(ctx context.Context) ([]domain.Identity, error) {
	const q = `SELECT ` + identityCols + ` FROM identities ORDER BY created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var identities []domain.Identity
	for rows.Next() {
		u, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		identities = append(identities, *u)
	}
	return identities, rows.Err()
}
