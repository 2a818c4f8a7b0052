package repository

import (
	"context"
	"errors"
	"fmt"

	"photoshare/internal/apperr"
	"photoshare/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the PostgreSQL error code for a violated unique constraint.
const uniqueViolation = "23505"

// AccountRepository handles database operations for accounts
type AccountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates a new account. A duplicate handle surfaces as apperr.ErrConflict.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, handle, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query,
		account.ID, account.Handle, account.PasswordHash, account.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("handle %q taken: %w", account.Handle, apperr.ErrConflict)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `
		SELECT id, handle, password_hash, created_at
		FROM accounts
		WHERE id = $1
	`
	var account models.Account
	err := r.db.QueryRow(ctx, query, id).Scan(
		&account.ID, &account.Handle, &account.PasswordHash, &account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// GetByHandle retrieves an account by its unique handle
func (r *AccountRepository) GetByHandle(ctx context.Context, handle string) (*models.Account, error) {
	query := `
		SELECT id, handle, password_hash, created_at
		FROM accounts
		WHERE handle = $1
	`
	var account models.Account
	err := r.db.QueryRow(ctx, query, handle).Scan(
		&account.ID, &account.Handle, &account.PasswordHash, &account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account %q: %w", handle, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by handle: %w", err)
	}
	return &account, nil
}

// HandleExists checks if a handle is already registered
func (r *AccountRepository) HandleExists(ctx context.Context, handle string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE handle = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, handle).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check handle existence: %w", err)
	}
	return exists, nil
}
