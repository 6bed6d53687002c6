package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/repository"
)

type accountRepo struct{ base }

const accountColumns = `id, email, name, role, password_hash, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (*model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepo) Create(ctx context.Context, account *model.Account) error {
	ensureID(&account.ID)

	query := `
		INSERT INTO accounts (id, email, name, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		account.ID,
		account.Email,
		account.Name,
		account.Role,
		account.PasswordHash,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if isConstraint(err, uniqueViolation) {
			return fmt.Errorf("create account: email %q: %w", account.Email, repository.ErrConflict)
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *accountRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return account, nil
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE lower(email) = lower($1)`

	account, err := scanAccount(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return account, nil
}

func (r *accountRepo) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	query := `UPDATE accounts SET role = $2, updated_at = now() WHERE id = $1`

	affected, err := r.execAffected(ctx, query, id, role)
	if err != nil {
		return fmt.Errorf("update account role: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update account role: %w", repository.ErrNotFound)
	}
	return nil
}
