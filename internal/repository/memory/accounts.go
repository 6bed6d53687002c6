package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/repository"
)

type accountRepo struct{ *repos }

func (r *accountRepo) Create(ctx context.Context, account *model.Account) error {
	for _, existing := range r.st.accounts {
		if strings.EqualFold(existing.Email, account.Email) {
			return fmt.Errorf("create account: email %q: %w", account.Email, repository.ErrConflict)
		}
	}

	ensureID(&account.ID)
	account.CreatedAt = r.now()
	account.UpdatedAt = account.CreatedAt
	r.st.accounts[account.ID] = *account
	return nil
}

func (r *accountRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	account, ok := r.st.accounts[id]
	if !ok {
		return nil, nil
	}
	return &account, nil
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	for _, account := range r.st.accounts {
		if strings.EqualFold(account.Email, email) {
			return &account, nil
		}
	}
	return nil, nil
}

func (r *accountRepo) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	account, ok := r.st.accounts[id]
	if !ok {
		return fmt.Errorf("update account role: %w", repository.ErrNotFound)
	}
	account.Role = role
	account.UpdatedAt = r.now()
	r.st.accounts[id] = account
	return nil
}
