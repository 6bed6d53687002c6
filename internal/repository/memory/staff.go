package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/repository"
)

type staffRepo struct{ *repos }

func (r *staffRepo) Create(ctx context.Context, staff *model.Staff) error {
	for _, existing := range r.st.staff {
		if strings.EqualFold(existing.Email, staff.Email) {
			return fmt.Errorf("create staff: email %q: %w", staff.Email, repository.ErrConflict)
		}
	}

	ensureID(&staff.ID)
	staff.CreatedAt = r.now()
	staff.UpdatedAt = staff.CreatedAt

	stored := *staff
	stored.Specialties = cloneStrings(staff.Specialties)
	r.st.staff[staff.ID] = stored
	return nil
}

func (r *staffRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	staff, ok := r.st.staff[id]
	if !ok {
		return nil, nil
	}
	staff.Specialties = cloneStrings(staff.Specialties)
	return &staff, nil
}

func (r *staffRepo) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	for _, staff := range r.st.staff {
		if strings.EqualFold(staff.Email, email) {
			staff.Specialties = cloneStrings(staff.Specialties)
			return &staff, nil
		}
	}
	return nil, nil
}

func (r *staffRepo) List(ctx context.Context) ([]*model.Staff, error) {
	members := make([]*model.Staff, 0, len(r.st.staff))
	for _, staff := range r.st.staff {
		staff := staff
		staff.Specialties = cloneStrings(staff.Specialties)
		members = append(members, &staff)
	}
	sortByCreated(members, func(s *model.Staff) time.Time { return s.CreatedAt })
	return members, nil
}

func (r *staffRepo) Update(ctx context.Context, staff *model.Staff) error {
	existing, ok := r.st.staff[staff.ID]
	if !ok {
		return fmt.Errorf("update staff: %w", repository.ErrNotFound)
	}
	for id, other := range r.st.staff {
		if id != staff.ID && strings.EqualFold(other.Email, staff.Email) {
			return fmt.Errorf("update staff: email %q: %w", staff.Email, repository.ErrConflict)
		}
	}

	staff.CreatedAt = existing.CreatedAt
	staff.UpdatedAt = r.now()
	stored := *staff
	stored.Specialties = cloneStrings(staff.Specialties)
	r.st.staff[staff.ID] = stored
	return nil
}

func (r *staffRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.st.staff[id]; !ok {
		return fmt.Errorf("delete staff: %w", repository.ErrNotFound)
	}
	delete(r.st.staff, id)
	return nil
}
