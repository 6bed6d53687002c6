package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/repository"
)

type classRepo struct{ *repos }

func (r *classRepo) Create(ctx context.Context, class *model.ClassOffering) error {
	ensureID(&class.ID)
	class.CreatedAt = r.now()
	class.UpdatedAt = class.CreatedAt
	r.st.classes[class.ID] = *class
	return nil
}

func (r *classRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.ClassOffering, error) {
	class, ok := r.st.classes[id]
	if !ok {
		return nil, nil
	}
	return &class, nil
}

func (r *classRepo) List(ctx context.Context, filter repository.ClassFilter) ([]*model.ClassOffering, error) {
	classes := make([]*model.ClassOffering, 0, len(r.st.classes))
	for _, class := range r.st.classes {
		if filter.Difficulty != nil && class.Difficulty != *filter.Difficulty {
			continue
		}
		if filter.MinPrice != nil && class.Price.LessThan(*filter.MinPrice) {
			continue
		}
		if filter.MaxPrice != nil && class.Price.GreaterThan(*filter.MaxPrice) {
			continue
		}
		class := class
		classes = append(classes, &class)
	}
	sortByCreated(classes, func(c *model.ClassOffering) time.Time { return c.CreatedAt })
	return classes, nil
}

func (r *classRepo) Update(ctx context.Context, class *model.ClassOffering) error {
	existing, ok := r.st.classes[class.ID]
	if !ok {
		return fmt.Errorf("update class: %w", repository.ErrNotFound)
	}
	class.CreatedAt = existing.CreatedAt
	class.UpdatedAt = r.now()
	r.st.classes[class.ID] = *class
	return nil
}

func (r *classRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.st.classes[id]; !ok {
		return fmt.Errorf("delete class: %w", repository.ErrNotFound)
	}
	delete(r.st.classes, id)
	return nil
}
