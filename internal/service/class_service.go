package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/policy"
	"github.com/Freeeeeet/cooking_school/internal/repository"
)

// ImageStore hands out direct upload URLs for class images.
type ImageStore interface {
	PresignUpload(ctx context.Context, key, contentType string) (uploadURL, publicURL string, err error)
}

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type ClassService struct {
	store  repository.Store
	images ImageStore
	logger *zap.Logger
}

// NewClassService builds the service. images may be nil when uploads are not configured.
func NewClassService(store repository.Store, images ImageStore, logger *zap.Logger) *ClassService {
	return &ClassService{store: store, images: images, logger: logger}
}

type ClassInput struct {
	Title           string
	Description     string
	DurationMinutes int
	Price           decimal.Decimal
	MaxStudents     int
	Difficulty      model.Difficulty
	Image           *string
}

func (in ClassInput) apply(c *model.ClassOffering) {
	c.Title = strings.TrimSpace(in.Title)
	c.Description = in.Description
	c.DurationMinutes = in.DurationMinutes
	c.Price = in.Price
	c.MaxStudents = in.MaxStudents
	c.Difficulty = in.Difficulty
	c.Image = in.Image
}

func (s *ClassService) Create(ctx context.Context, actor Actor, in ClassInput) (*model.ClassOffering, error) {
	if err := actor.require(policy.ClassManage); err != nil {
		return nil, err
	}

	class := &model.ClassOffering{ID: uuid.New()}
	in.apply(class)
	if err := class.Validate(); err != nil {
		return nil, invalidModel(err)
	}

	err := s.store.Tx(ctx, func(r repository.Repositories) error {
		return r.Classes().Create(ctx, class)
	})
	if err != nil {
		return nil, fmt.Errorf("create class: %w", err)
	}

	s.logger.Info("Class created",
		zap.String("class_id", class.ID.String()),
		zap.String("title", class.Title),
		zap.Stringer("price", class.Price),
	)
	return class, nil
}

type ClassListFilter = repository.ClassFilter

func (s *ClassService) List(ctx context.Context, filter ClassListFilter) ([]*model.ClassOffering, error) {
	if filter.Difficulty != nil && !filter.Difficulty.Valid() {
		return nil, invalid("difficulty", "must be BEGINNER, INTERMEDIATE or ADVANCED")
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, invalid("minPrice", "must not exceed maxPrice")
	}

	var classes []*model.ClassOffering
	err := s.store.Read(ctx, func(r repository.Repositories) error {
		var err error
		classes, err = r.Classes().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// Get returns the class together with its schedules, so a customer can pick
// the session to book from the class page.
func (s *ClassService) Get(ctx context.Context, id uuid.UUID) (*model.ClassOffering, error) {
	var class *model.ClassOffering
	err := s.store.Read(ctx, func(r repository.Repositories) error {
		var err error
		class, err = r.Classes().GetByID(ctx, id)
		if err != nil || class == nil {
			return err
		}

		class.Schedules, err = r.Schedules().List(ctx, repository.ScheduleFilter{ClassID: &id})
		if err != nil {
			return fmt.Errorf("list class schedules: %w", err)
		}
		if err := attachScheduleDetails(ctx, r, class.Schedules, false); err != nil {
			return err
		}
		for _, schedule := range class.Schedules {
			schedule.Class = nil
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get class: %w", err)
	}
	if class == nil {
		return nil, notFound("class", id)
	}
	return class, nil
}

// Update edits the template. Existing schedules keep their own capacity and
// existing bookings keep the price they were made at.
func (s *ClassService) Update(ctx context.Context, actor Actor, id uuid.UUID, in ClassInput) (*model.ClassOffering, error) {
	if err := actor.require(policy.ClassManage); err != nil {
		return nil, err
	}

	var class *model.ClassOffering
	err := s.store.Tx(ctx, func(r repository.Repositories) error {
		var err error
		class, err = r.Classes().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get class: %w", err)
		}
		if class == nil {
			return notFound("class", id)
		}

		if in.Image == nil {
			in.Image = class.Image
		}
		in.apply(class)
		if err := class.Validate(); err != nil {
			return invalidModel(err)
		}
		return r.Classes().Update(ctx, class)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Class updated", zap.String("class_id", id.String()))
	return class, nil
}

func (s *ClassService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := actor.require(policy.ClassManage); err != nil {
		return err
	}

	err := s.store.Tx(ctx, func(r repository.Repositories) error {
		count, err := r.Schedules().CountByClass(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("class has %d schedules: %w", count, ErrConflict)
		}

		if err := r.Classes().Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("class", id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Class deleted", zap.String("class_id", id.String()))
	return nil
}

type ImageUpload struct {
	UploadURL string    `json:"uploadUrl"`
	ImageURL  string    `json:"imageUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ImageUploadPeriod is how long a presigned upload URL stays valid.
const ImageUploadPeriod = 15 * time.Minute

// ImageUploadURL reserves an object key for a class image, points the class
// at it and returns the URL the client uploads to.
func (s *ClassService) ImageUploadURL(ctx context.Context, actor Actor, id uuid.UUID, contentType string) (*ImageUpload, error) {
	if err := actor.require(policy.ClassManage); err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, fmt.Errorf("image uploads: %w", ErrUnavailable)
	}

	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, invalid("contentType", "must be image/jpeg, image/png or image/webp")
	}

	key := fmt.Sprintf("classes/%s/%s.%s", id, uuid.NewString(), ext)
	upload := &ImageUpload{ExpiresAt: time.Now().Add(ImageUploadPeriod)}

	err := s.store.Tx(ctx, func(r repository.Repositories) error {
		class, err := r.Classes().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get class: %w", err)
		}
		if class == nil {
			return notFound("class", id)
		}

		upload.UploadURL, upload.ImageURL, err = s.images.PresignUpload(ctx, key, contentType)
		if err != nil {
			return fmt.Errorf("presign image upload: %w", err)
		}

		class.Image = &upload.ImageURL
		return r.Classes().Update(ctx, class)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Class image upload issued",
		zap.String("class_id", id.String()),
		zap.String("key", key),
	)
	return upload, nil
}
