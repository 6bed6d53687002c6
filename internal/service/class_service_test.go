package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/cooking_school/internal/model"
)

type fakeImages struct{ keys []string }

func (f *fakeImages) PresignUpload(_ context.Context, key, _ string) (string, string, error) {
	f.keys = append(f.keys, key)
	return "https://upload.example.com/" + key, "https://cdn.example.com/" + key, nil
}

func TestCreateClassValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.classes.Create(f.ctx, f.admin, ClassInput{
		Title: "Sushi", DurationMinutes: 0, Price: decimal.NewFromInt(100), MaxStudents: 4, Difficulty: model.DifficultyAdvanced,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "durationMinutes", verr.Field)

	_, err = f.classes.Create(f.ctx, f.admin, ClassInput{
		Title: "Sushi", DurationMinutes: 60, Price: decimal.NewFromInt(-1), MaxStudents: 4, Difficulty: model.DifficultyAdvanced,
	})
	assert.ErrorIs(t, err, ErrValidation)

	user := f.account(t, "guest@example.com", model.RoleUser)
	_, err = f.classes.Create(f.ctx, user, ClassInput{
		Title: "Sushi", DurationMinutes: 60, Price: decimal.NewFromInt(100), MaxStudents: 4, Difficulty: model.DifficultyAdvanced,
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestClassPriceKeepsCents(t *testing.T) {
	f := newFixture(t)

	class, err := f.classes.Create(f.ctx, f.admin, ClassInput{
		Title: "Sushi", DurationMinutes: 60, Price: decimal.RequireFromString("49.5"), MaxStudents: 4, Difficulty: model.DifficultyAdvanced,
	})
	require.NoError(t, err)

	got, err := f.classes.Get(f.ctx, class.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("49.50").Equal(got.Price))

	_, err = f.classes.Create(f.ctx, f.admin, ClassInput{
		Title: "Sushi", DurationMinutes: 60, Price: decimal.RequireFromString("49.999"), MaxStudents: 4, Difficulty: model.DifficultyAdvanced,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)
}

func TestGetClassListsSchedules(t *testing.T) {
	f := newFixture(t)
	chef := f.instructor(t, "chef@example.com")
	first := f.schedule(t, 4, chef.StaffID)

	class, err := f.classes.Get(f.ctx, first.ClassID)
	require.NoError(t, err)
	require.Len(t, class.Schedules, 1)

	session := class.Schedules[0]
	assert.Equal(t, first.ID, session.ID)
	assert.Equal(t, 4, session.MaxStudents)
	require.NotNil(t, session.Staff)
	assert.Equal(t, "chef@example.com", session.Staff.Email)
	assert.Nil(t, session.Class)

	other := f.class(t, "15", 6)
	empty, err := f.classes.Get(f.ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, empty.Schedules)
}

func TestListClassesFilters(t *testing.T) {
	f := newFixture(t)
	for _, in := range []ClassInput{
		{Title: "Bread", DurationMinutes: 60, Price: decimal.NewFromInt(20), MaxStudents: 6, Difficulty: model.DifficultyBeginner},
		{Title: "Croissants", DurationMinutes: 180, Price: decimal.NewFromInt(60), MaxStudents: 6, Difficulty: model.DifficultyAdvanced},
		{Title: "Dumplings", DurationMinutes: 90, Price: decimal.RequireFromString("39.90"), MaxStudents: 6, Difficulty: model.DifficultyIntermediate},
	} {
		_, err := f.classes.Create(f.ctx, f.admin, in)
		require.NoError(t, err)
	}

	advanced := model.DifficultyAdvanced
	got, err := f.classes.List(f.ctx, ClassListFilter{Difficulty: &advanced})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Croissants", got[0].Title)

	lo, hi := decimal.RequireFromString("25.50"), decimal.NewFromInt(60)
	got, err = f.classes.List(f.ctx, ClassListFilter{MinPrice: &lo, MaxPrice: &hi})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = f.classes.List(f.ctx, ClassListFilter{MinPrice: &hi, MaxPrice: &lo})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteClassWithSchedules(t *testing.T) {
	f := newFixture(t)
	schedule := f.schedule(t, 4, nil)

	err := f.classes.Delete(f.ctx, f.admin, schedule.ClassID)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, f.schedules.Delete(f.ctx, f.admin, schedule.ID))
	require.NoError(t, f.classes.Delete(f.ctx, f.admin, schedule.ClassID))

	_, err = f.classes.Get(f.ctx, schedule.ClassID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestImageUploadURL(t *testing.T) {
	f := newFixture(t)
	class := f.class(t, "10", 4)

	_, err := f.classes.ImageUploadURL(f.ctx, f.admin, class.ID, "image/png")
	assert.ErrorIs(t, err, ErrUnavailable)

	images := &fakeImages{}
	f.classes = NewClassService(f.store, images, zap.NewNop())

	_, err = f.classes.ImageUploadURL(f.ctx, f.admin, class.ID, "application/pdf")
	assert.ErrorIs(t, err, ErrValidation)

	upload, err := f.classes.ImageUploadURL(f.ctx, f.admin, class.ID, "image/png")
	require.NoError(t, err)
	require.Len(t, images.keys, 1)
	assert.Contains(t, upload.UploadURL, images.keys[0])

	got, err := f.classes.Get(f.ctx, class.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Image)
	assert.Equal(t, upload.ImageURL, *got.Image)
}
