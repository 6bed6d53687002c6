package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaffCRUD(t *testing.T) {
	f := newFixture(t)

	staff, err := f.staff.Create(f.ctx, f.admin, StaffInput{
		Name: "Kenji", Email: "kenji@example.com", Specialties: []string{"ramen", "ramen", "gyoza"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ramen", "gyoza"}, staff.Specialties)

	_, err = f.staff.Create(f.ctx, f.admin, StaffInput{Name: "Other", Email: "KENJI@example.com"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.staff.Create(f.ctx, f.admin, StaffInput{Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := f.staff.Update(f.ctx, f.admin, staff.ID, StaffInput{
		Name: "Kenji Sato", Email: "kenji@example.com", Specialties: []string{"udon"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Kenji Sato", updated.Name)
	assert.Equal(t, []string{"udon"}, updated.Specialties)
}

func TestDeleteStaffUnassignsSchedules(t *testing.T) {
	f := newFixture(t)
	chef := f.instructor(t, "chef@example.com")
	schedule := f.schedule(t, 4, chef.StaffID)

	require.NoError(t, f.staff.Delete(f.ctx, f.admin, *chef.StaffID))

	got := f.getSchedule(t, schedule.ID)
	assert.Nil(t, got.StaffID)
	assert.Nil(t, got.Staff)

	_, err := f.staff.Get(f.ctx, *chef.StaffID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.staff.Delete(f.ctx, f.admin, *chef.StaffID), ErrNotFound)

	assert.ErrorIs(t, f.staff.Delete(f.ctx, chef, *chef.StaffID), ErrForbidden)
}
