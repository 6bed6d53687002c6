package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStaff_MergeSpecialties(t *testing.T) {
	s := &Staff{Specialties: []string{"pastry", "bread"}}
	s.MergeSpecialties([]string{"bread", "", "sushi", "sushi"})

	assert.Equal(t, []string{"pastry", "bread", "sushi"}, s.Specialties)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("STAFF")
	assert.NoError(t, err)
	assert.Equal(t, RoleStaff, role)

	_, err = ParseRole("OWNER")
	assert.Error(t, err)
}

func TestClassOffering_Validate(t *testing.T) {
	c := &ClassOffering{Title: "Knife skills", DurationMinutes: 120, Price: decimal.RequireFromString("49.50"), MaxStudents: 10, Difficulty: DifficultyBeginner}
	assert.NoError(t, c.Validate())

	c.Difficulty = "EXPERT"
	assert.ErrorContains(t, c.Validate(), "difficulty")

	c.Difficulty = DifficultyAdvanced
	c.Price = decimal.NewFromInt(-1)
	assert.ErrorContains(t, c.Validate(), "price")

	c.Price = decimal.RequireFromString("49.555")
	assert.ErrorContains(t, c.Validate(), "two decimal places")
}

func TestClassOffering_TotalFor(t *testing.T) {
	c := &ClassOffering{Price: decimal.RequireFromString("19.99")}

	assert.Equal(t, "59.97", c.TotalFor(3).String())
	assert.True(t, c.TotalFor(0).IsZero())
}
