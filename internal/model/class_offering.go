package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceScale is the number of fractional digits kept for prices.
const PriceScale = 2

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "BEGINNER"
	DifficultyIntermediate Difficulty = "INTERMEDIATE"
	DifficultyAdvanced     Difficulty = "ADVANCED"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// ClassOffering is the template a Schedule is created from.
type ClassOffering struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	DurationMinutes int             `json:"durationMinutes"`
	Price           decimal.Decimal `json:"price"`
	MaxStudents     int             `json:"maxStudents"`
	Difficulty      Difficulty      `json:"difficulty"`
	Image           *string         `json:"image,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	// Populated for responses, not stored with the class
	Schedules []*Schedule `json:"schedules,omitempty"`
}

// TotalFor is the price of a booking for the given number of people.
func (c *ClassOffering) TotalFor(people int) decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(people)))
}

// Validate checks the invariants of the template.
func (c *ClassOffering) Validate() error {
	switch {
	case c.Title == "":
		return errors.New("title: must not be empty")
	case c.DurationMinutes <= 0:
		return errors.New("durationMinutes: must be greater than zero")
	case c.Price.IsNegative():
		return errors.New("price: must not be negative")
	case !c.Price.Equal(c.Price.Truncate(PriceScale)):
		return errors.New("price: must have at most two decimal places")
	case c.MaxStudents <= 0:
		return errors.New("maxStudents: must be greater than zero")
	case !c.Difficulty.Valid():
		return errors.New("difficulty: must be BEGINNER, INTERMEDIATE or ADVANCED")
	}
	return nil
}
