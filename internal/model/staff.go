package model

import (
	"time"

	"github.com/google/uuid"
)

// Staff is an instructor who can be assigned to schedules.
type Staff struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       *string   `json:"phone,omitempty"`
	Specialties []string  `json:"specialties"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MergeSpecialties adds the given values to the staff specialties,
// keeping the existing order and skipping duplicates and blanks.
func (s *Staff) MergeSpecialties(values []string) {
	seen := make(map[string]bool, len(s.Specialties)+len(values))
	merged := make([]string, 0, len(s.Specialties)+len(values))
	for _, v := range append(append([]string{}, s.Specialties...), values...) {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		merged = append(merged, v)
	}
	s.Specialties = merged
}
