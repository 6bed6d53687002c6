package model

import (
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

// Application status constants
const (
	ApplicationStatusPending  ApplicationStatus = "PENDING"
	ApplicationStatusApproved ApplicationStatus = "APPROVED"
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusApproved, ApplicationStatusRejected:
		return true
	}
	return false
}

// StaffApplication is a request from a prospective instructor to join the staff
type StaffApplication struct {
	ID         uuid.UUID         `json:"id"`
	FullName   string            `json:"fullName"`
	Email      string            `json:"email"`
	Phone      string            `json:"phone"`
	Experience string            `json:"experience"`
	Skills     []string          `json:"skills"`
	Status     ApplicationStatus `json:"status"`
	ReviewedAt *time.Time        `json:"reviewedAt,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// IsPending checks if application still awaits review
func (a *StaffApplication) IsPending() bool {
	return a.Status == ApplicationStatusPending
}

// IsApproved checks if application is approved
func (a *StaffApplication) IsApproved() bool {
	return a.Status == ApplicationStatusApproved
}
