package service

import (
	"github.com/google/uuid"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/policy"
)

// Actor is the caller of a service operation. Role is read from the store
// on every request, so a role change takes effect without a new token.
type Actor struct {
	AccountID uuid.UUID
	Email     string
	Role      model.Role
	StaffID   *uuid.UUID // staff record whose email matches the account, if any
}

// Operator is the actor used by the command line tools.
var Operator = Actor{Role: model.RoleDev}

func (a Actor) Can(op policy.Operation) bool {
	return policy.Permitted(a.Role, op)
}

func (a Actor) require(op policy.Operation) error {
	if !a.Can(op) {
		return ErrForbidden
	}
	return nil
}
