// Package policy maps account roles to the operations they may perform.
//
// The table is the single source of truth for authorization: services ask
// Permitted before any mutation, and scope checks (own booking, assigned
// schedule) are layered on top by the caller. A role missing from the table
// is permitted nothing.
package policy

import "github.com/Freeeeeet/cooking_school/internal/model"

type Operation string

const (
	BookingCreate             Operation = "booking:create"
	BookingReadOwn            Operation = "booking:read-own"
	BookingCancelOwn          Operation = "booking:cancel-own"
	BookingReadAssigned       Operation = "booking:read-assigned"
	BookingTransitionAssigned Operation = "booking:transition-assigned"
	BookingReadAny            Operation = "booking:read-any"
	BookingTransitionAny      Operation = "booking:transition-any"

	ScheduleReadAssigned Operation = "schedule:read-assigned"
	ScheduleManage       Operation = "schedule:manage"
	ScheduleAudit        Operation = "schedule:audit"

	ClassManage Operation = "class:manage"
	StaffManage Operation = "staff:manage"

	ApplicationSubmit Operation = "application:submit"
	ApplicationRead   Operation = "application:read"
	ApplicationReview Operation = "application:review"

	AccountAssignRole Operation = "account:assign-role"
)

// Operations lists every operation known to the policy.
var Operations = []Operation{
	BookingCreate, BookingReadOwn, BookingCancelOwn,
	BookingReadAssigned, BookingTransitionAssigned,
	BookingReadAny, BookingTransitionAny,
	ScheduleReadAssigned, ScheduleManage, ScheduleAudit,
	ClassManage, StaffManage,
	ApplicationSubmit, ApplicationRead, ApplicationReview,
	AccountAssignRole,
}

var userOperations = []Operation{
	BookingCreate,
	BookingReadOwn,
	BookingCancelOwn,
	ApplicationSubmit,
}

var staffOperations = append(append([]Operation{}, userOperations...),
	BookingReadAssigned,
	BookingTransitionAssigned,
	ScheduleReadAssigned,
)

var permissions = map[model.Role]map[Operation]bool{
	model.RoleUser:  setOf(userOperations),
	model.RoleStaff: setOf(staffOperations),
	model.RoleAdmin: setOf(Operations),
	model.RoleDev:   setOf(Operations),
}

func setOf(ops []Operation) map[Operation]bool {
	set := make(map[Operation]bool, len(ops))
	for _, op := range ops {
		set[op] = true
	}
	return set
}

// Permitted reports whether role may perform op.
func Permitted(role model.Role, op Operation) bool {
	return permissions[role][op]
}
