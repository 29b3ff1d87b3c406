// Package access holds the vault's authorization policy: a single decision
// table over the caller's role, the caller's divisions and the target
// division. It performs no I/O; callers resolve the target division (and
// answer "not found" the same way for every role) before asking.
package access

import (
	"github.com/dmitrijs2005/divvault/internal/common"
	"github.com/dmitrijs2005/divvault/internal/server/models"
)

// Operation is an action subject to authorization.
type Operation int

const (
	ReadCredentials Operation = iota
	AddCredential
	UpdateCredential
	ListDirectory
	AssignMembership
	ChangeRole
)

func (op Operation) String() string {
	switch op {
	case ReadCredentials:
		return "read_credentials"
	case AddCredential:
		return "add_credential"
	case UpdateCredential:
		return "update_credential"
	case ListDirectory:
		return "list_directory"
	case AssignMembership:
		return "assign_membership"
	case ChangeRole:
		return "change_role"
	}
	return "unknown"
}

// Outcome is the kind of decision taken.
type Outcome int

const (
	Allow Outcome = iota
	Forbidden
	Unauthenticated
)

// Decision is the result of Check. Reason is empty when access is allowed.
type Decision struct {
	Outcome Outcome
	Reason  string
}

const (
	ReasonRead       = "no access to this division's credentials"
	ReasonAdd        = "no access to add credentials"
	ReasonUpdate     = "no access to update credentials"
	ReasonAdminsOnly = "admins only"
)

func (d Decision) Allowed() bool { return d.Outcome == Allow }

// Err converts a negative decision into an error wrapping
// common.ErrForbidden or common.ErrorUnauthorized. It returns nil for Allow.
func (d Decision) Err() error {
	switch d.Outcome {
	case Allow:
		return nil
	case Unauthenticated:
		return common.WithReason(common.ErrorUnauthorized, d.Reason)
	default:
		return common.WithReason(common.ErrForbidden, d.Reason)
	}
}

func allow() Decision { return Decision{Outcome: Allow} }

func deny(reason string) Decision { return Decision{Outcome: Forbidden, Reason: reason} }

// Check decides whether id may perform op on divisionID. divisionID is
// ignored for directory operations.
//
//	op                 normal      management  admin
//	ReadCredentials    in scope    in scope    yes
//	AddCredential      in scope    in scope    yes
//	UpdateCredential   no          in scope    yes
//	ListDirectory      no          no          yes
//	AssignMembership   no          no          yes
//	ChangeRole         no          no          yes
//
// "in scope" means divisionID is one of id.Divisions.
func Check(id models.Identity, op Operation, divisionID string) Decision {
	if id.IsZero() {
		return Decision{Outcome: Unauthenticated, Reason: common.SessionExpiredReason}
	}

	switch op {
	case ReadCredentials:
		return scoped(id, divisionID, ReasonRead, models.RoleNormal, models.RoleManagement)
	case AddCredential:
		return scoped(id, divisionID, ReasonAdd, models.RoleNormal, models.RoleManagement)
	case UpdateCredential:
		return scoped(id, divisionID, ReasonUpdate, models.RoleManagement)
	case ListDirectory, AssignMembership, ChangeRole:
		if id.Role == models.RoleAdmin {
			return allow()
		}
		return deny(ReasonAdminsOnly)
	}

	return deny(ReasonAdminsOnly)
}

// scoped allows admins unconditionally and the listed roles only inside their
// own divisions.
func scoped(id models.Identity, divisionID, reason string, roles ...models.Role) Decision {
	if id.Role == models.RoleAdmin {
		return allow()
	}
	for _, r := range roles {
		if id.Role == r && divisionID != "" && id.InDivision(divisionID) {
			return allow()
		}
	}
	return deny(reason)
}
