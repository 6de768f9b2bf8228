// Package access defines the visibility scope the follow-up engine and the
// leads module receive from the authorization layer. A Scope is an explicit
// value passed into every read; nothing resolves visibility from request
// globals.
package access

import (
	"strings"

	"github.com/google/uuid"
)

// Role is the caller's CRM role.
type Role string

const (
	RoleMarketing  Role = "marketing"
	RoleSupervisor Role = "supervisor"
	RoleSuperUser  Role = "super_user"
)

// ParseRole normalizes a role claim. Unknown values return ok=false.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleMarketing:
		return RoleMarketing, true
	case RoleSupervisor:
		return RoleSupervisor, true
	case RoleSuperUser, "superuser", "admin":
		return RoleSuperUser, true
	default:
		return "", false
	}
}

// Scope is the resolved visibility of one caller.
//
//   - marketing: only leads the caller owns
//   - supervisor: leads of the assigned branches, optionally narrowed to ActiveBranchID
//   - super_user: everything, optionally pinned to ActiveBranchID
type Scope struct {
	Role           Role
	UserID         uuid.UUID
	BranchIDs      []uuid.UUID
	ActiveBranchID *uuid.UUID
}

// Marketing builds an own-leads scope.
func Marketing(userID uuid.UUID, branchIDs ...uuid.UUID) Scope {
	return Scope{Role: RoleMarketing, UserID: userID, BranchIDs: branchIDs}
}

// Supervisor builds a branch scope.
func Supervisor(userID uuid.UUID, branchIDs ...uuid.UUID) Scope {
	return Scope{Role: RoleSupervisor, UserID: userID, BranchIDs: branchIDs}
}

// SuperUser builds an unrestricted scope.
func SuperUser(userID uuid.UUID) Scope {
	return Scope{Role: RoleSuperUser, UserID: userID}
}

// Pin narrows the scope to a single branch and returns the copy.
func (s Scope) Pin(branchID uuid.UUID) Scope {
	s.ActiveBranchID = &branchID
	return s
}

// IsSuperUser reports whether the scope is unrestricted by ownership.
func (s Scope) IsSuperUser() bool {
	return s.Role == RoleSuperUser
}

// VisibleBranches returns the branch ids a supervisor or a pinned super user
// may see. A nil result with unrestricted=true means every branch.
func (s Scope) VisibleBranches() (branches []uuid.UUID, unrestricted bool) {
	switch s.Role {
	case RoleSuperUser:
		if s.ActiveBranchID != nil {
			return []uuid.UUID{*s.ActiveBranchID}, false
		}
		return nil, true
	case RoleSupervisor:
		if s.ActiveBranchID != nil {
			if containsUUID(s.BranchIDs, *s.ActiveBranchID) {
				return []uuid.UUID{*s.ActiveBranchID}, false
			}
			return []uuid.UUID{}, false
		}
		out := make([]uuid.UUID, len(s.BranchIDs))
		copy(out, s.BranchIDs)
		return out, false
	default:
		return nil, false
	}
}

// Allows is the in-memory form of the scope predicate over a lead.
func (s Scope) Allows(leadOwnerID, leadBranchID uuid.UUID) bool {
	switch s.Role {
	case RoleMarketing:
		return s.UserID != uuid.Nil && leadOwnerID == s.UserID
	case RoleSupervisor, RoleSuperUser:
		branches, unrestricted := s.VisibleBranches()
		if unrestricted {
			return true
		}
		return containsUUID(branches, leadBranchID)
	default:
		return false
	}
}

// CanMutate reports whether the caller may change follow-ups of a lead owned
// by ownerID. Only the owning marketing user or a super user may.
func (s Scope) CanMutate(ownerID uuid.UUID) bool {
	if s.Role == RoleSuperUser {
		return true
	}
	return s.UserID != uuid.Nil && s.UserID == ownerID
}

// DefaultBranch returns the branch new records of this caller belong to:
// the active branch, or the only assigned branch.
func (s Scope) DefaultBranch() (uuid.UUID, bool) {
	if s.ActiveBranchID != nil {
		return *s.ActiveBranchID, true
	}
	if len(s.BranchIDs) == 1 {
		return s.BranchIDs[0], true
	}
	return uuid.Nil, false
}

func containsUUID(items []uuid.UUID, target uuid.UUID) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

// Predicate renders the scope as a SQL boolean expression over the given
// owner and branch columns. bind appends a positional argument and returns
// its placeholder.
func (s Scope) Predicate(ownerColumn, branchColumn string, bind func(any) string) string {
	switch s.Role {
	case RoleMarketing:
		if s.UserID == uuid.Nil {
			return "FALSE"
		}
		return ownerColumn + " = " + bind(s.UserID)
	case RoleSupervisor, RoleSuperUser:
		branches, unrestricted := s.VisibleBranches()
		if unrestricted {
			return "TRUE"
		}
		switch len(branches) {
		case 0:
			return "FALSE"
		case 1:
			return branchColumn + " = " + bind(branches[0])
		default:
			return branchColumn + " = ANY(" + bind(branches) + ")"
		}
	default:
		return "FALSE"
	}
}
