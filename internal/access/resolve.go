package access

import (
	"errors"
	"strings"

	"sales_crm_backend/platform/httpkit"

	"github.com/google/uuid"
)

var (
	ErrUnknownRole         = errors.New("unknown role")
	ErrInvalidActiveBranch = errors.New("invalid active branch")
)

// FromIdentity turns the authenticated caller into a Scope. activeBranch is
// the raw X-Active-Branch header; an empty value means no narrowing. Marketing
// users ignore the header since they only ever see their own leads.
func FromIdentity(identity httpkit.Identity, activeBranch string) (Scope, error) {
	role, ok := ParseRole(identity.Role())
	if !ok {
		return Scope{}, ErrUnknownRole
	}

	scope := Scope{
		Role:      role,
		UserID:    identity.UserID(),
		BranchIDs: identity.BranchIDs(),
	}

	activeBranch = strings.TrimSpace(activeBranch)
	if activeBranch == "" || role == RoleMarketing {
		return scope, nil
	}

	branchID, err := uuid.Parse(activeBranch)
	if err != nil {
		return Scope{}, ErrInvalidActiveBranch
	}
	return scope.Pin(branchID), nil
}
