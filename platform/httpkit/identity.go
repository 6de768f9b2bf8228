// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated caller as issued by the auth service.
// Handlers read it instead of touching Gin context keys directly.
type Identity interface {
	UserID() uuid.UUID
	Role() string
	BranchIDs() []uuid.UUID
	HasRole(role string) bool
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	role          string
	branchIDs     []uuid.UUID
	authenticated bool
}

func (i *identity) UserID() uuid.UUID      { return i.userID }
func (i *identity) Role() string           { return i.role }
func (i *identity) BranchIDs() []uuid.UUID { return i.branchIDs }
func (i *identity) IsAuthenticated() bool  { return i.authenticated }

func (i *identity) HasRole(role string) bool {
	return i.role == role
}

// NewIdentity builds an authenticated identity. Used by tests and tools.
func NewIdentity(userID uuid.UUID, role string, branchIDs ...uuid.UUID) Identity {
	return &identity{userID: userID, role: role, branchIDs: branchIDs, authenticated: true}
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if user info is not present.
func GetIdentity(c *gin.Context) Identity {
	userID, ok := c.Get(ContextUserIDKey)
	if !ok {
		return &identity{}
	}
	uid, ok := userID.(uuid.UUID)
	if !ok {
		return &identity{}
	}

	role, _ := c.Get(ContextRoleKey)
	roleStr, _ := role.(string)

	var branchIDs []uuid.UUID
	if raw, ok := c.Get(ContextBranchIDsKey); ok {
		branchIDs, _ = raw.([]uuid.UUID)
	}

	return &identity{
		userID:        uid,
		role:          roleStr,
		branchIDs:     branchIDs,
		authenticated: true,
	}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the user is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}
