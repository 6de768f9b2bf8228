package http

import (
	"errors"

	"sales_crm_backend/internal/access"
	"sales_crm_backend/platform/apperr"
	"sales_crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// RequestScope resolves the caller's visibility from the authenticated
// identity and the X-Active-Branch header. On failure it writes the response
// and returns false.
func RequestScope(c *gin.Context) (access.Scope, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return access.Scope{}, false
	}
	scope, err := access.FromIdentity(identity, c.GetHeader(httpkit.ActiveBranchHeader))
	if err != nil {
		if errors.Is(err, access.ErrInvalidActiveBranch) {
			httpkit.HandleError(c, apperr.BadRequest(err.Error()))
			return access.Scope{}, false
		}
		httpkit.HandleError(c, apperr.Forbidden("forbidden"))
		return access.Scope{}, false
	}
	return scope, true
}
