package httpkit

import (
	"errors"
	"net/http"

	"sales_crm_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// HandleError maps domain errors to HTTP responses and reports whether it did.
// Untyped errors are treated as internal failures and never echoed to clients.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var domainErr *apperr.Error
	if !errors.As(err, &domainErr) {
		domainErr = apperr.Internal("internal server error")
	}

	status := domainErr.HTTPStatus()
	message := domainErr.Message
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		message = "internal server error"
	}
	c.JSON(status, ErrorResponse{
		Error:   message,
		Code:    domainErr.Code,
		Details: domainErr.Details,
	})
	return true
}
