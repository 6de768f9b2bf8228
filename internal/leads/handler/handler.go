package handler

import (
	"net/http"

	apphttp "sales_crm_backend/internal/http"
	"sales_crm_backend/internal/leads/service"
	"sales_crm_backend/internal/leads/transport"
	"sales_crm_backend/platform/apperr"
	"sales_crm_backend/platform/httpkit"
	"sales_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.DELETE("/:id", h.Deactivate)
}

func (h *Handler) Create(c *gin.Context) {
	scope, ok := apphttp.RequestScope(c)
	if !ok {
		return
	}
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgValidationFailed).WithDetails(validator.FieldErrors(err)))
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), scope, service.CreateInput{
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		Status:         req.Status,
		PotentialValue: req.PotentialValue,
		BranchID:       req.BranchID,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToLeadResponse(lead))
}

func (h *Handler) List(c *gin.Context) {
	scope, ok := apphttp.RequestScope(c)
	if !ok {
		return
	}
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}

	leads, err := h.svc.List(c.Request.Context(), scope, req.Status, req.ActiveOnly)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadListResponse(leads))
}

func (h *Handler) GetByID(c *gin.Context) {
	scope, ok := apphttp.RequestScope(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}

	lead, err := h.svc.Get(c.Request.Context(), scope, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	scope, ok := apphttp.RequestScope(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	var req transport.UpdateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgValidationFailed).WithDetails(validator.FieldErrors(err)))
		return
	}

	lead, err := h.svc.UpdateStatus(c.Request.Context(), scope, id, req.Status, req.Reason)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) Deactivate(c *gin.Context) {
	scope, ok := apphttp.RequestScope(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}

	lead, err := h.svc.Deactivate(c.Request.Context(), scope, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead))
}
