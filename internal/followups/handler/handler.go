package handler

import (
	"net/http"
	"strconv"

	"sales_crm_backend/internal/followups/repository"
	"sales_crm_backend/internal/followups/service"
	"sales_crm_backend/internal/followups/transport"
	apphttp "sales_crm_backend/internal/http"
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

// RegisterRoutes mounts the follow-up routes on the authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/follow-up-stages", h.ListActiveStages)

	fu := rg.Group("/follow-ups")
	fu.POST("", h.Create)
	fu.GET("", h.ListInRange)
	fu.GET("/dashboard", h.Dashboard)
	fu.GET("/statistics", h.Statistics)
	fu.GET("/stages/breakdown", h.StageBreakdown)
	fu.GET("/:id", h.GetByID)
	fu.POST("/:id/attempts", h.MarkAttempt)
	fu.DELETE("/:id/attempts/:number", h.UnmarkAttempt)
	fu.POST("/:id/complete", h.Complete)
	fu.POST("/:id/reschedule", h.Reschedule)

	rg.GET("/leads/:id/follow-ups", h.LeadHistory)
}

// RegisterAdminRoutes mounts the stage catalog management routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	stages := rg.Group("/follow-up-stages")
	stages.GET("", h.ListStages)
	stages.POST("", h.CreateStage)
	stages.PUT("/reorder", h.ReorderStages)
	stages.PUT("/:id", h.UpdateStage)
	stages.DELETE("/:id", h.DeleteStage)
	stages.PATCH("/:id/toggle", h.ToggleStage)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgValidationFailed).WithDetails(validator.FieldErrors(err)))
		return false
	}
	return true
}

func (h *Handler) bindRange(c *gin.Context) (service.DateRange, bool) {
	var q transport.DateRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return service.DateRange{}, false
	}
	if err := h.val.Struct(q); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgValidationFailed).WithDetails(validator.FieldErrors(err)))
		return service.DateRange{}, false
	}
	return service.DateRange{Start: q.StartDate, End: q.EndDate}, true
}

func (h *Handler) ListActiveStages(c *gin.Context) {
	stages, err := h.svc.ListActiveStages(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToStageResponses(stages))
}

func (h *Handler) Create(c *gin.Context) {
	sc, ok := apphttp.RequestScope(c)
	if !ok {
		return
	}
	var req transport.CreateFollowUpRequest
	if !h.bindJSON(c, &req) {
		return
	}

	rec, err := h.svc.CreateFollowUp(c.Request.Context(), sc, service.CreateInput{
		LeadID:      req.LeadID,
		StageKey:    req.StageKey,
		Attempt:     req.Attempt,
		ScheduledAt: req.ScheduledAt,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToFollowUpResponse(rec))
}

func (h *Handler) ListInRange(c *gin.Context) {
	sc, ok := apphttp.RequestScope(c)
	if !ok {
		return
	}
	dates, ok := h.bindRange(c)
	if !ok {
		return
	}

	items, err := h.svc.ListInRange(c.Request.Context(), sc, dates)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FollowUpListResponse{Items: transport.ToFollowUpViewResponses(items), Total: len(items)})
}

func (h *Handler) Dashboard(c *gin.Context) {
	sc, ok := apphttp.RequestScope(c)
	if !ok {
		return
	}
	dash, err := h.svc.Dashboard(c.Request.Context(), sc)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToDashboardResponse(dash))
}

func (h *Handler) Statistics(c *gin.Context) {
	sc, ok := apphttp.RequestScope(c)
	if !ok {
		return
	}
	dates, ok := h.bindRange(c)
	if !ok {
		return
	}

	stats, err := h.svc.Statistics(c.Request.Context(), sc, dates)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToStatisticsResponse(stats))
}

func (h *Handler) StageBreakdown(c *gin.Context) {
	sc, ok := apphttp.RequestScope(c)
	if !ok {
		return
	}
	dates, ok := h.bindRange(c)
	if !ok {
		return
	}

	rows, err := h.svc.StageBreakdown(c.Request.Context(), sc, dates)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToStageCountResponses(rows))
}

func (h *Handler) GetByID(c *gin.Context) {
	sc, ok := apphttp.RequestScope(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	view, err := h.svc.Get(c.Request.Context(), sc, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToFollowUpViewResponse(view))
}

func (h *Handler) MarkAttempt(c *gin.Context) {
	sc, ok := apphttp.RequestScope(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.MarkAttemptRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	rec, err := h.svc.MarkAttempt(c.Request.Context(), sc, id, req.Attempt)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToFollowUpResponse(rec))
}

func (h *Handler) UnmarkAttempt(c *gin.Context) {
	sc, ok := apphttp.RequestScope(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}

	rec, err := h.svc.UnmarkAttempt(c.Request.Context(), sc, id, number)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToFollowUpResponse(rec))
}

func (h *Handler) Complete(c *gin.Context) {
	sc, ok := apphttp.RequestScope(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.CompleteFollowUpRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Complete(c.Request.Context(), sc, id, service.CompleteInput{
		AdaRespon:           *req.AdaRespon,
		Catatan:             req.Catatan,
		HasilFollowup:       req.HasilFollowup,
		AutoScheduleNext:    req.AutoScheduleNext,
		ProgressToNextStage: req.ProgressToNextStage,
		NextStage:           req.NextStage,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.CompleteFollowUpResponse{
		FollowUp:  transport.ToFollowUpResponse(result.FollowUp),
		Exhausted: result.Exhausted,
	}
	if result.Successor != nil {
		next := transport.ToFollowUpResponse(*result.Successor)
		resp.NextFollowUp = &next
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Reschedule(c *gin.Context) {
	sc, ok := apphttp.RequestScope(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.RescheduleFollowUpRequest
	if !h.bindJSON(c, &req) {
		return
	}

	rec, err := h.svc.Reschedule(c.Request.Context(), sc, id, req.ScheduledAt)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToFollowUpResponse(rec))
}

func (h *Handler) LeadHistory(c *gin.Context) {
	sc, ok := apphttp.RequestScope(c)
	if !ok {
		return
	}
	leadID, ok := parseID(c)
	if !ok {
		return
	}

	items, err := h.svc.LeadHistory(c.Request.Context(), sc, leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FollowUpListResponse{Items: transport.ToFollowUpViewResponses(items), Total: len(items)})
}

func (h *Handler) ListStages(c *gin.Context) {
	stages, err := h.svc.ListStages(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToStageResponses(stages))
}

func stageInput(req transport.StageRequest) service.StageInput {
	return service.StageInput{
		Key:          req.Key,
		Name:         req.Name,
		DisplayOrder: req.DisplayOrder,
		NextStageKey: req.NextStageKey,
		IsActive:     req.IsActive,
	}
}

func (h *Handler) CreateStage(c *gin.Context) {
	var req transport.StageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	stage, err := h.svc.CreateStage(c.Request.Context(), stageInput(req))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToStageResponse(stage))
}

func (h *Handler) UpdateStage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.StageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	stage, err := h.svc.UpdateStage(c.Request.Context(), id, stageInput(req))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToStageResponse(stage))
}

func (h *Handler) DeleteStage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteStage(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ReorderStages(c *gin.Context) {
	var req transport.ReorderStagesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	items := make([]repository.StageOrder, len(req.Items))
	for i, item := range req.Items {
		items[i] = repository.StageOrder{ID: item.ID, DisplayOrder: item.DisplayOrder}
	}
	updated, err := h.svc.UpdateOrder(c.Request.Context(), items)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ReorderStagesResponse{Updated: updated})
}

func (h *Handler) ToggleStage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	stage, err := h.svc.ToggleActive(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToStageResponse(stage))
}
