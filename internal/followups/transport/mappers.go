package transport

import (
	"sales_crm_backend/internal/followups/domain"
)

func ToStageResponse(s domain.Stage) StageResponse {
	return StageResponse{
		ID:           s.ID,
		Key:          s.Key,
		Name:         s.Name,
		DisplayOrder: s.DisplayOrder,
		NextStageKey: s.NextStageKey,
		IsActive:     s.IsActive,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func ToStageResponses(stages []domain.Stage) []StageResponse {
	out := make([]StageResponse, len(stages))
	for i, s := range stages {
		out[i] = ToStageResponse(s)
	}
	return out
}

// ToFollowUpResponse maps a record and its derived attempt counters.
func ToFollowUpResponse(f domain.FollowUp) FollowUpResponse {
	attempts := make([]AttemptSlotResponse, len(f.Slots))
	for i, slot := range f.Slots {
		attempts[i] = AttemptSlotResponse{Number: i + 1, Completed: slot.Completed, CompletedAt: slot.CompletedAt}
	}
	return FollowUpResponse{
		ID:                f.ID,
		LeadID:            f.LeadID,
		UserID:            f.UserID,
		StageKey:          f.StageKey,
		Attempt:           f.Attempt,
		Attempts:          attempts,
		CompletedAttempts: f.CompletedAttempts(),
		NextAttemptNumber: f.NextAttemptNumber(),
		AllAttemptsDone:   f.AllAttemptsDone(),
		ScheduledAt:       f.ScheduledAt,
		CompletedAt:       f.CompletedAt,
		Status:            string(f.Status),
		AdaRespon:         f.AdaRespon,
		Catatan:           f.Catatan,
		HasilFollowup:     f.HasilFollowup,
		AutoScheduled:     f.AutoScheduled,
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}

func ToFollowUpViewResponse(v domain.FollowUpView) FollowUpResponse {
	resp := ToFollowUpResponse(v.FollowUp)
	resp.StageName = v.StageName
	resp.Lead = &LeadSummary{
		Name:   v.LeadName,
		Phone:  v.LeadPhone,
		Status: v.LeadStatus,
		Owner:  v.LeadOwnerID,
		Branch: v.BranchID,
	}
	return resp
}

func ToFollowUpViewResponses(views []domain.FollowUpView) []FollowUpResponse {
	out := make([]FollowUpResponse, len(views))
	for i, v := range views {
		out[i] = ToFollowUpViewResponse(v)
	}
	return out
}

func ToDashboardResponse(d domain.Dashboard) DashboardResponse {
	return DashboardResponse{
		Today:      ToFollowUpViewResponses(d.Today),
		Overdue:    ToFollowUpViewResponses(d.Overdue),
		Successful: ToFollowUpViewResponses(d.Successful),
		Counts: DashboardCounts{
			Today:      len(d.Today),
			Overdue:    len(d.Overdue),
			Successful: len(d.Successful),
		},
	}
}

func ToStatisticsResponse(s domain.Statistics) StatisticsResponse {
	return StatisticsResponse{
		Total:        s.Total,
		Completed:    s.Completed,
		NoResponse:   s.NoResponse,
		Scheduled:    s.Scheduled,
		ResponseRate: s.ResponseRate,
	}
}

func ToStageCountResponses(rows []domain.StageCount) []StageCountResponse {
	out := make([]StageCountResponse, len(rows))
	for i, r := range rows {
		out[i] = StageCountResponse{
			StageKey:     r.StageKey,
			StageName:    r.StageName,
			DisplayOrder: r.DisplayOrder,
			Scheduled:    r.Scheduled,
			Completed:    r.Completed,
			Responded:    r.Responded,
		}
	}
	return out
}
