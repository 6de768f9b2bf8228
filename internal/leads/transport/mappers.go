package transport

import "sales_crm_backend/internal/leads/domain"

func ToLeadResponse(l domain.Lead) LeadResponse {
	return LeadResponse{
		ID:               l.ID,
		OwnerID:          l.OwnerID,
		BranchID:         l.BranchID,
		Name:             l.Name,
		Phone:            l.Phone,
		Email:            l.Email,
		Address:          l.Address,
		Status:           string(l.Status),
		PotentialValue:   l.PotentialValue,
		ClosingReason:    l.ClosingReason,
		NonClosingReason: l.NonClosingReason,
		IsActive:         l.IsActive,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

func ToLeadListResponse(leads []domain.Lead) LeadListResponse {
	items := make([]LeadResponse, len(leads))
	for i, l := range leads {
		items[i] = ToLeadResponse(l)
	}
	return LeadListResponse{Items: items, Total: len(items)}
}
