package repository

import (
	"context"
	"fmt"

	"sales_crm_backend/internal/followups/domain"
)

// CountStatistics computes the counters in one pass over the filtered rows.
func (r *Repo) CountStatistics(ctx context.Context, filter domain.ListFilter) (domain.Statistics, error) {
	args := &sqlArgs{}
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE f.status = 'completed'),
			COUNT(*) FILTER (WHERE f.status = 'completed' AND f.ada_respon = false),
			COUNT(*) FILTER (WHERE f.status = 'scheduled')
		FROM follow_ups f
		JOIN leads l ON l.id = f.lead_id
		WHERE ` + filterClause(filter, args)

	var total, completed, noResponse, scheduled int
	if err := r.q.QueryRow(ctx, query, args.values...).Scan(&total, &completed, &noResponse, &scheduled); err != nil {
		return domain.Statistics{}, fmt.Errorf("count follow-up statistics: %w", err)
	}
	return domain.NewStatistics(total, completed, noResponse, scheduled), nil
}

// StageBreakdown counts records per stage. Every stage appears, including
// those without records in the filter.
func (r *Repo) StageBreakdown(ctx context.Context, filter domain.ListFilter) ([]domain.StageCount, error) {
	args := &sqlArgs{}
	query := `
		SELECT
			s.key, s.name, s.display_order,
			COUNT(f.id) FILTER (WHERE f.status = 'scheduled'),
			COUNT(f.id) FILTER (WHERE f.status = 'completed'),
			COUNT(f.id) FILTER (WHERE f.status = 'completed' AND f.ada_respon = true)
		FROM follow_up_stages s
		LEFT JOIN (follow_ups f JOIN leads l ON l.id = f.lead_id)
			ON f.stage_key = s.key AND ` + filterClause(filter, args) + `
		GROUP BY s.key, s.name, s.display_order
		ORDER BY s.display_order ASC, s.key ASC`

	rows, err := r.q.Query(ctx, query, args.values...)
	if err != nil {
		return nil, fmt.Errorf("follow-up stage breakdown: %w", err)
	}
	defer rows.Close()

	counts := make([]domain.StageCount, 0)
	for rows.Next() {
		var c domain.StageCount
		if err := rows.Scan(&c.StageKey, &c.StageName, &c.DisplayOrder, &c.Scheduled, &c.Completed, &c.Responded); err != nil {
			return nil, fmt.Errorf("scan stage breakdown: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stage breakdown: %w", err)
	}
	return counts, nil
}
