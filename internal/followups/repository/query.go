package repository

import (
	"fmt"
	"strings"

	"sales_crm_backend/internal/access"
	"sales_crm_backend/internal/followups/domain"
)

// sqlArgs collects positional arguments while a query is assembled.
type sqlArgs struct {
	values []any
}

func (a *sqlArgs) add(v any) string {
	a.values = append(a.values, v)
	return fmt.Sprintf("$%d", len(a.values))
}

// scopeClause renders the visibility predicate over the leads alias l.
func scopeClause(scope access.Scope, args *sqlArgs) string {
	return scope.Predicate("l.user_id", "l.branch_id", args.add)
}

// filterClause renders ListFilter over the aliases f (follow_ups) and l (leads).
// It mirrors domain.ListFilter.Matches.
func filterClause(filter domain.ListFilter, args *sqlArgs) string {
	parts := []string{scopeClause(filter.Scope, args)}

	if filter.LeadID != nil {
		parts = append(parts, "f.lead_id = "+args.add(*filter.LeadID))
	}
	if filter.Status != nil {
		parts = append(parts, "f.status = "+args.add(string(*filter.Status)))
	}
	if filter.Scheduled != nil {
		parts = append(parts, rangeClause("f.scheduled_at", *filter.Scheduled, args)...)
	}
	if filter.Completed != nil {
		parts = append(parts, "f.completed_at IS NOT NULL")
		parts = append(parts, rangeClause("f.completed_at", *filter.Completed, args)...)
	}
	if filter.AdaRespon != nil {
		parts = append(parts, "f.ada_respon = "+args.add(*filter.AdaRespon))
	}

	return strings.Join(parts, " AND ")
}

func rangeClause(column string, r domain.TimeRange, args *sqlArgs) []string {
	var parts []string
	if !r.From.IsZero() {
		parts = append(parts, column+" >= "+args.add(r.From))
	}
	if !r.To.IsZero() {
		parts = append(parts, column+" < "+args.add(r.To))
	}
	return parts
}
