package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sales_crm_backend/internal/access"
	"sales_crm_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListFilter narrows a scoped lead listing.
type ListFilter struct {
	Scope      access.Scope
	Status     *domain.Status
	ActiveOnly bool
	Limit      int
}

// LeadStore is the persistence contract of the leads service.
type LeadStore interface {
	Create(ctx context.Context, lead domain.Lead) (domain.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Lead, error)
	// UpdateStatus moves an active lead away from expected. It returns
	// domain.ErrStaleState when the lead is no longer in expected or inactive.
	UpdateStatus(ctx context.Context, id uuid.UUID, expected domain.Status, next domain.Lead) (domain.Lead, error)
	Deactivate(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	// Delete removes a lead that never got past creation.
	Delete(ctx context.Context, id uuid.UUID) error
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ LeadStore = (*Repository)(nil)

const leadColumns = `id, user_id, branch_id, name, phone, email, address, status, potential_value,
	closing_reason, non_closing_reason, is_active, created_at, updated_at`

func scanLead(row pgx.Row) (domain.Lead, error) {
	var lead domain.Lead
	var status string
	err := row.Scan(
		&lead.ID, &lead.OwnerID, &lead.BranchID, &lead.Name, &lead.Phone, &lead.Email, &lead.Address, &status,
		&lead.PotentialValue, &lead.ClosingReason, &lead.NonClosingReason, &lead.IsActive, &lead.CreatedAt, &lead.UpdatedAt,
	)
	lead.Status = domain.Status(status)
	return lead, err
}

func (r *Repository) Create(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	created, err := scanLead(r.pool.QueryRow(ctx, `
		INSERT INTO leads (user_id, branch_id, name, phone, email, address, status, potential_value,
			closing_reason, non_closing_reason, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true)
		RETURNING `+leadColumns,
		lead.OwnerID, lead.BranchID, lead.Name, lead.Phone, lead.Email, lead.Address, string(lead.Status),
		lead.PotentialValue, lead.ClosingReason, lead.NonClosingReason,
	))
	if err != nil {
		return domain.Lead{}, fmt.Errorf("insert lead: %w", err)
	}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, domain.NotFound()
	}
	return lead, err
}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]domain.Lead, error) {
	args := make([]any, 0, 4)
	bind := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	where := []string{filter.Scope.Predicate("user_id", "branch_id", bind)}
	if filter.Status != nil {
		where = append(where, "status = "+bind(string(*filter.Status)))
	}
	if filter.ActiveOnly {
		where = append(where, "is_active")
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `SELECT `+leadColumns+` FROM leads WHERE `+strings.Join(where, " AND ")+
		` ORDER BY created_at DESC LIMIT `+bind(limit), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, lead)
	}
	return items, rows.Err()
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, expected domain.Status, next domain.Lead) (domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads
		SET status = $3, closing_reason = $4, non_closing_reason = $5, updated_at = now()
		WHERE id = $1 AND status = $2 AND is_active
		RETURNING `+leadColumns,
		id, string(expected), string(next.Status), next.ClosingReason, next.NonClosingReason,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, domain.ErrStaleState
	}
	return lead, err
}

func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads SET is_active = false, updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, domain.NotFound()
	}
	return lead, err
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound()
	}
	return nil
}
