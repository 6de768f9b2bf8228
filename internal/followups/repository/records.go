package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sales_crm_backend/internal/followups/domain"
	"sales_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const followUpColumns = `f.id, f.lead_id, f.user_id, f.stage_key, f.attempt,
	f.attempt_1_completed, f.attempt_1_completed_at,
	f.attempt_2_completed, f.attempt_2_completed_at,
	f.attempt_3_completed, f.attempt_3_completed_at,
	f.scheduled_at, f.completed_at, f.status, f.ada_respon, f.catatan, f.hasil_followup,
	f.auto_scheduled, f.created_at, f.updated_at`

const viewSelect = `
	SELECT ` + followUpColumns + `,
		l.name, l.phone, l.status, l.user_id, l.branch_id, s.name
	FROM follow_ups f
	JOIN leads l ON l.id = f.lead_id
	JOIN follow_up_stages s ON s.key = f.stage_key`

var attemptColumns = [domain.MaxSubAttempts][2]string{
	{"attempt_1_completed", "attempt_1_completed_at"},
	{"attempt_2_completed", "attempt_2_completed_at"},
	{"attempt_3_completed", "attempt_3_completed_at"},
}

func notFound() error {
	return apperr.Wrap(apperr.KindNotFound, "follow-up not found", domain.ErrNotFound)
}

// GetLead reads the ownership and status of a lead.
func (r *Repo) GetLead(ctx context.Context, leadID uuid.UUID) (domain.LeadRef, error) {
	query := `SELECT id, user_id, branch_id, status, is_active FROM leads WHERE id = $1`

	var lead domain.LeadRef
	if err := r.q.QueryRow(ctx, query, leadID).Scan(&lead.ID, &lead.OwnerID, &lead.BranchID, &lead.Status, &lead.IsActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LeadRef{}, apperr.Wrap(apperr.KindNotFound, "lead not found", domain.ErrNotFound)
		}
		return domain.LeadRef{}, fmt.Errorf("get lead for follow-up: %w", err)
	}
	return lead, nil
}

// GetFollowUp reads one record with its lead and stage columns. It does not
// apply any scope; callers check ownership on the result.
func (r *Repo) GetFollowUp(ctx context.Context, id uuid.UUID) (domain.FollowUpView, error) {
	var v domain.FollowUpView
	if err := r.q.QueryRow(ctx, viewSelect+` WHERE f.id = $1`, id).Scan(viewDest(&v)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FollowUpView{}, notFound()
		}
		return domain.FollowUpView{}, fmt.Errorf("get follow-up: %w", err)
	}
	return v, nil
}

// HasScheduled reports whether the lead already has an actionable record.
func (r *Repo) HasScheduled(ctx context.Context, leadID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM follow_ups WHERE lead_id = $1 AND status = 'scheduled')`
	if err := r.q.QueryRow(ctx, query, leadID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check scheduled follow-up: %w", err)
	}
	return exists, nil
}

// ListFollowUps returns the records matching filter, earliest first.
func (r *Repo) ListFollowUps(ctx context.Context, filter domain.ListFilter) ([]domain.FollowUpView, error) {
	args := &sqlArgs{}
	query := viewSelect + ` WHERE ` + filterClause(filter, args) + ` ORDER BY f.scheduled_at ASC, f.id ASC`

	rows, err := r.q.Query(ctx, query, args.values...)
	if err != nil {
		return nil, fmt.Errorf("list follow-ups: %w", err)
	}
	defer rows.Close()

	items := make([]domain.FollowUpView, 0)
	for rows.Next() {
		var v domain.FollowUpView
		if err := rows.Scan(viewDest(&v)...); err != nil {
			return nil, fmt.Errorf("scan follow-up: %w", err)
		}
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate follow-ups: %w", err)
	}
	return items, nil
}

// InsertFollowUp creates a record. The partial unique index turns a second
// scheduled record for the same lead into a conflict.
func (r *Repo) InsertFollowUp(ctx context.Context, rec domain.FollowUp) (domain.FollowUp, error) {
	query := `
		INSERT INTO follow_ups AS f (lead_id, user_id, stage_key, attempt, scheduled_at, status, auto_scheduled)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + followUpColumns

	var out domain.FollowUp
	err := r.q.QueryRow(ctx, query,
		rec.LeadID, rec.UserID, rec.StageKey, rec.Attempt, rec.ScheduledAt, string(domain.StatusScheduled), rec.AutoScheduled,
	).Scan(followUpDest(&out)...)
	if err != nil {
		switch code, constraint := pgErrorCode(err); {
		case code == pgUniqueViolation && constraint == scheduledPerLeadIndex:
			return domain.FollowUp{}, apperr.Conflict("lead already has a scheduled follow-up").
				WithCode(domain.CodeScheduledExists).
				WithOp("insert follow-up")
		case code == pgForeignKeyViolation:
			return domain.FollowUp{}, domain.InvalidStage(rec.StageKey)
		}
		return domain.FollowUp{}, fmt.Errorf("insert follow-up: %w", err)
	}
	return out, nil
}

// CompleteFollowUp finalizes a scheduled record in a single conditional
// update. Zero affected rows yields domain.ErrStaleState.
func (r *Repo) CompleteFollowUp(ctx context.Context, id uuid.UUID, params CompleteParams) (domain.FollowUp, error) {
	query := `
		UPDATE follow_ups AS f SET
			status = 'completed',
			completed_at = $2,
			ada_respon = $3,
			catatan = $4,
			hasil_followup = $5,
			updated_at = now()
		WHERE f.id = $1 AND f.status = 'scheduled'
		RETURNING ` + followUpColumns

	var out domain.FollowUp
	err := r.q.QueryRow(ctx, query, id, params.CompletedAt, params.AdaRespon, params.Catatan, params.HasilFollowup).
		Scan(followUpDest(&out)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FollowUp{}, domain.ErrStaleState
		}
		return domain.FollowUp{}, fmt.Errorf("complete follow-up: %w", err)
	}
	return out, nil
}

// RescheduleFollowUp moves a scheduled record.
func (r *Repo) RescheduleFollowUp(ctx context.Context, id uuid.UUID, scheduledAt time.Time) (domain.FollowUp, error) {
	query := `
		UPDATE follow_ups AS f SET scheduled_at = $2, updated_at = now()
		WHERE f.id = $1 AND f.status = 'scheduled'
		RETURNING ` + followUpColumns

	var out domain.FollowUp
	if err := r.q.QueryRow(ctx, query, id, scheduledAt).Scan(followUpDest(&out)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FollowUp{}, domain.ErrStaleState
		}
		return domain.FollowUp{}, fmt.Errorf("reschedule follow-up: %w", err)
	}
	return out, nil
}

// SetAttemptSlot flips one sub-attempt slot. The update only applies when the
// slot currently holds the opposite value, so two concurrent marks of the
// same slot cannot both succeed.
func (r *Repo) SetAttemptSlot(ctx context.Context, id uuid.UUID, number int, completed bool, at *time.Time) (domain.FollowUp, error) {
	if !domain.ValidAttemptNumber(number) {
		return domain.FollowUp{}, domain.Validation("attempt number must be between 1 and %d", domain.MaxSubAttempts)
	}
	flag, stamp := attemptColumns[number-1][0], attemptColumns[number-1][1]

	query := fmt.Sprintf(`
		UPDATE follow_ups AS f SET %[1]s = $2, %[2]s = $3, updated_at = now()
		WHERE f.id = $1 AND f.status = 'scheduled' AND f.%[1]s = NOT $2::boolean
		RETURNING `+followUpColumns, flag, stamp)

	var out domain.FollowUp
	if err := r.q.QueryRow(ctx, query, id, completed, at).Scan(followUpDest(&out)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FollowUp{}, domain.ErrStaleState
		}
		return domain.FollowUp{}, fmt.Errorf("set follow-up attempt: %w", err)
	}
	return out, nil
}

// GetUserContact reads the name and email of a user.
func (r *Repo) GetUserContact(ctx context.Context, userID uuid.UUID) (UserContact, error) {
	var c UserContact
	err := r.q.QueryRow(ctx, `SELECT id, name, email FROM users WHERE id = $1`, userID).Scan(&c.ID, &c.Name, &c.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserContact{}, apperr.NotFound("user not found")
		}
		return UserContact{}, fmt.Errorf("get user contact: %w", err)
	}
	return c, nil
}

func followUpDest(rec *domain.FollowUp) []any {
	return []any{
		&rec.ID, &rec.LeadID, &rec.UserID, &rec.StageKey, &rec.Attempt,
		&rec.Slots[0].Completed, &rec.Slots[0].CompletedAt,
		&rec.Slots[1].Completed, &rec.Slots[1].CompletedAt,
		&rec.Slots[2].Completed, &rec.Slots[2].CompletedAt,
		&rec.ScheduledAt, &rec.CompletedAt, &rec.Status, &rec.AdaRespon, &rec.Catatan, &rec.HasilFollowup,
		&rec.AutoScheduled, &rec.CreatedAt, &rec.UpdatedAt,
	}
}

func viewDest(v *domain.FollowUpView) []any {
	return append(followUpDest(&v.FollowUp),
		&v.LeadName, &v.LeadPhone, &v.LeadStatus, &v.LeadOwnerID, &v.BranchID, &v.StageName,
	)
}
