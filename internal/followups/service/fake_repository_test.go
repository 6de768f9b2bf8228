package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/followups/domain"
	"sales_crm_backend/internal/followups/repository"
	"sales_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeLead struct {
	ref   domain.LeadRef
	name  string
	phone string
}

// fakeRepo is an in-memory repository.Repository. Transactions are
// serialized and roll back on error.
type fakeRepo struct {
	mu      sync.Mutex
	txMu    sync.Mutex
	stages  map[uuid.UUID]domain.Stage
	records map[uuid.UUID]domain.FollowUp
	leads   map[uuid.UUID]fakeLead
	users   map[uuid.UUID]repository.UserContact

	// txRecords is the rollback image of the open transaction, if any.
	txRecords map[uuid.UUID]domain.FollowUp

	// beforeComplete runs right before the guarded completion update.
	beforeComplete func(id uuid.UUID)
}

var _ repository.Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		stages:  make(map[uuid.UUID]domain.Stage),
		records: make(map[uuid.UUID]domain.FollowUp),
		leads:   make(map[uuid.UUID]fakeLead),
		users:   make(map[uuid.UUID]repository.UserContact),
	}
}

func (f *fakeRepo) addLead(lead domain.LeadRef, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leads[lead.ID] = fakeLead{ref: lead, name: name, phone: "+6281234567890"}
}

func (f *fakeRepo) put(rec domain.FollowUp) domain.FollowUp {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	f.records[rec.ID] = rec
	return rec
}

func (f *fakeRepo) record(id uuid.UUID) domain.FollowUp {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[id]
}

func (f *fakeRepo) scheduledFor(leadID uuid.UUID) []domain.FollowUp {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.FollowUp
	for _, rec := range f.records {
		if rec.LeadID == leadID && rec.Status == domain.StatusScheduled {
			out = append(out, rec)
		}
	}
	return out
}

// commitOutside applies a write made by another connection. It survives a
// rollback of the transaction currently open on f.
func (f *fakeRepo) commitOutside(rec domain.FollowUp) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[rec.ID] = rec
	if f.txRecords != nil {
		f.txRecords[rec.ID] = rec
	}
}

func (f *fakeRepo) recordsFor(leadID uuid.UUID) []domain.FollowUp {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.FollowUp
	for _, rec := range f.records {
		if rec.LeadID == leadID {
			out = append(out, rec)
		}
	}
	return out
}

func (f *fakeRepo) WithinTx(ctx context.Context, fn func(tx repository.Repository) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	f.mu.Lock()
	stages := make(map[uuid.UUID]domain.Stage, len(f.stages))
	for k, v := range f.stages {
		stages[k] = v
	}
	records := make(map[uuid.UUID]domain.FollowUp, len(f.records))
	for k, v := range f.records {
		records[k] = v
	}
	f.txRecords = records
	f.mu.Unlock()

	err := fn(f)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.stages, f.records = stages, f.txRecords
	}
	f.txRecords = nil
	return err
}

func (f *fakeRepo) ListStages(_ context.Context, activeOnly bool) ([]domain.Stage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Stage, 0, len(f.stages))
	for _, st := range f.stages {
		if activeOnly && !st.IsActive {
			continue
		}
		out = append(out, st)
	}
	domain.SortStages(out)
	return out, nil
}

func (f *fakeRepo) GetStage(_ context.Context, id uuid.UUID) (domain.Stage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.stages[id]
	if !ok {
		return domain.Stage{}, apperr.NotFound("follow-up stage not found")
	}
	return st, nil
}

func (f *fakeRepo) StageInUse(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.StageKey == key {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) CreateStage(_ context.Context, stage domain.Stage) (domain.Stage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, st := range f.stages {
		if st.Key == stage.Key {
			return domain.Stage{}, apperr.Validation("stage key already exists")
		}
	}
	if stage.ID == uuid.Nil {
		stage.ID = uuid.New()
	}
	stage.CreatedAt = time.Now().UTC()
	stage.UpdatedAt = stage.CreatedAt
	f.stages[stage.ID] = stage
	return stage, nil
}

func (f *fakeRepo) UpdateStage(_ context.Context, stage domain.Stage) (domain.Stage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.stages[stage.ID]
	if !ok {
		return domain.Stage{}, apperr.NotFound("follow-up stage not found")
	}
	if current.Key != stage.Key {
		// ON UPDATE CASCADE
		for id, st := range f.stages {
			if st.NextStageKey != nil && *st.NextStageKey == current.Key {
				next := stage.Key
				st.NextStageKey = &next
				f.stages[id] = st
			}
		}
		for id, rec := range f.records {
			if rec.StageKey == current.Key {
				rec.StageKey = stage.Key
				f.records[id] = rec
			}
		}
	}
	stage.UpdatedAt = time.Now().UTC()
	f.stages[stage.ID] = stage
	return stage, nil
}

func (f *fakeRepo) DeleteStage(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.stages[id]
	if !ok {
		return apperr.NotFound("follow-up stage not found")
	}
	for otherID, other := range f.stages {
		if other.NextStageKey != nil && *other.NextStageKey == st.Key {
			other.NextStageKey = nil
			f.stages[otherID] = other
		}
	}
	delete(f.stages, id)
	return nil
}

func (f *fakeRepo) SetStageActive(_ context.Context, id uuid.UUID, isActive bool) (domain.Stage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.stages[id]
	if !ok {
		return domain.Stage{}, apperr.NotFound("follow-up stage not found")
	}
	st.IsActive = isActive
	f.stages[id] = st
	return st, nil
}

func (f *fakeRepo) UpdateStageOrder(_ context.Context, items []repository.StageOrder) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	updated := 0
	for _, item := range items {
		st, ok := f.stages[item.ID]
		if !ok {
			continue
		}
		st.DisplayOrder = item.DisplayOrder
		f.stages[item.ID] = st
		updated++
	}
	return updated, nil
}

func (f *fakeRepo) GetLead(_ context.Context, leadID uuid.UUID) (domain.LeadRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[leadID]
	if !ok {
		return domain.LeadRef{}, apperr.Wrap(apperr.KindNotFound, "lead not found", domain.ErrNotFound)
	}
	return lead.ref, nil
}

func (f *fakeRepo) viewLocked(rec domain.FollowUp) domain.FollowUpView {
	lead := f.leads[rec.LeadID]
	view := domain.FollowUpView{
		FollowUp:    rec,
		LeadName:    lead.name,
		LeadPhone:   lead.phone,
		LeadStatus:  lead.ref.Status,
		LeadOwnerID: lead.ref.OwnerID,
		BranchID:    lead.ref.BranchID,
	}
	for _, st := range f.stages {
		if st.Key == rec.StageKey {
			view.StageName = st.Name
		}
	}
	return view
}

func (f *fakeRepo) GetFollowUp(_ context.Context, id uuid.UUID) (domain.FollowUpView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return domain.FollowUpView{}, apperr.Wrap(apperr.KindNotFound, "follow-up not found", domain.ErrNotFound)
	}
	return f.viewLocked(rec), nil
}

func (f *fakeRepo) HasScheduled(_ context.Context, leadID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.LeadID == leadID && rec.Status == domain.StatusScheduled {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) matching(filter domain.ListFilter) []domain.FollowUpView {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.FollowUpView, 0)
	for _, rec := range f.records {
		view := f.viewLocked(rec)
		if filter.Matches(view) {
			out = append(out, view)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out
}

func (f *fakeRepo) ListFollowUps(_ context.Context, filter domain.ListFilter) ([]domain.FollowUpView, error) {
	return f.matching(filter), nil
}

func (f *fakeRepo) CountStatistics(_ context.Context, filter domain.ListFilter) (domain.Statistics, error) {
	var total, completed, noResponse, scheduled int
	for _, v := range f.matching(filter) {
		total++
		switch v.Status {
		case domain.StatusCompleted:
			completed++
			if v.AdaRespon != nil && !*v.AdaRespon {
				noResponse++
			}
		case domain.StatusScheduled:
			scheduled++
		}
	}
	return domain.NewStatistics(total, completed, noResponse, scheduled), nil
}

func (f *fakeRepo) StageBreakdown(ctx context.Context, filter domain.ListFilter) ([]domain.StageCount, error) {
	stages, _ := f.ListStages(ctx, false)
	byKey := make(map[string]*domain.StageCount, len(stages))
	out := make([]domain.StageCount, len(stages))
	for i, st := range stages {
		out[i] = domain.StageCount{StageKey: st.Key, StageName: st.Name, DisplayOrder: st.DisplayOrder}
		byKey[st.Key] = &out[i]
	}
	for _, v := range f.matching(filter) {
		c, ok := byKey[v.StageKey]
		if !ok {
			continue
		}
		if v.Status == domain.StatusScheduled {
			c.Scheduled++
			continue
		}
		c.Completed++
		if v.AdaRespon != nil && *v.AdaRespon {
			c.Responded++
		}
	}
	return out, nil
}

func (f *fakeRepo) GetUserContact(_ context.Context, userID uuid.UUID) (repository.UserContact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.users[userID]
	if !ok {
		return repository.UserContact{}, apperr.NotFound("user not found")
	}
	return c, nil
}

func (f *fakeRepo) InsertFollowUp(_ context.Context, rec domain.FollowUp) (domain.FollowUp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	known := false
	for _, st := range f.stages {
		if st.Key == rec.StageKey {
			known = true
		}
	}
	if !known {
		return domain.FollowUp{}, domain.InvalidStage(rec.StageKey)
	}
	for _, other := range f.records {
		if other.LeadID == rec.LeadID && other.Status == domain.StatusScheduled {
			return domain.FollowUp{}, apperr.Conflict("lead already has a scheduled follow-up").WithCode(domain.CodeScheduledExists)
		}
	}
	rec.ID = uuid.New()
	rec.Status = domain.StatusScheduled
	rec.CreatedAt = time.Now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	f.records[rec.ID] = rec
	return rec, nil
}

func (f *fakeRepo) CompleteFollowUp(_ context.Context, id uuid.UUID, params repository.CompleteParams) (domain.FollowUp, error) {
	if f.beforeComplete != nil {
		f.beforeComplete(id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok || rec.Status != domain.StatusScheduled {
		return domain.FollowUp{}, domain.ErrStaleState
	}
	completedAt := params.CompletedAt
	adaRespon := params.AdaRespon
	rec.Status = domain.StatusCompleted
	rec.CompletedAt = &completedAt
	rec.AdaRespon = &adaRespon
	rec.Catatan = params.Catatan
	rec.HasilFollowup = params.HasilFollowup
	f.records[id] = rec
	return rec, nil
}

func (f *fakeRepo) RescheduleFollowUp(_ context.Context, id uuid.UUID, scheduledAt time.Time) (domain.FollowUp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok || rec.Status != domain.StatusScheduled {
		return domain.FollowUp{}, domain.ErrStaleState
	}
	rec.ScheduledAt = scheduledAt
	f.records[id] = rec
	return rec, nil
}

func (f *fakeRepo) SetAttemptSlot(_ context.Context, id uuid.UUID, number int, completed bool, at *time.Time) (domain.FollowUp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok || rec.Status != domain.StatusScheduled || rec.Slots[number-1].Completed == completed {
		return domain.FollowUp{}, domain.ErrStaleState
	}
	rec.Slots[number-1] = domain.AttemptSlot{Completed: completed, CompletedAt: at}
	f.records[id] = rec
	return rec, nil
}

// recordingBus captures published events synchronously.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.EventName() == name {
			n++
		}
	}
	return n
}
