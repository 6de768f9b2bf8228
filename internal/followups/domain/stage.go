package domain

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxStageKeyLength  = 50
	maxStageNameLength = 100
)

var stageKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Stage is one phase of the contact cadence. DisplayOrder only drives UI
// ordering; progression follows NextStageKey.
type Stage struct {
	ID           uuid.UUID
	Key          string
	Name         string
	DisplayOrder int
	NextStageKey *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StageChain is the next-stage adjacency lookup. A present key with a nil
// value is the end of a chain.
type StageChain map[string]*string

// NewStageChain builds the adjacency map from stored stages.
func NewStageChain(stages []Stage) StageChain {
	chain := make(StageChain, len(stages))
	for _, s := range stages {
		var next *string
		if s.NextStageKey != nil {
			v := *s.NextStageKey
			next = &v
		}
		chain[s.Key] = next
	}
	return chain
}

// Has reports whether key is a known stage.
func (c StageChain) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// Next resolves the stage following key, nil at the end of the chain.
func (c StageChain) Next(key string) (*string, error) {
	next, ok := c[key]
	if !ok {
		return nil, InvalidStage(key)
	}
	if next == nil {
		return nil, nil
	}
	v := *next
	return &v, nil
}

// NextActive follows the chain from key past inactive stages. It returns nil
// when the chain ends, or only inactive stages remain, before an active one.
func NextActive(stages []Stage, key string) (*string, error) {
	chain := NewStageChain(stages)
	active := make(map[string]bool, len(stages))
	for _, st := range stages {
		active[st.Key] = st.IsActive
	}

	next, err := chain.Next(key)
	if err != nil {
		return nil, err
	}
	for hops := 0; next != nil && !active[*next] && hops < len(stages); hops++ {
		if next, err = chain.Next(*next); err != nil {
			return nil, err
		}
	}
	if next != nil && !active[*next] {
		return nil, nil
	}
	return next, nil
}

// SortStages orders stages by display order, then key.
func SortStages(stages []Stage) {
	sort.SliceStable(stages, func(i, j int) bool {
		if stages[i].DisplayOrder != stages[j].DisplayOrder {
			return stages[i].DisplayOrder < stages[j].DisplayOrder
		}
		return stages[i].Key < stages[j].Key
	})
}

// FirstActive returns the lowest ordered active stage.
func FirstActive(stages []Stage) (Stage, bool) {
	sorted := make([]Stage, len(stages))
	copy(sorted, stages)
	SortStages(sorted)
	for _, s := range sorted {
		if s.IsActive {
			return s, true
		}
	}
	return Stage{}, false
}

// NormalizeStageKey trims and lower-cases a key.
func NormalizeStageKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// ValidateStage checks candidate against the existing catalog. existing may
// contain candidate itself (matched by ID) when updating.
func ValidateStage(candidate Stage, existing []Stage) error {
	if candidate.Key == "" {
		return Validation("stage key is required")
	}
	if len(candidate.Key) > maxStageKeyLength || !stageKeyPattern.MatchString(candidate.Key) {
		return Validation("stage key %q must be lowercase letters, digits, '-' or '_' (max %d)", candidate.Key, maxStageKeyLength)
	}
	name := strings.TrimSpace(candidate.Name)
	if name == "" {
		return Validation("stage name is required")
	}
	if len(name) > maxStageNameLength {
		return Validation("stage name is too long (max %d)", maxStageNameLength)
	}

	keys := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		if s.ID == candidate.ID {
			continue
		}
		if s.Key == candidate.Key {
			return Validation("stage key %q already exists", candidate.Key)
		}
		keys[s.Key] = struct{}{}
	}

	if candidate.NextStageKey == nil {
		return nil
	}
	next := *candidate.NextStageKey
	if next == candidate.Key {
		return Validation("stage %q cannot point to itself", candidate.Key)
	}
	if _, ok := keys[next]; !ok {
		return Validation("next stage %q does not exist", next)
	}
	return nil
}
