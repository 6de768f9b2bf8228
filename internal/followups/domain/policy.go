package domain

import "strings"

// ExhaustedPolicy decides what completion does once a record ran out of
// sub-attempts without any response.
type ExhaustedPolicy string

const (
	// ExhaustedStop schedules nothing further and reports the exhaustion.
	ExhaustedStop ExhaustedPolicy = "stop"
	// ExhaustedContinue schedules the next cycle like any other completion.
	ExhaustedContinue ExhaustedPolicy = "continue"
)

// ParseExhaustedPolicy defaults to ExhaustedStop.
func ParseExhaustedPolicy(raw string) ExhaustedPolicy {
	if ExhaustedPolicy(strings.ToLower(strings.TrimSpace(raw))) == ExhaustedContinue {
		return ExhaustedContinue
	}
	return ExhaustedStop
}

// IsExhausted reports whether completing rec with the given outcome exhausts
// the stage: no response, no stage progression, all three attempts marked.
func IsExhausted(rec FollowUp, adaRespon, progressToNextStage bool) bool {
	return !adaRespon && !progressToNextStage && rec.AllAttemptsDone()
}
