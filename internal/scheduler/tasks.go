package scheduler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskFollowUpReminder = "followups.reminder"

// FollowUpReminderPayload identifies the record and the instant the reminder
// was planned for.
type FollowUpReminderPayload struct {
	FollowUpID  uuid.UUID `json:"followUpId"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

// TaskID is unique per record and planned instant.
func (p FollowUpReminderPayload) TaskID() string {
	return fmt.Sprintf("followup:%s:%d", p.FollowUpID, p.ScheduledAt.Unix())
}

func NewFollowUpReminderTask(payload FollowUpReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowUpReminder, data), nil
}

func ParseFollowUpReminderPayload(task *asynq.Task) (FollowUpReminderPayload, error) {
	var payload FollowUpReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowUpReminderPayload{}, err
	}
	if payload.FollowUpID == uuid.Nil {
		return FollowUpReminderPayload{}, fmt.Errorf("reminder payload without follow-up id")
	}
	return payload, nil
}
