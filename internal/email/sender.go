package email

import (
	"context"
	"time"

	"sales_crm_backend/platform/config"
)

// FollowUpReminder is what the owning user needs to call the lead on time.
type FollowUpReminder struct {
	UserName    string
	LeadName    string
	LeadPhone   string
	StageName   string
	ScheduledAt time.Time
	Location    *time.Location
	LeadURL     string
}

type Sender interface {
	SendFollowUpReminder(ctx context.Context, toEmail string, reminder FollowUpReminder) error
}

type NoopSender struct{}

func (NoopSender) SendFollowUpReminder(context.Context, string, FollowUpReminder) error {
	return nil
}

// NewSender returns an SMTP sender, or a no-op one when no SMTP host is set.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.IsEmailEnabled() {
		return NoopSender{}, nil
	}

	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}
