package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

const subjectFollowUpReminderFmt = "Pengingat follow-up: %s (%s)"

type baseEmailData struct {
	Title    string
	Heading  string
	CTALabel string
	CTAURL   string
}

type followUpReminderEmailData struct {
	baseEmailData
	UserName      string
	LeadName      string
	LeadPhone     string
	StageName     string
	ScheduledTime string
}

func renderFollowUpReminder(r FollowUpReminder) (subject string, content string, err error) {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	scheduled := r.ScheduledAt.In(loc).Format("02/01/2006 15:04 MST")

	data := followUpReminderEmailData{
		baseEmailData: baseEmailData{
			Title:   "Pengingat follow-up",
			Heading: "Follow-up segera jatuh tempo",
		},
		UserName:      r.UserName,
		LeadName:      r.LeadName,
		LeadPhone:     r.LeadPhone,
		StageName:     r.StageName,
		ScheduledTime: scheduled,
	}
	if r.LeadURL != "" {
		data.CTALabel = "Buka lead"
		data.CTAURL = r.LeadURL
	}

	content, err = renderEmailTemplate("followup_reminder.html", data)
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf(subjectFollowUpReminderFmt, r.LeadName, r.StageName), content, nil
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}
