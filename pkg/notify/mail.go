package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

// Mailer sends a plain text e-mail. Implemented by the Gmail client and SMTPMailer.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

var mailBody = template.Must(template.New("event").Parse(
	`{{if eq .Type "SCHEDULE_REJECTED"}}A schedule for employee {{.EmployeeID}} on {{.Date}} was rejected.
{{else if eq .Type "SHORTAGE_DETECTED"}}{{with .Suggestion}}The {{.Shift.Name}} shift ({{.Shift.Start}}-{{.Shift.End}}) on {{.Date}} needs {{.RequiredStaff}} staff but only {{len .RecommendedEmployees}} suitable employee(s) were found.
{{range .Issues}}
  - {{.}}{{end}}
{{end}}{{else}}Employee {{.EmployeeID}} was scheduled on {{.Date}}{{with .Record}} from {{.ShiftStart}} to {{.ShiftEnd}} ({{.ShiftType}}){{end}}.
{{end}}{{if .Violations}}
Rule findings:
{{range .Violations}}  - {{.String}}
{{end}}{{end}}`))

var mailSubjects = map[model.EventType]string{
	model.EventScheduleCreated:  "Schedule created",
	model.EventScheduleRejected: "Schedule rejected",
	model.EventShortageDetected: "Staff shortage",
}

// MailPublisher e-mails a summary of selected event types to fixed recipients
type MailPublisher struct {
	mailer     Mailer
	recipients []string
	types      map[model.EventType]bool
}

// NewMailPublisher sends the given event types. With no types it sends
// rejections and shortages only.
func NewMailPublisher(mailer Mailer, recipients []string, types ...model.EventType) *MailPublisher {
	if len(types) == 0 {
		types = []model.EventType{model.EventScheduleRejected, model.EventShortageDetected}
	}
	wanted := make(map[model.EventType]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}
	return &MailPublisher{mailer: mailer, recipients: recipients, types: wanted}
}

func (p *MailPublisher) Publish(_ context.Context, event model.Event) error {
	if !p.types[event.Type] || len(p.recipients) == 0 {
		return nil
	}

	subject, body, err := renderMail(event)
	if err != nil {
		return err
	}

	var errs []error
	for _, to := range p.recipients {
		if err := p.mailer.SendEmail(to, subject, body); err != nil {
			errs = append(errs, fmt.Errorf("failed to email %s: %w", to, err))
		}
	}
	return errors.Join(errs...)
}

func renderMail(event model.Event) (string, string, error) {
	subject := mailSubjects[event.Type]
	if event.Date != "" {
		subject = fmt.Sprintf("%s: %s", subject, event.Date)
	}

	var body bytes.Buffer
	if err := mailBody.Execute(&body, event); err != nil {
		return "", "", fmt.Errorf("failed to render %s email: %w", event.Type, err)
	}
	return subject, body.String(), nil
}
