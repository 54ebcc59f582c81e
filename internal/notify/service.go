package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/wolfman30/telehealth-ussd/internal/events"
	"github.com/wolfman30/telehealth-ussd/internal/localization"
	"github.com/wolfman30/telehealth-ussd/internal/records"
	"github.com/wolfman30/telehealth-ussd/pkg/logging"
)

// ProviderDirectory resolves the provider an event is addressed to.
type ProviderDirectory interface {
	GetProvider(ctx context.Context, id int64) (*records.Provider, error)
}

// Service emails providers about patient activity captured over USSD.
type Service struct {
	email     EmailSender
	providers ProviderDirectory
	logger    *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, providers ProviderDirectory, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:     email,
		providers: providers,
		logger:    logger,
	}
}

// Handle dispatches one envelope. Unknown event types are ignored.
func (s *Service) Handle(ctx context.Context, env events.Envelope) error {
	switch env.EventType {
	case events.EventTypeSymptomReport:
		var evt events.SymptomReportV1
		if err := env.DecodePayload(&evt); err != nil {
			return err
		}
		return s.NotifySymptomReport(ctx, evt)
	case events.EventTypeAppointmentRequested:
		var evt events.AppointmentRequestedV1
		if err := env.DecodePayload(&evt); err != nil {
			return err
		}
		return s.NotifyAppointmentRequested(ctx, evt)
	case events.EventTypePatientMessage:
		var evt events.PatientMessageV1
		if err := env.DecodePayload(&evt); err != nil {
			return err
		}
		return s.NotifyPatientMessage(ctx, evt)
	default:
		s.logger.Debug("notify: ignoring event", "event_type", env.EventType, "event_id", env.EventID)
		return nil
	}
}

// NotifySymptomReport alerts the designated provider about a new triage report.
func (s *Service) NotifySymptomReport(ctx context.Context, evt events.SymptomReportV1) error {
	provider, ok, err := s.recipient(ctx, evt.ProviderID)
	if !ok {
		return err
	}

	subject := fmt.Sprintf("Symptom report (%s) - %s", evt.Severity, evt.PatientName)
	if evt.Severity == string(records.SeveritySevere) {
		subject = "URGENT: " + subject
	}
	body := fmt.Sprintf(`%s reported new symptoms over USSD.

Patient: %s
Phone: %s
Symptoms: %s
Duration: %s
Severity: %s
Category: %s
Reported: %s

Reply from the provider dashboard to continue the conversation.

- Tujali Telehealth`, evt.PatientName, evt.PatientName, evt.PhoneNumber, evt.Symptom, evt.Duration, evt.Severity, evt.Category, formatTimestamp(evt.ReportedAt))

	rows := []detailRow{
		{"Patient", evt.PatientName},
		{"Phone", evt.PhoneNumber},
		{"Symptoms", evt.Symptom},
		{"Duration", evt.Duration},
		{"Severity", evt.Severity},
		{"Category", evt.Category},
		{"Reported", formatTimestamp(evt.ReportedAt)},
	}
	return s.send(ctx, provider, subject, body, renderHTML("New symptom report", severityColor(evt.Severity), rows))
}

// NotifyAppointmentRequested asks the provider to confirm a pending booking.
func (s *Service) NotifyAppointmentRequested(ctx context.Context, evt events.AppointmentRequestedV1) error {
	provider, ok, err := s.recipient(ctx, evt.ProviderID)
	if !ok {
		return err
	}

	when := fmt.Sprintf("%s at %s", formatAppointmentDate(evt.Date), evt.Time)
	subject := fmt.Sprintf("Appointment request - %s, %s", evt.PatientName, when)
	body := fmt.Sprintf(`%s requested an appointment.

Patient: %s
Phone: %s
When: %s
Appointment ID: %d
Status: pending

Please call the patient to confirm.

- Tujali Telehealth`, evt.PatientName, evt.PatientName, evt.PhoneNumber, when, evt.AppointmentID)

	rows := []detailRow{
		{"Patient", evt.PatientName},
		{"Phone", evt.PhoneNumber},
		{"When", when},
		{"Appointment ID", fmt.Sprintf("%d", evt.AppointmentID)},
	}
	return s.send(ctx, provider, subject, body, renderHTML("Appointment request", "#2563eb", rows))
}

// NotifyPatientMessage forwards a patient message to the provider.
func (s *Service) NotifyPatientMessage(ctx context.Context, evt events.PatientMessageV1) error {
	provider, ok, err := s.recipient(ctx, evt.ProviderID)
	if !ok {
		return err
	}

	subject := fmt.Sprintf("New message from %s", evt.PatientName)
	body := fmt.Sprintf(`%s (%s) wrote:

%s

Sent: %s

- Tujali Telehealth`, evt.PatientName, evt.PhoneNumber, evt.Content, formatTimestamp(evt.SentAt))

	rows := []detailRow{
		{"Patient", evt.PatientName},
		{"Phone", evt.PhoneNumber},
		{"Message", evt.Content},
		{"Sent", formatTimestamp(evt.SentAt)},
	}
	return s.send(ctx, provider, subject, body, renderHTML("New patient message", "#10b981", rows))
}

// recipient returns ok=false when nothing should be sent; err is then set
// only for lookup failures worth retrying.
func (s *Service) recipient(ctx context.Context, providerID int64) (*records.Provider, bool, error) {
	if s.email == nil || s.providers == nil {
		s.logger.Debug("notify: email or provider directory not configured, skipping")
		return nil, false, nil
	}
	provider, err := s.providers.GetProvider(ctx, providerID)
	if errors.Is(err, records.ErrProviderNotFound) {
		s.logger.Warn("notify: provider not found", "provider_id", providerID)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("notify: get provider: %w", err)
	}
	if strings.TrimSpace(provider.Email) == "" {
		s.logger.Debug("notify: provider has no email address", "provider_id", providerID)
		return nil, false, nil
	}
	return provider, true, nil
}

func (s *Service) send(ctx context.Context, provider *records.Provider, subject, body, htmlBody string) error {
	msg := EmailMessage{
		To:      provider.Email,
		ToName:  provider.Name,
		Subject: subject,
		Body:    body,
		HTML:    htmlBody,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("notify: failed to send email", "error", err, "provider_id", provider.ID)
		return err
	}
	s.logger.Info("notify: provider email sent", "provider_id", provider.ID, "subject", subject)
	return nil
}

type detailRow struct {
	label string
	value string
}

func renderHTML(title, accent string, rows []detailRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: %s;">%s</h2>
<table style="border-collapse: collapse; margin: 20px 0;">
`, accent, html.EscapeString(title))
	for _, row := range rows {
		if row.value == "" {
			continue
		}
		fmt.Fprintf(&b, `  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>%s:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>
`, html.EscapeString(row.label), strings.ReplaceAll(html.EscapeString(row.value), "\n", "<br>"))
	}
	b.WriteString(`</table>
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">- Tujali Telehealth</p>
</div>`)
	return b.String()
}

func severityColor(severity string) string {
	switch severity {
	case string(records.SeveritySevere):
		return "#dc2626"
	case string(records.SeverityModerate):
		return "#d97706"
	default:
		return "#10b981"
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("January 2, 2006 at 15:04 MST")
}

func formatAppointmentDate(date string) string {
	d, err := time.Parse(localization.DateLayout, date)
	if err != nil {
		return date
	}
	return d.Format("Monday, 2 January 2006")
}
