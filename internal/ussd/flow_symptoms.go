package ussd

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/telehealth-ussd/internal/events"
	"github.com/wolfman30/telehealth-ussd/internal/records"
)

// Durations and severities are stored in English whatever the session
// language so providers read one vocabulary.
var (
	durations  = []string{"Today only", "Few days", "A week or more", "A month or more"}
	severities = []records.Severity{records.SeverityMild, records.SeverityModerate, records.SeveritySevere}
)

func (r *Router) handleSymptoms(ctx context.Context, sess *Session, input string) (Reply, error) {
	switch sess.State.Step {
	case StepDescription:
		text := strings.TrimSpace(input)
		if text == "" {
			return r.prompt(sess, "symptom_description_prompt", nil), nil
		}
		p, err := r.patient(ctx, sess)
		if err != nil {
			return Reply{}, err
		}
		if p == nil {
			return r.mainMenu(ctx, sess)
		}
		if err := r.records.AppendPatientSymptom(ctx, p.ID, records.NewSymptom(text, "", "", r.now())); err != nil {
			return Reply{}, err
		}
		sess.Scratch.Symptom = text
		sess.State = StateSymptomDuration
		return r.prompt(sess, "symptom_duration_prompt", nil), nil

	case StepDuration:
		n, ok := choice(input, len(durations))
		if !ok {
			return r.invalid(sess), nil
		}
		sess.Scratch.Duration = durations[n-1]
		sess.State = StateSymptomSeverity
		return r.prompt(sess, "symptom_severity_prompt", nil), nil

	case StepSeverity:
		n, ok := choice(input, len(severities))
		if !ok {
			return r.invalid(sess), nil
		}
		return r.submitSymptoms(ctx, sess, severities[n-1])

	case StepNextSteps:
		switch input {
		case "1":
			return r.beginAppointment(sess), nil
		case "0":
			return r.mainMenu(ctx, sess)
		}
		return r.invalid(sess), nil
	}
	return r.mainMenu(ctx, sess)
}

// submitSymptoms stores the enriched symptom and the provider summary.
func (r *Router) submitSymptoms(ctx context.Context, sess *Session, severity records.Severity) (Reply, error) {
	p, err := r.patient(ctx, sess)
	if err != nil {
		return Reply{}, err
	}
	if p == nil {
		return r.mainMenu(ctx, sess)
	}

	now := r.now()
	enriched := records.NewSymptom(fmt.Sprintf("%s for %s", sess.Scratch.Symptom, sess.Scratch.Duration), severity, "", now)
	if err := r.records.AppendPatientSymptom(ctx, p.ID, enriched); err != nil {
		return Reply{}, err
	}

	provider, err := r.designatedProvider(ctx)
	if err != nil {
		return Reply{}, err
	}
	msg, err := r.records.CreateMessage(ctx, records.Message{
		ProviderID: provider.ID,
		PatientID:  p.ID,
		Content:    fmt.Sprintf("Symptoms: %s\nDuration: %s\nSeverity: %s", sess.Scratch.Symptom, sess.Scratch.Duration, severity),
		Sender:     records.SenderPatient,
		CreatedAt:  now,
	})
	if err != nil {
		return Reply{}, err
	}

	r.publish(ctx, sess, p.ID, events.SymptomReportV1{
		PatientID:   p.ID,
		PatientName: p.Name,
		PhoneNumber: p.PhoneNumber,
		ProviderID:  provider.ID,
		MessageID:   msg.ID,
		Symptom:     enriched.Text,
		Duration:    sess.Scratch.Duration,
		Severity:    string(enriched.Severity),
		Category:    string(enriched.Category),
		ReportedAt:  now,
	})

	sess.Scratch = Scratch{}
	sess.State = StateSymptomNextSteps
	return r.prompt(sess, "symptom_thanks", nil), nil
}
