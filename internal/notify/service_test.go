package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/telehealth-ussd/internal/events"
	"github.com/wolfman30/telehealth-ussd/internal/records"
)

type mockEmailSender struct {
	mu      sync.Mutex
	sent    []EmailMessage
	callErr error
}

func (m *mockEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.callErr != nil {
		return m.callErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockEmailSender) messages() []EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EmailMessage(nil), m.sent...)
}

type failingDirectory struct{}

func (failingDirectory) GetProvider(context.Context, int64) (*records.Provider, error) {
	return nil, errors.New("db: timeout")
}

var reportedAt = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func TestNotifySymptomReport(t *testing.T) {
	email := &mockEmailSender{}
	svc := NewService(email, records.NewSeededMemoryStore(), nil)

	err := svc.NotifySymptomReport(context.Background(), events.SymptomReportV1{
		PatientID:   1,
		PatientName: "Jane Wanjiku",
		PhoneNumber: "+254711001122",
		ProviderID:  1,
		Symptom:     "Severe headache for Few days",
		Duration:    "Few days",
		Severity:    "Severe",
		Category:    "pain",
		ReportedAt:  reportedAt,
	})
	require.NoError(t, err)

	sent := email.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "john.doe@tujali.health", sent[0].To)
	assert.Equal(t, "Dr. John Doe", sent[0].ToName)
	assert.Equal(t, "URGENT: Symptom report (Severe) - Jane Wanjiku", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "Symptoms: Severe headache for Few days")
	assert.Contains(t, sent[0].Body, "Reported: October 19, 2026 at 09:30 UTC")
	assert.Contains(t, sent[0].HTML, "#dc2626")
}

func TestNotifyAppointmentRequested(t *testing.T) {
	email := &mockEmailSender{}
	svc := NewService(email, records.NewSeededMemoryStore(), nil)

	err := svc.NotifyAppointmentRequested(context.Background(), events.AppointmentRequestedV1{
		AppointmentID: 7,
		PatientName:   "Jane Wanjiku",
		PhoneNumber:   "+254711001122",
		ProviderID:    4,
		Date:          "20-10-2026",
		Time:          "09:00",
	})
	require.NoError(t, err)

	sent := email.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "elizabeth.ochieng@tujali.health", sent[0].To)
	assert.Equal(t, "Appointment request - Jane Wanjiku, Tuesday, 20 October 2026 at 09:00", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "Appointment ID: 7")
}

func TestNotifyPatientMessageEscapesHTML(t *testing.T) {
	email := &mockEmailSender{}
	svc := NewService(email, records.NewSeededMemoryStore(), nil)

	err := svc.NotifyPatientMessage(context.Background(), events.PatientMessageV1{
		PatientName: "Jane Wanjiku",
		PhoneNumber: "+254711001122",
		ProviderID:  1,
		Content:     "<b>pain</b> is worse",
		SentAt:      reportedAt,
	})
	require.NoError(t, err)

	sent := email.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "New message from Jane Wanjiku", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "<b>pain</b> is worse")
	assert.Contains(t, sent[0].HTML, "&lt;b&gt;pain&lt;/b&gt; is worse")
}

func TestNotifySkipsWhenNothingToSend(t *testing.T) {
	email := &mockEmailSender{}
	store := records.NewMemoryStore(records.WithProviders([]records.Provider{{ID: 9, Name: "Dr. No Mail"}}))
	svc := NewService(email, store, nil)

	assert.NoError(t, svc.NotifyPatientMessage(context.Background(), events.PatientMessageV1{ProviderID: 9}))
	assert.NoError(t, svc.NotifyPatientMessage(context.Background(), events.PatientMessageV1{ProviderID: 404}))
	assert.NoError(t, NewService(nil, store, nil).NotifyPatientMessage(context.Background(), events.PatientMessageV1{ProviderID: 9}))
	assert.Empty(t, email.messages())
}

func TestNotifyPropagatesFailures(t *testing.T) {
	svc := NewService(&mockEmailSender{}, failingDirectory{}, nil)
	assert.ErrorContains(t, svc.NotifyPatientMessage(context.Background(), events.PatientMessageV1{ProviderID: 1}), "db: timeout")

	svc = NewService(&mockEmailSender{callErr: errors.New("smtp down")}, records.NewSeededMemoryStore(), nil)
	assert.ErrorContains(t, svc.NotifyPatientMessage(context.Background(), events.PatientMessageV1{ProviderID: 1}), "smtp down")
}

func TestHandleDispatchesByEventType(t *testing.T) {
	email := &mockEmailSender{}
	svc := NewService(email, records.NewSeededMemoryStore(), nil)

	env, err := events.NewEnvelope(events.PatientAggregate(1), "ATUid_1", events.PatientMessageV1{ProviderID: 2, PatientName: "Jane", Content: "hi"})
	require.NoError(t, err)
	require.NoError(t, svc.Handle(context.Background(), env))

	env.EventType = "payment_succeeded.v1"
	require.NoError(t, svc.Handle(context.Background(), env))

	env.EventType = events.EventTypeSymptomReport
	env.Payload = []byte(`{"provider_id":`)
	assert.Error(t, svc.Handle(context.Background(), env))

	sent := email.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "sarah.kimani@tujali.health", sent[0].To)
}
