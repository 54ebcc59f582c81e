package events

import "time"

const (
	EventTypeSymptomReport        = "symptom_report.v1"
	EventTypeAppointmentRequested = "appointment_requested.v1"
	EventTypePatientMessage       = "patient_message.v1"
)

// SymptomReportV1 is emitted when triage finishes and the summary message
// has been stored for the designated provider.
type SymptomReportV1 struct {
	PatientID   int64     `json:"patient_id"`
	PatientName string    `json:"patient_name"`
	PhoneNumber string    `json:"phone_number"`
	ProviderID  int64     `json:"provider_id"`
	MessageID   int64     `json:"message_id"`
	Symptom     string    `json:"symptom"`
	Duration    string    `json:"duration"`
	Severity    string    `json:"severity"`
	Category    string    `json:"category"`
	ReportedAt  time.Time `json:"reported_at"`
}

func (SymptomReportV1) EventType() string { return EventTypeSymptomReport }

// AppointmentRequestedV1 is emitted for every pending appointment booked over USSD.
type AppointmentRequestedV1 struct {
	AppointmentID int64     `json:"appointment_id"`
	PatientID     int64     `json:"patient_id"`
	PatientName   string    `json:"patient_name"`
	PhoneNumber   string    `json:"phone_number"`
	ProviderID    int64     `json:"provider_id"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	RequestedAt   time.Time `json:"requested_at"`
}

func (AppointmentRequestedV1) EventType() string { return EventTypeAppointmentRequested }

// PatientMessageV1 is emitted when a patient sends a free-text message.
type PatientMessageV1 struct {
	MessageID   int64     `json:"message_id"`
	PatientID   int64     `json:"patient_id"`
	PatientName string    `json:"patient_name"`
	PhoneNumber string    `json:"phone_number"`
	ProviderID  int64     `json:"provider_id"`
	Content     string    `json:"content"`
	SentAt      time.Time `json:"sent_at"`
}

func (PatientMessageV1) EventType() string { return EventTypePatientMessage }
