// Package records owns the patient, provider, appointment, message and
// health information entities consumed by the USSD state machine.
package records

import (
	"context"

	"github.com/wolfman30/telehealth-ussd/internal/geo"
)

// Store is the record store the USSD core depends on.
type Store interface {
	FindPatientByPhone(ctx context.Context, phone string) (*Patient, error)
	CreatePatient(ctx context.Context, in NewPatient) (*Patient, error)
	UpdatePatientCoordinates(ctx context.Context, patientID int64, point geo.Point) error
	AppendPatientSymptom(ctx context.Context, patientID int64, symptom Symptom) error
	ListProviders(ctx context.Context) ([]Provider, error)
	GetProvider(ctx context.Context, id int64) (*Provider, error)
	CreateAppointment(ctx context.Context, appt Appointment) (*Appointment, error)
	CreateMessage(ctx context.Context, msg Message) (*Message, error)
	// ListConversation returns the newest messages for a patient first.
	ListConversation(ctx context.Context, patientID int64, limit int) ([]Message, error)
	// ListHealthInfo returns articles in language, optionally narrowed to topic.
	ListHealthInfo(ctx context.Context, language string, topic Topic) ([]HealthInfo, error)
}
