package records

import (
	"time"

	"github.com/wolfman30/telehealth-ussd/internal/geo"
)

// Severity grades how badly a symptom affects the patient.
type Severity string

const (
	SeverityMild     Severity = "Mild"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
	SeverityUnknown  Severity = "Unknown"
)

// Category buckets a symptom for provider triage.
type Category string

const (
	CategoryRespiratory Category = "respiratory"
	CategoryDigestive   Category = "digestive"
	CategoryPain        Category = "pain"
	CategoryFever       Category = "fever"
	CategorySkin        Category = "skin"
	CategoryOther       Category = "other"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderPatient  Sender = "patient"
	SenderProvider Sender = "provider"
)

// Topic groups health information articles.
type Topic string

const (
	TopicCovid    Topic = "covid"
	TopicMaternal Topic = "maternal"
	TopicChronic  Topic = "chronic"
	TopicFirstAid Topic = "firstaid"
)

// AppointmentStatusPending is the status of every appointment booked over USSD.
const AppointmentStatusPending = "pending"

// Symptom is one reported complaint.
type Symptom struct {
	Text       string    `json:"text"`
	Severity   Severity  `json:"severity"`
	Category   Category  `json:"category"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Patient is a registered USSD user, keyed by phone number.
type Patient struct {
	ID          int64      `json:"id"`
	PhoneNumber string     `json:"phone_number"`
	Name        string     `json:"name"`
	Age         int        `json:"age"`
	Gender      string     `json:"gender"`
	Location    string     `json:"location"`
	Coordinates *geo.Point `json:"coordinates,omitempty"`
	Language    string     `json:"language"`
	Symptoms    []Symptom  `json:"symptoms,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Provider is a clinician patients can message or book.
type Provider struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Specialization string     `json:"specialization"`
	Languages      string     `json:"languages"`
	Location       string     `json:"location"`
	Coordinates    *geo.Point `json:"coordinates,omitempty"`
	Email          string     `json:"email,omitempty"`
}

func (p Provider) Position() *geo.Point { return p.Coordinates }
func (p Provider) Specialty() string { return p.Specialization }
func (p Provider) SpokenLanguages() []string { return geo.SplitLanguages(p.Languages) }

var _ geo.Locatable = Provider{}

// Appointment is a requested consultation slot.
type Appointment struct {
	ID         int64     `json:"id"`
	PatientID  int64     `json:"patient_id"`
	ProviderID int64     `json:"provider_id"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// Message is one entry in a patient/provider conversation.
type Message struct {
	ID         int64     `json:"id"`
	ProviderID int64     `json:"provider_id"`
	PatientID  int64     `json:"patient_id"`
	Content    string    `json:"content"`
	Sender     Sender    `json:"sender"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

// HealthInfo is a short localized article.
type HealthInfo struct {
	ID       int64  `json:"id"`
	Topic    Topic  `json:"topic"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

// NewPatient carries the fields collected during registration.
type NewPatient struct {
	PhoneNumber string
	Name        string
	Age         int
	Gender      string
	Location    string
	Coordinates *geo.Point
	Language    string
}
