package records

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/telehealth-ussd/internal/geo"
)

// MemoryStore is an in-process Store used for local development and tests.
type MemoryStore struct {
	mu           sync.RWMutex
	now          func() time.Time
	patients     map[int64]*Patient
	byPhone      map[string]int64
	providers    []Provider
	appointments []Appointment
	messages     []Message
	healthInfo   []HealthInfo

	nextPatientID     int64
	nextAppointmentID int64
	nextMessageID     int64
}

var _ Store = (*MemoryStore)(nil)

// MemoryOption customizes a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithProviders replaces the provider directory.
func WithProviders(providers []Provider) MemoryOption {
	return func(s *MemoryStore) {
		s.providers = append([]Provider(nil), providers...)
	}
}

// WithHealthInfo replaces the health information catalogue.
func WithHealthInfo(items []HealthInfo) MemoryOption {
	return func(s *MemoryStore) {
		s.healthInfo = append([]HealthInfo(nil), items...)
	}
}

// WithPatients preloads patients.
func WithPatients(patients []Patient) MemoryOption {
	return func(s *MemoryStore) {
		for i := range patients {
			p := clonePatient(&patients[i])
			s.patients[p.ID] = p
			s.byPhone[p.PhoneNumber] = p.ID
			if p.ID > s.nextPatientID {
				s.nextPatientID = p.ID
			}
		}
	}
}

// WithMessages preloads messages.
func WithMessages(messages []Message) MemoryOption {
	return func(s *MemoryStore) {
		s.messages = append(s.messages, messages...)
		for _, m := range messages {
			if m.ID > s.nextMessageID {
				s.nextMessageID = m.ID
			}
		}
	}
}

// NewMemoryStore creates an empty store with the seed provider directory and
// health information catalogue.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		now:        func() time.Time { return time.Now().UTC() },
		patients:   make(map[int64]*Patient),
		byPhone:    make(map[string]int64),
		providers:  SeedProviders(),
		healthInfo: SeedHealthInfo(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSeededMemoryStore also loads the demo patients and conversation.
func NewSeededMemoryStore(opts ...MemoryOption) *MemoryStore {
	now := time.Now().UTC()
	seeded := []MemoryOption{WithPatients(SeedPatients(now)), WithMessages(SeedMessages(now))}
	return NewMemoryStore(append(seeded, opts...)...)
}

func (s *MemoryStore) FindPatientByPhone(ctx context.Context, phone string) (*Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPhone[strings.TrimSpace(phone)]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return clonePatient(s.patients[id]), nil
}

func (s *MemoryStore) CreatePatient(ctx context.Context, in NewPatient) (*Patient, error) {
	if in.Coordinates != nil && !in.Coordinates.Valid() {
		return nil, ErrInvalidCoordinates
	}
	phone := strings.TrimSpace(in.PhoneNumber)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byPhone[phone]; exists {
		return nil, ErrPatientExists
	}
	s.nextPatientID++
	p := &Patient{
		ID:          s.nextPatientID,
		PhoneNumber: phone,
		Name:        in.Name,
		Age:         in.Age,
		Gender:      in.Gender,
		Location:    in.Location,
		Coordinates: clonePoint(in.Coordinates),
		Language:    in.Language,
		CreatedAt:   s.now(),
	}
	s.patients[p.ID] = p
	s.byPhone[phone] = p.ID
	return clonePatient(p), nil
}

func (s *MemoryStore) UpdatePatientCoordinates(ctx context.Context, patientID int64, pt geo.Point) error {
	if !pt.Valid() {
		return ErrInvalidCoordinates
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.patients[patientID]
	if !ok {
		return ErrPatientNotFound
	}
	p.Coordinates = &geo.Point{Lat: pt.Lat, Lon: pt.Lon}
	return nil
}

func (s *MemoryStore) AppendPatientSymptom(ctx context.Context, patientID int64, symptom Symptom) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.patients[patientID]
	if !ok {
		return ErrPatientNotFound
	}
	if symptom.RecordedAt.IsZero() {
		symptom.RecordedAt = s.now()
	}
	p.Symptoms = append(p.Symptoms, symptom)
	return nil
}

func (s *MemoryStore) ListProviders(ctx context.Context) ([]Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Provider, 0, len(s.providers))
	for _, p := range s.providers {
		p.Coordinates = clonePoint(p.Coordinates)
		out = append(out, p)
	}
	return out, nil
}

func (s *MemoryStore) GetProvider(ctx context.Context, id int64) (*Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.providers {
		if p.ID == id {
			p.Coordinates = clonePoint(p.Coordinates)
			return &p, nil
		}
	}
	return nil, ErrProviderNotFound
}

func (s *MemoryStore) CreateAppointment(ctx context.Context, appt Appointment) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.patients[appt.PatientID]; !ok {
		return nil, ErrPatientNotFound
	}
	if !s.hasProviderLocked(appt.ProviderID) {
		return nil, ErrProviderNotFound
	}
	s.nextAppointmentID++
	appt.ID = s.nextAppointmentID
	if appt.Status == "" {
		appt.Status = AppointmentStatusPending
	}
	appt.CreatedAt = s.now()
	s.appointments = append(s.appointments, appt)
	return &appt, nil
}

func (s *MemoryStore) CreateMessage(ctx context.Context, msg Message) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasProviderLocked(msg.ProviderID) {
		return nil, ErrProviderNotFound
	}
	s.nextMessageID++
	msg.ID = s.nextMessageID
	if msg.Sender == "" {
		msg.Sender = SenderPatient
	}
	msg.CreatedAt = s.now()
	s.messages = append(s.messages, msg)
	return &msg, nil
}

func (s *MemoryStore) ListConversation(ctx context.Context, patientID int64, limit int) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Message, 0)
	for _, m := range s.messages {
		if m.PatientID == patientID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) ListHealthInfo(ctx context.Context, language string, topic Topic) ([]HealthInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]HealthInfo, 0)
	for _, h := range s.healthInfo {
		if !strings.EqualFold(h.Language, language) {
			continue
		}
		if topic != "" && h.Topic != topic {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

// Appointments returns a snapshot of booked appointments.
func (s *MemoryStore) Appointments() []Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Appointment(nil), s.appointments...)
}

func (s *MemoryStore) hasProviderLocked(id int64) bool {
	for _, p := range s.providers {
		if p.ID == id {
			return true
		}
	}
	return false
}

func clonePoint(p *geo.Point) *geo.Point {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func clonePatient(p *Patient) *Patient {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Coordinates = clonePoint(p.Coordinates)
	cp.Symptoms = append([]Symptom(nil), p.Symptoms...)
	return &cp
}
