package ussd

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/wolfman30/telehealth-ussd/internal/records"
)

// DefaultSessionTTL bounds how long an idle dialogue is remembered. Gateways
// drop a USSD session well before this.
const DefaultSessionTTL = 3 * time.Minute

// ErrSessionNotFound is returned when no live session exists for an id.
var ErrSessionNotFound = errors.New("ussd: session not found")

var errSessionIDRequired = errors.New("ussd: session id required")

// SessionStore keeps dialogue state between stateless callbacks. Expired
// sessions must be reported as ErrSessionNotFound.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, sess *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// Session is the replicated record of one USSD dialogue.
type Session struct {
	ID          string    `json:"session_id"`
	PhoneNumber string    `json:"phone_number"`
	ServiceCode string    `json:"service_code,omitempty"`
	State       State     `json:"state"`
	Language    string    `json:"language,omitempty"`
	Scratch     Scratch   `json:"scratch"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Scratch accumulates the fields of the flow in progress.
type Scratch struct {
	Name     string `json:"name,omitempty" dynamodbav:"name,omitempty"`
	Age      int    `json:"age,omitempty" dynamodbav:"age,omitempty"`
	Gender   string `json:"gender,omitempty" dynamodbav:"gender,omitempty"`
	Location string `json:"location,omitempty" dynamodbav:"location,omitempty"`

	Symptom  string `json:"symptom,omitempty" dynamodbav:"symptom,omitempty"`
	Duration string `json:"duration,omitempty" dynamodbav:"duration,omitempty"`

	Dates       []string `json:"dates,omitempty" dynamodbav:"dates,omitempty"`
	Date        string   `json:"date,omitempty" dynamodbav:"date,omitempty"`
	Time        string   `json:"time,omitempty" dynamodbav:"time,omitempty"`
	ProviderIDs []int64  `json:"provider_ids,omitempty" dynamodbav:"providerIds,omitempty"`
	Ranked      bool     `json:"ranked,omitempty" dynamodbav:"ranked,omitempty"`

	Topic records.Topic `json:"topic,omitempty" dynamodbav:"topic,omitempty"`
}

func (s Scratch) clone() Scratch {
	out := s
	if s.Dates != nil {
		out.Dates = append([]string(nil), s.Dates...)
	}
	if s.ProviderIDs != nil {
		out.ProviderIDs = append([]int64(nil), s.ProviderIDs...)
	}
	return out
}

// NewSession starts a dialogue at the first screen.
func NewSession(id, phone, serviceCode string, now time.Time) *Session {
	return &Session{
		ID:          id,
		PhoneNumber: phone,
		ServiceCode: serviceCode,
		State:       StateStart,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Scratch = s.Scratch.clone()
	return &out
}

// Reset clears everything a user entered except the session identity.
func (s *Session) Reset() {
	s.State = StateStart
	s.Language = ""
	s.Scratch = Scratch{}
}

// normalize repairs states that could not be decoded.
func (s *Session) normalize() {
	if !s.State.Known() {
		s.State = ParseState("", s.Language != "")
	}
}

// MarshalText persists the state as its tag.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts any tag. Unknown tags decode to an invalid state that
// the service repairs once the session language is known.
func (s *State) UnmarshalText(b []byte) error {
	if st, ok := statesByTag[string(b)]; ok {
		*s = st
		return nil
	}
	*s = State{}
	return nil
}

func encodeSession(sess *Session) ([]byte, error) {
	return json.Marshal(sess)
}

func decodeSession(data []byte) (*Session, error) {
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	sess.normalize()
	return &sess, nil
}
