package archive

import "time"

// TranscriptVersion is bumped when the archived JSON layout changes.
const TranscriptVersion = "1.0"

// Outcomes recorded on archived transcripts.
const (
	OutcomeEnded   = "ended"
	OutcomeExpired = "expired"
	OutcomeFault   = "fault"
)

// Transcript is the archived record of one USSD session.
type Transcript struct {
	Version         string    `json:"version"`
	SessionID       string    `json:"session_id"`
	PhoneHash       string    `json:"phone_hash"` // sha256 of phone
	Outcome         string    `json:"outcome"`
	ArchivedAt      time.Time `json:"archived_at"`
	StartedAt       time.Time `json:"started_at"`
	DurationSeconds int       `json:"duration_seconds"`
	StepCount       int       `json:"step_count"`
	FaultCount      int       `json:"fault_count"`
	FinalState      string    `json:"final_state"`
	Steps           []Step    `json:"steps"`
}

// Step is one callback of the session.
type Step struct {
	StateBefore string    `json:"state_before"`
	StateAfter  string    `json:"state_after"`
	Input       string    `json:"input"`
	Reply       string    `json:"reply"`
	Terminal    bool      `json:"terminal"`
	Fault       bool      `json:"fault"`
	At          time.Time `json:"at"`
}

// ManifestEntry is one JSONL line in the monthly manifest file.
type ManifestEntry struct {
	SessionID  string `json:"session_id"`
	S3Key      string `json:"s3_key"`
	Outcome    string `json:"outcome"`
	FinalState string `json:"final_state"`
	StepCount  int    `json:"step_count"`
	FaultCount int    `json:"fault_count"`
	ArchivedAt string `json:"archived_at"`
}
