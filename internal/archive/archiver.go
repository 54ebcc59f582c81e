package archive

import (
	"context"
	"time"

	"github.com/wolfman30/telehealth-ussd/internal/interactions"
	"github.com/wolfman30/telehealth-ussd/pkg/logging"
)

// maxSteps bounds how much of a runaway session is archived.
const maxSteps = 200

// HistoryLister loads the callbacks of a session.
type HistoryLister interface {
	ListBySession(ctx context.Context, sessionID string, limit int) ([]interactions.Interaction, error)
}

// Archiver turns a session's interaction log into an archived transcript.
// Errors are logged but never returned; archival must not disturb dialogues.
type Archiver struct {
	store   *Store
	history HistoryLister
	logger  *logging.Logger
	now     func() time.Time
}

// NewArchiver returns nil when the store is disabled or there is no history.
func NewArchiver(store *Store, history HistoryLister, logger *logging.Logger) *Archiver {
	if store == nil || !store.Enabled() || history == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Archiver{store: store, history: history, logger: logger, now: time.Now}
}

// ArchiveSession stores the transcript of sessionID. Sessions without any
// logged callbacks are skipped.
func (a *Archiver) ArchiveSession(ctx context.Context, sessionID, phone, outcome string) {
	if a == nil || sessionID == "" {
		return
	}
	log := a.logger.With("session_id", sessionID, "outcome", outcome)

	items, err := a.history.ListBySession(ctx, sessionID, maxSteps)
	if err != nil {
		log.Warn("transcript archive: failed to load interactions", "error", err)
		return
	}
	if len(items) == 0 {
		log.Debug("transcript archive: nothing to archive")
		return
	}

	transcript := BuildTranscript(sessionID, phone, outcome, items, a.now().UTC())
	if err := a.store.ArchiveTranscript(ctx, transcript); err != nil {
		log.Error("transcript archive: failed to archive", "error", err)
	}
}

// BuildTranscript converts interactions (oldest first) into a scrubbed
// transcript. phone falls back to the number on the first interaction.
func BuildTranscript(sessionID, phone, outcome string, items []interactions.Interaction, archivedAt time.Time) *Transcript {
	if phone == "" && len(items) > 0 {
		phone = items[0].PhoneNumber
	}
	steps := make([]Step, 0, len(items))
	faults := 0
	for _, in := range items {
		if in.Fault {
			faults++
		}
		steps = append(steps, Step{
			StateBefore: in.StateBefore,
			StateAfter:  in.StateAfter,
			Input:       in.Input,
			Reply:       in.Reply,
			Terminal:    in.Terminal,
			Fault:       in.Fault,
			At:          in.CreatedAt,
		})
	}
	ScrubSteps(steps)

	t := &Transcript{
		Version:    TranscriptVersion,
		SessionID:  sessionID,
		PhoneHash:  HashPhone(phone),
		Outcome:    outcome,
		ArchivedAt: archivedAt,
		StepCount:  len(steps),
		FaultCount: faults,
		Steps:      steps,
	}
	if len(steps) > 0 {
		first, last := steps[0], steps[len(steps)-1]
		t.StartedAt = first.At
		t.DurationSeconds = int(last.At.Sub(first.At).Seconds())
		t.FinalState = last.StateAfter
	}
	return t
}
