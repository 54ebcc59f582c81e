package archive

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/telehealth-ussd/internal/interactions"
)

type stubHistory struct {
	items []interactions.Interaction
	err   error
}

func (s stubHistory) ListBySession(_ context.Context, _ string, _ int) ([]interactions.Interaction, error) {
	return s.items, s.err
}

func sampleInteractions(start time.Time) []interactions.Interaction {
	return []interactions.Interaction{
		{SessionID: "ATUid_1", PhoneNumber: "+254711001122", StateBefore: "start", StateAfter: "main_menu", Input: "", Reply: "Main Menu", CreatedAt: start},
		{SessionID: "ATUid_1", PhoneNumber: "+254711001122", StateBefore: "main_menu", StateAfter: "messages:compose", Input: "4", Reply: "Type your message", CreatedAt: start.Add(20 * time.Second)},
		{SessionID: "ATUid_1", PhoneNumber: "+254711001122", StateBefore: "messages:compose", StateAfter: "main_menu", Input: "call me on 0711001122", Reply: "Sorry", Terminal: true, Fault: true, CreatedAt: start.Add(45 * time.Second)},
	}
}

func TestBuildTranscript(t *testing.T) {
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	tr := BuildTranscript("ATUid_1", "", OutcomeFault, sampleInteractions(start), start.Add(time.Minute))

	assert.Equal(t, TranscriptVersion, tr.Version)
	assert.Equal(t, HashPhone("+254711001122"), tr.PhoneHash)
	assert.Equal(t, 3, tr.StepCount)
	assert.Equal(t, 1, tr.FaultCount)
	assert.Equal(t, 45, tr.DurationSeconds)
	assert.Equal(t, start, tr.StartedAt)
	assert.Equal(t, "main_menu", tr.FinalState)
	assert.Equal(t, "call me on [PHONE]", tr.Steps[2].Input)
}

func TestArchiverArchivesSession(t *testing.T) {
	mock := newMockS3()
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	archiver := NewArchiver(fixedStore(mock), stubHistory{items: sampleInteractions(start)}, nil)
	require.NotNil(t, archiver)

	archiver.ArchiveSession(context.Background(), "ATUid_1", "+254711001122", OutcomeEnded)

	require.Len(t, mock.putCalls, 2)
	var tr Transcript
	require.NoError(t, json.Unmarshal(mock.putCalls[0].body, &tr))
	assert.Equal(t, OutcomeEnded, tr.Outcome)
	assert.Equal(t, 3, tr.StepCount)
}

func TestArchiverSkipsEmptyAndFailedHistory(t *testing.T) {
	mock := newMockS3()
	NewArchiver(fixedStore(mock), stubHistory{}, nil).ArchiveSession(context.Background(), "ATUid_1", "", OutcomeExpired)
	NewArchiver(fixedStore(mock), stubHistory{err: errors.New("db down")}, nil).ArchiveSession(context.Background(), "ATUid_1", "", OutcomeExpired)
	assert.Empty(t, mock.putCalls)
}

func TestNewArchiverDisabled(t *testing.T) {
	assert.Nil(t, NewArchiver(NewStore(nil, "", nil), stubHistory{}, nil))
	assert.Nil(t, NewArchiver(fixedStore(newMockS3()), nil, nil))

	var archiver *Archiver
	archiver.ArchiveSession(context.Background(), "ATUid_1", "", OutcomeEnded)
}
