package ussd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateTagsRoundTrip(t *testing.T) {
	seen := map[string]bool{}
	for st, tag := range stateTags {
		require.Falsef(t, seen[tag], "duplicate tag %s", tag)
		seen[tag] = true
		assert.Equal(t, st, ParseState(tag, true))
		assert.Equal(t, tag, st.String())
	}
	assert.Equal(t, "register_age", StateRegisterAge.String())
	assert.Equal(t, "update_coordinates", StateUpdateCoordinates.String())
}

func TestParseStateUnknownTag(t *testing.T) {
	assert.Equal(t, StateMainMenu, ParseState("profile_gallery", true))
	assert.Equal(t, StateStart, ParseState("profile_gallery", false))
	assert.Equal(t, StateStart, ParseState("", false))
}

func TestStateRoot(t *testing.T) {
	assert.True(t, StateStart.Root())
	assert.True(t, StateSelectLanguage.Root())
	assert.True(t, StateMainMenu.Root())
	assert.False(t, StateRegisterAge.Root())
	assert.False(t, StateInfoDetail.Root())
}

func TestSessionJSONUsesTags(t *testing.T) {
	sess := NewSession("s-1", "+254700111222", "*384#", fixedNow)
	sess.State = StateSymptomSeverity
	sess.Language = "sw"

	raw, err := json.Marshal(sess)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"state":"symptom_severity"`)

	decoded, err := decodeSession([]byte(`{"session_id":"s-1","state":"retired_state","language":"sw"}`))
	require.NoError(t, err)
	assert.Equal(t, StateMainMenu, decoded.State)
}
