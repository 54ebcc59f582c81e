package ussd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		latest   string
		history  []string
		reset    bool
		menuJump bool
	}{
		{name: "empty resets", text: "", reset: true},
		{name: "whitespace resets", text: "  ", reset: true},
		{name: "single token", text: "1", latest: "1", history: []string{"1"}},
		{name: "trailing token", text: "1*1*Jane", latest: "Jane", history: []string{"1", "1", "Jane"}},
		{name: "coordinates keep comma", text: "1*5*1*-1.2921,36.8219", latest: "-1.2921,36.8219", history: []string{"1", "5", "1", "-1.2921,36.8219"}},
		{name: "menu code", text: "1*1*00", latest: "00", history: []string{"1", "1", "00"}, menuJump: true},
		{name: "menu code as first key", text: "00", latest: "00", history: []string{"00"}},
		{name: "single zero is a local option", text: "1*2*0", latest: "0", history: []string{"1", "2", "0"}},
		{name: "empty trailing token", text: "1*", latest: "", history: []string{"1", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.text, DefaultMainMenuCode)
			assert.Equal(t, tt.reset, got.Reset)
			assert.Equal(t, tt.latest, got.Latest)
			assert.Equal(t, tt.history, got.History)
			assert.Equal(t, tt.menuJump, got.MenuJump)
		})
	}
}

func TestDecodeCustomMenuCode(t *testing.T) {
	assert.True(t, Decode("1*2*0", "0").MenuJump)
	assert.False(t, Decode("1*2*00", "0").MenuJump)
	assert.False(t, Decode("1*2*0", "").MenuJump)
}

func TestFrame(t *testing.T) {
	assert.Equal(t, "CON Select your gender:", Frame(Continue("Select your gender:")))
	assert.Equal(t, "END Sorry", Frame(End("Sorry")))
	// The flag decides, never the wording.
	assert.Equal(t, "CON Registration successful!\nSelect 0 to continue to main menu.", Frame(Continue("Registration successful!\nSelect 0 to continue to main menu.")))
}
