package ussd

import "strings"

// DefaultMainMenuCode is the keystroke that returns to the main menu from
// inside any flow.
const DefaultMainMenuCode = "00"

// Input is one decoded callback.
type Input struct {
	// Latest is the keystroke this callback added.
	Latest string
	// History holds every keystroke of the session, Latest included.
	History []string
	// Reset is set when the gateway sent empty text.
	Reset bool
	// MenuJump is set when Latest is the main-menu code and the user has
	// already moved past the first screen.
	MenuJump bool
}

// Decode splits the accumulated "*"-joined keystroke history.
func Decode(text, menuCode string) Input {
	text = strings.TrimSpace(text)
	if text == "" {
		return Input{Reset: true}
	}

	parts := strings.Split(text, "*")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	latest := parts[len(parts)-1]

	return Input{
		Latest:   latest,
		History:  parts,
		MenuJump: menuCode != "" && len(parts) > 1 && latest == menuCode,
	}
}
