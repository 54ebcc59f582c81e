package ussd

// Wire prefixes understood by the USSD gateway.
const (
	PrefixContinue = "CON "
	PrefixEnd      = "END "
)

// Reply is the screen produced for one callback.
type Reply struct {
	Text     string
	Terminal bool
}

// Continue builds a reply that keeps the session open.
func Continue(text string) Reply {
	return Reply{Text: text}
}

// End builds a reply that closes the session.
func End(text string) Reply {
	return Reply{Text: text, Terminal: true}
}

// Frame renders r for the wire.
func Frame(r Reply) string {
	if r.Terminal {
		return PrefixEnd + r.Text
	}
	return PrefixContinue + r.Text
}
