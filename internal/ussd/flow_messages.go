package ussd

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/wolfman30/telehealth-ussd/internal/events"
	"github.com/wolfman30/telehealth-ussd/internal/records"
)

const (
	recentMessages = 3
	previewRunes   = 30
)

// messageMenu shows the latest messages in the order they were sent.
func (r *Router) messageMenu(ctx context.Context, sess *Session, p *records.Patient) (Reply, error) {
	msgs, err := r.records.ListConversation(ctx, p.ID, recentMessages)
	if err != nil {
		return Reply{}, err
	}

	var b strings.Builder
	if len(msgs) == 0 {
		b.WriteString(r.text(sess, "messages_empty", nil))
	} else {
		b.WriteString(r.text(sess, "messages_recent_header", nil))
		slices.Reverse(msgs)
		for i, m := range msgs {
			sender := r.text(sess, "messages_sender_doctor", nil)
			if m.Sender == records.SenderPatient {
				sender = r.text(sess, "messages_sender_you", nil)
			}
			b.WriteString("\n")
			b.WriteString(strconv.Itoa(i + 1))
			b.WriteString(". ")
			b.WriteString(sender)
			b.WriteString(": ")
			b.WriteString(preview(m.Content))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(r.text(sess, "messages_options", nil))

	sess.State = StateMessageMenu
	return Continue(b.String()), nil
}

func preview(content string) string {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) <= previewRunes {
		return string(runes)
	}
	return string(runes[:previewRunes]) + "..."
}

func (r *Router) handleMessages(ctx context.Context, sess *Session, input string) (Reply, error) {
	switch sess.State.Step {
	case StepMenu:
		switch input {
		case "1":
			sess.State = StateMessageCompose
			return r.prompt(sess, "message_compose_prompt", nil), nil
		case "0":
			return r.mainMenu(ctx, sess)
		}
		return r.invalid(sess), nil

	case StepCompose:
		content := strings.TrimSpace(input)
		if content == "" {
			return r.prompt(sess, "message_compose_prompt", nil), nil
		}
		return r.sendMessage(ctx, sess, content)

	case StepSent:
		if input == "0" {
			return r.mainMenu(ctx, sess)
		}
		return r.invalid(sess), nil
	}
	return r.mainMenu(ctx, sess)
}

func (r *Router) sendMessage(ctx context.Context, sess *Session, content string) (Reply, error) {
	p, err := r.patient(ctx, sess)
	if err != nil {
		return Reply{}, err
	}
	if p == nil {
		return r.mainMenu(ctx, sess)
	}
	provider, err := r.designatedProvider(ctx)
	if err != nil {
		return Reply{}, err
	}

	now := r.now()
	msg, err := r.records.CreateMessage(ctx, records.Message{
		ProviderID: provider.ID,
		PatientID:  p.ID,
		Content:    content,
		Sender:     records.SenderPatient,
		CreatedAt:  now,
	})
	if err != nil {
		return Reply{}, err
	}

	r.publish(ctx, sess, p.ID, events.PatientMessageV1{
		MessageID:   msg.ID,
		PatientID:   p.ID,
		PatientName: p.Name,
		PhoneNumber: p.PhoneNumber,
		ProviderID:  provider.ID,
		Content:     content,
		SentAt:      now,
	})

	sess.State = StateMessageSent
	return r.prompt(sess, "message_sent", nil), nil
}
