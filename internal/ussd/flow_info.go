package ussd

import (
	"context"

	"github.com/wolfman30/telehealth-ussd/internal/records"
)

var topics = []records.Topic{records.TopicCovid, records.TopicMaternal, records.TopicChronic, records.TopicFirstAid}

func (r *Router) infoMenu(sess *Session) Reply {
	sess.Scratch = Scratch{}
	sess.State = StateInfoMenu
	return r.prompt(sess, "info_menu", nil)
}

func (r *Router) handleHealthInfo(ctx context.Context, sess *Session, input string) (Reply, error) {
	switch sess.State.Step {
	case StepMenu:
		if input == "0" {
			return r.mainMenu(ctx, sess)
		}
		n, ok := choice(input, len(topics))
		if !ok {
			return r.invalid(sess), nil
		}
		return r.infoDetail(ctx, sess, topics[n-1])

	case StepDetail:
		if input == "0" {
			return r.infoMenu(sess), nil
		}
		return r.invalid(sess), nil
	}
	return r.mainMenu(ctx, sess)
}

func (r *Router) infoDetail(ctx context.Context, sess *Session, topic records.Topic) (Reply, error) {
	items, err := r.records.ListHealthInfo(ctx, sess.Language, topic)
	if err != nil {
		return Reply{}, err
	}

	sess.Scratch.Topic = topic
	sess.State = StateInfoDetail
	footer := r.text(sess, "info_detail_footer", nil)
	if len(items) == 0 {
		return Continue(r.text(sess, "info_unavailable", nil) + "\n\n" + footer), nil
	}
	item := items[0]
	return Continue(item.Title + "\n" + item.Content + "\n\n" + footer), nil
}
