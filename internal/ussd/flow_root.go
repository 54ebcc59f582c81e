package ussd

import (
	"context"

	"github.com/wolfman30/telehealth-ussd/internal/localization"
)

// languagePrompt is the first screen of every dialogue. It is always shown
// in the multilingual default catalog because no language is chosen yet.
func (r *Router) languagePrompt(sess *Session) Reply {
	sess.State = StateSelectLanguage
	return Continue(r.catalog.Text(localization.DefaultLanguage, "language_prompt", nil))
}

func (r *Router) handleRoot(ctx context.Context, sess *Session, input string) (Reply, error) {
	switch sess.State.Step {
	case StepSelectLanguage:
		lang, ok := localization.LanguageByChoice(input)
		if !ok {
			return r.invalid(sess), nil
		}
		sess.Language = lang.Code
		return r.mainMenu(ctx, sess)
	default:
		return r.languagePrompt(sess), nil
	}
}

// mainMenu renders the registered or unregistered menu and abandons any
// flow in progress.
func (r *Router) mainMenu(ctx context.Context, sess *Session) (Reply, error) {
	p, err := r.patient(ctx, sess)
	if err != nil {
		return Reply{}, err
	}
	sess.State = StateMainMenu
	sess.Scratch = Scratch{}
	if p != nil {
		return r.prompt(sess, "main_menu_registered", localization.Data{"Name": p.Name}), nil
	}
	return r.prompt(sess, "main_menu_unregistered", nil), nil
}

func (r *Router) handleMainMenu(ctx context.Context, sess *Session, input string) (Reply, error) {
	if input == "0" {
		// Option 0 returns to language selection, dropping the chosen language.
		sess.Reset()
		return r.languagePrompt(sess), nil
	}

	p, err := r.patient(ctx, sess)
	if err != nil {
		return Reply{}, err
	}
	if p == nil {
		switch input {
		case "1":
			sess.State = StateRegisterName
			return r.prompt(sess, "register_name_prompt", nil), nil
		case "2":
			return r.infoMenu(sess), nil
		}
		return r.invalid(sess), nil
	}

	switch input {
	case "1":
		sess.State = StateSymptomDescription
		return r.prompt(sess, "symptom_description_prompt", nil), nil
	case "2":
		return r.beginAppointment(sess), nil
	case "3":
		return r.messageMenu(ctx, sess, p)
	case "4":
		return r.infoMenu(sess), nil
	case "5":
		return r.profileView(sess, p), nil
	}
	return r.invalid(sess), nil
}
