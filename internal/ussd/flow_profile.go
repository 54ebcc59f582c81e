package ussd

import (
	"context"
	"errors"

	"github.com/wolfman30/telehealth-ussd/internal/geo"
	"github.com/wolfman30/telehealth-ussd/internal/localization"
	"github.com/wolfman30/telehealth-ussd/internal/records"
)

func (r *Router) profileView(sess *Session, p *records.Patient) Reply {
	gps := r.text(sess, "profile_gps_not_set", nil)
	if p.Coordinates != nil {
		gps = r.text(sess, "profile_gps_available", nil)
	}
	sess.State = StateProfileView
	return r.prompt(sess, "profile_view", localization.Data{
		"Name":     p.Name,
		"Age":      p.Age,
		"Gender":   p.Gender,
		"Location": p.Location,
		"GPS":      gps,
		"ID":       p.ID,
	})
}

func (r *Router) handleProfile(ctx context.Context, sess *Session, input string) (Reply, error) {
	switch sess.State.Step {
	case StepView:
		switch input {
		case "1":
			sess.State = StateUpdateCoordinates
			return r.prompt(sess, "profile_update_prompt", nil), nil
		case "0":
			return r.mainMenu(ctx, sess)
		}
		return r.invalid(sess), nil

	case StepUpdateCoordinates:
		if input == "0" {
			return r.mainMenu(ctx, sess)
		}
		pt, err := geo.ParsePoint(input)
		if err != nil {
			return r.prompt(sess, "profile_coordinates_invalid", nil), nil
		}
		return r.updateCoordinates(ctx, sess, pt)

	case StepCoordinatesUpdated:
		if input == "0" {
			return r.mainMenu(ctx, sess)
		}
		return r.invalid(sess), nil
	}
	return r.mainMenu(ctx, sess)
}

func (r *Router) updateCoordinates(ctx context.Context, sess *Session, pt geo.Point) (Reply, error) {
	p, err := r.patient(ctx, sess)
	if err != nil {
		return Reply{}, err
	}
	if p == nil {
		return r.mainMenu(ctx, sess)
	}
	err = r.records.UpdatePatientCoordinates(ctx, p.ID, pt)
	if errors.Is(err, records.ErrInvalidCoordinates) {
		return r.prompt(sess, "profile_coordinates_invalid", nil), nil
	}
	if err != nil {
		return Reply{}, err
	}

	r.logger.Info("patient coordinates updated", "patient_id", p.ID, "session_id", sess.ID)
	sess.State = StateCoordinatesUpdated
	return r.prompt(sess, "profile_coordinates_updated", nil), nil
}
