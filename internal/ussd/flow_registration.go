package ussd

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/wolfman30/telehealth-ussd/internal/geo"
	"github.com/wolfman30/telehealth-ussd/internal/localization"
	"github.com/wolfman30/telehealth-ussd/internal/records"
)

const maxAge = 130

var genders = []string{"Male", "Female", "Other"}

func (r *Router) handleRegistration(ctx context.Context, sess *Session, input string) (Reply, error) {
	switch sess.State.Step {
	case StepName:
		name := strings.TrimSpace(input)
		if name == "" {
			return r.prompt(sess, "register_name_prompt", nil), nil
		}
		sess.Scratch.Name = name
		sess.State = StateRegisterAge
		return r.prompt(sess, "register_age_prompt", nil), nil

	case StepAge:
		age, err := strconv.Atoi(strings.TrimSpace(input))
		if err != nil || age < 0 || age > maxAge {
			return r.prompt(sess, "register_age_invalid", nil), nil
		}
		sess.Scratch.Age = age
		sess.State = StateRegisterGender
		return r.prompt(sess, "register_gender_prompt", nil), nil

	case StepGender:
		n, ok := choice(input, len(genders))
		if !ok {
			return r.invalid(sess), nil
		}
		sess.Scratch.Gender = genders[n-1]
		sess.State = StateRegisterLocation
		return r.prompt(sess, "register_location_prompt", nil), nil

	case StepLocation:
		location := strings.TrimSpace(input)
		if location == "" {
			return r.prompt(sess, "register_location_prompt", nil), nil
		}
		sess.Scratch.Location = location
		sess.State = StateRegisterCoordinatesChoice
		return r.prompt(sess, "register_coordinates_choice", nil), nil

	case StepCoordinatesChoice:
		switch input {
		case "1":
			sess.State = StateRegisterCoordinates
			return r.prompt(sess, "register_coordinates_prompt", nil), nil
		case "2":
			return r.completeRegistration(ctx, sess, nil)
		}
		return r.invalid(sess), nil

	case StepCoordinates:
		if input == "0" {
			return r.completeRegistration(ctx, sess, nil)
		}
		pt, err := geo.ParsePoint(input)
		if err != nil {
			return r.prompt(sess, "register_coordinates_invalid", nil), nil
		}
		return r.completeRegistration(ctx, sess, &pt)

	case StepComplete:
		if input == "0" {
			return r.mainMenu(ctx, sess)
		}
		return r.invalid(sess), nil
	}
	return r.mainMenu(ctx, sess)
}

func (r *Router) completeRegistration(ctx context.Context, sess *Session, coords *geo.Point) (Reply, error) {
	p, err := r.records.CreatePatient(ctx, records.NewPatient{
		PhoneNumber: sess.PhoneNumber,
		Name:        sess.Scratch.Name,
		Age:         sess.Scratch.Age,
		Gender:      sess.Scratch.Gender,
		Location:    sess.Scratch.Location,
		Coordinates: coords,
		Language:    sess.Language,
	})
	if errors.Is(err, records.ErrPatientExists) {
		// Registered from another session meanwhile.
		return r.mainMenu(ctx, sess)
	}
	if err != nil {
		return Reply{}, err
	}

	r.logger.Info("patient registered", "patient_id", p.ID, "session_id", sess.ID, "with_coordinates", coords != nil)
	sess.State = StateRegistrationComplete
	sess.Scratch = Scratch{}

	data := localization.Data{"Name": p.Name, "ID": p.ID, "Location": p.Location}
	if coords != nil {
		return r.prompt(sess, "registration_complete_coordinates", data), nil
	}
	return r.prompt(sess, "registration_complete", data), nil
}
