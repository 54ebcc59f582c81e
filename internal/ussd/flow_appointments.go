package ussd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/wolfman30/telehealth-ussd/internal/events"
	"github.com/wolfman30/telehealth-ussd/internal/geo"
	"github.com/wolfman30/telehealth-ussd/internal/localization"
	"github.com/wolfman30/telehealth-ussd/internal/records"
)

const bookingDays = 7

var timeSlots = []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"}

// beginAppointment offers the next seven calendar days, starting tomorrow.
func (r *Router) beginAppointment(sess *Session) Reply {
	now := r.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	sess.Scratch = Scratch{Dates: make([]string, 0, bookingDays)}
	labels := make([]string, 0, bookingDays)
	for i := 1; i <= bookingDays; i++ {
		d := today.AddDate(0, 0, i)
		sess.Scratch.Dates = append(sess.Scratch.Dates, d.Format(localization.DateLayout))
		labels = append(labels, r.catalog.FormatDate(sess.Language, d))
	}
	sess.State = StateAppointmentDate
	return Continue(r.text(sess, "appointment_date_prompt", nil) + "\n" + numbered(labels))
}

func (r *Router) handleAppointments(ctx context.Context, sess *Session, input string) (Reply, error) {
	switch sess.State.Step {
	case StepDate:
		n, ok := choice(input, len(sess.Scratch.Dates))
		if !ok {
			return r.invalid(sess), nil
		}
		sess.Scratch.Date = sess.Scratch.Dates[n-1]
		sess.State = StateAppointmentTime
		return Continue(r.text(sess, "appointment_time_prompt", nil) + "\n" + numbered(timeSlots)), nil

	case StepTime:
		n, ok := choice(input, len(timeSlots))
		if !ok {
			return r.invalid(sess), nil
		}
		p, err := r.patient(ctx, sess)
		if err != nil {
			return Reply{}, err
		}
		if p == nil {
			return r.mainMenu(ctx, sess)
		}
		sess.Scratch.Time = timeSlots[n-1]
		return r.providerMenu(ctx, sess, p)

	case StepProvider:
		n, ok := choice(input, len(sess.Scratch.ProviderIDs))
		if !ok {
			return r.invalid(sess), nil
		}
		return r.bookAppointment(ctx, sess, sess.Scratch.ProviderIDs[n-1])

	case StepComplete:
		if input == "0" {
			return r.mainMenu(ctx, sess)
		}
		return r.invalid(sess), nil
	}
	return r.mainMenu(ctx, sess)
}

// providerMenu lists providers nearest first when the patient shared
// coordinates, otherwise in directory order.
func (r *Router) providerMenu(ctx context.Context, sess *Session, p *records.Patient) (Reply, error) {
	providers, err := r.records.ListProviders(ctx)
	if err != nil {
		return Reply{}, err
	}

	ranked := r.rankProviders(p, providers)
	if len(ranked) == 0 {
		sess.Scratch = Scratch{}
		sess.State = StateAppointmentComplete
		return r.prompt(sess, "appointment_no_providers", nil), nil
	}

	sess.Scratch.ProviderIDs = make([]int64, 0, len(ranked))
	sess.Scratch.Ranked = ranked[0].DistanceKm != nil
	lines := make([]string, 0, len(ranked))
	for _, rp := range ranked {
		sess.Scratch.ProviderIDs = append(sess.Scratch.ProviderIDs, rp.Item.ID)
		lines = append(lines, providerLine(rp))
	}

	header := "appointment_provider_prompt"
	if sess.Scratch.Ranked {
		header = "appointment_provider_prompt_ranked"
	}
	sess.State = StateAppointmentProvider
	return Continue(r.text(sess, header, nil) + "\n" + numbered(lines)), nil
}

// rankProviders orders providers in range by distance, falling back to the
// unranked directory when the patient has no coordinates or nobody is in range.
func (r *Router) rankProviders(p *records.Patient, providers []records.Provider) []geo.Ranked[records.Provider] {
	if p.Coordinates == nil {
		return geo.Rank(nil, providers, geo.Filter{})
	}
	ranked := geo.Rank(p.Coordinates, providers, geo.Filter{MaxDistanceKm: r.maxDistanceKm})
	if len(ranked) == 0 {
		ranked = geo.Rank(nil, providers, geo.Filter{})
	}
	return ranked
}

func providerLine(rp geo.Ranked[records.Provider]) string {
	line := fmt.Sprintf("%s (%s)", rp.Item.Name, rp.Item.Specialization)
	if rp.DistanceKm != nil {
		line += " - " + strconv.FormatFloat(geo.RoundKm(*rp.DistanceKm), 'f', 1, 64) + " km"
	}
	return line
}

func (r *Router) bookAppointment(ctx context.Context, sess *Session, providerID int64) (Reply, error) {
	p, err := r.patient(ctx, sess)
	if err != nil {
		return Reply{}, err
	}
	if p == nil {
		return r.mainMenu(ctx, sess)
	}
	provider, err := r.records.GetProvider(ctx, providerID)
	if err != nil {
		return Reply{}, err
	}

	now := r.now()
	appt, err := r.records.CreateAppointment(ctx, records.Appointment{
		PatientID:  p.ID,
		ProviderID: provider.ID,
		Date:       sess.Scratch.Date,
		Time:       sess.Scratch.Time,
		Status:     records.AppointmentStatusPending,
		CreatedAt:  now,
	})
	if err != nil {
		return Reply{}, err
	}

	r.publish(ctx, sess, p.ID, events.AppointmentRequestedV1{
		AppointmentID: appt.ID,
		PatientID:     p.ID,
		PatientName:   p.Name,
		PhoneNumber:   p.PhoneNumber,
		ProviderID:    provider.ID,
		Date:          appt.Date,
		Time:          appt.Time,
		RequestedAt:   now,
	})

	date := appt.Date
	if d, err := time.Parse(localization.DateLayout, appt.Date); err == nil {
		date = r.catalog.FormatDate(sess.Language, d)
	}
	sess.Scratch = Scratch{}
	sess.State = StateAppointmentComplete
	return r.prompt(sess, "appointment_confirmed", localization.Data{
		"Date":     date,
		"Time":     appt.Time,
		"Provider": provider.Name,
		"ID":       appt.ID,
	}), nil
}
