package ussd

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/telehealth-ussd/internal/events"
	"github.com/wolfman30/telehealth-ussd/internal/localization"
	"github.com/wolfman30/telehealth-ussd/internal/records"
	"github.com/wolfman30/telehealth-ussd/pkg/logging"
)

// DefaultMaxDistanceKm limits provider ranking when no override is configured.
const DefaultMaxDistanceKm = 1000

// EventPublisher delivers domain events to the notification pipeline.
type EventPublisher interface {
	Publish(ctx context.Context, aggregate, correlationID string, evt events.CanonicalEvent) error
}

// RouterConfig wires the router's collaborators.
type RouterConfig struct {
	Records records.Store
	Catalog *localization.Catalog
	// Events is optional; when nil no notifications are emitted.
	Events EventPublisher
	Logger *logging.Logger
	// MaxDistanceKm bounds provider ranking. Zero selects DefaultMaxDistanceKm.
	MaxDistanceKm float64
	// DesignatedProviderID receives symptom reports and patient messages.
	// Zero selects the first listed provider.
	DesignatedProviderID int64
	Now                  func() time.Time
}

// Router moves a session through the menu graph one keystroke at a time.
type Router struct {
	records       records.Store
	catalog       *localization.Catalog
	events        EventPublisher
	logger        *logging.Logger
	maxDistanceKm float64
	designatedID  int64
	now           func() time.Time
}

// NewRouter validates cfg and returns a Router.
func NewRouter(cfg RouterConfig) *Router {
	if cfg.Records == nil {
		panic("ussd: record store cannot be nil")
	}
	if cfg.Catalog == nil {
		panic("ussd: catalog cannot be nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.MaxDistanceKm <= 0 {
		cfg.MaxDistanceKm = DefaultMaxDistanceKm
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Router{
		records:       cfg.Records,
		catalog:       cfg.Catalog,
		events:        cfg.Events,
		logger:        cfg.Logger,
		maxDistanceKm: cfg.MaxDistanceKm,
		designatedID:  cfg.DesignatedProviderID,
		now:           cfg.Now,
	}
}

// Route handles one decoded callback. A returned error means an internal
// fault; sess may then be partially mutated and must be rolled back.
func (r *Router) Route(ctx context.Context, sess *Session, in Input) (Reply, error) {
	if in.Reset {
		sess.Reset()
		return r.languagePrompt(sess), nil
	}
	if in.MenuJump && !sess.State.Root() {
		return r.mainMenu(ctx, sess)
	}

	input := in.Latest
	switch sess.State.Family {
	case FamilyRoot:
		return r.handleRoot(ctx, sess, input)
	case FamilyMainMenu:
		return r.handleMainMenu(ctx, sess, input)
	case FamilyRegistration:
		return r.handleRegistration(ctx, sess, input)
	case FamilySymptoms:
		return r.handleSymptoms(ctx, sess, input)
	case FamilyAppointments:
		return r.handleAppointments(ctx, sess, input)
	case FamilyMessages:
		return r.handleMessages(ctx, sess, input)
	case FamilyHealthInfo:
		return r.handleHealthInfo(ctx, sess, input)
	case FamilyProfile:
		return r.handleProfile(ctx, sess, input)
	default:
		return r.mainMenu(ctx, sess)
	}
}

func (r *Router) text(sess *Session, id string, data localization.Data) string {
	lang := sess.Language
	if lang == "" {
		lang = localization.DefaultLanguage
	}
	return r.catalog.Text(lang, id, data)
}

func (r *Router) prompt(sess *Session, id string, data localization.Data) Reply {
	return Continue(r.text(sess, id, data))
}

// invalid re-prompts without touching state or scratch.
func (r *Router) invalid(sess *Session) Reply {
	return r.prompt(sess, "invalid_option", nil)
}

// patient returns nil without error for unregistered numbers.
func (r *Router) patient(ctx context.Context, sess *Session) (*records.Patient, error) {
	p, err := r.records.FindPatientByPhone(ctx, sess.PhoneNumber)
	if errors.Is(err, records.ErrPatientNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Router) designatedProvider(ctx context.Context) (*records.Provider, error) {
	if r.designatedID > 0 {
		return r.records.GetProvider(ctx, r.designatedID)
	}
	providers, err := r.records.ListProviders(ctx)
	if err != nil {
		return nil, err
	}
	if len(providers) == 0 {
		return nil, records.ErrNoProviders
	}
	p := providers[0]
	return &p, nil
}

// publish is best effort: a lost notification must not fail the dialogue.
func (r *Router) publish(ctx context.Context, sess *Session, patientID int64, evt events.CanonicalEvent) {
	if r.events == nil {
		return
	}
	if err := r.events.Publish(ctx, events.PatientAggregate(patientID), sess.ID, evt); err != nil {
		r.logger.Warn("ussd event publish failed", "event_type", evt.EventType(), "session_id", sess.ID, "error", err)
	}
}

// choice parses a 1-based menu selection among n options.
func choice(input string, n int) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || v < 1 || v > n {
		return 0, false
	}
	return v, true
}

func numbered(lines []string) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(line)
	}
	return b.String()
}
