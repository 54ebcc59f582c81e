package ussd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/telehealth-ussd/internal/interactions"
	"github.com/wolfman30/telehealth-ussd/internal/localization"
	"github.com/wolfman30/telehealth-ussd/internal/observability/metrics"
	"github.com/wolfman30/telehealth-ussd/pkg/logging"
)

// ErrInvalidRequest is returned for callbacks missing the session id or phone number.
var ErrInvalidRequest = errors.New("ussd: sessionId and phoneNumber are required")

// Request is one gateway callback.
type Request struct {
	SessionID   string `json:"sessionId"`
	ServiceCode string `json:"serviceCode"`
	PhoneNumber string `json:"phoneNumber"`
	Text        string `json:"text"`
}

// InteractionRecorder receives an audit entry per callback.
type InteractionRecorder interface {
	Record(ctx context.Context, in interactions.Interaction) error
}

// SessionArchiver stores the transcript of a finished session. It must not
// fail the dialogue; implementations log their own errors.
type SessionArchiver interface {
	ArchiveSession(ctx context.Context, sessionID, phone, outcome string)
}

// ServiceConfig wires the callback pipeline.
type ServiceConfig struct {
	Sessions SessionStore
	Locker   Locker
	Router   *Router
	Catalog  *localization.Catalog
	Journal  InteractionRecorder
	// Archiver is optional; it runs in the background once a session ends.
	Archiver SessionArchiver
	Metrics  *metrics.USSDMetrics
	Logger   *logging.Logger
	// SessionTTL is refreshed on every callback. Zero selects DefaultSessionTTL.
	SessionTTL time.Duration
	// MainMenuCode is the universal "back to main menu" keystroke.
	// Empty selects DefaultMainMenuCode.
	MainMenuCode string
	Now          func() time.Time
}

// Service runs decode, route and persist for each callback under a
// per-session lock.
type Service struct {
	sessions SessionStore
	locker   Locker
	router   *Router
	catalog  *localization.Catalog
	journal  InteractionRecorder
	archiver SessionArchiver
	metrics  *metrics.USSDMetrics
	logger   *logging.Logger
	ttl      time.Duration
	menuCode string
	now      func() time.Time
	archives sync.WaitGroup
}

func NewService(cfg ServiceConfig) *Service {
	if cfg.Sessions == nil {
		panic("ussd: session store cannot be nil")
	}
	if cfg.Router == nil {
		panic("ussd: router cannot be nil")
	}
	if cfg.Catalog == nil {
		panic("ussd: catalog cannot be nil")
	}
	if cfg.Locker == nil {
		cfg.Locker = NewKeyedLocker()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if strings.TrimSpace(cfg.MainMenuCode) == "" {
		cfg.MainMenuCode = DefaultMainMenuCode
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		sessions: cfg.Sessions,
		locker:   cfg.Locker,
		router:   cfg.Router,
		catalog:  cfg.Catalog,
		journal:  cfg.Journal,
		archiver: cfg.Archiver,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		ttl:      cfg.SessionTTL,
		menuCode: strings.TrimSpace(cfg.MainMenuCode),
		now:      cfg.Now,
	}
}

// Handle processes one callback. Apart from ErrInvalidRequest it always
// produces a reply; internal faults are logged and answered with a
// localized END message after the session is rolled back.
func (s *Service) Handle(ctx context.Context, req Request) (Reply, error) {
	req.SessionID = strings.TrimSpace(req.SessionID)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if req.SessionID == "" || req.PhoneNumber == "" {
		return Reply{}, ErrInvalidRequest
	}
	started := s.now()
	log := s.logger.With("session_id", req.SessionID)

	unlock, err := s.locker.Lock(ctx, req.SessionID)
	if err != nil {
		log.Warn("ussd session busy", "error", err)
		s.metrics.ObserveFault(FamilyRoot.String())
		return End(s.catalog.Text(localization.DefaultLanguage, "error_generic", nil)), nil
	}
	defer unlock()

	in := Decode(req.Text, s.menuCode)
	sess, err := s.sessions.Get(ctx, req.SessionID)
	switch {
	case errors.Is(err, ErrSessionNotFound):
		sess = NewSession(req.SessionID, req.PhoneNumber, req.ServiceCode, started)
		if !in.Reset {
			// Expired mid-dialogue: start over like a fresh dial.
			in = Input{Reset: true}
			s.metrics.ObserveReset("expired")
			s.archive(ctx, req.SessionID, req.PhoneNumber, archiveOutcomeExpired)
		}
	case err != nil:
		log.Error("ussd session load failed", "error", err)
		s.metrics.ObserveFault(FamilyRoot.String())
		return End(s.catalog.Text(localization.DefaultLanguage, "error_generic", nil)), nil
	}
	sess.normalize()
	if in.Reset && strings.TrimSpace(req.Text) == "" {
		s.metrics.ObserveReset("empty_input")
	}

	before := sess.Clone()
	family := sess.State.Family.String()

	reply, routeErr := s.route(ctx, sess, in)
	fault := routeErr != nil
	if fault {
		log.Error("ussd routing fault", "state", before.State.String(), "input", in.Latest, "error", routeErr)
		s.metrics.ObserveFault(family)
		sess = rollback(before)
		reply = End(s.catalog.Text(languageOrDefault(sess.Language), "error_generic", nil))
	}

	sess.UpdatedAt = s.now()
	if err := s.sessions.Put(ctx, sess, s.ttl); err != nil {
		log.Error("ussd session save failed", "error", err)
		s.metrics.ObserveFault(family)
		fault = true
		reply = End(s.catalog.Text(languageOrDefault(sess.Language), "error_generic", nil))
	}

	s.record(ctx, req, before, sess, in, reply, fault)
	if reply.Terminal {
		s.archive(ctx, req.SessionID, req.PhoneNumber, archiveOutcomeFault)
	}
	s.metrics.ObserveCallback(family, reply.Terminal, s.now().Sub(started))
	log.Debug("ussd callback handled", "from", before.State.String(), "to", sess.State.String(), "terminal", reply.Terminal)
	return reply, nil
}

func (s *Service) route(ctx context.Context, sess *Session, in Input) (reply Reply, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("ussd: handler panic: %v", rec)
		}
	}()
	return s.router.Route(ctx, sess, in)
}

// rollback returns to the last screen the user is known to have seen
// safely: the main menu once a language is chosen, else the first screen.
func rollback(before *Session) *Session {
	sess := before.Clone()
	sess.Scratch = Scratch{}
	if sess.Language != "" {
		sess.State = StateMainMenu
	} else {
		sess.State = StateStart
	}
	return sess
}

func (s *Service) record(ctx context.Context, req Request, before, after *Session, in Input, reply Reply, fault bool) {
	if s.journal == nil {
		return
	}
	err := s.journal.Record(ctx, interactions.Interaction{
		SessionID:   req.SessionID,
		PhoneNumber: req.PhoneNumber,
		StateBefore: before.State.String(),
		StateAfter:  after.State.String(),
		Input:       in.Latest,
		Reply:       reply.Text,
		Terminal:    reply.Terminal,
		Fault:       fault,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		s.logger.Warn("ussd interaction log failed", "session_id", req.SessionID, "error", err)
	}
}

// Session returns the stored session for inspection.
func (s *Service) Session(ctx context.Context, id string) (*Session, error) {
	return s.sessions.Get(ctx, id)
}

// EndSession forgets a session; the next callback starts over.
func (s *Service) EndSession(ctx context.Context, id string) error {
	unlock, err := s.locker.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()
	phone := ""
	if sess, err := s.sessions.Get(ctx, id); err == nil {
		phone = sess.PhoneNumber
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	s.archive(ctx, id, phone, archiveOutcomeEnded)
	return nil
}

const (
	archiveOutcomeEnded   = "ended"
	archiveOutcomeExpired = "expired"
	archiveOutcomeFault   = "fault"

	archiveTimeout = 15 * time.Second
)

// archive hands the session to the archiver without holding up the reply.
func (s *Service) archive(ctx context.Context, sessionID, phone, outcome string) {
	if s.archiver == nil {
		return
	}
	s.archives.Add(1)
	go func() {
		defer s.archives.Done()
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
		defer cancel()
		s.archiver.ArchiveSession(actx, sessionID, phone, outcome)
	}()
}

// WaitArchives blocks until background archival has finished.
func (s *Service) WaitArchives() {
	s.archives.Wait()
}

func languageOrDefault(lang string) string {
	if lang == "" {
		return localization.DefaultLanguage
	}
	return lang
}
