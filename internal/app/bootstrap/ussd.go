package bootstrap

import (
	"fmt"

	appconfig "github.com/wolfman30/telehealth-ussd/internal/config"
	"github.com/wolfman30/telehealth-ussd/internal/interactions"
	"github.com/wolfman30/telehealth-ussd/internal/localization"
	"github.com/wolfman30/telehealth-ussd/internal/observability/metrics"
	"github.com/wolfman30/telehealth-ussd/internal/records"
	"github.com/wolfman30/telehealth-ussd/internal/ussd"
	"github.com/wolfman30/telehealth-ussd/pkg/logging"
)

// USSDDeps are the collaborators of the callback service. Only Records is
// required; the rest fall back to in-process defaults.
type USSDDeps struct {
	Records  records.Store
	Sessions ussd.SessionStore
	Locker   ussd.Locker
	Events   ussd.EventPublisher
	Journal  *interactions.Store
	Archiver ussd.SessionArchiver
	Metrics  *metrics.USSDMetrics
}

// BuildUSSDService assembles the catalog, router and service.
func BuildUSSDService(cfg *appconfig.Config, deps USSDDeps, logger *logging.Logger) (*ussd.Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if deps.Records == nil {
		return nil, fmt.Errorf("bootstrap: record store is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	catalog, err := localization.NewCatalog()
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load catalog: %w", err)
	}
	if deps.Sessions == nil {
		deps.Sessions = ussd.NewMemorySessionStore(nil)
	}

	router := ussd.NewRouter(ussd.RouterConfig{
		Records:              deps.Records,
		Catalog:              catalog,
		Events:               deps.Events,
		Logger:               logger,
		MaxDistanceKm:        cfg.ProviderMaxDistanceKm,
		DesignatedProviderID: cfg.DesignatedProviderID,
	})
	return ussd.NewService(ussd.ServiceConfig{
		Sessions:     deps.Sessions,
		Locker:       deps.Locker,
		Router:       router,
		Catalog:      catalog,
		Journal:      interactionRecorder(deps.Journal),
		Archiver:     deps.Archiver,
		Metrics:      deps.Metrics,
		Logger:       logger,
		SessionTTL:   cfg.SessionTTL,
		MainMenuCode: cfg.MainMenuCode,
	}), nil
}

// BuildUSSDHandler exposes the service over HTTP. A nil journal disables
// interaction history on the admin session view.
func BuildUSSDHandler(svc *ussd.Service, journal *interactions.Store, logger *logging.Logger) *ussd.Handler {
	return ussd.NewHandler(svc, interactionLister(journal), logger)
}

// interactionRecorder and interactionLister return an untyped nil for a
// disabled journal so the ussd package's nil checks hold.
func interactionRecorder(store *interactions.Store) ussd.InteractionRecorder {
	if store == nil {
		return nil
	}
	return store
}

func interactionLister(store *interactions.Store) ussd.InteractionLister {
	if store == nil {
		return nil
	}
	return store
}
