package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appconfig "github.com/wolfman30/telehealth-ussd/internal/config"
	"github.com/wolfman30/telehealth-ussd/internal/events"
	"github.com/wolfman30/telehealth-ussd/internal/observability/metrics"
	"github.com/wolfman30/telehealth-ussd/pkg/logging"
)

func TestSetupMetricsExposesUSSDMetrics(t *testing.T) {
	registry, handler := setupMetrics()
	if registry == nil || handler == nil {
		t.Fatalf("expected non-nil registry and handler")
	}

	metrics.NewUSSDMetrics(registry).ObserveCallback("main_menu", false, 10*time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "tujali_ussd_callbacks_total") {
		t.Fatalf("expected callback counter to be exported")
	}
}

type countingHandler struct{ calls chan events.Envelope }

func (h countingHandler) Handle(_ context.Context, env events.Envelope) error {
	h.calls <- env
	return nil
}

func TestSetupInlineWorkerDisabled(t *testing.T) {
	registry, _ := setupMetrics()
	cfg := &appconfig.Config{UseMemoryQueue: false}

	done := setupInlineWorker(context.Background(), cfg, logging.New("error"), events.NewMemoryQueue(1), countingHandler{}, nil, registry)
	if done != nil {
		t.Fatalf("expected no worker when memory queue is disabled")
	}
}

func TestSetupInlineWorkerDeliversAndStops(t *testing.T) {
	registry, _ := setupMetrics()
	logger := logging.New("error")
	cfg := &appconfig.Config{UseMemoryQueue: true, WorkerCount: 1}
	queue := events.NewMemoryQueue(2)
	handler := countingHandler{calls: make(chan events.Envelope, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := setupInlineWorker(ctx, cfg, logger, queue, handler, events.NewMemoryProcessedStore(), registry)
	if done == nil {
		t.Fatalf("expected worker when memory queue is enabled")
	}

	pub := events.NewPublisher(queue, logger)
	if err := pub.Publish(context.Background(), events.PatientAggregate(1), "ATUid_1", events.PatientMessageV1{ProviderID: 1, Content: "hello"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case env := <-handler.calls:
		if env.EventType != (events.PatientMessageV1{}).EventType() {
			t.Fatalf("unexpected event type %s", env.EventType)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("inline worker did not deliver the event")
	}

	cancel()
	waitForInlineWorker(done, logger)
}
