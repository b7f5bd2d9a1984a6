package obs_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/noah-isme/backend-troli/internal/events"
	"github.com/noah-isme/backend-troli/internal/obs"
)

func TestMutationRecorderCountsByTopic(t *testing.T) {
	registry := prometheus.NewRegistry()
	obs.MustRegisterDomainMetrics("troli", registry)

	recorder := obs.MutationRecorder{}
	ev := events.Event{Topic: events.TopicItemAdded, CartID: "c1"}
	if err := recorder.Notify(context.Background(), ev); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := recorder.Notify(context.Background(), ev); err != nil {
		t.Fatalf("notify: %v", err)
	}

	total := testutil.ToFloat64(obs.CartMutationsTotal.WithLabelValues(events.TopicItemAdded))
	if total != 2 {
		t.Fatalf("expected counter to be 2, got %v", total)
	}
}
