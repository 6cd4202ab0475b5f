package monitoring

import (
	"context"
	"testing"
)

func Test_segmentNameOf(t *testing.T) {
	tests := map[string]string{
		"github.com/francois202/gigabanksystem1-sub000/internal/services.(*outboxRelay).RunCycle":        "services.outboxRelay.RunCycle",
		"github.com/francois202/gigabanksystem1-sub000/internal/repositories.(*outboxSQL).MarkProcessed": "repositories.outboxSQL.MarkProcessed",
		"github.com/francois202/gigabanksystem1-sub000/internal/services.(*batchProcessor).ProcessBatch.func1": "services.batchProcessor.ProcessBatch.func1",
		"github.com/francois202/gigabanksystem1-sub000/internal/common/kafka.NewBaseConsumer":              "kafka.NewBaseConsumer",
		"github.com/francois202/gigabanksystem1-sub000/internal/common/publisher.Publish[...]":             "publisher.Publish",
		"net/http.(*Server).Serve": "http.Server.Serve",
		"main.main":                "main.main",
	}
	for fullName, want := range tests {
		t.Run(want, func(t *testing.T) {
			if got := segmentNameOf(fullName); got != want {
				t.Errorf("segmentNameOf() = %v, want %v", got, want)
			}
		})
	}
}

func Test_layerFromFile(t *testing.T) {
	tests := map[string]string{
		"/app/internal/repositories/sql_outbox.go":    LayerRepository,
		"/app/internal/services/outbox_relay.go":      LayerService,
		"/app/internal/deliveries/job/relay/relay.go": LayerDelivery,
		"/app/internal/common/dlq_publisher/dlq.go":   LayerUnknown,
	}
	for file, want := range tests {
		t.Run(file, func(t *testing.T) {
			if got := layerFromFile(file); got != want {
				t.Errorf("layerFromFile() = %v, want %v", got, want)
			}
		})
	}
}

func TestStartBackgroundTransaction_NilApp(t *testing.T) {
	ctx := context.Background()
	got, end := StartBackgroundTransaction(ctx, nil, "relay-cycle")
	end()
	if got != ctx {
		t.Errorf("StartBackgroundTransaction() changed the context without an application")
	}

	m := New(got, WithLayer(LayerService))
	m.Finish()
}
