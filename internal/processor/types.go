package processor

import (
	"github.com/voleai/padelpro/internal/metrics"
	"github.com/voleai/padelpro/internal/pubsub"
)

// Processor drives ingested facts through the processing pipeline.
type Processor struct {
	store    Store
	ranking  Ranker
	pubsub   pubsub.PubSubClient
	notifier Notifier
	metrics  metrics.Metrics
}
