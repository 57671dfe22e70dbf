package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventRankFact        EventType = "rank-fact"
	EventUpdatePairStats EventType = "update-pair-stats"
	EventNotifyMovement  EventType = "notify-movement"
)

// FactEvent is the payload published for per-fact pipeline steps.
type FactEvent struct {
	MatchID string `msgpack:"match_id"`
	DryRun  bool   `msgpack:"dry_run"`
}
