package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus collectors are package-level by convention.
var (
	// EventsReceived counts delivery-channel events by kind.
	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_siren_events_received_total",
			Help: "Delivery-channel events received, by kind.",
		},
		[]string{"kind"},
	)

	// DecodeFailures counts payloads dropped by the codec.
	DecodeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "order_siren_decode_failures_total",
			Help: "Events dropped because the payload failed to decode.",
		},
	)

	// DuplicatesDropped counts stale or duplicate incoming events.
	DuplicatesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "order_siren_duplicates_dropped_total",
			Help: "Incoming events dropped as stale or duplicate deliveries.",
		},
	)

	// Supersessions counts active-alert replacements by a different order.
	Supersessions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "order_siren_supersessions_total",
			Help: "Active alerts replaced by a different order while ringing.",
		},
	)

	// FeedbackSessionsStarted counts feedback loop starts.
	FeedbackSessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "order_siren_feedback_sessions_started_total",
			Help: "Feedback sessions started by the alerting driver.",
		},
	)

	// DecisionsCaptured counts committed operator decisions by action.
	DecisionsCaptured = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_siren_decisions_captured_total",
			Help: "Operator decisions committed on the surface, by action.",
		},
		[]string{"action"},
	)

	// DecisionsRelayed counts decisions handed to an attached consumer.
	DecisionsRelayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "order_siren_decisions_relayed_total",
			Help: "Decisions delivered directly to an attached consumer.",
		},
	)

	// PendingStored counts decisions parked for a later consumer.
	PendingStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "order_siren_pending_stored_total",
			Help: "Decisions stored as pending because no consumer was reachable.",
		},
	)

	// PendingDrained counts pending decisions handed out by drain calls.
	PendingDrained = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "order_siren_pending_drained_total",
			Help: "Pending decisions consumed by a newly activated consumer.",
		},
	)
)
