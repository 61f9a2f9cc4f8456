package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"elan/internal/platform/kafka"
	"elan/internal/rbac"
	id "elan/pkg/domain"
	"elan/pkg/platform/circuit"
)

// Producer is the slice of the Kafka producer the stream needs.
type Producer interface {
	Produce(ctx context.Context, msg *kafka.Message) error
}

// StreamStore writes to a durable store and then mirrors the event onto a
// Kafka topic keyed by resource id, so consumers see one resource's events
// in order. The durable write decides success; stream failures are logged.
type StreamStore struct {
	durable  Store
	producer Producer
	topic    string
	logger   *slog.Logger
	breaker  *circuit.Breaker
}

type StreamOption func(*StreamStore)

// WithBreaker skips the stream while the broker keeps failing, so a Kafka
// outage costs one failed produce per cooldown instead of one per event.
func WithBreaker(b *circuit.Breaker) StreamOption {
	return func(s *StreamStore) {
		s.breaker = b
	}
}

func NewStreamStore(durable Store, producer Producer, topic string, logger *slog.Logger, opts ...StreamOption) *StreamStore {
	s := &StreamStore{durable: durable, producer: producer, topic: topic, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// streamEvent is the wire form published to Kafka.
type streamEvent struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	ActorID       string            `json:"actor_id"`
	ActorRole     string            `json:"actor_role"`
	Domain        string            `json:"domain"`
	ResourceType  string            `json:"resource_type"`
	ResourceID    string            `json:"resource_id"`
	Action        string            `json:"action"`
	PreviousState string            `json:"previous_state,omitempty"`
	NewState      string            `json:"new_state,omitempty"`
	Reason        string            `json:"reason,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	RequestID     string            `json:"request_id,omitempty"`
	Timestamp     string            `json:"timestamp"`
}

func (s *StreamStore) Append(ctx context.Context, event Event) error {
	if err := s.durable.Append(ctx, event); err != nil {
		return err
	}

	payload, err := json.Marshal(streamEvent{
		ID:            event.ID,
		Name:          string(event.Name),
		ActorID:       event.ActorID.String(),
		ActorRole:     string(event.ActorRole),
		Domain:        string(event.Domain),
		ResourceType:  string(event.ResourceType),
		ResourceID:    event.ResourceID,
		Action:        string(event.Action),
		PreviousState: event.PreviousState,
		NewState:      event.NewState,
		Reason:        event.Reason,
		Metadata:      event.Metadata,
		RequestID:     event.RequestID,
		Timestamp:     event.Timestamp.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		s.logStreamError(ctx, event, err)
		return nil
	}
	msg := &kafka.Message{
		Topic: s.topic,
		Key:   []byte(event.ResourceID),
		Value: payload,
		Headers: map[string]string{
			"event_name": string(event.Name),
			"event_id":   event.ID,
		},
	}
	s.produce(ctx, event, msg)
	return nil
}

func (s *StreamStore) produce(ctx context.Context, event Event, msg *kafka.Message) {
	if s.breaker != nil && !s.breaker.Allow() {
		return
	}
	err := s.producer.Produce(ctx, msg)
	if s.breaker == nil {
		if err != nil {
			s.logStreamError(ctx, event, err)
		}
		return
	}
	if err != nil {
		s.logStreamError(ctx, event, err)
		if s.breaker.RecordFailure().Opened && s.logger != nil {
			s.logger.WarnContext(ctx, "audit stream circuit opened", "breaker", s.breaker.Name(), "topic", s.topic)
		}
		return
	}
	if s.breaker.RecordSuccess().Closed && s.logger != nil {
		s.logger.InfoContext(ctx, "audit stream circuit closed", "breaker", s.breaker.Name(), "topic", s.topic)
	}
}

func (s *StreamStore) logStreamError(ctx context.Context, event Event, err error) {
	if s.logger == nil {
		return
	}
	s.logger.ErrorContext(ctx, "failed to stream audit event",
		"error", err,
		"event", event.Name,
		"event_id", event.ID,
		"topic", s.topic,
	)
}

func (s *StreamStore) ListByResource(ctx context.Context, resource rbac.Resource, resourceID string) ([]Event, error) {
	return s.durable.ListByResource(ctx, resource, resourceID)
}

func (s *StreamStore) ListByActor(ctx context.Context, actorID id.UserID) ([]Event, error) {
	return s.durable.ListByActor(ctx, actorID)
}
