package audit

import (
	"context"
	"log/slog"
	"sync"

	"elan/pkg/requestcontext"
)

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store  Store
	events chan Event
	wg     sync.WaitGroup
	logger *slog.Logger
	async  bool

	mu     sync.RWMutex // guards closed against sends on a closed channel
	closed bool
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer enables async processing with the specified buffer size.
// Events are queued and persisted in a background goroutine.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan Event, size)
			p.async = true
		}
	}
}

// WithPublisherLogger sets a logger for async error reporting.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Error("failed to persist audit event",
				"error", err,
				"event", event.Name,
				"event_id", event.ID,
				"resource_id", event.ResourceID,
			)
		}
	}
}

// Close shuts down the async publisher and waits for pending events to drain.
// Emits after Close are written synchronously. Close is idempotent.
func (p *Publisher) Close() {
	if !p.async {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.events)
	p.mu.Unlock()
	p.wg.Wait()
}

// Emit stamps the event with an id, time and request metadata, then appends
// it. In async mode a full buffer blocks until there is room or ctx is done;
// audit events are never dropped silently.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	event = enrich(ctx, event)
	if !p.async {
		return p.store.Append(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return p.store.Append(ctx, event)
	}
	select {
	case p.events <- event:
		return nil
	default:
	}
	if p.logger != nil {
		p.logger.WarnContext(ctx, "audit buffer full, waiting",
			"event", event.Name,
			"request_id", event.RequestID,
		)
	}
	select {
	case p.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func enrich(ctx context.Context, event Event) Event {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.ID == "" {
		event.ID = newEventID(event.Timestamp)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.Client == "" {
		event.Client = DescribeClient(requestcontext.UserAgent(ctx))
	}
	return event
}
