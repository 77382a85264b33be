// Package publisher delivers audit events to the store and optional sinks.
package publisher

import (
	"context"
	"sync"
	"time"

	"bloodlink/pkg/domain"
	audit "bloodlink/pkg/platform/audit"
)

// Store persists events for per-account listing.
type Store interface {
	Append(ctx context.Context, event audit.Event) error
	ListByAccount(ctx context.Context, accountID domain.AccountID) ([]audit.Event, error)
}

// Sink receives a copy of every event, fire-and-forget. Sink failures never
// fail the emitting operation.
type Sink interface {
	Send(ctx context.Context, event audit.Event) error
}

// Publisher writes events synchronously by default; WithAsyncBuffer switches
// to a buffered goroutine that drops events when the buffer is full rather
// than blocking the request path.
type Publisher struct {
	store Store
	sinks []Sink

	ch     chan audit.Event
	done   chan struct{}
	closed sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous delivery with the given buffer size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.ch = make(chan audit.Event, size)
	}
}

// WithSink adds a fan-out sink (e.g. Kafka).
func WithSink(sink Sink) Option {
	return func(p *Publisher) {
		if sink != nil {
			p.sinks = append(p.sinks, sink)
		}
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if p.ch != nil {
		go p.drain()
	}
	return p
}

// Emit records an event. In async mode a full buffer drops the event; audit
// delivery must never block or fail a domain operation.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if p.ch != nil {
		select {
		case p.ch <- event:
		default:
			// Buffer full: drop rather than stall the request path.
		}
		return nil
	}
	return p.deliver(ctx, event)
}

// List returns the events recorded for an account.
func (p *Publisher) List(ctx context.Context, accountID domain.AccountID) ([]audit.Event, error) {
	return p.store.ListByAccount(ctx, accountID)
}

// Close drains any buffered events and stops the worker.
func (p *Publisher) Close() {
	p.closed.Do(func() {
		if p.ch != nil {
			close(p.ch)
			<-p.done
		}
	})
}

func (p *Publisher) drain() {
	for event := range p.ch {
		_ = p.deliver(context.Background(), event)
	}
	close(p.done)
}

func (p *Publisher) deliver(ctx context.Context, event audit.Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	for _, sink := range p.sinks {
		_ = sink.Send(ctx, event)
	}
	return nil
}
