package events

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"rentwheels/pkg/kafka"
	"rentwheels/pkg/logger"
	"rentwheels/pkg/requestid"

	kafkago "github.com/segmentio/kafka-go"
)

type stubWriter struct {
	err      error
	messages []kafkago.Message
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *stubWriter) Close() error { return nil }

func TestKafkaPublisher_SetsEventHeaders(t *testing.T) {
	writer := &stubWriter{}
	producer := kafka.NewProducerWithWriter(writer, "rentwheels.events")

	var seen kafka.Message
	producer.Use(func(ctx context.Context, msg kafka.Message, next func(context.Context, kafka.Message) error) error {
		seen = msg
		return next(ctx, msg)
	})

	publisher := NewKafkaPublisher(producer)
	ctx := requestid.NewContext(context.Background(), "req-42")

	err := publisher.Publish(ctx, Event{
		Type:    BookingCreated,
		Key:     "64b7f0000000000000000001",
		Payload: map[string]string{"userEmail": "renter@example.com"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(writer.messages) != 1 {
		t.Fatalf("expected 1 written message, got %d", len(writer.messages))
	}
	if string(writer.messages[0].Key) != "64b7f0000000000000000001" {
		t.Errorf("key = %q", writer.messages[0].Key)
	}
	if got := seen.GetEventType(); got != BookingCreated {
		t.Errorf("event type = %q, want %q", got, BookingCreated)
	}
	if got := seen.GetCorrelationID(); got != "req-42" {
		t.Errorf("correlation id = %q, want req-42", got)
	}
	if seen.GetEventID() == "" {
		t.Error("expected an event id")
	}
}

func TestNotify_LogsFailureWithoutReturningIt(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Output: &buf})

	producer := kafka.NewProducerWithWriter(&stubWriter{err: errors.New("broker down")}, "events")
	Notify(context.Background(), NewKafkaPublisher(producer), log, Event{Type: CarDeleted, Key: "car-1", Payload: "car-1"})

	out := buf.String()
	if !strings.Contains(out, "Failed to publish domain event") || !strings.Contains(out, CarDeleted) {
		t.Errorf("expected failure to be logged, got: %s", out)
	}
}

func TestNotify_NilAndNoopPublishers(t *testing.T) {
	Notify(context.Background(), nil, logger.Discard(), Event{Type: CarCreated, Key: "k"})

	noop := NewNoopPublisher()
	if err := noop.Publish(context.Background(), Event{Type: CarCreated, Key: "k"}); err != nil {
		t.Errorf("noop publish returned %v", err)
	}
	if err := noop.Close(); err != nil {
		t.Errorf("noop close returned %v", err)
	}
}

// blockingPublisher holds every publish until its context ends.
type blockingPublisher struct {
	mu        sync.Mutex
	published []Event
	deadlines []bool
	closed    bool
}

func (p *blockingPublisher) Publish(ctx context.Context, event Event) error {
	<-ctx.Done()
	_, hasDeadline := ctx.Deadline()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, event)
	p.deadlines = append(p.deadlines, hasDeadline)
	return ctx.Err()
}

func (p *blockingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func TestAsyncPublisher_DoesNotBlockCaller(t *testing.T) {
	inner := &blockingPublisher{}
	publisher := NewAsyncPublisher(inner, logger.Discard(), 8, 500*time.Millisecond)

	ctx, cancel := context.WithCancel(requestid.NewContext(context.Background(), "req-1"))
	start := time.Now()
	if err := publisher.Publish(ctx, Event{Type: BookingCreated, Key: "car-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cancel()
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("publish blocked the caller for %s", elapsed)
	}

	if err := publisher.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	inner.mu.Lock()
	defer inner.mu.Unlock()
	if len(inner.published) != 1 || !inner.deadlines[0] {
		t.Errorf("event should be delivered under its own timeout, got %+v", inner.published)
	}
	if !inner.closed {
		t.Error("close must reach the wrapped publisher")
	}
}

func TestAsyncPublisher_DetachesFromRequestCancellation(t *testing.T) {
	var got context.Context
	done := make(chan struct{})
	inner := &funcPublisher{publish: func(ctx context.Context, _ Event) error {
		got = ctx
		close(done)
		return nil
	}}
	publisher := NewAsyncPublisher(inner, logger.Discard(), 1, time.Second)
	defer publisher.Close()

	ctx, cancel := context.WithCancel(requestid.NewContext(context.Background(), "req-7"))
	cancel()
	if err := publisher.Publish(ctx, Event{Type: CarCreated, Key: "car-7"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
	if got.Err() != nil {
		t.Errorf("publish context inherited request cancellation: %v", got.Err())
	}
	if requestid.FromContext(got) != "req-7" {
		t.Error("publish context should keep the request id")
	}
}

func TestAsyncPublisher_RejectsAfterClose(t *testing.T) {
	publisher := NewAsyncPublisher(NewNoopPublisher(), logger.Discard(), 1, time.Second)
	if err := publisher.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := publisher.Publish(context.Background(), Event{Type: CarCreated, Key: "k"}); !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("expected ErrPublisherClosed, got %v", err)
	}
	if err := publisher.Close(); err != nil {
		t.Errorf("second close returned %v", err)
	}
}

type funcPublisher struct {
	publish func(ctx context.Context, event Event) error
}

func (p *funcPublisher) Publish(ctx context.Context, event Event) error { return p.publish(ctx, event) }

func (p *funcPublisher) Close() error { return nil }
