package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublish_WritesKeyValueAndHeaders(t *testing.T) {
	writer := &fakeWriter{}
	producer := NewProducerWithWriter(writer, "rentwheels.events")

	msg, err := NewMessage().
		WithKey("car-1").
		WithValue(map[string]string{"carName": "Civic"}).
		WithEventType("car.created").
		WithSource("rentwheels").
		Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	if err := producer.Publish(context.Background(), msg); err != nil {
		t.Fatalf("unexpected publish error: %v", err)
	}

	if len(writer.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(writer.messages))
	}
	written := writer.messages[0]
	if string(written.Key) != "car-1" {
		t.Errorf("expected key car-1, got %s", written.Key)
	}
	if string(written.Value) != `{"carName":"Civic"}` {
		t.Errorf("unexpected value %s", written.Value)
	}

	headers := map[string]string{}
	for _, h := range written.Headers {
		headers[h.Key] = string(h.Value)
	}
	if headers[HeaderEventType] != "car.created" {
		t.Errorf("expected event type header, got %q", headers[HeaderEventType])
	}
	if headers[HeaderEventID] == "" {
		t.Error("expected generated event id header")
	}
}

func TestPublish_RejectsIncompleteMessages(t *testing.T) {
	producer := NewProducerWithWriter(&fakeWriter{}, "topic")

	if err := producer.Publish(context.Background(), Message{Value: []byte("x")}); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("expected ErrEmptyKey, got %v", err)
	}
	if err := producer.Publish(context.Background(), Message{Key: "k"}); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("expected ErrEmptyValue, got %v", err)
	}
}

func TestPublish_MiddlewareOrderAndTopic(t *testing.T) {
	producer := NewProducerWithWriter(&fakeWriter{}, "events")

	var calls []string
	producer.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		calls = append(calls, "first:"+msg.Topic)
		return next(ctx, msg)
	})
	producer.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		calls = append(calls, "second")
		return next(ctx, msg)
	})

	if err := producer.Publish(context.Background(), Message{Key: "k", Value: []byte("{}")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 2 || calls[0] != "first:events" || calls[1] != "second" {
		t.Errorf("unexpected middleware calls: %v", calls)
	}
}

func TestPublish_WrapsWriterError(t *testing.T) {
	writeErr := errors.New("broker down")
	producer := NewProducerWithWriter(&fakeWriter{err: writeErr}, "events")

	err := producer.Publish(context.Background(), Message{Key: "k", Value: []byte("{}")})
	if !errors.Is(err, writeErr) {
		t.Errorf("expected wrapped writer error, got %v", err)
	}
}

func TestClose_IsIdempotent(t *testing.T) {
	writer := &fakeWriter{}
	producer := NewProducerWithWriter(writer, "events")

	if err := producer.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := producer.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}
	if !writer.closed {
		t.Error("expected writer to be closed")
	}
	if err := producer.Publish(context.Background(), Message{Key: "k", Value: []byte("{}")}); !errors.Is(err, ErrProducerClosed) {
		t.Errorf("expected ErrProducerClosed, got %v", err)
	}
}

func TestBuild_InvalidValue(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("expected ErrInvalidMessage, got %v", err)
	}
}
