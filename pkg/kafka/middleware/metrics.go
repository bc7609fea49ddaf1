package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"rentwheels/pkg/kafka"
)

// PublishMetrics counts publish outcomes for one producer.
type PublishMetrics struct {
	published     atomic.Int64
	failed        atomic.Int64
	durationTotal atomic.Int64 // nanoseconds
}

type MetricsSnapshot struct {
	Published          int64
	Failed             int64
	AvgPublishDuration time.Duration
}

func NewPublishMetrics() *PublishMetrics {
	return &PublishMetrics{}
}

func (m *PublishMetrics) Snapshot() MetricsSnapshot {
	published := m.published.Load()
	failed := m.failed.Load()
	snapshot := MetricsSnapshot{Published: published, Failed: failed}
	if attempts := published + failed; attempts > 0 {
		snapshot.AvgPublishDuration = time.Duration(m.durationTotal.Load() / attempts)
	}
	return snapshot
}

func (m *PublishMetrics) Reset() {
	m.published.Store(0)
	m.failed.Store(0)
	m.durationTotal.Store(0)
}

// Middleware records every publish attempt, successful or not.
func (m *PublishMetrics) Middleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)

		m.durationTotal.Add(int64(time.Since(start)))
		if err != nil {
			m.failed.Add(1)
		} else {
			m.published.Add(1)
		}
		return err
	}
}
