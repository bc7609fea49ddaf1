package config

import "time"

const (
	DefaultMongoURI                 = "mongodb://localhost:27017"
	DefaultMongoDatabaseName        = "rentwheels"
	DefaultMongoConnTimeout         = 10 * time.Second
	DefaultMongoTransactionsEnabled = false

	DefaultPort     = "3000"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 120
	DefaultRateLimitWindow   = 1 * time.Minute
	DefaultRedisKeyPrefix    = "rentwheels:ratelimit"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultTopRatedLimit         = 3
	DefaultRandomSampleThreshold = 3

	DefaultKafkaEnabled     = false
	DefaultKafkaEventsTopic = "rentwheels.events"

	DefaultEventPublishTimeout = 5 * time.Second
	DefaultEventQueueSize      = 1024
)
