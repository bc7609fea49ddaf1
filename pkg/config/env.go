package config

const (
	EnvMongoURI                 = "MONGO_URI"
	EnvMongoDatabaseName        = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout         = "MONGO_CONN_TIMEOUT"
	EnvMongoTransactionsEnabled = "MONGO_TRANSACTIONS_ENABLED"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"
	EnvRedisAddr         = "REDIS_ADDR"
	EnvRedisPassword     = "REDIS_PASSWORD"
	EnvRedisKeyPrefix    = "REDIS_KEY_PREFIX"
	EnvTrustedProxies    = "TRUSTED_PROXIES"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvTopRatedLimit         = "TOP_RATED_LIMIT"
	EnvRandomSampleThreshold = "RANDOM_SAMPLE_THRESHOLD"

	EnvKafkaEnabled     = "KAFKA_ENABLED"
	EnvKafkaEventsTopic = "KAFKA_EVENTS_TOPIC"

	EnvEventPublishTimeout = "EVENT_PUBLISH_TIMEOUT"
	EnvEventQueueSize      = "EVENT_QUEUE_SIZE"
)
