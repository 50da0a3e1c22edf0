package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvBusinessOpen       = "BUSINESS_OPEN"
	EnvBusinessClose      = "BUSINESS_CLOSE"
	EnvSlotStepMin        = "SLOT_STEP_MIN"
	EnvDefaultDurationMin = "DEFAULT_DURATION_MIN"
	EnvSlotLockTTL        = "SLOT_LOCK_TTL"

	EnvKafkaEventsTopic     = "KAFKA_EVENTS_TOPIC"
	EnvKafkaWorkOrdersTopic = "KAFKA_WORK_ORDERS_TOPIC"
	EnvKafkaConsumerGroup   = "KAFKA_CONSUMER_GROUP"

	EnvSealerKey = "SEALER_KEY"
)
