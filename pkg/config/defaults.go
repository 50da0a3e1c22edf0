package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "workbay"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultBusinessOpen       = "08:00"
	DefaultBusinessClose      = "18:00"
	DefaultSlotStepMin        = 30
	DefaultDefaultDurationMin = 60
	DefaultSlotLockTTL        = 10 * time.Second

	DefaultKafkaEventsTopic     = "workbay.scheduling.events"
	DefaultKafkaWorkOrdersTopic = "workbay.workorders.status"
	DefaultKafkaConsumerGroup   = "workbay-scheduling"

	DefaultPaginationLimit = 100
)
