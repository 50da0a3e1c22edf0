package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"workbay/pkg/client"
	"workbay/pkg/logger"
)

var timeOfDayRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Business-hours window and candidate step used by the slot generator
	// when the request does not override them.
	BusinessOpen       string
	BusinessClose      string
	SlotStepMin        int
	DefaultDurationMin int
	SlotLockTTL        time.Duration

	KafkaEventsTopic     string
	KafkaWorkOrdersTopic string
	KafkaConsumerGroup   string

	SealerKey string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		BusinessOpen:       getEnvStr(EnvBusinessOpen, DefaultBusinessOpen),
		BusinessClose:      getEnvStr(EnvBusinessClose, DefaultBusinessClose),
		SlotStepMin:        getEnvNum(EnvSlotStepMin, DefaultSlotStepMin),
		DefaultDurationMin: getEnvNum(EnvDefaultDurationMin, DefaultDefaultDurationMin),
		SlotLockTTL:        getEnvDuration(EnvSlotLockTTL, DefaultSlotLockTTL),

		KafkaEventsTopic:     getEnvStr(EnvKafkaEventsTopic, DefaultKafkaEventsTopic),
		KafkaWorkOrdersTopic: getEnvStr(EnvKafkaWorkOrdersTopic, DefaultKafkaWorkOrdersTopic),
		KafkaConsumerGroup:   getEnvStr(EnvKafkaConsumerGroup, DefaultKafkaConsumerGroup),

		SealerKey: getEnvStr(EnvSealerKey, ""),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}
	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if !timeOfDayRegex.MatchString(cfg.BusinessOpen) {
		errs = append(errs, fmt.Sprintf("BusinessOpen must be in HH:MM format, got: %s", cfg.BusinessOpen))
	}
	if !timeOfDayRegex.MatchString(cfg.BusinessClose) {
		errs = append(errs, fmt.Sprintf("BusinessClose must be in HH:MM format, got: %s", cfg.BusinessClose))
	}
	if timeOfDayRegex.MatchString(cfg.BusinessOpen) && timeOfDayRegex.MatchString(cfg.BusinessClose) &&
		cfg.BusinessClose <= cfg.BusinessOpen {
		errs = append(errs, fmt.Sprintf("BusinessClose (%s) must be after BusinessOpen (%s)", cfg.BusinessClose, cfg.BusinessOpen))
	}
	if cfg.SlotStepMin <= 0 {
		errs = append(errs, fmt.Sprintf("SlotStepMin must be positive, got: %d", cfg.SlotStepMin))
	}
	if cfg.DefaultDurationMin <= 0 {
		errs = append(errs, fmt.Sprintf("DefaultDurationMin must be positive, got: %d", cfg.DefaultDurationMin))
	}
	if cfg.SlotLockTTL <= 0 {
		errs = append(errs, fmt.Sprintf("SlotLockTTL must be positive, got: %s", cfg.SlotLockTTL))
	}

	if cfg.RateLimitRequests <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitWindow <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errs = append(errs, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if len(errs) > 0 {
		msg := "Configuration validation failed:\n"
		for i, e := range errs {
			msg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return fmt.Errorf("%s", msg)
	}
	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"business_open", cfg.BusinessOpen,
		"business_close", cfg.BusinessClose,
		"slot_step_min", cfg.SlotStepMin,
		"default_duration_min", cfg.DefaultDurationMin,
		"slot_lock_ttl", cfg.SlotLockTTL,
		"kafka_events_topic", cfg.KafkaEventsTopic,
		"kafka_work_orders_topic", cfg.KafkaWorkOrdersTopic,
	)
}

// BusinessHours resolves the configured open/close instants for the given
// calendar day in the given location.
func (cfg *Config) BusinessHours(day time.Time, loc *time.Location) (time.Time, time.Time) {
	open := atTimeOfDay(day, cfg.BusinessOpen, loc)
	close := atTimeOfDay(day, cfg.BusinessClose, loc)
	return open, close
}

func atTimeOfDay(day time.Time, hhmm string, loc *time.Location) time.Time {
	hour, _ := strconv.Atoi(hhmm[:2])
	min, _ := strconv.Atoi(hhmm[3:])
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, loc)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
