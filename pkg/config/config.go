package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"aerolabel/pkg/client"
	kafka_config "aerolabel/pkg/kafka/config"
	"aerolabel/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port         string
	StoreBackend string

	RequestTimeout time.Duration
	MaxRequestSize int
	IdempotencyTTL time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	LeaseTTL             time.Duration
	HeartbeatInterval    time.Duration
	SweepInterval        time.Duration
	MinTTLHeartbeatRatio float64
	LeaseShards          int

	HighConfidenceThreshold float64
	BulkApproveConcurrency  int
	BulkApproveMaxItems     int

	ImagesDir   string
	LabeledDir  string
	ExcludedDir string

	Kafka *kafka_config.Config

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port:         getEnvStr(EnvPort, DefaultPort),
		StoreBackend: getEnvStr(EnvStoreBackend, DefaultStoreBackend),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		LeaseTTL:             getEnvDuration(EnvLeaseTTL, DefaultLeaseTTL),
		HeartbeatInterval:    getEnvDuration(EnvHeartbeatInterval, DefaultHeartbeatInterval),
		SweepInterval:        getEnvDuration(EnvSweepInterval, DefaultSweepInterval),
		MinTTLHeartbeatRatio: getEnvFloat(EnvMinTTLHeartbeatRatio, DefaultMinTTLHeartbeatRatio),
		LeaseShards:          getEnvNum(EnvLeaseShards, DefaultLeaseShards),

		HighConfidenceThreshold: getEnvFloat(EnvHighConfidenceThreshold, DefaultHighConfidenceThreshold),
		BulkApproveConcurrency:  getEnvNum(EnvBulkApproveConcurrency, DefaultBulkApproveConcurrency),
		BulkApproveMaxItems:     getEnvNum(EnvBulkApproveMaxItems, DefaultBulkApproveMaxItems),

		ImagesDir:   getEnvStr(EnvImagesDir, DefaultImagesDir),
		LabeledDir:  getEnvStr(EnvLabeledDir, DefaultLabeledDir),
		ExcludedDir: getEnvStr(EnvExcludedDir, DefaultExcludedDir),

		Kafka: kafka_config.Load(),

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

func (cfg *Config) UsesMongo() bool {
	return cfg.StoreBackend == StoreBackendMongo
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	switch cfg.StoreBackend {
	case StoreBackendMongo:
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty")
		} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	case StoreBackendMemory:
	default:
		errors = append(errors, fmt.Sprintf("StoreBackend must be one of [%s, %s], got: %s", StoreBackendMongo, StoreBackendMemory, cfg.StoreBackend))
	}

	for name, d := range map[string]time.Duration{
		"RequestTimeout":  cfg.RequestTimeout,
		"ReadTimeout":     cfg.ReadTimeout,
		"WriteTimeout":    cfg.WriteTimeout,
		"IdleTimeout":     cfg.IdleTimeout,
		"ShutdownTimeout": cfg.ShutdownTimeout,
		"IdempotencyTTL":  cfg.IdempotencyTTL,
	} {
		if d <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	errors = append(errors, cfg.validateLeasePolicy()...)

	if cfg.HighConfidenceThreshold < 0 || cfg.HighConfidenceThreshold > 1 {
		errors = append(errors, fmt.Sprintf("HighConfidenceThreshold must be within [0, 1], got: %g", cfg.HighConfidenceThreshold))
	}
	if cfg.BulkApproveConcurrency <= 0 {
		errors = append(errors, fmt.Sprintf("BulkApproveConcurrency must be positive, got: %d", cfg.BulkApproveConcurrency))
	}
	if cfg.BulkApproveMaxItems <= 0 {
		errors = append(errors, fmt.Sprintf("BulkApproveMaxItems must be positive, got: %d", cfg.BulkApproveMaxItems))
	}

	if cfg.ImagesDir == "" || cfg.LabeledDir == "" || cfg.ExcludedDir == "" {
		errors = append(errors, "ImagesDir, LabeledDir and ExcludedDir cannot be empty")
	}

	if cfg.Kafka != nil {
		errors = append(errors, cfg.Kafka.Validate()...)
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

// validateLeasePolicy enforces that a lease survives a few missed heartbeats.
func (cfg *Config) validateLeasePolicy() []string {
	var errors []string

	if cfg.LeaseTTL <= 0 {
		errors = append(errors, fmt.Sprintf("LeaseTTL must be positive, got: %s", cfg.LeaseTTL))
	}
	if cfg.HeartbeatInterval <= 0 {
		errors = append(errors, fmt.Sprintf("HeartbeatInterval must be positive, got: %s", cfg.HeartbeatInterval))
	}
	if cfg.SweepInterval <= 0 {
		errors = append(errors, fmt.Sprintf("SweepInterval must be positive, got: %s", cfg.SweepInterval))
	}
	if cfg.MinTTLHeartbeatRatio < 1 {
		errors = append(errors, fmt.Sprintf("MinTTLHeartbeatRatio must be at least 1, got: %g", cfg.MinTTLHeartbeatRatio))
	}
	if cfg.LeaseShards <= 0 {
		errors = append(errors, fmt.Sprintf("LeaseShards must be positive, got: %d", cfg.LeaseShards))
	}

	if cfg.LeaseTTL > 0 && cfg.HeartbeatInterval > 0 {
		minTTL := time.Duration(float64(cfg.HeartbeatInterval) * cfg.MinTTLHeartbeatRatio)
		if cfg.LeaseTTL < minTTL {
			errors = append(errors, fmt.Sprintf(
				"LeaseTTL (%s) must be at least %gx HeartbeatInterval (%s)",
				cfg.LeaseTTL, cfg.MinTTLHeartbeatRatio, cfg.HeartbeatInterval,
			))
		}
	}

	return errors
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"store_backend", cfg.StoreBackend,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"lease_ttl", cfg.LeaseTTL,
		"heartbeat_interval", cfg.HeartbeatInterval,
		"sweep_interval", cfg.SweepInterval,
		"min_ttl_heartbeat_ratio", cfg.MinTTLHeartbeatRatio,
		"lease_shards", cfg.LeaseShards,
		"high_confidence_threshold", cfg.HighConfidenceThreshold,
		"bulk_approve_concurrency", cfg.BulkApproveConcurrency,
		"bulk_approve_max_items", cfg.BulkApproveMaxItems,
		"images_dir", cfg.ImagesDir,
		"labeled_dir", cfg.LabeledDir,
		"excluded_dir", cfg.ExcludedDir,
	)
	if cfg.Kafka != nil {
		cfg.Kafka.LogConfiguration(cfg.Log.Info)
	}
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

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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
	cfg.Client.GracefulShutdown(cfg.Log)
}
