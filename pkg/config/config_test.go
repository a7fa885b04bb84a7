package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafka_config "aerolabel/pkg/kafka/config"
)

func validConfig() *Config {
	return &Config{
		MongoURI:          DefaultMongoURI,
		MongoDatabaseName: DefaultMongoDatabaseName,
		MongoConnTimeout:  DefaultMongoConnTimeout,

		Port:         DefaultPort,
		StoreBackend: StoreBackendMongo,

		RequestTimeout: DefaultRequestTimeout,
		MaxRequestSize: DefaultMaxRequestSize,
		IdempotencyTTL: DefaultIdempotencyTTL,

		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,

		LeaseTTL:             DefaultLeaseTTL,
		HeartbeatInterval:    DefaultHeartbeatInterval,
		SweepInterval:        DefaultSweepInterval,
		MinTTLHeartbeatRatio: DefaultMinTTLHeartbeatRatio,
		LeaseShards:          DefaultLeaseShards,

		HighConfidenceThreshold: DefaultHighConfidenceThreshold,
		BulkApproveConcurrency:  DefaultBulkApproveConcurrency,
		BulkApproveMaxItems:     DefaultBulkApproveMaxItems,

		ImagesDir:   DefaultImagesDir,
		LabeledDir:  DefaultLabeledDir,
		ExcludedDir: DefaultExcludedDir,
	}
}

func TestValidate_Defaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:    "port out of range",
			mutate:  func(cfg *Config) { cfg.Port = "70000" },
			wantErr: "Port must be between 1 and 65535",
		},
		{
			name:    "bad mongo scheme",
			mutate:  func(cfg *Config) { cfg.MongoURI = "postgres://localhost" },
			wantErr: "MongoURI must start with",
		},
		{
			name: "memory backend ignores mongo settings",
			mutate: func(cfg *Config) {
				cfg.StoreBackend = StoreBackendMemory
				cfg.MongoURI = ""
			},
		},
		{
			name:    "unknown backend",
			mutate:  func(cfg *Config) { cfg.StoreBackend = "redis" },
			wantErr: "StoreBackend must be one of",
		},
		{
			name:    "ttl below heartbeat ratio",
			mutate:  func(cfg *Config) { cfg.LeaseTTL = 2 * time.Minute },
			wantErr: "LeaseTTL (2m0s) must be at least 3x HeartbeatInterval (1m0s)",
		},
		{
			name:   "ttl exactly at heartbeat ratio",
			mutate: func(cfg *Config) { cfg.LeaseTTL = 3 * time.Minute },
		},
		{
			name:    "ratio below one",
			mutate:  func(cfg *Config) { cfg.MinTTLHeartbeatRatio = 0.5 },
			wantErr: "MinTTLHeartbeatRatio must be at least 1",
		},
		{
			name:    "zero shards",
			mutate:  func(cfg *Config) { cfg.LeaseShards = 0 },
			wantErr: "LeaseShards must be positive",
		},
		{
			name:    "threshold above one",
			mutate:  func(cfg *Config) { cfg.HighConfidenceThreshold = 1.5 },
			wantErr: "HighConfidenceThreshold must be within [0, 1]",
		},
		{
			name:    "empty labeled dir",
			mutate:  func(cfg *Config) { cfg.LabeledDir = "" },
			wantErr: "ImagesDir, LabeledDir and ExcludedDir cannot be empty",
		},
		{
			name:    "zero request timeout",
			mutate:  func(cfg *Config) { cfg.RequestTimeout = 0 },
			wantErr: "RequestTimeout must be positive",
		},
		{
			name: "enabled kafka without brokers",
			mutate: func(cfg *Config) {
				cfg.Kafka = &kafka_config.Config{Enabled: true}
			},
			wantErr: "At least one Kafka broker is required",
		},
		{
			name: "disabled kafka is not validated",
			mutate: func(cfg *Config) {
				cfg.Kafka = &kafka_config.Config{Enabled: false}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.LeaseShards = -1
	cfg.BulkApproveMaxItems = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1. ")
	assert.Contains(t, err.Error(), "2. ")
	assert.Contains(t, err.Error(), "3. ")
}

func TestUsesMongo(t *testing.T) {
	cfg := validConfig()
	assert.True(t, cfg.UsesMongo())
	cfg.StoreBackend = StoreBackendMemory
	assert.False(t, cfg.UsesMongo())
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("AEROLABEL_TEST_STR", "value")
	t.Setenv("AEROLABEL_TEST_NUM", "42")
	t.Setenv("AEROLABEL_TEST_BAD_NUM", "forty-two")
	t.Setenv("AEROLABEL_TEST_FLOAT", "0.9")
	t.Setenv("AEROLABEL_TEST_DURATION", "90s")

	assert.Equal(t, "value", getEnvStr("AEROLABEL_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", getEnvStr("AEROLABEL_TEST_UNSET", "fallback"))
	assert.Equal(t, 42, getEnvNum("AEROLABEL_TEST_NUM", 1))
	assert.Equal(t, 1, getEnvNum("AEROLABEL_TEST_BAD_NUM", 1))
	assert.InDelta(t, 0.9, getEnvFloat("AEROLABEL_TEST_FLOAT", 0.1), 1e-9)
	assert.Equal(t, 90*time.Second, getEnvDuration("AEROLABEL_TEST_DURATION", time.Second))
}

func TestRedactMongoURI(t *testing.T) {
	assert.Equal(t,
		"mongodb://***:***@db:27017/aerolabel",
		redactMongoURI("mongodb://admin:secret@db:27017/aerolabel"),
	)
	assert.Equal(t, "mongodb://db:27017", redactMongoURI("mongodb://db:27017"))
}
