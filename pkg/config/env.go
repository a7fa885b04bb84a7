package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort         = "PORT"
	EnvLogLevel     = "LOG_LEVEL"
	EnvStoreBackend = "STORE_BACKEND"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvLeaseTTL             = "LEASE_TTL"
	EnvHeartbeatInterval    = "HEARTBEAT_INTERVAL"
	EnvSweepInterval        = "SWEEP_INTERVAL"
	EnvMinTTLHeartbeatRatio = "MIN_TTL_HEARTBEAT_RATIO"
	EnvLeaseShards          = "LEASE_SHARDS"

	EnvHighConfidenceThreshold = "HIGH_CONFIDENCE_THRESHOLD"
	EnvBulkApproveConcurrency  = "BULK_APPROVE_CONCURRENCY"
	EnvBulkApproveMaxItems     = "BULK_APPROVE_MAX_ITEMS"

	EnvImagesDir   = "IMAGES_DIR"
	EnvLabeledDir  = "LABELED_DIR"
	EnvExcludedDir = "EXCLUDED_DIR"
)
