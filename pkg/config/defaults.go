package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "aerolabel"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultStoreBackend = StoreBackendMongo

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB
	DefaultIdempotencyTTL = 10 * time.Minute

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Lease policy. TTL matches the ten minute lock timeout annotators are used to.
	DefaultLeaseTTL             = 10 * time.Minute
	DefaultHeartbeatInterval    = 1 * time.Minute
	DefaultSweepInterval        = 30 * time.Second
	DefaultMinTTLHeartbeatRatio = 3.0
	DefaultLeaseShards          = 64

	DefaultHighConfidenceThreshold = 0.95
	DefaultBulkApproveConcurrency  = 4
	DefaultBulkApproveMaxItems     = 500

	DefaultImagesDir   = "./images"
	DefaultLabeledDir  = "./labeled"
	DefaultExcludedDir = "./excluded"
)

const (
	StoreBackendMongo  = "mongo"
	StoreBackendMemory = "memory"
)
