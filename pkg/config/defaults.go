package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "pressroom"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultStoreReadTimeout  = 5 * time.Second
	DefaultStoreWriteTimeout = 5 * time.Second

	DefaultLockTTL                = 30 * time.Minute
	DefaultPresenceTimeout        = 30 * time.Minute
	DefaultNotificationCapPerUser = 100
	DefaultNotificationRetention  = 30 // days
	DefaultAuditLogCap            = 1000

	DefaultContentDir  = "content"
	DefaultSiteBaseURL = "http://localhost:3000"

	DefaultHookTimeout = 10 * time.Second

	DefaultPaginationLimit = 100
)
