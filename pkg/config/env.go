package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvStoreReadTimeout  = "STORE_READ_TIMEOUT"
	EnvStoreWriteTimeout = "STORE_WRITE_TIMEOUT"

	EnvLockTTL                = "LOCK_TTL"
	EnvPresenceTimeout        = "PRESENCE_TIMEOUT"
	EnvNotificationCapPerUser = "NOTIFICATION_CAP_PER_USER"
	EnvNotificationRetention  = "NOTIFICATION_RETENTION_DAYS"
	EnvAuditLogCap            = "AUDIT_LOG_CAP"

	EnvContentDir  = "CONTENT_DIR"
	EnvSiteBaseURL = "SITE_BASE_URL"

	EnvDeployHookURL = "DEPLOY_HOOK_URL"
	EnvWebhookURL    = "WEBHOOK_URL"
	EnvCachePurgeURL = "CACHE_PURGE_URL"
	EnvHookTimeout   = "HOOK_TIMEOUT"
)
