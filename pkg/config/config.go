package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"pressroom/pkg/client"
	"pressroom/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RequestTimeout time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	StoreReadTimeout  time.Duration
	StoreWriteTimeout time.Duration

	LockTTL                   time.Duration
	PresenceTimeout           time.Duration
	NotificationCapPerUser    int
	NotificationRetentionDays int
	AuditLogCap               int

	ContentDir  string
	SiteBaseURL string

	DeployHookURL string
	WebhookURL    string
	CachePurgeURL string
	HookTimeout   time.Duration

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		StoreReadTimeout:  getEnvDuration(EnvStoreReadTimeout, DefaultStoreReadTimeout),
		StoreWriteTimeout: getEnvDuration(EnvStoreWriteTimeout, DefaultStoreWriteTimeout),

		LockTTL:                   getEnvDuration(EnvLockTTL, DefaultLockTTL),
		PresenceTimeout:           getEnvDuration(EnvPresenceTimeout, DefaultPresenceTimeout),
		NotificationCapPerUser:    getEnvNum(EnvNotificationCapPerUser, DefaultNotificationCapPerUser),
		NotificationRetentionDays: getEnvNum(EnvNotificationRetention, DefaultNotificationRetention),
		AuditLogCap:               getEnvNum(EnvAuditLogCap, DefaultAuditLogCap),

		ContentDir:  getEnvStr(EnvContentDir, DefaultContentDir),
		SiteBaseURL: getEnvStr(EnvSiteBaseURL, DefaultSiteBaseURL),

		DeployHookURL: getEnvStr(EnvDeployHookURL, ""),
		WebhookURL:    getEnvStr(EnvWebhookURL, ""),
		CachePurgeURL: getEnvStr(EnvCachePurgeURL, ""),
		HookTimeout:   getEnvDuration(EnvHookTimeout, DefaultHookTimeout),

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

	for name, d := range map[string]time.Duration{
		"MongoConnTimeout":  cfg.MongoConnTimeout,
		"RequestTimeout":    cfg.RequestTimeout,
		"ReadTimeout":       cfg.ReadTimeout,
		"WriteTimeout":      cfg.WriteTimeout,
		"IdleTimeout":       cfg.IdleTimeout,
		"ShutdownTimeout":   cfg.ShutdownTimeout,
		"StoreReadTimeout":  cfg.StoreReadTimeout,
		"StoreWriteTimeout": cfg.StoreWriteTimeout,
		"LockTTL":           cfg.LockTTL,
		"PresenceTimeout":   cfg.PresenceTimeout,
		"HookTimeout":       cfg.HookTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}

	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.NotificationCapPerUser <= 0 {
		errs = append(errs, fmt.Sprintf("NotificationCapPerUser must be positive, got: %d", cfg.NotificationCapPerUser))
	}
	if cfg.NotificationRetentionDays <= 0 {
		errs = append(errs, fmt.Sprintf("NotificationRetentionDays must be positive, got: %d", cfg.NotificationRetentionDays))
	}
	if cfg.AuditLogCap <= 0 {
		errs = append(errs, fmt.Sprintf("AuditLogCap must be positive, got: %d", cfg.AuditLogCap))
	}
	if cfg.ContentDir == "" {
		errs = append(errs, "ContentDir cannot be empty")
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
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"store_read_timeout", cfg.StoreReadTimeout,
		"store_write_timeout", cfg.StoreWriteTimeout,
		"lock_ttl", cfg.LockTTL,
		"presence_timeout", cfg.PresenceTimeout,
		"notification_cap_per_user", cfg.NotificationCapPerUser,
		"notification_retention_days", cfg.NotificationRetentionDays,
		"audit_log_cap", cfg.AuditLogCap,
		"content_dir", cfg.ContentDir,
		"site_base_url", cfg.SiteBaseURL,
		"deploy_hook_set", cfg.DeployHookURL != "",
		"webhook_set", cfg.WebhookURL != "",
		"cache_purge_set", cfg.CachePurgeURL != "",
		"hook_timeout", cfg.HookTimeout,
	)
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
		limit = 50
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int) int {
	return max(0, offset)
}
