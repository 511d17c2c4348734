package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Scheduling   SchedulingConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Scheduling.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WORKSHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"WORKSHOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WORKSHOP_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"WORKSHOP_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"WORKSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind        string `envconfig:"WORKSHOP_SERVICE_KIND" default:"api"`
	MetricsPort string `envconfig:"WORKSHOP_METRICS_PORT"`
}

type DBConfig struct {
	DSN    string `envconfig:"WORKSHOP_DB_DSN"`
	Driver string `envconfig:"WORKSHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WORKSHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"WORKSHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WORKSHOP_DB_USER"`
	LegacyPassword string `envconfig:"WORKSHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"WORKSHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"WORKSHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WORKSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WORKSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WORKSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WORKSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WORKSHOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WORKSHOP_REDIS_ADDR"`
	Password     string        `envconfig:"WORKSHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"WORKSHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WORKSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WORKSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WORKSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WORKSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WORKSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig verifies tokens minted by the identity service.
type JWTConfig struct {
	Secret            string `envconfig:"WORKSHOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"WORKSHOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"WORKSHOP_JWT_EXPIRATION_MINUTES" default:"60"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"WORKSHOP_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// RateLimitConfig caps mutating requests per tenant. A zero limit disables it.
type RateLimitConfig struct {
	TenantWriteLimit  int           `envconfig:"WORKSHOP_RATE_LIMIT_TENANT_WRITES" default:"600"`
	TenantWriteWindow time.Duration `envconfig:"WORKSHOP_RATE_LIMIT_WINDOW" default:"1m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"WORKSHOP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"WORKSHOP_AUTO_MIGRATE" default:"false"`
}

// SchedulingConfig holds the workshop-wide operating hours used when a tenant
// has not configured its own. Empty opening and closing times mean the whole
// day is bookable.
type SchedulingConfig struct {
	OpeningTime       string `envconfig:"WORKSHOP_SCHEDULING_OPENING_TIME" default:"08:00"`
	ClosingTime       string `envconfig:"WORKSHOP_SCHEDULING_CLOSING_TIME" default:"18:00"`
	Timezone          string `envconfig:"WORKSHOP_SCHEDULING_TIMEZONE" default:"UTC"`
	SlotStepMinutes   int    `envconfig:"WORKSHOP_SCHEDULING_SLOT_STEP_MINUTES" default:"30"`
	DefaultDurationMn int    `envconfig:"WORKSHOP_SCHEDULING_DEFAULT_DURATION_MINUTES" default:"60"`
}

func (s SchedulingConfig) validate() error {
	if (s.OpeningTime == "") != (s.ClosingTime == "") {
		return fmt.Errorf("%s and %s must be set together", EnvSchedulingOpening, EnvSchedulingClosing)
	}
	if s.SlotStepMinutes <= 0 {
		return fmt.Errorf("%s must be positive", EnvSchedulingStep)
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("%s: %w", EnvSchedulingTimezone, err)
	}
	return nil
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"WORKSHOP_EVENTING_IDEMPOTENCY_TTL" default:"24h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"WORKSHOP_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"WORKSHOP_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"WORKSHOP_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic string `envconfig:"WORKSHOP_PUBSUB_DOMAIN_TOPIC" default:"workshop-domain-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"WORKSHOP_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"WORKSHOP_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"WORKSHOP_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval         time.Duration `envconfig:"WORKSHOP_CRON_INTERVAL" default:"5m"`
	LockTTL          time.Duration `envconfig:"WORKSHOP_CRON_LOCK_TTL" default:"4m"`
	ReminderWindow   time.Duration `envconfig:"WORKSHOP_CRON_REMINDER_WINDOW" default:"24h"`
	ReservationGrace time.Duration `envconfig:"WORKSHOP_CRON_RESERVATION_GRACE" default:"15m"`
	OutboxRetention  time.Duration `envconfig:"WORKSHOP_CRON_OUTBOX_RETENTION" default:"720h"`
	DLQRetention     time.Duration `envconfig:"WORKSHOP_CRON_DLQ_RETENTION" default:"2160h"`
	Jobs             []string      `envconfig:"WORKSHOP_CRON_JOBS"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.DSN = "file:workshop.db?cache=shared"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
