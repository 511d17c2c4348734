package config

const (
	EnvPrefix = "WORKSHOP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "WORKSHOP_APP_ENV"
	EnvPort     = "WORKSHOP_APP_PORT"
	EnvLogLevel = "WORKSHOP_LOG_LEVEL"

	EnvDBDSN  = "WORKSHOP_DB_DSN"
	EnvDBHost = "WORKSHOP_DB_HOST"
	EnvDBUser = "WORKSHOP_DB_USER"
	EnvDBName = "WORKSHOP_DB_NAME"

	EnvRedisURL = "WORKSHOP_REDIS_URL"

	EnvJWTSecret = "WORKSHOP_JWT_SECRET"
	EnvJWTIssuer = "WORKSHOP_JWT_ISSUER"

	EnvSchedulingOpening  = "WORKSHOP_SCHEDULING_OPENING_TIME"
	EnvSchedulingClosing  = "WORKSHOP_SCHEDULING_CLOSING_TIME"
	EnvSchedulingTimezone = "WORKSHOP_SCHEDULING_TIMEZONE"
	EnvSchedulingStep     = "WORKSHOP_SCHEDULING_SLOT_STEP_MINUTES"

	EnvGCPProjectID        = "WORKSHOP_GCP_PROJECT_ID"
	EnvPubSubDomainTopic   = "WORKSHOP_PUBSUB_DOMAIN_TOPIC"
	EnvCronReminderWindow  = "WORKSHOP_CRON_REMINDER_WINDOW"
	EnvCronOutboxRetention = "WORKSHOP_CRON_OUTBOX_RETENTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
