package config

// EnvPrefix is handed to envconfig; every field carries its full variable name.
const EnvPrefix = "INVOICECAPTURE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv          = "INVOICECAPTURE_APP_ENV"
	EnvPort            = "INVOICECAPTURE_APP_PORT"
	EnvLogLevel        = "INVOICECAPTURE_LOG_LEVEL"
	EnvDBDSN           = "INVOICECAPTURE_DB_DSN"
	EnvDBHost          = "INVOICECAPTURE_DB_HOST"
	EnvDBPort          = "INVOICECAPTURE_DB_PORT"
	EnvDBUser          = "INVOICECAPTURE_DB_USER"
	EnvDBPassword      = "INVOICECAPTURE_DB_PASSWORD"
	EnvDBName          = "INVOICECAPTURE_DB_NAME"
	EnvDBSSLMode       = "INVOICECAPTURE_DB_SSLMODE"
	EnvRedisURL        = "INVOICECAPTURE_REDIS_URL"
	EnvJWTSecret       = "INVOICECAPTURE_JWT_SECRET"
	EnvJWTIssuer       = "INVOICECAPTURE_JWT_ISSUER"
	EnvJWTAudience     = "INVOICECAPTURE_JWT_AUDIENCE"
	EnvGCPProjectID    = "INVOICECAPTURE_GCP_PROJECT_ID"
	EnvGCSBucket       = "INVOICECAPTURE_GCS_BUCKET_NAME"
	EnvGeminiAPIKey    = "INVOICECAPTURE_GEMINI_API_KEY"
	EnvGeminiModel     = "INVOICECAPTURE_GEMINI_MODEL"
	EnvMaxUploadMB     = "INVOICECAPTURE_MAX_UPLOAD_MB"
	EnvPubSubInvoices  = "INVOICECAPTURE_PUBSUB_INVOICE_TOPIC"
	EnvSignupDomain    = "INVOICECAPTURE_SIGNUP_EMAIL_DOMAIN"
	EnvAnalyticsMaxRow = "INVOICECAPTURE_INVOICES_ANALYTICS_MAX_ROWS"
	EnvCORSOrigins     = "INVOICECAPTURE_CORS_ORIGINS"
	EnvRateLimitWindow = "INVOICECAPTURE_RATE_LIMIT_WINDOW"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
