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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Gemini       GeminiConfig
	Media        MediaConfig
	PubSub       PubSubConfig
	Invoices     InvoicesConfig
	Signup       SignupConfig
	RateLimit    RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"INVOICECAPTURE_APP_ENV" required:"true"`
	Port         string `envconfig:"INVOICECAPTURE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"INVOICECAPTURE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"INVOICECAPTURE_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"INVOICECAPTURE_LOG_FORMAT"`

	CORSOrigins []string `envconfig:"INVOICECAPTURE_CORS_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"INVOICECAPTURE_DB_DSN"`
	Driver string `envconfig:"INVOICECAPTURE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"INVOICECAPTURE_DB_HOST"`
	LegacyPort     int    `envconfig:"INVOICECAPTURE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"INVOICECAPTURE_DB_USER"`
	LegacyPassword string `envconfig:"INVOICECAPTURE_DB_PASSWORD"`
	LegacyName     string `envconfig:"INVOICECAPTURE_DB_NAME"`
	LegacySSLMode  string `envconfig:"INVOICECAPTURE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"INVOICECAPTURE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"INVOICECAPTURE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"INVOICECAPTURE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"INVOICECAPTURE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"INVOICECAPTURE_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"INVOICECAPTURE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"INVOICECAPTURE_REDIS_ADDR"`
	Password     string        `envconfig:"INVOICECAPTURE_REDIS_PASSWORD"`
	DB           int           `envconfig:"INVOICECAPTURE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"INVOICECAPTURE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"INVOICECAPTURE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"INVOICECAPTURE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"INVOICECAPTURE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"INVOICECAPTURE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig describes how bearer tokens minted by the identity provider are verified.
type JWTConfig struct {
	Secret   string `envconfig:"INVOICECAPTURE_JWT_SECRET" required:"true"`
	Issuer   string `envconfig:"INVOICECAPTURE_JWT_ISSUER"`
	Audience string `envconfig:"INVOICECAPTURE_JWT_AUDIENCE" default:"authenticated"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"INVOICECAPTURE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"INVOICECAPTURE_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON string `envconfig:"INVOICECAPTURE_GCP_CREDENTIALS_JSON"`
}

type GCSConfig struct {
	BucketName    string `envconfig:"INVOICECAPTURE_GCS_BUCKET_NAME" required:"true"`
	PublicBaseURL string `envconfig:"INVOICECAPTURE_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
}

type GeminiConfig struct {
	APIKey      string  `envconfig:"INVOICECAPTURE_GEMINI_API_KEY" required:"true"`
	Model       string  `envconfig:"INVOICECAPTURE_GEMINI_MODEL" default:"gemini-2.0-flash"`
	Temperature float32 `envconfig:"INVOICECAPTURE_GEMINI_TEMPERATURE" default:"0"`
}

type MediaConfig struct {
	MaxUploadMB    int `envconfig:"INVOICECAPTURE_MAX_UPLOAD_MB" default:"10"`
	ImageMaxWidth  int `envconfig:"INVOICECAPTURE_MEDIA_IMAGE_MAX_WIDTH" default:"2048"`
	ImageMaxHeight int `envconfig:"INVOICECAPTURE_MEDIA_IMAGE_MAX_HEIGHT" default:"2048"`
	ImageQuality   int `envconfig:"INVOICECAPTURE_MEDIA_IMAGE_QUALITY" default:"85"`
}

// MaxUploadBytes returns the configured upload ceiling in bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(m.MaxUploadMB) << 20
}

type PubSubConfig struct {
	InvoiceTopic string `envconfig:"INVOICECAPTURE_PUBSUB_INVOICE_TOPIC"`
}

type InvoicesConfig struct {
	ListCacheTTL     time.Duration `envconfig:"INVOICECAPTURE_INVOICES_LIST_CACHE_TTL" default:"5m"`
	AnalyticsMaxRows int           `envconfig:"INVOICECAPTURE_INVOICES_ANALYTICS_MAX_ROWS" default:"1000"`
	EditLockTTL      time.Duration `envconfig:"INVOICECAPTURE_INVOICES_EDIT_LOCK_TTL" default:"10s"`
}

type SignupConfig struct {
	AllowedEmailDomain string `envconfig:"INVOICECAPTURE_SIGNUP_EMAIL_DOMAIN" default:"@madec.co.ma"`
}

// RateLimitConfig throttles the endpoints that fan out to paid or public dependencies.
type RateLimitConfig struct {
	Window              time.Duration `envconfig:"INVOICECAPTURE_RATE_LIMIT_WINDOW" default:"1m"`
	SignupIPLimit       int           `envconfig:"INVOICECAPTURE_RATE_LIMIT_SIGNUP_IP" default:"20"`
	SignupEmailLimit    int           `envconfig:"INVOICECAPTURE_RATE_LIMIT_SIGNUP_EMAIL" default:"5"`
	ExtractionUserLimit int           `envconfig:"INVOICECAPTURE_RATE_LIMIT_EXTRACTION_USER" default:"10"`
	UploadUserLimit     int           `envconfig:"INVOICECAPTURE_RATE_LIMIT_UPLOAD_USER" default:"30"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
