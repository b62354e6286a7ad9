package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	Trace         TraceConfig
	ScanRateLimit ScanRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"AGRITRACE_APP_ENV" required:"true"`
	Port         string `envconfig:"AGRITRACE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AGRITRACE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AGRITRACE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AGRITRACE_DB_DSN"`
	Driver string `envconfig:"AGRITRACE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AGRITRACE_DB_HOST"`
	LegacyPort     int    `envconfig:"AGRITRACE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AGRITRACE_DB_USER"`
	LegacyPassword string `envconfig:"AGRITRACE_DB_PASSWORD"`
	LegacyName     string `envconfig:"AGRITRACE_DB_NAME"`
	LegacySSLMode  string `envconfig:"AGRITRACE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AGRITRACE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AGRITRACE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AGRITRACE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AGRITRACE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver was selected (local/dev runs).
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"AGRITRACE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AGRITRACE_REDIS_ADDR"`
	Password     string        `envconfig:"AGRITRACE_REDIS_PASSWORD"`
	DB           int           `envconfig:"AGRITRACE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AGRITRACE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AGRITRACE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AGRITRACE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AGRITRACE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AGRITRACE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// TraceConfig carries the traceability-core knobs.
type TraceConfig struct {
	// VerificationBaseURL is the public platform base used to build
	// {base}/verify/{batchCode} links embedded in QR payloads.
	VerificationBaseURL string `envconfig:"AGRITRACE_VERIFICATION_BASE_URL" default:"https://trace.agritrace.example.org"`
	QRSizePx            int    `envconfig:"AGRITRACE_QR_SIZE_PX" default:"300"`
	LegacyCodeRetries   int    `envconfig:"AGRITRACE_TRACE_CODE_RETRIES" default:"3"`
}

type ScanRateLimitConfig struct {
	Window   time.Duration `envconfig:"AGRITRACE_SCAN_RATE_LIMIT_WINDOW" default:"1m"`
	IPLimit  int           `envconfig:"AGRITRACE_SCAN_RATE_LIMIT_IP_LIMIT" default:"30"`
	PerBatch int           `envconfig:"AGRITRACE_SCAN_RATE_LIMIT_BATCH_LIMIT" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AGRITRACE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when driver is sqlite", EnvDBDSN)
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
