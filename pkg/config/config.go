package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "LIBRARIUM"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "LIBRARIUM_APP_ENV"
	EnvDBDSN  = "LIBRARIUM_DB_DSN"
	EnvDBHost = "LIBRARIUM_DB_HOST"
	EnvDBUser = "LIBRARIUM_DB_USER"
	EnvDBName = "LIBRARIUM_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Circulation  CirculationConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Circulation.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LIBRARIUM_APP_ENV" required:"true"`
	Port         string `envconfig:"LIBRARIUM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LIBRARIUM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LIBRARIUM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"LIBRARIUM_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"LIBRARIUM_DB_DSN"`
	Driver string `envconfig:"LIBRARIUM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LIBRARIUM_DB_HOST"`
	LegacyPort     int    `envconfig:"LIBRARIUM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LIBRARIUM_DB_USER"`
	LegacyPassword string `envconfig:"LIBRARIUM_DB_PASSWORD"`
	LegacyName     string `envconfig:"LIBRARIUM_DB_NAME"`
	LegacySSLMode  string `envconfig:"LIBRARIUM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LIBRARIUM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LIBRARIUM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LIBRARIUM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LIBRARIUM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LIBRARIUM_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LIBRARIUM_REDIS_ADDR"`
	Password     string        `envconfig:"LIBRARIUM_REDIS_PASSWORD"`
	DB           int           `envconfig:"LIBRARIUM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LIBRARIUM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LIBRARIUM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LIBRARIUM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LIBRARIUM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LIBRARIUM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LIBRARIUM_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LIBRARIUM_JWT_ISSUER" default:"librarium"`
	ExpirationMinutes int    `envconfig:"LIBRARIUM_JWT_EXPIRATION_MINUTES" default:"60"`
}

// Expiration returns the access token TTL configured in minutes.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LIBRARIUM_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LIBRARIUM_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LIBRARIUM_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LIBRARIUM_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LIBRARIUM_ARGON_KEY_LEN" default:"32"`
}

// CirculationConfig holds the canonical lending rules. The defaults are the
// authoritative rule set: flat 10 per late day, 2-day reservation window,
// loans of 2-15 days defaulting to 14.
type CirculationConfig struct {
	FineRatePerDay        int           `envconfig:"LIBRARIUM_FINE_RATE_PER_DAY" default:"10"`
	DefaultLoanDays       int           `envconfig:"LIBRARIUM_DEFAULT_LOAN_DAYS" default:"14"`
	MinLoanDays           int           `envconfig:"LIBRARIUM_MIN_LOAN_DAYS" default:"2"`
	MaxLoanDays           int           `envconfig:"LIBRARIUM_MAX_LOAN_DAYS" default:"15"`
	ReservationWindowDays int           `envconfig:"LIBRARIUM_RESERVATION_WINDOW_DAYS" default:"2"`
	SweepInterval         time.Duration `envconfig:"LIBRARIUM_SWEEP_INTERVAL" default:"1h"`
	SweepLockTTL          time.Duration `envconfig:"LIBRARIUM_SWEEP_LOCK_TTL" default:"55m"`
}

func (c CirculationConfig) validate() error {
	if c.FineRatePerDay < 0 {
		return fmt.Errorf("fine rate per day must not be negative")
	}
	if c.MinLoanDays < 1 || c.MaxLoanDays < c.MinLoanDays {
		return fmt.Errorf("loan day bounds are invalid: min=%d max=%d", c.MinLoanDays, c.MaxLoanDays)
	}
	if c.DefaultLoanDays < c.MinLoanDays || c.DefaultLoanDays > c.MaxLoanDays {
		return fmt.Errorf("default loan days %d outside [%d, %d]", c.DefaultLoanDays, c.MinLoanDays, c.MaxLoanDays)
	}
	if c.ReservationWindowDays < 1 {
		return fmt.Errorf("reservation window must be at least one day")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive")
	}
	return nil
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LIBRARIUM_AUTO_MIGRATE" default:"false"`
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
