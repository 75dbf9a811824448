package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "KANTINKU"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "KANTINKU_APP_ENV"
	EnvDBDSN  = "KANTINKU_DB_DSN"
	EnvDBHost = "KANTINKU_DB_HOST"
	EnvDBUser = "KANTINKU_DB_USER"
	EnvDBName = "KANTINKU_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Cart          CartConfig
	Migrate       MigrateConfig
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
	Env          string `envconfig:"KANTINKU_APP_ENV" required:"true"`
	Port         string `envconfig:"KANTINKU_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KANTINKU_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KANTINKU_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KANTINKU_DB_DSN"`
	Driver string `envconfig:"KANTINKU_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KANTINKU_DB_HOST"`
	LegacyPort     int    `envconfig:"KANTINKU_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KANTINKU_DB_USER"`
	LegacyPassword string `envconfig:"KANTINKU_DB_PASSWORD"`
	LegacyName     string `envconfig:"KANTINKU_DB_NAME"`
	LegacySSLMode  string `envconfig:"KANTINKU_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KANTINKU_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KANTINKU_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KANTINKU_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KANTINKU_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver targets SQLite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"KANTINKU_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KANTINKU_REDIS_ADDR"`
	Password     string        `envconfig:"KANTINKU_REDIS_PASSWORD"`
	DB           int           `envconfig:"KANTINKU_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KANTINKU_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KANTINKU_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KANTINKU_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KANTINKU_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KANTINKU_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"KANTINKU_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KANTINKU_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"KANTINKU_JWT_EXPIRATION_MINUTES" required:"true"`
	SessionTTLMinutes int    `envconfig:"KANTINKU_SESSION_TTL_MINUTES" default:"1440"`
}

// SessionTTL returns the Redis session lifetime configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"KANTINKU_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"KANTINKU_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"KANTINKU_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"KANTINKU_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"KANTINKU_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"KANTINKU_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"KANTINKU_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"KANTINKU_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"KANTINKU_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"KANTINKU_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"KANTINKU_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// CartConfig tunes the per-user cart containers and their persistence.
type CartConfig struct {
	StoreBackend   string        `envconfig:"KANTINKU_CART_STORE_BACKEND" default:"redis"`
	DebounceWindow time.Duration `envconfig:"KANTINKU_CART_DEBOUNCE_WINDOW" default:"100ms"`
	FileDir        string        `envconfig:"KANTINKU_CART_FILE_DIR" default:".kantinku/carts"`
	RecordTTL      time.Duration `envconfig:"KANTINKU_CART_RECORD_TTL" default:"720h"`
}

type MigrateConfig struct {
	AutoRun bool   `envconfig:"KANTINKU_MIGRATE_AUTO_RUN" default:"false"`
	Dir     string `envconfig:"KANTINKU_MIGRATE_DIR" default:"pkg/migrate/migrations"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when the sqlite driver is selected", EnvDBDSN)
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
