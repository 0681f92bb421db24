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
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Shop          ShopConfig
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
	Env          string `envconfig:"ARULTEX_APP_ENV" required:"true"`
	Port         string `envconfig:"ARULTEX_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ARULTEX_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ARULTEX_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ARULTEX_DB_DSN"`
	Driver string `envconfig:"ARULTEX_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ARULTEX_DB_HOST"`
	LegacyPort     int    `envconfig:"ARULTEX_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ARULTEX_DB_USER"`
	LegacyPassword string `envconfig:"ARULTEX_DB_PASSWORD"`
	LegacyName     string `envconfig:"ARULTEX_DB_NAME"`
	LegacySSLMode  string `envconfig:"ARULTEX_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ARULTEX_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ARULTEX_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ARULTEX_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ARULTEX_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ARULTEX_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ARULTEX_REDIS_ADDR"`
	Password     string        `envconfig:"ARULTEX_REDIS_PASSWORD"`
	DB           int           `envconfig:"ARULTEX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ARULTEX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ARULTEX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ARULTEX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ARULTEX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ARULTEX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ARULTEX_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ARULTEX_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ARULTEX_JWT_EXPIRATION_MINUTES" default:"480"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ARULTEX_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ARULTEX_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ARULTEX_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ARULTEX_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ARULTEX_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"ARULTEX_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"ARULTEX_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"ARULTEX_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ARULTEX_AUTO_MIGRATE" default:"false"`
}

// ShopConfig carries register-level settings that the report surface exposes.
type ShopConfig struct {
	Name     string `envconfig:"ARULTEX_SHOP_NAME" default:"ArulTex"`
	Currency string `envconfig:"ARULTEX_SHOP_CURRENCY" default:"LKR"`
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
