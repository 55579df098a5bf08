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
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Claims        ClaimsConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GoogleMaps    GoogleMapsConfig
	SMTP          SMTPConfig
	Cron          CronConfig
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
	Env          string `envconfig:"FOODCIRCLE_APP_ENV" required:"true"`
	Port         string `envconfig:"FOODCIRCLE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FOODCIRCLE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FOODCIRCLE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FOODCIRCLE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FOODCIRCLE_DB_DSN"`
	Driver string `envconfig:"FOODCIRCLE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FOODCIRCLE_DB_HOST"`
	LegacyPort     int    `envconfig:"FOODCIRCLE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FOODCIRCLE_DB_USER"`
	LegacyPassword string `envconfig:"FOODCIRCLE_DB_PASSWORD"`
	LegacyName     string `envconfig:"FOODCIRCLE_DB_NAME"`
	LegacySSLMode  string `envconfig:"FOODCIRCLE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FOODCIRCLE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FOODCIRCLE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FOODCIRCLE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FOODCIRCLE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FOODCIRCLE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FOODCIRCLE_REDIS_ADDR"`
	Password     string        `envconfig:"FOODCIRCLE_REDIS_PASSWORD"`
	DB           int           `envconfig:"FOODCIRCLE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FOODCIRCLE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FOODCIRCLE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FOODCIRCLE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FOODCIRCLE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FOODCIRCLE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"FOODCIRCLE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"FOODCIRCLE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"FOODCIRCLE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"FOODCIRCLE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FOODCIRCLE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FOODCIRCLE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FOODCIRCLE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FOODCIRCLE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FOODCIRCLE_ARGON_KEY_LEN" default:"32"`
}

// ClaimsConfig controls the reservation hold window.
type ClaimsConfig struct {
	ReservationTTLMinutes int `envconfig:"FOODCIRCLE_CLAIM_RESERVATION_TTL_MINUTES" default:"120"`
}

// ReservationTTL returns the claim hold duration.
func (c ClaimsConfig) ReservationTTL() time.Duration {
	if c.ReservationTTLMinutes <= 0 {
		return 2 * time.Hour
	}
	return time.Duration(c.ReservationTTLMinutes) * time.Minute
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"FOODCIRCLE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"FOODCIRCLE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"FOODCIRCLE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"FOODCIRCLE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"FOODCIRCLE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"FOODCIRCLE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FOODCIRCLE_AUTO_MIGRATE" default:"false"`
}

type GoogleMapsConfig struct {
	APIKey string `envconfig:"FOODCIRCLE_GOOGLE_MAPS_API_KEY"`
}

// SMTPConfig carries the credentials for best-effort claim emails.
type SMTPConfig struct {
	Host     string `envconfig:"FOODCIRCLE_SMTP_HOST"`
	Port     int    `envconfig:"FOODCIRCLE_SMTP_PORT" default:"587"`
	Username string `envconfig:"FOODCIRCLE_SMTP_USERNAME"`
	Password string `envconfig:"FOODCIRCLE_SMTP_PASSWORD"`
	From     string `envconfig:"FOODCIRCLE_SMTP_FROM"`
}

// Enabled reports whether enough SMTP settings exist to attempt delivery.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

type CronConfig struct {
	Interval time.Duration `envconfig:"FOODCIRCLE_CRON_INTERVAL" default:"10m"`
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
