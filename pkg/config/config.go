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
	Mongo         MongoConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	LLM           LLMConfig
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
	Env          string   `envconfig:"SUPPLYSYNC_APP_ENV" required:"true"`
	Port         string   `envconfig:"SUPPLYSYNC_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"SUPPLYSYNC_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"SUPPLYSYNC_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"SUPPLYSYNC_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SUPPLYSYNC_DB_DSN"`
	Driver string `envconfig:"SUPPLYSYNC_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SUPPLYSYNC_DB_HOST"`
	Port     int    `envconfig:"SUPPLYSYNC_DB_PORT" default:"5432"`
	User     string `envconfig:"SUPPLYSYNC_DB_USER"`
	Password string `envconfig:"SUPPLYSYNC_DB_PASSWORD"`
	Name     string `envconfig:"SUPPLYSYNC_DB_NAME"`
	SSLMode  string `envconfig:"SUPPLYSYNC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SUPPLYSYNC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SUPPLYSYNC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SUPPLYSYNC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SUPPLYSYNC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type MongoConfig struct {
	URI            string        `envconfig:"SUPPLYSYNC_MONGO_URI" required:"true"`
	Database       string        `envconfig:"SUPPLYSYNC_MONGO_DATABASE" required:"true"`
	ConnectTimeout time.Duration `envconfig:"SUPPLYSYNC_MONGO_CONNECT_TIMEOUT" default:"10s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SUPPLYSYNC_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SUPPLYSYNC_REDIS_ADDR"`
	Password     string        `envconfig:"SUPPLYSYNC_REDIS_PASSWORD"`
	DB           int           `envconfig:"SUPPLYSYNC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SUPPLYSYNC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SUPPLYSYNC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SUPPLYSYNC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SUPPLYSYNC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SUPPLYSYNC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SUPPLYSYNC_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SUPPLYSYNC_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SUPPLYSYNC_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// AccessTokenTTL returns the token lifetime configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SUPPLYSYNC_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SUPPLYSYNC_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SUPPLYSYNC_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SUPPLYSYNC_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SUPPLYSYNC_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SUPPLYSYNC_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SUPPLYSYNC_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SUPPLYSYNC_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SUPPLYSYNC_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SUPPLYSYNC_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SUPPLYSYNC_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// LLMConfig points the query bridge at an Ollama-compatible generate endpoint.
type LLMConfig struct {
	GenerateURL string        `envconfig:"SUPPLYSYNC_LLM_GENERATE_URL" default:"http://localhost:11434/api/generate"`
	Model       string        `envconfig:"SUPPLYSYNC_LLM_MODEL" default:"mistral"`
	Timeout     time.Duration `envconfig:"SUPPLYSYNC_LLM_TIMEOUT" default:"300s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SUPPLYSYNC_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SUPPLYSYNC_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
