package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Batch    BatchConfig    `yaml:"batch"`
	Gmail    GmailConfig    `yaml:"gmail"`
}

type AppConfig struct {
	AppName        string `yaml:"name"`
	Environment    string `yaml:"env"`
	HTTPPort       string `yaml:"http_port"`
	UploadsDir     string `yaml:"uploads_dir"`
	UploadMaxBytes int64  `yaml:"upload_max_bytes"`
	DemoPassword   string `yaml:"demo_password"`
}

type DatabaseConfig struct {
	DBHost     string `yaml:"host"`
	DBPort     string `yaml:"port"`
	DBName     string `yaml:"name"`
	DBUser     string `yaml:"user"`
	DBPassword string `yaml:"password"`
	DBSSLMode  string `yaml:"sslmode"`

	ConnectTimeout        time.Duration `yaml:"connect_timeout"`
	PoolMaxConns          int32         `yaml:"pool_max_conns"`
	PoolMinConns          int32         `yaml:"pool_min_conns"`
	PoolMaxConnLifetime   time.Duration `yaml:"pool_max_conn_lifetime"`
	PoolMaxConnIdleTime   time.Duration `yaml:"pool_max_conn_idle_time"`
	PoolHealthCheckPeriod time.Duration `yaml:"pool_health_check_period"`
}

type JWTConfig struct {
	AccessSecret     string        `yaml:"access_secret"`
	RefreshSecret    string        `yaml:"refresh_secret"`
	AccessExpiresIn  time.Duration `yaml:"access_expires_in"`
	RefreshExpiresIn time.Duration `yaml:"refresh_expires_in"`
}

type RedisConfig struct {
	Host     string        `yaml:"host"`
	Port     string        `yaml:"port"`
	Password string        `yaml:"password"`
	TTL      time.Duration `yaml:"ttl"`
}

const (
	ProviderOpenAI = "openai"
	ProviderVertex = "vertex"
)

// AIConfig describes the server-side chat completion credential. An empty
// APIKey (openai) or ProjectID (vertex) means no credential is configured.
type AIConfig struct {
	Provider    string        `yaml:"provider"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`

	ProjectID string `yaml:"project_id"`
	Location  string `yaml:"location"`
}

type BatchConfig struct {
	Delay time.Duration `yaml:"delay"`
}

type GmailConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	// .env is optional; real environment wins over it.
	_ = godotenv.Load()

	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}

	cfg.App = AppConfig{
		AppName:        req("APP_NAME"),
		Environment:    req("APP_ENV"),
		HTTPPort:       req("HTTP_PORT"),
		UploadsDir:     env.Str("UPLOADS_DIR", "uploads"),
		UploadMaxBytes: int64(env.Int("UPLOAD_MAX_BYTES", 10<<20)),
		DemoPassword:   opt("DEMO_PASSWORD"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:                opt("DB_HOST"),
		DBPort:                opt("DB_PORT"),
		DBName:                opt("DB_NAME"),
		DBUser:                opt("DB_USER"),
		DBPassword:            opt("DB_PASSWORD"),
		DBSSLMode:             env.Str("DB_SSL_MODE", "disable"),
		ConnectTimeout:        env.Duration("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:          int32(env.Int("DB_POOL_MAX_CONNS", 10)),
		PoolMinConns:          int32(env.Int("DB_POOL_MIN_CONNS", 0)),
		PoolMaxConnLifetime:   env.Duration("DB_POOL_MAX_CONN_LIFETIME", time.Hour),
		PoolMaxConnIdleTime:   env.Duration("DB_POOL_MAX_CONN_IDLE_TIME", 30*time.Minute),
		PoolHealthCheckPeriod: env.Duration("DB_POOL_HEALTH_CHECK_PERIOD", time.Minute),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:     req("JWT_ACCESS_SECRET"),
		RefreshSecret:    req("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  env.Duration("JWT_ACCESS_EXPIRES_IN", 15*time.Minute),
		RefreshExpiresIn: env.Duration("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour),
	}

	cfg.Redis = RedisConfig{
		Host:     env.Str("REDIS_HOST", "localhost"),
		Port:     env.Str("REDIS_PORT", "6379"),
		Password: opt("REDIS_PASSWORD"),
		TTL:      env.Duration("REDIS_TTL", 10*time.Minute),
	}

	cfg.AI = AIConfig{
		Provider:    strings.ToLower(env.Str("AI_PROVIDER", ProviderOpenAI)),
		BaseURL:     env.Str("AI_BASE_URL", "https://api.openai.com/v1"),
		APIKey:      opt("AI_API_KEY"),
		Model:       env.Str("AI_MODEL", "gpt-4o-mini"),
		Temperature: env.Float("AI_TEMPERATURE", 0.2),
		MaxTokens:   env.Int("AI_MAX_TOKENS", 4096),
		Timeout:     env.Duration("AI_TIMEOUT", 60*time.Second),
		ProjectID:   opt("GOOGLE_CLOUD_PROJECT"),
		Location:    env.Str("GOOGLE_CLOUD_LOCATION", "us-central1"),
	}

	cfg.Batch = BatchConfig{
		Delay: env.Duration("BATCH_DELAY", 1500*time.Millisecond),
	}

	cfg.Gmail = GmailConfig{
		CredentialsFile: env.Str("GMAIL_CREDENTIALS_FILE", "credentials.json"),
		TokenFile:       env.Str("GMAIL_TOKEN_FILE", "token.json"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	if path := opt("CONFIG_FILE"); path != "" {
		if err := Overlay(&cfg, path); err != nil {
			return Config{}, fmt.Errorf("config overlay %s: %w", path, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch c.AI.Provider {
	case ProviderOpenAI, ProviderVertex:
	default:
		return fmt.Errorf("invalid AI_PROVIDER %q", c.AI.Provider)
	}
	if c.App.UploadMaxBytes <= 0 {
		return fmt.Errorf("invalid UPLOAD_MAX_BYTES %d", c.App.UploadMaxBytes)
	}
	if c.Batch.Delay < 0 {
		return fmt.Errorf("invalid BATCH_DELAY %s", c.Batch.Delay)
	}
	return nil
}
