// Package config holds the application configuration and domain constants.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/robfig/cron/v3"
)

// Config is the root application configuration.
type Config struct {
	Env        string           `yaml:"env" env:"APP_ENV" env-default:"development"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Auth       AuthConfig       `yaml:"auth"`
	OTP        OTPConfig        `yaml:"otp"`
	LLM        LLMConfig        `yaml:"llm"`
	Sarvam     SarvamConfig     `yaml:"sarvam"`
	Search     SearchConfig     `yaml:"search"`
	Vector     VectorConfig     `yaml:"vector"`
	SMS        SMSConfig        `yaml:"sms"`
	Email      EmailConfig      `yaml:"email"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Escalation EscalationConfig `yaml:"escalation"`
	Log        LogConfig        `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"          env:"PORT"                 env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout"  env:"SERVER_READ_TIMEOUT"  env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"60s"`
	UploadDir    string        `yaml:"upload_dir"    env:"UPLOAD_DIR"           env-default:"./uploads"`
	MaxUploadMB  int64         `yaml:"max_upload_mb" env:"MAX_UPLOAD_MB"        env-default:"25"`
}

type DatabaseConfig struct {
	DSN         string `yaml:"dsn"          env:"DATABASE_DSN" env-default:"host=localhost user=user password=password dbname=civicvoice port=5432 sslmode=disable"`
	AutoMigrate bool   `yaml:"auto_migrate" env:"DATABASE_AUTO_MIGRATE" env-default:"true"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"REDIS_ADDR"     env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"REDIS_DB"       env-default:"0"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET" env-default:"change-me-in-production-please-32chars"`
	JWTIssuer string        `yaml:"jwt_issuer" env:"JWT_ISSUER" env-default:"civicvoice"`
	TokenTTL  time.Duration `yaml:"token_ttl"  env:"JWT_TTL"    env-default:"72h"`
}

type OTPConfig struct {
	TTL      time.Duration `yaml:"ttl"      env:"OTP_TTL"      env-default:"5m"`
	Language string        `yaml:"language" env:"OTP_LANGUAGE" env-default:"en"`
}

// LLMConfig selects the chat/embedding provider. "sarvam" and "ollama" go
// through the OpenAI-compatible client with a custom base URL.
type LLMConfig struct {
	Provider       string `yaml:"provider"        env:"LLM_PROVIDER"        env-default:"sarvam"`
	Model          string `yaml:"model"           env:"LLM_MODEL"           env-default:"sarvam-m"`
	EmbeddingModel string `yaml:"embedding_model" env:"LLM_EMBEDDING_MODEL" env-default:"text-embedding-3-small"`
	APIKey         string `yaml:"api_key"         env:"LLM_API_KEY"`
	BaseURL        string `yaml:"base_url"        env:"LLM_BASE_URL"`
	EmbeddingKey   string `yaml:"embedding_key"   env:"EMBEDDING_API_KEY"`
	PromptsPath    string `yaml:"prompts_path"    env:"PROMPTS_PATH"`
}

type SarvamConfig struct {
	APIKey   string        `yaml:"api_key"   env:"SARVAM_API_KEY"`
	BaseURL  string        `yaml:"base_url"  env:"SARVAM_BASE_URL"  env-default:"https://api.sarvam.ai"`
	STTModel string        `yaml:"stt_model" env:"SARVAM_STT_MODEL" env-default:"saarika:v2.5"`
	Timeout  time.Duration `yaml:"timeout"   env:"SARVAM_TIMEOUT"   env-default:"60s"`
}

type SearchConfig struct {
	APIKey  string        `yaml:"api_key"  env:"TAVILY_API_KEY"`
	BaseURL string        `yaml:"base_url" env:"TAVILY_BASE_URL" env-default:"https://api.tavily.com"`
	Timeout time.Duration `yaml:"timeout"  env:"TAVILY_TIMEOUT"  env-default:"30s"`
}

type VectorConfig struct {
	APIKey    string        `yaml:"api_key"   env:"PINECONE_API_KEY"`
	IndexHost string        `yaml:"index_host" env:"PINECONE_INDEX_HOST"`
	Namespace string        `yaml:"namespace" env:"PINECONE_NAMESPACE" env-default:"wiki"`
	Timeout   time.Duration `yaml:"timeout"   env:"PINECONE_TIMEOUT"   env-default:"30s"`
}

type SMSConfig struct {
	AccountSID string `yaml:"account_sid" env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `yaml:"auth_token"  env:"TWILIO_AUTH_TOKEN"`
	From       string `yaml:"from"        env:"TWILIO_FROM"`
	BaseURL    string `yaml:"base_url"    env:"TWILIO_BASE_URL" env-default:"https://api.twilio.com"`
}

type EmailConfig struct {
	APIKey  string `yaml:"api_key"  env:"RESEND_API_KEY"`
	From    string `yaml:"from"     env:"EMAIL_FROM" env-default:"petitions@civicvoice.in"`
	BaseURL string `yaml:"base_url" env:"RESEND_BASE_URL" env-default:"https://api.resend.com"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
	ChatID   int64  `yaml:"chat_id"   env:"TELEGRAM_ESCALATION_CHAT_ID"`
}

type EscalationConfig struct {
	Enabled  bool          `yaml:"enabled"  env:"ESCALATION_ENABLED"  env-default:"true"`
	Cron     string        `yaml:"cron"     env:"ESCALATION_CRON"     env-default:"0 9 * * *"`
	Timezone string        `yaml:"timezone" env:"ESCALATION_TZ"       env-default:"Asia/Kolkata"`
	LockTTL  time.Duration `yaml:"lock_ttl" env:"ESCALATION_LOCK_TTL" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

type MetricsConfig struct {
	Namespace string `yaml:"namespace" env:"METRICS_NAMESPACE" env-default:"civicvoice"`
	Path      string `yaml:"path"      env:"METRICS_PATH"      env-default:"/metrics"`
}

// IsProduction reports whether error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults. The YAML path comes from CONFIG_PATH
// (fallback "./config.yaml"); a missing default file is not an error.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks cross-field constraints that tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("auth.jwt_secret must be at least 32 characters"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.Escalation.Enabled {
		if _, err := cron.ParseStandard(c.Escalation.Cron); err != nil {
			errs = append(errs, fmt.Errorf("escalation.cron: %w", err))
		}
		if _, err := time.LoadLocation(c.Escalation.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("escalation.timezone: %w", err))
		}
	}
	if c.OTP.TTL <= 0 {
		errs = append(errs, errors.New("otp.ttl must be positive"))
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("server.max_upload_mb must be positive"))
	}

	return errors.Join(errs...)
}
