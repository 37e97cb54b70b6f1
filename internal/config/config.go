package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Swagger         bool          `yaml:"swagger"`
}

type DatabaseConfig struct {
	DSN         string `yaml:"url"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type AuthConfig struct {
	Mode              string        `yaml:"mode"` // local | idp
	JWTSecret         string        `yaml:"jwt_secret"`
	AccessTTL         time.Duration `yaml:"access_ttl"`
	RefreshTTL        time.Duration `yaml:"refresh_ttl"`
	LoginMaxPerMinute int           `yaml:"login_max_per_minute"`
}

type IDPConfig struct {
	TokenURL     string        `yaml:"token_url"`
	UserInfoURL  string        `yaml:"userinfo_url"`
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	Scopes       []string      `yaml:"scopes"`
	Timeout      time.Duration `yaml:"timeout"`
}

type TelegramConfig struct {
	BotToken    string `yaml:"bot_token"`
	ChatID      int64  `yaml:"chat_id"`
	APIEndpoint string `yaml:"api_endpoint"`
}

type EmailConfig struct {
	SMTPHost     string   `yaml:"smtp_host"`
	SMTPPort     int      `yaml:"smtp_port"`
	SMTPUser     string   `yaml:"smtp_user"`
	SMTPPassword string   `yaml:"smtp_password"`
	FromEmail    string   `yaml:"from_email"`
	To           []string `yaml:"to"`
}

type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	IDP      IDPConfig      `yaml:"idp"`
	Telegram TelegramConfig `yaml:"telegram"`
	Email    EmailConfig    `yaml:"email"`
	NATS     NATSConfig     `yaml:"nats"`
	Log      LogConfig      `yaml:"log"`
}

// Load читает YAML (если файл есть), затем .env и переменные окружения поверх.
func Load(path string) (*Config, error) {
	var cfg Config
	if path == "" {
		path = DefaultPath
	}
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// только окружение
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	_ = godotenv.Load(".env")
	applyEnv(&cfg)
	cfg.setDefaults()
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = cast.ToInt(getOrReturnDefault("APP_PORT", cfg.Server.Port))
	cfg.Server.ShutdownTimeout = cast.ToDuration(getOrReturnDefault("SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout))
	cfg.Server.Swagger = cast.ToBool(getOrReturnDefault("SWAGGER", cfg.Server.Swagger))

	cfg.Database.DSN = cast.ToString(getOrReturnDefault("DATABASE_URL", cfg.Database.DSN))
	cfg.Database.AutoMigrate = cast.ToBool(getOrReturnDefault("AUTO_MIGRATE", cfg.Database.AutoMigrate))
	cfg.Redis.URL = cast.ToString(getOrReturnDefault("REDIS_URL", cfg.Redis.URL))

	cfg.Auth.Mode = cast.ToString(getOrReturnDefault("AUTH_MODE", cfg.Auth.Mode))
	cfg.Auth.JWTSecret = cast.ToString(getOrReturnDefault("JWT_SECRET", cfg.Auth.JWTSecret))
	cfg.Auth.AccessTTL = cast.ToDuration(getOrReturnDefault("ACCESS_TTL", cfg.Auth.AccessTTL))
	cfg.Auth.RefreshTTL = cast.ToDuration(getOrReturnDefault("REFRESH_TTL", cfg.Auth.RefreshTTL))
	cfg.Auth.LoginMaxPerMinute = cast.ToInt(getOrReturnDefault("LOGIN_MAX_PER_MINUTE", cfg.Auth.LoginMaxPerMinute))

	cfg.IDP.TokenURL = cast.ToString(getOrReturnDefault("IDP_TOKEN_URL", cfg.IDP.TokenURL))
	cfg.IDP.UserInfoURL = cast.ToString(getOrReturnDefault("IDP_USERINFO_URL", cfg.IDP.UserInfoURL))
	cfg.IDP.ClientID = cast.ToString(getOrReturnDefault("IDP_CLIENT_ID", cfg.IDP.ClientID))
	cfg.IDP.ClientSecret = cast.ToString(getOrReturnDefault("IDP_CLIENT_SECRET", cfg.IDP.ClientSecret))
	if v := os.Getenv("IDP_SCOPES"); v != "" {
		cfg.IDP.Scopes = strings.Fields(strings.ReplaceAll(v, ",", " "))
	}
	cfg.IDP.Timeout = cast.ToDuration(getOrReturnDefault("IDP_TIMEOUT", cfg.IDP.Timeout))

	cfg.Telegram.BotToken = cast.ToString(getOrReturnDefault("TG_BOT_TOKEN", cfg.Telegram.BotToken))
	cfg.Telegram.ChatID = cast.ToInt64(getOrReturnDefault("TG_CHAT_ID", cfg.Telegram.ChatID))
	cfg.Telegram.APIEndpoint = cast.ToString(getOrReturnDefault("TG_API_ENDPOINT", cfg.Telegram.APIEndpoint))

	cfg.Email.SMTPHost = cast.ToString(getOrReturnDefault("SMTP_HOST", cfg.Email.SMTPHost))
	cfg.Email.SMTPPort = cast.ToInt(getOrReturnDefault("SMTP_PORT", cfg.Email.SMTPPort))
	cfg.Email.SMTPUser = cast.ToString(getOrReturnDefault("SMTP_USER", cfg.Email.SMTPUser))
	cfg.Email.SMTPPassword = cast.ToString(getOrReturnDefault("SMTP_PASSWORD", cfg.Email.SMTPPassword))
	cfg.Email.FromEmail = cast.ToString(getOrReturnDefault("SMTP_FROM", cfg.Email.FromEmail))
	if v := os.Getenv("NOTIFY_EMAILS"); v != "" {
		cfg.Email.To = strings.Fields(strings.ReplaceAll(v, ",", " "))
	}

	cfg.NATS.URL = cast.ToString(getOrReturnDefault("NATS_URL", cfg.NATS.URL))
	cfg.NATS.SubjectPrefix = cast.ToString(getOrReturnDefault("NATS_SUBJECT_PREFIX", cfg.NATS.SubjectPrefix))

	cfg.Log.Level = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", cfg.Log.Level))
	cfg.Log.JSON = cast.ToBool(getOrReturnDefault("LOG_JSON", cfg.Log.JSON))
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	c.Auth.Mode = strings.ToLower(strings.TrimSpace(c.Auth.Mode))
	if c.Auth.Mode == "" {
		c.Auth.Mode = "local"
	}
	if c.Auth.AccessTTL <= 0 {
		c.Auth.AccessTTL = 15 * time.Minute
	}
	if c.Auth.RefreshTTL <= 0 {
		c.Auth.RefreshTTL = 30 * 24 * time.Hour
	}
	if c.Auth.LoginMaxPerMinute <= 0 {
		c.Auth.LoginMaxPerMinute = 5
	}
	if c.IDP.Timeout <= 0 {
		c.IDP.Timeout = 10 * time.Second
	}
	if len(c.IDP.Scopes) == 0 {
		c.IDP.Scopes = []string{"openid", "profile", "email"}
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.NATS.SubjectPrefix == "" {
		c.NATS.SubjectPrefix = "vregistry"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate проверяет обязательные значения для выбранного режима.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	switch c.Auth.Mode {
	case "local":
		if c.Auth.JWTSecret == "" {
			errs = append(errs, errors.New("auth.jwt_secret is required in local mode"))
		}
	case "idp":
		if c.IDP.TokenURL == "" {
			errs = append(errs, errors.New("idp.token_url is required in idp mode"))
		}
		if c.IDP.UserInfoURL == "" {
			errs = append(errs, errors.New("idp.userinfo_url is required in idp mode"))
		}
		if c.IDP.ClientID == "" {
			errs = append(errs, errors.New("idp.client_id is required in idp mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("auth.mode: unknown value %q (local | idp)", c.Auth.Mode))
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		errs = append(errs, errors.New("telegram.chat_id is required when bot_token is set"))
	}
	if c.Email.SMTPHost != "" && (c.Email.FromEmail == "" || len(c.Email.To) == 0) {
		errs = append(errs, errors.New("email.from_email and email.to are required when smtp_host is set"))
	}
	return errors.Join(errs...)
}

func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Server.Port) }
