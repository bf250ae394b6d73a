package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timeouts, API base URLs, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	CORS     CORSConfig
	Log      LogConfig
	Telegram TelegramConfig
	Mail     MailConfig
	Approval ApprovalConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
}

type TelegramConfig struct {
	BotToken      string        `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	ChatID        string        `envconfig:"TELEGRAM_CHAT_ID" required:"true"`
	WebhookSecret string        `envconfig:"TELEGRAM_WEBHOOK_SECRET" default:""`
	APIBaseURL    string        `envconfig:"TELEGRAM_API_BASE_URL" default:"https://api.telegram.org"`
	Timeout       time.Duration `envconfig:"TELEGRAM_TIMEOUT" default:"10s"`
}

type MailConfig struct {
	Host     string `envconfig:"MAIL_HOST" default:"smtp.sendgrid.net"`
	Port     int    `envconfig:"MAIL_PORT" default:"587"`
	Username string `envconfig:"MAIL_USERNAME" required:"true"`
	Password string `envconfig:"MAIL_PASSWORD" required:"true"`
	Sender   string `envconfig:"MAIL_SENDER" default:"no-reply@reservations.com"`
}

type ApprovalConfig struct {
	// How long a deny prompt waits for the operator's free-text reason
	// before the binding is released.
	ReasonTimeout time.Duration `envconfig:"APPROVAL_REASON_TIMEOUT" default:"10m"`
	SweepInterval time.Duration `envconfig:"APPROVAL_SWEEP_INTERVAL" default:"1m"`
	// Base URL of the customer booking form, used to build the rebooking
	// link embedded in denial emails.
	RebookBaseURL  string `envconfig:"APPROVAL_REBOOK_BASE_URL" default:"https://snack.expo.dev/@beachbar/la-casita-booking"`
	MaxSendRetries uint64 `envconfig:"APPROVAL_MAX_SEND_RETRIES" default:"3"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		Telegram: TelegramConfig{
			BotToken:   "test-bot-token",
			ChatID:     "100200300",
			APIBaseURL: "https://api.telegram.org",
			Timeout:    10 * time.Second,
		},
		Mail: MailConfig{
			Host:     "localhost",
			Port:     1025,
			Username: "test",
			Password: "test",
			Sender:   "no-reply@test.local",
		},
		Approval: ApprovalConfig{
			ReasonTimeout:  10 * time.Minute,
			SweepInterval:  time.Minute,
			RebookBaseURL:  "https://booking.test.local",
			MaxSendRetries: 1,
		},
	}
}
