package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures process level configuration. It is read once at startup and
// handed to constructors; nothing reads the environment at request time.
type Server struct {
	Addr         string `env:"SIGNUP_ADDR" envDefault:":8080"`
	DatabaseURL  string `env:"DATABASE_URL" envDefault:"sqlite://signup.db"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	OTelEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	Notification Notification
	Mail         Mail
}

// Notification configures the post-registration fan-out.
type Notification struct {
	// ServiceURL is the webhook base address; the fan-out POSTs to <ServiceURL>/notify.
	// Empty disables the webhook step.
	ServiceURL string        `env:"NOTIFICATION_SERVICE_URL"`
	Timeout    time.Duration `env:"NOTIFICATION_TIMEOUT" envDefault:"3s"`
	// AdminEmail receives one email per registration. Empty skips the email step.
	AdminEmail string `env:"ADMIN_EMAIL"`
	FromEmail  string `env:"DEFAULT_FROM_EMAIL" envDefault:"webmaster@localhost"`
}

// Mail configures the SMTP transport. An empty Host selects the log-only mailer.
type Mail struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	// Timeout bounds dialling and each SMTP command.
	Timeout time.Duration `env:"SMTP_TIMEOUT" envDefault:"15s"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Notification.ServiceURL = strings.TrimRight(strings.TrimSpace(cfg.Notification.ServiceURL), "/")
	cfg.Notification.AdminEmail = strings.TrimSpace(cfg.Notification.AdminEmail)
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects values that would only fail later, at request time.
func (s Server) Validate() error {
	if s.Notification.ServiceURL != "" {
		u, err := url.Parse(s.Notification.ServiceURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("NOTIFICATION_SERVICE_URL must be an absolute http(s) URL, got %q", s.Notification.ServiceURL)
		}
	}
	if s.Notification.Timeout <= 0 {
		return fmt.Errorf("NOTIFICATION_TIMEOUT must be positive, got %s", s.Notification.Timeout)
	}
	if s.Mail.Host != "" && (s.Mail.Port <= 0 || s.Mail.Port > 65535) {
		return fmt.Errorf("SMTP_PORT must be a valid port, got %d", s.Mail.Port)
	}
	return nil
}
