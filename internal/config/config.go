package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Mail transports understood by the composition root.
const (
	MailTransportLog      = "log"
	MailTransportSMTP     = "smtp"
	MailTransportRabbitMQ = "rabbitmq"
)

type Config struct {
	//App
	Env string // dev / staging / prod
	//HTTP
	HTTPAddr      string
	PublicBaseURL string

	//Auth / Security
	JWTSecret            string
	JWTIssuer            string
	SessionTokenTTL      time.Duration
	VerifyTokenTTL       time.Duration
	ResetTokenTTL        time.Duration
	BcryptCost           int
	LoginRequireVerified bool

	// Seeded admin, both empty means no seeding.
	AdminEmail    string
	AdminPassword string

	// Infrastructure
	DBAddr         string
	DBDebug        bool
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RabbitURL      string
	RabbitExchange string

	// Mail
	MailTransport string
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SMTPInsecure  bool
	MailFrom      string

	// Notification dispatcher
	NotifyWorkers     int
	NotifyQueueSize   int
	NotifySendTimeout time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

func Load() (*Config, error) {
	// .env is optional; real deployments use the environment.
	_ = godotenv.Load()

	cfg := &Config{
		Env:            getEnv("ENV", "dev"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		JWTIssuer:      getEnv("JWT_ISSUER", "account-service"),
		AdminEmail:     strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RabbitURL:      os.Getenv("RABBIT_URL"),
		RabbitExchange: getEnv("RABBIT_EXCHANGE", "account.events"),
		MailTransport:  strings.ToLower(getEnv("MAIL_TRANSPORT", MailTransportLog)),
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPUsername:   os.Getenv("SMTP_USERNAME"),
		SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		MailFrom:       os.Getenv("MAIL_FROM"),
	}

	// required values
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required env var: JWT_SECRET")
	}

	cfg.DBAddr = os.Getenv("DB_ADDR")
	if cfg.DBAddr == "" {
		return nil, fmt.Errorf("missing required env var: DB_ADDR")
	}
	if !strings.HasPrefix(cfg.DBAddr, "postgres://") && !strings.HasPrefix(cfg.DBAddr, "postgresql://") {
		return nil, fmt.Errorf("DB_ADDR must be a postgres:// URL")
	}

	var err error

	// token lifetimes
	if cfg.SessionTokenTTL, err = getDuration("SESSION_TOKEN_TTL", 60*time.Minute); err != nil {
		return nil, err
	}
	if cfg.VerifyTokenTTL, err = getDuration("VERIFY_TOKEN_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.ResetTokenTTL, err = getDuration("RESET_TOKEN_TTL", 30*time.Minute); err != nil {
		return nil, err
	}

	if cfg.BcryptCost, err = getInt("BCRYPT_COST", 10); err != nil {
		return nil, err
	}
	if cfg.LoginRequireVerified, err = getBool("LOGIN_REQUIRE_VERIFIED", false); err != nil {
		return nil, err
	}
	if cfg.DBDebug, err = getBool("DB_DEBUG", false); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	// mail
	if cfg.SMTPPort, err = getInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.SMTPInsecure, err = getBool("SMTP_INSECURE", false); err != nil {
		return nil, err
	}
	switch cfg.MailTransport {
	case MailTransportLog:
	case MailTransportSMTP:
		if cfg.SMTPHost == "" || cfg.MailFrom == "" {
			return nil, fmt.Errorf("MAIL_TRANSPORT=smtp requires SMTP_HOST and MAIL_FROM")
		}
	case MailTransportRabbitMQ:
		if cfg.RabbitURL == "" {
			return nil, fmt.Errorf("MAIL_TRANSPORT=rabbitmq requires RABBIT_URL")
		}
	default:
		return nil, fmt.Errorf("invalid MAIL_TRANSPORT: %q", cfg.MailTransport)
	}

	if cfg.NotifyWorkers, err = getInt("NOTIFY_WORKERS", 4); err != nil {
		return nil, err
	}
	if cfg.NotifyQueueSize, err = getInt("NOTIFY_QUEUE_SIZE", 64); err != nil {
		return nil, err
	}
	if cfg.NotifySendTimeout, err = getDuration("NOTIFY_SEND_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	//Timeout values are optional and have a default value if not
	if cfg.HTTPReadTimeout, err = getDuration("HTTP_READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPWriteTimeout, err = getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPIdleTimeout, err = getDuration("HTTP_IDLE_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

// VerifyURL is the link mailed after registration.
func (c *Config) VerifyURL(token string) string {
	return c.PublicBaseURL + "/auth/verify/" + token
}

// ResetURL is the link mailed for a password reset.
func (c *Config) ResetURL(token string) string {
	return c.PublicBaseURL + "/auth/reset-password/" + token
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid duration for %s: must be > 0", key)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q: %w", key, v, err)
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid bool for %s: %q: %w", key, v, err)
	}
	return b, nil
}
