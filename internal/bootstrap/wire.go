package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/baechuer/account-service/internal/application/account"
	"github.com/baechuer/account-service/internal/application/auth"
	"github.com/baechuer/account-service/internal/application/notify"
	"github.com/baechuer/account-service/internal/audit"
	"github.com/baechuer/account-service/internal/config"
	"github.com/baechuer/account-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/account-service/internal/infrastructure/mail"
	rabbitmq_pub "github.com/baechuer/account-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/account-service/internal/infrastructure/redis"
	"github.com/baechuer/account-service/internal/infrastructure/security"
	"github.com/baechuer/account-service/internal/logger"
	http_handlers "github.com/baechuer/account-service/internal/transport/http/handlers"
	"github.com/baechuer/account-service/internal/transport/http/middleware"
	"github.com/baechuer/account-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(addr string, debug bool) (*sql.DB, error)

	// NewRedis may be nil; rate limits then stay in-process.
	NewRedis func(addr, password string, db int) RedisClient

	NewPublisher func(rabbitURL, exchange string) (MailPublisher, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

type RedisClient interface {
	Ping(ctx context.Context) error
	Close() error
}

// MailPublisher is a mailer that owns a broker connection.
type MailPublisher interface {
	notify.Mailer
	Close() error
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	// 1) db
	db, err := deps.NewDB(cfg.DBAddr, cfg.DBDebug)
	if err != nil {
		return nil, nil, err
	}

	cleanupFns := []func(){
		func() { _ = db.Close() },
	}
	fail := func(err error) (*http.Server, func(), error) {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	userRepo := postgres.NewUserRepo(db)

	// 2) redis (best-effort)
	var redisCli RedisClient
	var limiter middleware.RateLimiter
	if deps.NewRedis != nil && cfg.RedisAddr != "" {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.Ping(ctx)
		cancel()

		if err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; using in-process rate limits")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			redisCli = c
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
			if rc, ok := c.(*redis.Client); ok {
				limiter = redis.NewFixedWindowLimiter(rc)
			}
		}
	}

	// 3) mail transport
	mailer, err := newMailer(cfg, deps, &cleanupFns)
	if err != nil {
		return fail(err)
	}

	dispatcher := notify.NewDispatcher(mailer, notify.DispatcherConfig{
		Workers:     cfg.NotifyWorkers,
		QueueSize:   cfg.NotifyQueueSize,
		SendTimeout: cfg.NotifySendTimeout,
	}, logger.Logger)
	// drains before the publisher closes
	cleanupFns = append(cleanupFns, dispatcher.Close)

	// 4) security
	logger.Logger.Info().Str("issuer", cfg.JWTIssuer).Msg("initializing jwt signer")
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	signer := security.NewJWTSigner(cfg.JWTSecret, cfg.JWTIssuer)

	// 5) services
	auditLog := audit.New(logger.Logger)

	accountSvc := account.NewService(userRepo, hasher, signer, dispatcher, account.Config{
		VerifyTokenTTL: cfg.VerifyTokenTTL,
		ResetTokenTTL:  cfg.ResetTokenTTL,
		VerifyURL:      cfg.VerifyURL,
		ResetURL:       cfg.ResetURL,
	}).WithAudit(auditLog)

	authSvc := auth.NewService(userRepo, hasher, signer, auth.Config{
		SessionTTL:      cfg.SessionTokenTTL,
		RequireVerified: cfg.LoginRequireVerified,
	}).WithAudit(auditLog)

	// 6) admin seed
	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = accountSvc.EnsureAdmin(seedCtx, cfg.AdminEmail, cfg.AdminPassword, logger.Logger)
	cancel()
	if err != nil {
		return fail(fmt.Errorf("seed admin: %w", err))
	}

	// 7) handlers + router
	checks := map[string]http_handlers.Pinger{"db": userRepo}
	if redisCli != nil {
		checks["redis"] = redisCli
	}

	mux, err := deps.NewRouter(router.Deps{
		Health:   http_handlers.NewHealthHandler(checks),
		Account:  http_handlers.NewAccountHandler(accountSvc),
		Auth:     http_handlers.NewAuthHandler(authSvc),
		Verifier: signer,
		Limiter:  limiter,
		Limits:   router.DefaultRateLimits(),
	})
	if err != nil {
		return fail(err)
	}

	// 8) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

// newMailer picks the transport named by MAIL_TRANSPORT. A broker that
// cannot be reached is fatal outside dev; in dev mail falls back to the log.
func newMailer(cfg *config.Config, deps Deps, cleanupFns *[]func()) (notify.Mailer, error) {
	switch cfg.MailTransport {
	case config.MailTransportSMTP:
		logger.Logger.Info().Str("host", cfg.SMTPHost).Int("port", cfg.SMTPPort).Msg("mail via smtp")
		return mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			Insecure: cfg.SMTPInsecure,
		}, logger.Logger), nil

	case config.MailTransportRabbitMQ:
		pub, err := deps.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			if cfg.Env == "dev" {
				logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; mail goes to the log")
				return mail.NewLogMailer(logger.Logger), nil
			}
			return nil, err
		}
		*cleanupFns = append(*cleanupFns, func() { _ = pub.Close() })
		logger.Logger.Info().Str("exchange", cfg.RabbitExchange).Msg("mail via rabbitmq")
		return pub, nil

	default:
		return mail.NewLogMailer(logger.Logger), nil
	}
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		NewRedis: func(addr, password string, db int) RedisClient {
			return redis.New(addr, password, db)
		},
		NewPublisher: func(url, exchange string) (MailPublisher, error) {
			return rabbitmq_pub.NewPublisher(url, exchange)
		},
		NewRouter: router.New,
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
