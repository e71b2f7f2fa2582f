package mail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"

	"github.com/baechuer/account-service/internal/application/notify"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Insecure allows plaintext when the server does not offer STARTTLS.
	Insecure bool
}

// SMTPMailer sends plain text mail with wneessen/go-mail, one connection
// per message.
type SMTPMailer struct {
	cfg SMTPConfig
	lg  zerolog.Logger
}

func NewSMTPMailer(cfg SMTPConfig, lg zerolog.Logger) *SMTPMailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPMailer{
		cfg: cfg,
		lg:  lg.With().Str("component", "smtp_mailer").Logger(),
	}
}

func (s *SMTPMailer) buildMessage(msg notify.Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid to address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return m, nil
}

func (s *SMTPMailer) clientOptions() []gomail.Option {
	tlsPolicy := gomail.TLSMandatory
	if s.cfg.Insecure {
		tlsPolicy = gomail.TLSOpportunistic
	}
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTLSPolicy(tlsPolicy),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}

func (s *SMTPMailer) Send(ctx context.Context, msg notify.Message) error {
	m, err := s.buildMessage(msg)
	if err != nil {
		return err
	}

	c, err := gomail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client init: %w", err)
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	s.lg.Info().Str("kind", string(msg.Kind)).Str("subject", msg.Subject).Msg("smtp send ok")
	return nil
}
