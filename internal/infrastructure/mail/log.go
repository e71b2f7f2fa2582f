package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/baechuer/account-service/internal/application/notify"
)

// LogMailer writes messages to the log instead of delivering them. For
// development; the link is logged so flows can be completed by hand.
type LogMailer struct {
	lg zerolog.Logger
}

func NewLogMailer(lg zerolog.Logger) *LogMailer {
	return &LogMailer{lg: lg.With().Str("component", "log_mailer").Logger()}
}

func (m *LogMailer) Send(_ context.Context, msg notify.Message) error {
	m.lg.Info().
		Str("kind", string(msg.Kind)).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("link", msg.Link).
		Msg("mail (not delivered)")
	return nil
}
