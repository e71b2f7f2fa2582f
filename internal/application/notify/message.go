package notify

import (
	"context"
	"fmt"
)

// Kind tells downstream consumers which template a message came from.
type Kind string

const (
	KindVerifyEmail   Kind = "verify_email"
	KindPasswordReset Kind = "password_reset"
)

// Message is a rendered, ready-to-send plain text email.
type Message struct {
	Kind    Kind
	To      string
	Subject string
	Body    string
	// Link is the actionable URL embedded in Body.
	Link string
}

// Mailer delivers one message. Implementations must honour ctx cancellation.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// MailerFunc adapts a function to Mailer.
type MailerFunc func(ctx context.Context, msg Message) error

func (f MailerFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

// VerifyEmail renders the verification mail sent after registration.
func VerifyEmail(to, token, link string) Message {
	return Message{
		Kind:    KindVerifyEmail,
		To:      to,
		Subject: "Verify Your Email",
		Body: fmt.Sprintf(
			"Verify your email by opening this link:\n\n%s\n\nOr copy and use the token to verify: %s\n",
			link, token,
		),
		Link: link,
	}
}

// PasswordReset renders the reset mail.
func PasswordReset(to, token, link string) Message {
	return Message{
		Kind:    KindPasswordReset,
		To:      to,
		Subject: "Reset Password",
		Body: fmt.Sprintf(
			"Reset your password by opening this link:\n\n%s\n\nOr copy and use the token: %s\n\nIf you did not request this, ignore this email.\n",
			link, token,
		),
		Link: link,
	}
}
