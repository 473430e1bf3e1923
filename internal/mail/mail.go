// Package mail delivers account emails. Transports render the same
// VerificationMessage; the auth service only sees the Sender interface.
package mail

import (
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"newsroom/internal/config"
)

const (
	TransportLog  = "log"
	TransportAMQP = "amqp"

	verificationSubject = "Verify Your News Platform Account"
)

// Sender dispatches verification emails.
type Sender interface {
	SendVerificationEmail(ctx context.Context, to, name, rawToken string) error
}

// VerificationMessage is the rendered verification email. It is also the
// JSON payload published to the email queue.
type VerificationMessage struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Link      string    `json:"link"`
	HTML      string    `json:"html"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

var verificationHTML = template.Must(template.New("verification").Parse(`<p>Hello {{.Name}},</p>
<p>Thank you for registering! Please click the link below to verify your email address:</p>
<a href="{{.Link}}" style="color: #1a73e8; font-weight: bold;">Verify Email Address</a>
<p>This link will expire in {{.ExpiresIn}}.</p>
<p>If you did not sign up for this account, please ignore this email.</p>
`))

// Composer renders verification messages for a deployment.
type Composer struct {
	From      string
	ClientURL string
	ExpiresIn string
	now       func() time.Time
}

// NewComposer builds a Composer from config.
func NewComposer(cfg *config.Config) *Composer {
	return &Composer{
		From:      cfg.EmailFrom,
		ClientURL: cfg.ClientURL,
		ExpiresIn: cfg.VerificationTokenExpiresIn,
		now:       time.Now,
	}
}

// VerificationLink returns the client URL that redeems rawToken.
func (c *Composer) VerificationLink(rawToken string) string {
	base := strings.TrimRight(strings.TrimSpace(c.ClientURL), "/")
	return base + "/verify-email?token=" + url.QueryEscape(rawToken)
}

// Verification renders the verification email for one recipient.
func (c *Composer) Verification(to, name, rawToken string) (VerificationMessage, error) {
	link := c.VerificationLink(rawToken)
	var body strings.Builder
	err := verificationHTML.Execute(&body, struct {
		Name      string
		Link      string
		ExpiresIn string
	}{Name: name, Link: link, ExpiresIn: c.ExpiresIn})
	if err != nil {
		return VerificationMessage{}, fmt.Errorf("render verification email: %w", err)
	}
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	return VerificationMessage{
		From:      c.From,
		To:        to,
		Subject:   verificationSubject,
		Link:      link,
		HTML:      body.String(),
		Text:      fmt.Sprintf("Hello %s,\n\nPlease verify your email: %s\n\nThis link will expire in %s.", name, link, c.ExpiresIn),
		CreatedAt: now().UTC(),
	}, nil
}

// NewSender picks the transport named by EMAIL_TRANSPORT.
func NewSender(cfg *config.Config) (Sender, error) {
	composer := NewComposer(cfg)
	switch strings.ToLower(strings.TrimSpace(cfg.EmailTransport)) {
	case "", TransportLog:
		return NewLogSender(composer), nil
	case TransportAMQP:
		return NewAMQPSender(cfg.AMQPURL, cfg.EmailQueue, composer), nil
	default:
		return nil, fmt.Errorf("unsupported email transport: %s", cfg.EmailTransport)
	}
}
