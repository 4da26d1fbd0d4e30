package notify

import (
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the SMTP server settings
type SMTPConfig struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required,min=1,max=65535"`
	Username string `yaml:"username" validate:"required"`
	Password string `yaml:"-"`
	From     string `yaml:"from,omitempty" validate:"omitempty,email"`
}

// SMTPMailer sends plain text mail through an SMTP server with SSL and PLAIN auth
type SMTPMailer struct {
	client *mail.Client
	from   string
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Port),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPMailer{client: client, from: from}, nil
}

func (m *SMTPMailer) SendEmail(to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender %s: %w", m.from, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient %s: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
