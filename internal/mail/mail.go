// Package mail renders an embedded HTML template and delivers it over SMTP.
package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/madac4/doCreate-server/internal/config"
)

// Имена шаблонов писем
const (
	ActivationTemplate = "activation-mail.html"
	ResetTemplate      = "reset-mail.html"
	InvitationTemplate = "invitation-mail.html"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Message описывает письмо к отправке
type Message struct {
	To       string
	Subject  string
	Template string
	Data     any
}

// Dispatcher отправляет письма. Интерфейс позволяет подменить SMTP
// заглушкой в тестах.
type Dispatcher interface {
	Send(msg Message) error
}

// SMTPDispatcher реализует Dispatcher поверх SMTP сервера
type SMTPDispatcher struct {
	dialer *gomail.Dialer
	from   string
	tmpl   *template.Template
}

// NewSMTPDispatcher создает диспетчер почты из конфигурации
func NewSMTPDispatcher(cfg config.SMTPConfig) (*SMTPDispatcher, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail templates: %w", err)
	}

	return &SMTPDispatcher{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		tmpl:   tmpl,
	}, nil
}

// Send рендерит шаблон и отправляет письмо
func (d *SMTPDispatcher) Send(msg Message) error {
	var body bytes.Buffer
	if err := d.tmpl.ExecuteTemplate(&body, msg.Template, msg.Data); err != nil {
		return fmt.Errorf("failed to render mail template %s: %w", msg.Template, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", d.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", body.String())

	if err := d.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}

	return nil
}
