package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/smallbiznis/advisorhub/internal/config"
)

type SMTPProvider struct {
	cfg config.SMTPConfig
}

func NewSMTP(cfg config.SMTPConfig) *SMTPProvider {
	return &SMTPProvider{cfg: cfg}
}

func (p *SMTPProvider) Send(ctx context.Context, to, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\n%s\r\n%s", to, p.cfg.From, subject, mime, htmlBody))

	return smtp.SendMail(addr, auth, p.cfg.From, []string{to}, msg)
}
