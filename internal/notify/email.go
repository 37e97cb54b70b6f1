package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// mailer is the part of *gomail.Dialer used here.
type mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Email рассылает решения списку адресов по SMTP.
type Email struct {
	dialer mailer
	from   string
	to     []string
	log    *zap.Logger
}

func NewEmail(smtpHost string, smtpPort int, smtpUser, smtpPassword, from string, to []string, log *zap.Logger) *Email {
	return &Email{
		dialer: gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:   from,
		to:     to,
		log:    log,
	}
}

func (e *Email) NotifyDecision(ctx context.Context, d Decision) error {
	if len(e.to) == 0 {
		return nil
	}
	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", e.to...)
	m.SetHeader("Subject", emailSubject(d))
	m.SetBody("text/html", strings.ReplaceAll(formatDecision(d), "\n", "<br>"))

	if err := sendWithContext(ctx, func() error { return e.dialer.DialAndSend(m) }); err != nil {
		e.log.Warn("decision email failed", zap.Int("record_id", d.RecordID), zap.Error(err))
		return fmt.Errorf("failed to send decision email: %w", err)
	}
	return nil
}

func emailSubject(d Decision) string {
	status := "отклонено"
	if d.Verified {
		status = "подтверждено"
	}
	if d.Kind == KindVehicle {
		return fmt.Sprintf("Проверка транспорта #%d: %s", d.RecordID, status)
	}
	return fmt.Sprintf("Проверка пользователя #%d: %s", d.RecordID, status)
}
