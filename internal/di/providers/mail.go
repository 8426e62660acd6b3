package providers

import (
	"fmt"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/yamdb/yamdb-server/internal/config"
	"github.com/yamdb/yamdb-server/internal/mail"
)

// ProvideMailSender provides the configured email backend.
func ProvideMailSender(i do.Injector) (mail.Sender, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	switch cfg.Mail.Backend {
	case mail.BackendSMTP:
		return mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			User:     cfg.Mail.SMTPUser,
			Password: cfg.Mail.SMTPPassword,
			UseTLS:   cfg.Mail.SMTPUseTLS,
		}), nil
	case mail.BackendConsole:
		return mail.NewConsoleSender(log), nil
	case mail.BackendMemory:
		return &mail.Outbox{}, nil
	default:
		return nil, fmt.Errorf("unknown mail backend %q", cfg.Mail.Backend)
	}
}

// ProvideMailer provides the application mailer.
func ProvideMailer(i do.Injector) (*mail.Mailer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	sender := do.MustInvoke[mail.Sender](i)

	log.Info("Mail backend ready", "backend", sender.Name(), "from", cfg.Mail.From)

	return mail.NewMailer(sender, cfg.Mail.From, cfg.Mail.FailSilently, log), nil
}
