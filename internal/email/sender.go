// Package email delivers handoff notifications to the agency inbox.
package email

import (
	"context"

	"inmo24x7_backend/platform/config"
	"inmo24x7_backend/platform/logger"
)

// HandoffEmailData carries everything an agent needs to pick up a conversation.
type HandoffEmailData struct {
	UserID         string
	LeadID         string
	Nombre         string
	Contacto       string
	Operacion      string
	Zona           string
	PresupuestoMax float64
	Summary        string
}

// Sender delivers a handoff notification.
type Sender interface {
	SendHandoffNotification(ctx context.Context, to string, data HandoffEmailData) error
}

// NewFromConfig picks the SMTP sender when email is configured and a no-op
// sender otherwise, so the worker can always be wired the same way.
func NewFromConfig(cfg config.EmailConfig, log *logger.Logger) Sender {
	if !cfg.IsEmailEnabled() {
		log.Warn("email disabled, handoff notifications will be logged only")
		return NewNoopSender(log)
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(), cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(), cfg.GetEmailFromName(),
	)
}
