package email

import (
	"context"

	"inmo24x7_backend/platform/logger"
)

// NoopSender logs handoff notifications instead of sending them. Used when
// SMTP is not configured, typically in local development.
type NoopSender struct {
	log *logger.Logger
}

func NewNoopSender(log *logger.Logger) *NoopSender {
	return &NoopSender{log: log}
}

func (s *NoopSender) SendHandoffNotification(_ context.Context, to string, data HandoffEmailData) error {
	s.log.Info("handoff notification (email disabled)",
		"to", to,
		"userId", data.UserID,
		"leadId", data.LeadID,
		"contacto", data.Contacto,
	)
	return nil
}

var _ Sender = (*NoopSender)(nil)
