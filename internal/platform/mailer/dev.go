package mailer

import "github.com/tripdesk/crm-backend/pkg/logger"

// DevMailer logs outgoing mail instead of delivering it.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendPasswordReset(toEmail, toName, resetURL string) error {
	logger.Info("dev mailer: password reset", "to", toEmail, "name", toName, "url", resetURL)
	return nil
}

func (d *DevMailer) SendStatusChange(toEmail, toName, status string) error {
	logger.Info("dev mailer: status change", "to", toEmail, "name", toName, "status", status)
	return nil
}
