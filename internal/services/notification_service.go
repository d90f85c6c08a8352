// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/gocommerce/shop-backend/internal/config"
	"github.com/gocommerce/shop-backend/internal/models"
)

// NotificationService delivers transactional email over SMTP. Delivery is
// best-effort: callers decide whether a send failure aborts their operation.
type NotificationService struct {
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(config *config.Config) *NotificationService {
	return &NotificationService{config: config}
}

func (s *NotificationService) SendVerificationEmail(user *models.User, verificationToken string) error {
	template := s.getEmailTemplate("verify_email")

	data := map[string]interface{}{
		"Name":            user.Name,
		"VerificationURL": fmt.Sprintf("%s/verify-email/%s", s.config.Frontend.BaseURL, verificationToken),
		"ExpiresIn":       "24 hours",
	}

	body, err := s.renderTemplate(template.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, template.Subject, body)
}

func (s *NotificationService) SendWelcomeEmail(user *models.User) error {
	template := s.getEmailTemplate("welcome")

	data := map[string]interface{}{
		"Name":    user.Name,
		"ShopURL": s.config.Frontend.BaseURL,
	}

	body, err := s.renderTemplate(template.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, template.Subject, body)
}

func (s *NotificationService) SendPasswordResetEmail(user *models.User, resetToken string) error {
	template := s.getEmailTemplate("password_reset")

	data := map[string]interface{}{
		"Name":      user.Name,
		"ResetURL":  fmt.Sprintf("%s/reset-password/%s", s.config.Frontend.BaseURL, resetToken),
		"ExpiresIn": "15 minutes",
	}

	body, err := s.renderTemplate(template.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, template.Subject, body)
}

func (s *NotificationService) SendPasswordChangedEmail(user *models.User) error {
	template := s.getEmailTemplate("password_changed")

	data := map[string]interface{}{
		"Name": user.Name,
	}

	body, err := s.renderTemplate(template.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, template.Subject, body)
}

// Helper methods
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("Email delivery skipped, SMTP not configured")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.config.Email.FromName, s.config.Email.FromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"verify_email": {
			Subject: "Verify your email address",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>Thank you for signing up. Please verify your email address by clicking the link below:</p>
	<a href="{{.VerificationURL}}">Verify Email</a>
	<p>This link expires in {{.ExpiresIn}}.</p>
	<p>If you did not create an account, you can safely ignore this email.</p>
</body>
</html>`,
		},
		"welcome": {
			Subject: "Welcome aboard",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Welcome {{.Name}}!</h2>
	<p>Your email has been verified and your account is ready to use.</p>
	<a href="{{.ShopURL}}">Start shopping</a>
</body>
</html>`,
		},
		"password_reset": {
			Subject: "Password reset request",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>We received a request to reset your password. Click the link below to choose a new one:</p>
	<a href="{{.ResetURL}}">Reset Password</a>
	<p>This link expires in {{.ExpiresIn}}.</p>
	<p>If you did not request a reset, you can safely ignore this email.</p>
</body>
</html>`,
		},
		"password_changed": {
			Subject: "Your password was changed",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>Your password was changed successfully. If this was not you, please reset your password immediately.</p>
</body>
</html>`,
		},
	}

	if template, exists := templates[templateType]; exists {
		return template
	}

	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
