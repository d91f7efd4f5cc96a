package services

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"reclamassur/config"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

//go:embed emails/*.html emails/*.txt
var emailTemplates embed.FS

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// loadTemplate renders emails/<name>.html with html/template and emails/<name>.txt with text/template
func loadTemplate(templateName string, data interface{}) (string, string, error) {
	htmlTmpl, err := htmltemplate.ParseFS(emailTemplates, "emails/"+templateName+".html")
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s.html: %w", templateName, err)
	}
	var htmlBuf bytes.Buffer
	if err := htmlTmpl.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s.html: %w", templateName, err)
	}

	textTmpl, err := texttemplate.ParseFS(emailTemplates, "emails/"+templateName+".txt")
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s.txt: %w", templateName, err)
	}
	var textBuf bytes.Buffer
	if err := textTmpl.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s.txt: %w", templateName, err)
	}

	return htmlBuf.String(), textBuf.String(), nil
}

func buildEmail(templateName, subject string, data interface{}, toEmail string) (*Email, error) {
	htmlBody, textBody, err := loadTemplate(templateName, data)
	if err != nil {
		return nil, err
	}
	return &Email{To: []string{toEmail}, Subject: subject, HTMLBody: htmlBody, TextBody: textBody}, nil
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	if cfg.EmailTestMode {
		logEmail(email)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}
	if email.HTMLBody == "" && email.TextBody == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	client := resend.NewClient(cfg.ResendAPIKey)
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	zap.L().Info("email sent", zap.String("resend_id", sent.Id), zap.Strings("to", email.To))
	return nil
}

// logEmail records the email instead of sending it (EMAIL_TEST_MODE)
func logEmail(email *Email) {
	zap.L().Info("email not sent (test mode)",
		zap.Strings("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("text", truncate(email.TextBody, 500)))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// SendEmailAsync sends an email in a goroutine so handlers do not wait on Resend
func SendEmailAsync(cfg *config.Config, email *Email) {
	emailCopy := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
	}

	go func(cfg *config.Config, email *Email) {
		if err := SendEmail(cfg, email); err != nil {
			zap.L().Error("failed to send async email", zap.Strings("to", email.To), zap.Error(err))
		}
	}(cfg, emailCopy)
}

// DeadlineAlertEmailData contains data for the deadline alert email
type DeadlineAlertEmailData struct {
	ClientName   string
	PolicyNumber string
	Insurer      string
	Title        string
	Description  string
	DueDate      string
	CaseLink     string
}

// BuildDeadlineAlertEmail creates the e-mail sent when a deadline reaches its alert date
func BuildDeadlineAlertEmail(toEmail string, data DeadlineAlertEmailData) (*Email, error) {
	return buildEmail("deadline_alert", "Échéance à venir : "+data.Title, data, toEmail)
}

// AdminInvitationEmailData contains data for the admin invitation email
type AdminInvitationEmailData struct {
	InvitedBy  string
	Code       string
	ExpiresAt  string
	AcceptLink string
}

// BuildAdminInvitationEmail creates the invitation e-mail carrying the one-time code
func BuildAdminInvitationEmail(toEmail string, data AdminInvitationEmailData) (*Email, error) {
	return buildEmail("admin_invitation", "Invitation administrateur ReclamAssur", data, toEmail)
}

// LetterSentEmailData contains data for the dispatch confirmation email
type LetterSentEmailData struct {
	ClientName     string
	Insurer        string
	SentAt         string
	TrackingNumber string
	CaseLink       string
}

// BuildLetterSentEmail creates the e-mail telling the client their letter left
func BuildLetterSentEmail(toEmail string, data LetterSentEmailData) (*Email, error) {
	return buildEmail("letter_sent", "Votre courrier a été envoyé", data, toEmail)
}

// CaseLink returns the client-facing URL of a case
func CaseLink(appURL, caseID string) string {
	return strings.TrimRight(appURL, "/") + "/dossiers/" + caseID
}
