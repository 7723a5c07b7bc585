// Package mailer renders and delivers account emails.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

const VerificationSubject = "Gatherly verification email"

type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, username, code string) error
}

var verificationTmpl = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Email Verification</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background-color: #ffffff; padding: 40px; border-radius: 8px;">
      <h1 style="color: #333333; text-align: center; font-size: 24px;">Email Verification</h1>
      <p style="font-size: 16px; color: #555555;">{{if .Username}}Hello {{.Username}},{{else}}Hello,{{end}}</p>
      <p style="font-size: 16px; color: #555555;">Thank you for signing up! Please use the verification code below to complete your registration.</p>
      <div style="text-align: center; margin: 30px 0; padding: 20px; background-color: #f8f9fa; border: 2px solid #e9ecef; border-radius: 8px;">
        <p style="font-size: 14px; color: #666666;">Your verification code is:</p>
        <p style="font-size: 32px; font-weight: bold; letter-spacing: 8px; color: #333333;">{{.Code}}</p>
      </div>
      <p style="font-size: 14px; color: #888888;">This code expires in one hour. If you did not request this code, you can ignore this email.</p>
    </div>
  </div>
</body>
</html>`))

func RenderVerificationEmail(username, code string) (string, error) {
	var buf bytes.Buffer
	err := verificationTmpl.Execute(&buf, struct{ Username, Code string }{username, code})
	if err != nil {
		return "", fmt.Errorf("failed to render verification email: %w", err)
	}
	return buf.String(), nil
}

type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey), from: from}
}

func (m *ResendMailer) SendVerificationEmail(ctx context.Context, to, username, code string) error {
	html, err := RenderVerificationEmail(username, code)
	if err != nil {
		return err
	}
	_, err = m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: VerificationSubject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// LogMailer writes codes to the log instead of sending them. It is used
// when no email provider is configured.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendVerificationEmail(ctx context.Context, to, username, code string) error {
	m.logger.Info("Verification email not sent, no provider configured",
		"to", to,
		"username", username,
		"code", code,
	)
	return nil
}
