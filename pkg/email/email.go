package email

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"
	"text/template"

	"flowrk-backend/config"
	"flowrk-backend/internal/domain"
)

// ContactMailer forwards contact form messages to the support inbox over SMTP.
type ContactMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	to       string
	siteName string
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewContactMailer(cfg *config.Config) *ContactMailer {
	return &ContactMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPUsername,
		to:       cfg.ContactEmailTo,
		siteName: cfg.SiteName,
		send:     smtp.SendMail,
	}
}

var contactTemplate = template.Must(template.New("contact").Parse(`New message from the {{.Site}} contact form

From:    {{.Msg.Name}} <{{.Msg.Email}}>
Subject: {{.Subject}}
Sent:    {{.Msg.CreatedAt}}

{{.Msg.Message}}
`))

func (m *ContactMailer) IsConfigured() bool {
	return m.host != "" && m.username != "" && m.password != "" && m.to != ""
}

func (m *ContactMailer) SendContactEmail(msg domain.ContactMessage) error {
	subject := msg.Subject
	if subject == "" {
		subject = "General enquiry"
	}

	var body bytes.Buffer
	err := contactTemplate.Execute(&body, struct {
		Site    string
		Subject string
		Msg     domain.ContactMessage
	}{m.siteName, subject, msg})
	if err != nil {
		return fmt.Errorf("render contact email: %w", err)
	}

	raw := []byte(strings.Join([]string{
		"From: " + m.from,
		"To: " + m.to,
		"Reply-To: " + headerSafe(msg.Email),
		"Subject: " + headerSafe(fmt.Sprintf("[%s] %s", m.siteName, subject)),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body.String(),
	}, "\r\n"))

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := m.send(m.host+":"+m.port, auth, m.from, []string{m.to}, raw); err != nil {
		return fmt.Errorf("send contact email: %w", err)
	}
	return nil
}

// headerSafe drops CR and LF so user input cannot inject headers.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", "", "\n", " ").Replace(s)
}
