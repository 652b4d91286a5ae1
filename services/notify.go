package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"nursery_app_backend/config"
)

// Notification template names.
const (
	TemplateEnrollmentReceived = "enrollment_received"
	TemplateEnrollmentApproved = "enrollment_approved"
	TemplateEnrollmentRejected = "enrollment_rejected"
)

// Notifier delivers best-effort emails. Implementations must never be
// called before the surrounding transaction commits; a failed send is
// reported to the caller as a plain error and goes no further than a
// log line and a notified=false flag.
type Notifier interface {
	Send(to, template string, data map[string]any) error
}

// SMTPNotifier sends plain-text mail over SMTP with PLAIN auth.
type SMTPNotifier struct {
	host string
	port string
	user string
	pass string
	from string
}

func NewSMTPNotifier(cfg *config.Config) *SMTPNotifier {
	return &SMTPNotifier{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.SMTPFrom,
	}
}

func (n *SMTPNotifier) Send(to, template string, data map[string]any) error {
	subject, body, err := renderTemplate(template, data)
	if err != nil {
		return err
	}

	msg := strings.Join([]string{
		"From: " + n.from,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if n.user != "" {
		auth = smtp.PlainAuth("", n.user, n.pass, n.host)
	}
	return smtp.SendMail(n.host+":"+n.port, auth, n.from, []string{to}, []byte(msg))
}

func renderTemplate(template string, data map[string]any) (subject, body string, err error) {
	child := fmt.Sprint(data["child_name"])
	guardian := fmt.Sprint(data["guardian_name"])

	switch template {
	case TemplateEnrollmentReceived:
		subject = "Enrollment request received"
		body = fmt.Sprintf("Dear %s,\n\nWe received the enrollment request for %s. "+
			"Our team will review it and get back to you.\n\nThe nursery team", guardian, child)
	case TemplateEnrollmentApproved:
		subject = "Enrollment approved"
		body = fmt.Sprintf("Dear %s,\n\nThe enrollment request for %s has been approved.", guardian, child)
		if appt, ok := data["appointment_date"]; ok && fmt.Sprint(appt) != "" {
			body += fmt.Sprintf("\nYour welcome appointment is scheduled for %v", appt)
			if at, ok := data["appointment_time"]; ok && fmt.Sprint(at) != "" {
				body += fmt.Sprintf(" at %v", at)
			}
			body += "."
		}
		body += "\n\nYour account is now active and you can sign in.\n\nThe nursery team"
	case TemplateEnrollmentRejected:
		subject = "Enrollment decision"
		body = fmt.Sprintf("Dear %s,\n\nWe are sorry to inform you that the enrollment "+
			"request for %s could not be accepted.", guardian, child)
		if reason, ok := data["reason"]; ok && fmt.Sprint(reason) != "" {
			body += fmt.Sprintf("\nReason: %v", reason)
		}
		body += "\n\nThe nursery team"
	default:
		return "", "", fmt.Errorf("unknown notification template %q", template)
	}
	return subject, body, nil
}

// logNotifier stands in when SMTP is not configured.
type logNotifier struct{}

func (logNotifier) Send(to, template string, data map[string]any) error {
	log.Printf("notification (no SMTP configured): to=%s template=%s", to, template)
	return nil
}

// NewNotifier picks the SMTP notifier when a host is configured and the
// logging fallback otherwise.
func NewNotifier(cfg *config.Config) Notifier {
	if cfg.SMTPHost == "" {
		return logNotifier{}
	}
	return NewSMTPNotifier(cfg)
}

// notify sends one notification and reports whether it was delivered.
// Failures are logged only; they must never unwind a committed change.
func notify(n Notifier, to, template string, data map[string]any) bool {
	if n == nil {
		return false
	}
	if err := n.Send(to, template, data); err != nil {
		log.Printf("Error sending %s notification to %s: %v", template, to, err)
		return false
	}
	return true
}
