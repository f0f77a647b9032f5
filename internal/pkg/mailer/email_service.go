package mailer

import (
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"
)

// FailedOperation is one row of a sync failure report.
type FailedOperation struct {
	Kind    string
	Message string
}

// SyncReport summarizes a finished sync run.
type SyncReport struct {
	CompanyCode string
	CompanyName string
	Ticket      string
	Total       int64
	Failed      []FailedOperation
}

type IEmailService interface {
	SendSyncFailureReport(toEmail string, report SyncReport) error
}

// sender is the part of gomail.Dialer the service uses.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer      sender
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

func (s *emailService) SendSyncFailureReport(toEmail string, report SyncReport) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("QuickBooks sync for %s: %d of %d operations failed",
		report.CompanyCode, len(report.Failed), report.Total))
	m.SetBody("text/html", renderReport(report))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send sync report to %s: %w", toEmail, err)
	}
	return nil
}

func renderReport(r SyncReport) string {
	var rows strings.Builder
	for _, f := range r.Failed {
		fmt.Fprintf(&rows, `<tr><td style="padding: 4px 8px;">%s</td><td style="padding: 4px 8px;">%s</td></tr>`,
			html.EscapeString(f.Kind), html.EscapeString(f.Message))
	}
	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>QuickBooks sync finished with errors</h2>
			<p>Company: <strong>%s</strong> (%s)</p>
			<p>Session: <code>%s</code></p>
			<p>%d of %d operations failed:</p>
			<table style="border-collapse: collapse;">%s</table>
		</div>
	`, html.EscapeString(r.CompanyName), html.EscapeString(r.CompanyCode), html.EscapeString(r.Ticket),
		len(r.Failed), r.Total, rows.String())
}
