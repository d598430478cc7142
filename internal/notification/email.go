package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPNotifier sends the approval/rejection mail through a plain SMTP relay.
type SMTPNotifier struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTPNotifier configures the mail sender. Auth is optional; relays that
// accept unauthenticated submission from the service network work too.
func NewSMTPNotifier(host string, port int, username, password, from string) *SMTPNotifier {
	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPNotifier{addr: fmt.Sprintf("%s:%d", host, port), auth: auth, from: from}
}

// NotifyStatusChange formats and sends the status mail.
func (n *SMTPNotifier) NotifyStatusChange(_ context.Context, change StatusChange) error {
	if change.Email == "" {
		return fmt.Errorf("no recipient email for user %s", change.UserID)
	}

	subject := "Wallet Top-up Rejected"
	if change.Status == "approved" {
		subject = "Wallet Top-up Approved"
	}

	name := change.Name
	if name == "" {
		name = "User"
	}
	currency := change.Currency
	if currency == "" {
		currency = "USD"
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\r\n\r\n", name)
	fmt.Fprintf(&body, "Your wallet top-up request has been %s.\r\n\r\n", strings.ToUpper(change.Status))
	if change.PaymentMethod != "" {
		fmt.Fprintf(&body, "Payment Method: %s\r\n", change.PaymentMethod)
	}
	fmt.Fprintf(&body, "Amount: %s %s\r\n", formatAmount(change.Amount), currency)
	fmt.Fprintf(&body, "Status: %s\r\n", change.Status)
	if change.Notes != "" {
		fmt.Fprintf(&body, "Admin Notes: %s\r\n", change.Notes)
	}
	body.WriteString("\r\nThank you for using EvenOddPro.\r\n")

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		n.from, change.Email, subject, body.String())

	return smtp.SendMail(n.addr, n.auth, n.from, []string{change.Email}, []byte(msg))
}

// formatAmount renders minor units as a decimal string, e.g. 12345 -> "123.45".
func formatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
