package service

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/dairydrop/internal/config"
	"github.com/dairydrop/internal/constants"
	"github.com/dairydrop/internal/models"
)

// ErrEmailDisabled is returned when mail is disabled by configuration.
// Callers treat it as non-fatal.
var ErrEmailDisabled = errors.New("email service disabled")

// ErrInvalidEmail is returned for malformed recipient addresses.
var ErrInvalidEmail = errors.New("invalid email address")

// EmailService sends plain-text mail over SMTP with STARTTLS.
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService creates an email service.
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendVerifyCode mails an email verification code.
func (s *EmailService) SendVerifyCode(toEmail, code string) error {
	subject := "Verify your DairyDrop account"
	body := fmt.Sprintf("Your verification code is: %s\n\nThe code expires in 10 minutes. Do not share it.", code)
	return s.sendTextEmail(toEmail, subject, body)
}

// OrderStatusEmailInput describes a status-change notification.
type OrderStatusEmailInput struct {
	OrderNo      string
	Status       string
	Amount       models.Money
	DeliveryDate string
	Shift        string
}

// SendOrderStatusEmail mails an order status notification.
func (s *EmailService) SendOrderStatusEmail(toEmail string, input OrderStatusEmailInput) error {
	subject := fmt.Sprintf("Order %s is %s", input.OrderNo, input.Status)
	var body string
	switch input.Status {
	case constants.OrderStatusConfirmed:
		body = fmt.Sprintf("Your order %s has been confirmed for %s delivery on %s.\nAmount: ₹%s",
			input.OrderNo, input.Shift, input.DeliveryDate, input.Amount.String())
	case constants.OrderStatusDelivered:
		body = fmt.Sprintf("Your order %s has been delivered.\nAmount: ₹%s\nThank you for choosing DairyDrop.",
			input.OrderNo, input.Amount.String())
	case constants.OrderStatusCancelled:
		body = fmt.Sprintf("Your order %s has been cancelled.\nAmount: ₹%s",
			input.OrderNo, input.Amount.String())
	default:
		body = fmt.Sprintf("Your order %s is now %s.\nAmount: ₹%s",
			input.OrderNo, input.Status, input.Amount.String())
	}
	return s.sendTextEmail(toEmail, subject, body)
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailDisabled
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	return sendMailWithStartTLS(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg))
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func sendMailWithStartTLS(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
