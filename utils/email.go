package utils

import (
	"context"
	"fmt"
	"html"
	"strings"

	"wearero-api/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

const senderName = "Wearero"

// EmailService handles sending emails using SendGrid
type EmailService struct {
	client *sendgrid.Client
	from   *mail.Email
	log    logrus.FieldLogger
}

// NewEmailService initializes and returns a new EmailService instance
func NewEmailService(apiKey, sender string, log logrus.FieldLogger) (*EmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("sendgrid api key is empty")
	}
	if sender == "" {
		return nil, fmt.Errorf("email sender is empty")
	}
	return &EmailService{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(senderName, sender),
		log:    log,
	}, nil
}

// SendEmail sends an HTML email with a plain-text fallback
func (es *EmailService) SendEmail(ctx context.Context, toName, toEmail, subject, plain, htmlContent string) error {
	msg := mail.NewSingleEmail(es.from, subject, mail.NewEmail(toName, toEmail), plain, htmlContent)
	resp, err := es.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("failed to send email: sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	es.log.WithFields(logrus.Fields{"to": toEmail, "subject": subject}).Debug("email sent")
	return nil
}

// SendOrderConfirmation sends an order confirmation email to the user
func (es *EmailService) SendOrderConfirmation(ctx context.Context, user *models.User, order *models.Order) error {
	subject, plain, htmlContent := OrderConfirmation(user, order)
	return es.SendEmail(ctx, user.Name, user.Email, subject, plain, htmlContent)
}

// OrderConfirmation renders the subject and bodies of an order confirmation
func OrderConfirmation(user *models.User, order *models.Order) (subject, plain, htmlContent string) {
	subject = fmt.Sprintf("Your Wearero order %s", order.ID.Hex())

	var text, rich strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\nThank you for your purchase! Your order %s has been placed.\n\n", user.Name, order.ID.Hex())
	fmt.Fprintf(&rich, "<p>Hi %s,</p><p>Thank you for your purchase! Your order <strong>%s</strong> has been placed.</p><ul>",
		html.EscapeString(user.Name), order.ID.Hex())
	for _, item := range order.OrderItems {
		fmt.Fprintf(&text, "- %s x%d  $%.2f\n", item.Name, item.Quantity, item.Price)
		fmt.Fprintf(&rich, "<li>%s &times; %d &mdash; $%.2f</li>", html.EscapeString(item.Name), item.Quantity, item.Price)
	}
	a := order.ShippingAddress
	fmt.Fprintf(&text, "\nTotal: $%.2f\nShipping to: %s, %s %s, %s\n", order.TotalPrice, a.Address, a.City, a.PostalCode, a.Country)
	fmt.Fprintf(&rich, "</ul><p>Total: <strong>$%.2f</strong></p><p>Shipping to: %s, %s %s, %s</p>",
		order.TotalPrice,
		html.EscapeString(a.Address), html.EscapeString(a.City), html.EscapeString(a.PostalCode), html.EscapeString(a.Country))

	return subject, text.String(), rich.String()
}
