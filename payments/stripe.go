package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/webhook"
)

// Stripe event types the webhook acts on
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

// ErrBadSignature is returned when a webhook payload fails verification
var ErrBadSignature = errors.New("invalid webhook signature")

// StripeProcessor creates payment intents through the Stripe API
type StripeProcessor struct {
	intents  *paymentintent.Client
	currency string
}

// NewStripeProcessor creates a StripeProcessor bound to the given secret key
func NewStripeProcessor(secretKey, currency string) (*StripeProcessor, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key is empty")
	}
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &StripeProcessor{
		intents:  &paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		currency: strings.ToLower(currency),
	}, nil
}

// CreateIntent opens a payment intent for amountCents with automatic payment methods enabled
func (p *StripeProcessor) CreateIntent(ctx context.Context, amountCents int64, metadata map[string]string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(p.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	intent, err := p.intents.New(params)
	if err != nil {
		return "", "", fmt.Errorf("stripe: %w", err)
	}
	return intent.ID, intent.ClientSecret, nil
}

// PaymentEvent is the part of a verified webhook event the shop cares about
type PaymentEvent struct {
	ID        string
	Type      string
	IntentID  string
	Succeeded bool
}

// Relevant reports whether the event changes the payment state of an order
func (e *PaymentEvent) Relevant() bool {
	return e.Type == EventIntentSucceeded || e.Type == EventIntentFailed
}

// WebhookVerifier checks Stripe-Signature headers against the endpoint secret
type WebhookVerifier struct {
	secret string
}

// NewWebhookVerifier creates a WebhookVerifier
func NewWebhookVerifier(secret string) (*WebhookVerifier, error) {
	if secret == "" {
		return nil, errors.New("stripe webhook secret is empty")
	}
	return &WebhookVerifier{secret: secret}, nil
}

// Verify validates the signature and decodes the event
func (v *WebhookVerifier) Verify(payload []byte, signature string) (*PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	out := &PaymentEvent{ID: event.ID, Type: string(event.Type)}
	if !out.Relevant() || event.Data == nil {
		return out, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("decode payment intent: %w", err)
	}
	out.IntentID = pi.ID
	out.Succeeded = out.Type == EventIntentSucceeded
	return out, nil
}
