package controllers

import (
	"context"
	"io"
	"net/http"

	"wearero-api/apperr"
	"wearero-api/models"
	"wearero-api/payments"
	"wearero-api/services"
	"wearero-api/utils"

	"github.com/sirupsen/logrus"
)

// maxWebhookBody caps the payload read from the payment processor
const maxWebhookBody = 64 << 10

// WebhookVerifier authenticates and decodes processor webhooks
type WebhookVerifier interface {
	Verify(payload []byte, signature string) (*payments.PaymentEvent, error)
}

// PaymentEventHandler applies a verified payment outcome to orders
type PaymentEventHandler interface {
	ApplyPaymentEvent(ctx context.Context, intentID string, succeeded bool) (int64, error)
}

// CheckoutController bridges carts to the payment processor
type CheckoutController struct {
	checkout *services.CheckoutService
	events   PaymentEventHandler
	verifier WebhookVerifier
	log      logrus.FieldLogger
}

// NewCheckoutController creates a new CheckoutController. A nil verifier disables the webhook.
func NewCheckoutController(checkout *services.CheckoutService, events PaymentEventHandler, verifier WebhookVerifier, log logrus.FieldLogger) *CheckoutController {
	return &CheckoutController{checkout: checkout, events: events, verifier: verifier, log: log}
}

type paymentIntentRequest struct {
	Products []models.CheckoutItem `json:"products"`
}

// CreatePaymentIntent prices the requested products and opens a payment intent
func (cc *CheckoutController) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		utils.RespondError(w, cc.log, err)
		return
	}
	limitBody(w, r)
	var req paymentIntentRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, cc.log, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	intent, err := cc.checkout.CreatePaymentIntent(ctx, userID, req.Products)
	if err != nil {
		utils.RespondError(w, cc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, intent)
}

// Webhook receives signed payment events. Any verification failure rejects the whole request.
func (cc *CheckoutController) Webhook(w http.ResponseWriter, r *http.Request) {
	if cc.verifier == nil {
		utils.RespondError(w, cc.log, apperr.New(apperr.ServiceUnavailable, "Payment webhook is not configured"))
		return
	}
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		utils.RespondMessage(w, http.StatusBadRequest, "Unable to read request body")
		return
	}

	event, err := cc.verifier.Verify(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		cc.log.WithError(err).Warn("webhook rejected")
		utils.RespondMessage(w, http.StatusBadRequest, "Webhook signature verification failed")
		return
	}

	log := cc.log.WithFields(logrus.Fields{"eventId": event.ID, "type": event.Type})
	if !event.Relevant() {
		log.Debug("webhook event ignored")
		utils.RespondJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	n, err := cc.events.ApplyPaymentEvent(ctx, event.IntentID, event.Succeeded)
	if err != nil {
		utils.RespondError(w, cc.log, err)
		return
	}
	log.WithFields(logrus.Fields{"paymentIntentId": event.IntentID, "orders": n}).Info("payment event applied")
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"received": true})
}
