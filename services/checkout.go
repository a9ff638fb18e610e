package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"wearero-api/apperr"
	"wearero-api/models"
	"wearero-api/store"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentProcessor creates charges with an external payment provider
type PaymentProcessor interface {
	CreateIntent(ctx context.Context, amountCents int64, metadata map[string]string) (id, clientSecret string, err error)
}

// ChargeLine is a product priced at checkout with the requested quantity
type ChargeLine struct {
	Product  *models.Product
	Quantity int
}

// ChargeAmount sums max(1, quantity) × effective price and rounds half away from zero to cents.
func ChargeAmount(lines []ChargeLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		qty := l.Quantity
		if qty < 1 {
			qty = 1
		}
		price := decimal.Zero
		if l.Product != nil {
			price = decimal.NewFromFloat(l.Product.EffectivePrice())
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total.Round(2)
}

// CheckoutService bridges carts to the payment processor
type CheckoutService struct {
	products  store.ProductStore
	processor PaymentProcessor
	log       logrus.FieldLogger
}

// NewCheckoutService creates a CheckoutService. A nil processor means payments are not configured.
func NewCheckoutService(products store.ProductStore, processor PaymentProcessor, log logrus.FieldLogger) *CheckoutService {
	return &CheckoutService{products: products, processor: processor, log: log}
}

// CreatePaymentIntent prices the requested products from the catalog and opens a charge for them.
func (s *CheckoutService) CreatePaymentIntent(ctx context.Context, userID primitive.ObjectID, items []models.CheckoutItem) (*models.PaymentIntent, error) {
	if s.processor == nil {
		return nil, apperr.New(apperr.ServiceUnavailable, "Payment processing is not configured")
	}
	if len(items) == 0 {
		return nil, apperr.Validationf("No products provided")
	}

	lines := make([]ChargeLine, 0, len(items))
	for _, item := range items {
		p, err := s.products.FindByID(ctx, item.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFoundf("Product %s not found", item.ProductID.Hex())
		}
		if err != nil {
			return nil, fmt.Errorf("find product: %w", err)
		}
		lines = append(lines, ChargeLine{Product: p, Quantity: item.Quantity})
	}

	amount := ChargeAmount(lines)
	cents := amount.Shift(2).IntPart()
	metadata := map[string]string{
		"userId":    userID.Hex(),
		"total":     amount.StringFixed(2),
		"itemCount": strconv.Itoa(len(items)),
	}

	id, secret, err := s.processor.CreateIntent(ctx, cents, metadata)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"userId":          userID.Hex(),
		"paymentIntentId": id,
		"amountCents":     cents,
	}).Info("payment intent created")

	return &models.PaymentIntent{
		ID:           id,
		ClientSecret: secret,
		Amount:       amount.InexactFloat64(),
	}, nil
}
