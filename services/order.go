package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wearero-api/apperr"
	"wearero-api/models"
	"wearero-api/store"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mailer sends transactional emails about orders
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, user *models.User, order *models.Order) error
}

// PlaceOrderInput is the checkout payload turned into an order
type PlaceOrderInput struct {
	OrderItems      []models.OrderItem     `json:"orderItems"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	TotalPrice      float64                `json:"totalPrice"`
	PaymentIntentID string                 `json:"paymentIntentId"`
}

// OrderService implements the order aggregate
type OrderService struct {
	orders store.OrderStore
	carts  store.CartStore
	users  store.UserStore
	mailer Mailer
	log    logrus.FieldLogger
	now    func() time.Time
}

// NewOrderService creates an OrderService. mailer may be nil.
func NewOrderService(orders store.OrderStore, carts store.CartStore, users store.UserStore, mailer Mailer, log logrus.FieldLogger) *OrderService {
	return &OrderService{
		orders: orders,
		carts:  carts,
		users:  users,
		mailer: mailer,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Place stores a new order for the user and then clears the user's cart.
// Clearing the cart is best-effort: a failure is logged and the order still stands.
func (s *OrderService) Place(ctx context.Context, userID primitive.ObjectID, in PlaceOrderInput) (*models.Order, error) {
	if len(in.OrderItems) == 0 {
		return nil, apperr.Validationf("No order items")
	}
	for _, item := range in.OrderItems {
		if item.ProductID.IsZero() || item.Quantity < 1 {
			return nil, apperr.Validationf("Each order item needs a product and a positive quantity")
		}
	}

	items := make([]models.OrderItem, len(in.OrderItems))
	copy(items, in.OrderItems)

	order := &models.Order{
		User:            userID,
		OrderItems:      items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		TotalPrice:      in.TotalPrice,
		PaymentStatus:   models.PaymentPending,
		PaymentIntentID: in.PaymentIntentID,
		Status:          models.StatusProcessing,
	}
	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	log := s.log.WithFields(logrus.Fields{"orderId": order.ID.Hex(), "userId": userID.Hex()})
	if err := s.carts.DeleteByUser(ctx, userID); err != nil {
		log.WithError(err).Warn("order placed but cart could not be cleared")
	}
	log.WithField("total", order.TotalPrice).Info("order placed")

	if s.mailer != nil {
		go s.sendConfirmation(userID, *order)
	}
	return order, nil
}

func (s *OrderService) sendConfirmation(userID primitive.ObjectID, order models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	log := s.log.WithField("orderId", order.ID.Hex())
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		log.WithError(err).Warn("confirmation email skipped: user lookup failed")
		return
	}
	if err := s.mailer.SendOrderConfirmation(ctx, user, &order); err != nil {
		log.WithError(err).Warn("confirmation email failed")
	}
}

// ListForUser returns the user's orders, newest first
func (s *OrderService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Get returns one order. Only its owner or an admin may see it.
func (s *OrderService) Get(ctx context.Context, orderID, requesterID primitive.ObjectID, isAdmin bool) (*models.Order, error) {
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.User != requesterID {
		return nil, apperr.NotFoundf("Order not found")
	}
	return order, nil
}

// ListAll returns every order newest first with owner name and email
func (s *OrderService) ListAll(ctx context.Context) ([]models.OrderWithOwner, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus sets the delivery status. Only Delivered touches the paid and delivered
// fields, and no status clears them.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, status string) (*models.Order, error) {
	if !models.ValidStatus(status) {
		return nil, apperr.Validationf("Invalid order status")
	}
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if status == models.StatusDelivered {
		order.MarkDelivered(s.now())
	} else {
		order.Status = status
	}

	if err := s.orders.Update(ctx, order); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFoundf("Order not found")
		}
		return nil, fmt.Errorf("update order: %w", err)
	}
	s.log.WithFields(logrus.Fields{"orderId": orderID.Hex(), "status": status}).Info("order status updated")
	return order, nil
}

// Delete removes an order permanently
func (s *OrderService) Delete(ctx context.Context, orderID primitive.ObjectID) error {
	err := s.orders.Delete(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFoundf("Order not found")
	}
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

// ApplyPaymentEvent records the processor's verdict on every order tied to the payment intent.
func (s *OrderService) ApplyPaymentEvent(ctx context.Context, intentID string, succeeded bool) (int64, error) {
	if intentID == "" {
		return 0, apperr.Validationf("Missing payment intent")
	}
	status := models.PaymentFailed
	var paidAt *time.Time
	if succeeded {
		now := s.now()
		status, paidAt = models.PaymentPaid, &now
	}
	n, err := s.orders.SetPaymentStatus(ctx, intentID, status, paidAt)
	if err != nil {
		return 0, fmt.Errorf("set payment status: %w", err)
	}
	return n, nil
}

func (s *OrderService) find(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFoundf("Order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return order, nil
}
