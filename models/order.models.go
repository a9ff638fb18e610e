package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order delivery statuses
const (
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"
	StatusCancelled  = "Cancelled"
)

// Payment statuses
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// ValidStatus reports whether s is a known delivery status
func ValidStatus(s string) bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// OrderItem is a line copied from the cart when the order is placed
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image" json:"image"`
	Price     float64            `bson:"price" json:"price"`
	Size      string             `bson:"size,omitempty" json:"size,omitempty"`
	Color     string             `bson:"color,omitempty" json:"color,omitempty"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// ShippingAddress represents the delivery address of an order
type ShippingAddress struct {
	Address    string `bson:"address" json:"address"`
	City       string `bson:"city" json:"city"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	Country    string `bson:"country" json:"country"`
}

// Order represents a user's order
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User            primitive.ObjectID `bson:"user" json:"user"`
	OrderItems      []OrderItem        `bson:"orderItems" json:"orderItems"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	TotalPrice      float64            `bson:"totalPrice" json:"totalPrice"`
	IsPaid          bool               `bson:"isPaid" json:"isPaid"`
	PaidAt          *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	PaymentStatus   string             `bson:"paymentStatus" json:"paymentStatus"`
	PaymentIntentID string             `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	IsDelivered     bool               `bson:"isDelivered" json:"isDelivered"`
	DeliveredAt     *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	Status          string             `bson:"status" json:"status"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OrderOwner is the user summary joined into admin order listings
type OrderOwner struct {
	ID    primitive.ObjectID `bson:"_id" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
}

// OrderWithOwner is an order with its owner's name and email
type OrderWithOwner struct {
	Order `bson:",inline"`
	Owner *OrderOwner `bson:"owner,omitempty" json:"owner,omitempty"`
}

// MarkDelivered sets the delivered and paid flags. Existing timestamps are kept.
func (o *Order) MarkDelivered(now time.Time) {
	o.Status = StatusDelivered
	o.IsDelivered = true
	o.DeliveredAt = &now
	o.MarkPaid(now)
}

// MarkPaid records a successful payment
func (o *Order) MarkPaid(now time.Time) {
	o.IsPaid = true
	o.PaymentStatus = PaymentPaid
	if o.PaidAt == nil {
		o.PaidAt = &now
	}
}
