package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckoutItem is a product and quantity requested at checkout
type CheckoutItem struct {
	ProductID primitive.ObjectID `json:"productId"`
	Quantity  int                `json:"quantity"`
}

// PaymentIntent is the client-usable handle returned by the payment processor
type PaymentIntent struct {
	ID           string  `json:"paymentIntentId"`
	ClientSecret string  `json:"clientSecret"`
	Amount       float64 `json:"amount"`
}
