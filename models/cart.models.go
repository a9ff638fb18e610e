package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem represents a line in the cart. A line is identified by product, size and color.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image" json:"image"`
	Price     float64            `bson:"price" json:"price"`
	Size      string             `bson:"size" json:"size"`
	Color     string             `bson:"color" json:"color"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Matches reports whether the item is the line for (productID, size, color)
func (i CartItem) Matches(productID primitive.ObjectID, size, color string) bool {
	return i.ProductID == productID && i.Size == size && i.Color == color
}

// Cart represents a shopper's cart. Exactly one of User and GuestID is set.
type Cart struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	User       *primitive.ObjectID `bson:"user,omitempty" json:"user,omitempty"`
	GuestID    string              `bson:"guestId,omitempty" json:"guestId,omitempty"`
	Products   []CartItem          `bson:"products" json:"products"`
	TotalPrice float64             `bson:"totalPrice" json:"totalPrice"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// FindItem returns the index of the matching line, or -1
func (c *Cart) FindItem(productID primitive.ObjectID, size, color string) int {
	for i, item := range c.Products {
		if item.Matches(productID, size, color) {
			return i
		}
	}
	return -1
}
