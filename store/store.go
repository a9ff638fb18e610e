// Package store persists the storefront's documents. Each entity lives in its own collection.
package store

import (
	"context"
	"errors"
	"time"

	"wearero-api/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no document matches.
	ErrNotFound = errors.New("store: document not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("store: duplicate key")
)

// ProductStore persists catalog products
type ProductStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Find(ctx context.Context, q ProductQuery) ([]models.Product, error)
	BestSeller(ctx context.Context) (*models.Product, error)
	NewArrivals(ctx context.Context, limit int) ([]models.Product, error)
	Similar(ctx context.Context, p *models.Product, limit int) ([]models.Product, error)
	Insert(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UserStore persists user accounts
type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Insert(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddToWishlist(ctx context.Context, userID, productID primitive.ObjectID) error
	RemoveFromWishlist(ctx context.Context, userID, productID primitive.ObjectID) error
}

// CartStore persists carts
type CartStore interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	FindByGuest(ctx context.Context, guestID string) (*models.Cart, error)
	// Save inserts the cart when its ID is zero and replaces it otherwise.
	Save(ctx context.Context, c *models.Cart) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

// OrderStore persists orders
type OrderStore interface {
	Insert(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.OrderWithOwner, error)
	Update(ctx context.Context, o *models.Order) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// SetPaymentStatus updates every order carrying the payment intent and returns how many matched.
	SetPaymentStatus(ctx context.Context, intentID, status string, paidAt *time.Time) (int64, error)
}
