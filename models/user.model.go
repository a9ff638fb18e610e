package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role values
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents a user in the system
type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name      string               `bson:"name" json:"name"`
	Email     string               `bson:"email" json:"email"`
	Password  string               `bson:"password" json:"-"`
	Role      string               `bson:"role" json:"role"` // "customer" or "admin"
	Wishlist  []primitive.ObjectID `bson:"wishlist" json:"wishlist"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRole reports whether role is one of the recognized roles
func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleAdmin
}

// NormalizeRole maps any unrecognized role to customer
func NormalizeRole(role string) string {
	if ValidRole(role) {
		return role
	}
	return RoleCustomer
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
