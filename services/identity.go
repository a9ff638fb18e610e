package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"wearero-api/apperr"
	"wearero-api/models"
	"wearero-api/store"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

// TokenIssuer signs bearer tokens for a user
type TokenIssuer interface {
	Generate(userID primitive.ObjectID, role string) (string, error)
}

// RegisterInput is the self-service sign-up payload
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	GuestID  string `json:"guestId"`
}

// LoginInput is the sign-in payload
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	GuestID  string `json:"guestId"`
}

// AuthResult is returned on register and login
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// ProfileUpdate holds the fields a user may change on their own account
type ProfileUpdate struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserInput is the admin payload to create a user
type UserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserUpdate is the admin payload to edit a user. Nil fields are left unchanged.
type UserUpdate struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

// IdentityService manages accounts, credentials and wishlists
type IdentityService struct {
	users    store.UserStore
	products store.ProductStore
	carts    store.CartStore
	cart     *CartService
	tokens   TokenIssuer
	log      logrus.FieldLogger
	hashCost int

	dummyHash []byte
}

// NewIdentityService creates an IdentityService
func NewIdentityService(users store.UserStore, products store.ProductStore, carts store.CartStore, cart *CartService, tokens TokenIssuer, log logrus.FieldLogger) *IdentityService {
	s := &IdentityService{
		users:    users,
		products: products,
		carts:    carts,
		cart:     cart,
		tokens:   tokens,
		log:      log,
		hashCost: bcrypt.DefaultCost,
	}
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("wearero-dummy-password"), s.hashCost)
	return s
}

// SetHashCost changes the bcrypt cost used for new hashes
func (s *IdentityService) SetHashCost(cost int) {
	s.hashCost = cost
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("wearero-dummy-password"), cost)
}

// Register creates a customer account and signs the user in.
// Unrecognized roles are normalized to customer.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	user := &models.User{
		Name:  strings.TrimSpace(in.Name),
		Email: models.NormalizeEmail(in.Email),
		Role:  models.NormalizeRole(in.Role),
	}
	if err := s.validateAccount(user.Name, user.Email, in.Password); err != nil {
		return nil, err
	}
	if err := s.insertUser(ctx, user, in.Password); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"userId": user.ID.Hex(), "role": user.Role}).Info("user registered")

	s.mergeGuestCart(ctx, in.GuestID, user.ID)
	return s.authResult(user)
}

// Login checks credentials. An unknown email and a wrong password fail identically.
func (s *IdentityService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	invalid := apperr.New(apperr.InvalidCredentials, "Invalid credentials")

	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrNotFound) {
		// keep timing close to the wrong-password path
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(in.Password))
		return nil, invalid
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, invalid
	}

	s.mergeGuestCart(ctx, in.GuestID, user.ID)
	return s.authResult(user)
}

// Profile returns the user's own record
func (s *IdentityService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return s.findUser(ctx, userID)
}

// UpdateProfile changes the caller's name, email or password. Empty fields are left as they are.
func (s *IdentityService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in ProfileUpdate) (*models.User, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}
	if in.Email != "" {
		email := models.NormalizeEmail(in.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, apperr.Validationf("Invalid email address")
		}
		user.Email = email
	}
	if in.Password != "" {
		if len(in.Password) < MinPasswordLength {
			return nil, apperr.Validationf("Password must be at least %d characters", MinPasswordLength)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = string(hash)
	}
	if err := s.saveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns every account
func (s *IdentityService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// CreateUser is the admin path to add an account. The role must be a recognized value.
func (s *IdentityService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	role := in.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if !models.ValidRole(role) {
		return nil, apperr.Validationf("Invalid role")
	}
	user := &models.User{
		Name:  strings.TrimSpace(in.Name),
		Email: models.NormalizeEmail(in.Email),
		Role:  role,
	}
	if err := s.validateAccount(user.Name, user.Email, in.Password); err != nil {
		return nil, err
	}
	if err := s.insertUser(ctx, user, in.Password); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser is the admin path to edit name, email or role
func (s *IdentityService) UpdateUser(ctx context.Context, userID primitive.ObjectID, in UserUpdate) (*models.User, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil && *in.Email != "" {
		email := models.NormalizeEmail(*in.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, apperr.Validationf("Invalid email address")
		}
		user.Email = email
	}
	if in.Role != nil {
		if !models.ValidRole(*in.Role) {
			return nil, apperr.Validationf("Invalid role")
		}
		user.Role = *in.Role
	}
	if err := s.saveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account and, best-effort, its cart
func (s *IdentityService) DeleteUser(ctx context.Context, userID primitive.ObjectID) error {
	err := s.users.Delete(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFoundf("User not found")
	}
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := s.carts.DeleteByUser(ctx, userID); err != nil {
		s.log.WithError(err).WithField("userId", userID.Hex()).Warn("user deleted but cart could not be removed")
	}
	return nil
}

// Wishlist returns the products on the user's wishlist. Products deleted since are skipped.
func (s *IdentityService) Wishlist(ctx context.Context, userID primitive.ObjectID) ([]models.Product, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(user.Wishlist))
	for _, id := range user.Wishlist {
		p, err := s.products.FindByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("find product: %w", err)
		}
		products = append(products, *p)
	}
	return products, nil
}

// AddToWishlist adds a product to the user's wishlist; adding twice keeps one entry
func (s *IdentityService) AddToWishlist(ctx context.Context, userID, productID primitive.ObjectID) error {
	if _, err := s.products.FindByID(ctx, productID); errors.Is(err, store.ErrNotFound) {
		return apperr.NotFoundf("Product not found")
	} else if err != nil {
		return fmt.Errorf("find product: %w", err)
	}
	return s.wishlistErr(s.users.AddToWishlist(ctx, userID, productID))
}

// RemoveFromWishlist removes a product from the user's wishlist
func (s *IdentityService) RemoveFromWishlist(ctx context.Context, userID, productID primitive.ObjectID) error {
	return s.wishlistErr(s.users.RemoveFromWishlist(ctx, userID, productID))
}

func (s *IdentityService) wishlistErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFoundf("User not found")
	}
	if err != nil {
		return fmt.Errorf("update wishlist: %w", err)
	}
	return nil
}

func (s *IdentityService) validateAccount(name, email, password string) error {
	if name == "" || email == "" || password == "" {
		return apperr.Validationf("Name, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperr.Validationf("Invalid email address")
	}
	if len(password) < MinPasswordLength {
		return apperr.Validationf("Password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

func (s *IdentityService) insertUser(ctx context.Context, user *models.User, password string) error {
	if _, err := s.users.FindByEmail(ctx, user.Email); err == nil {
		return apperr.New(apperr.Conflict, "User already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("find user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hash)

	if err := s.users.Insert(ctx, user); err != nil {
		// lost a race with a concurrent sign-up on the unique index
		if errors.Is(err, store.ErrDuplicate) {
			return apperr.New(apperr.Conflict, "User already exists")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *IdentityService) saveUser(ctx context.Context, user *models.User) error {
	err := s.users.Update(ctx, user)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return apperr.New(apperr.Conflict, "Email already in use")
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFoundf("User not found")
	case err != nil:
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (s *IdentityService) findUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFoundf("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *IdentityService) mergeGuestCart(ctx context.Context, guestID string, userID primitive.ObjectID) {
	if guestID == "" || s.cart == nil {
		return
	}
	if _, err := s.cart.Merge(ctx, guestID, userID); err != nil {
		s.log.WithError(err).WithField("guestId", guestID).Warn("guest cart merge at sign-in failed")
	}
}

func (s *IdentityService) authResult(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
