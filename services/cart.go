package services

import (
	"context"
	"errors"
	"fmt"

	"wearero-api/apperr"
	"wearero-api/models"
	"wearero-api/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GuestPrefix starts every server-issued guest identifier
const GuestPrefix = "guest_"

// NewGuestID issues an opaque guest identifier
func NewGuestID() string {
	return GuestPrefix + uuid.NewString()
}

// Owner identifies whose cart is addressed. When both are set the user wins.
type Owner struct {
	UserID  *primitive.ObjectID
	GuestID string
}

// IsZero reports whether the owner carries no identity at all
func (o Owner) IsZero() bool {
	return o.UserID == nil && o.GuestID == ""
}

func (o Owner) lockKey() string {
	if o.UserID != nil {
		return userLockKey(*o.UserID)
	}
	return guestLockKey(o.GuestID)
}

func userLockKey(id primitive.ObjectID) string { return "cart:user:" + id.Hex() }
func guestLockKey(id string) string            { return "cart:guest:" + id }

// CartLine names a line item and the quantity to apply to it
type CartLine struct {
	ProductID primitive.ObjectID `json:"productId"`
	Quantity  int                `json:"quantity"`
	Size      string             `json:"size"`
	Color     string             `json:"color"`
}

// CartService implements the cart aggregate
type CartService struct {
	products   store.ProductStore
	carts      store.CartStore
	locker     Locker
	log        logrus.FieldLogger
	newGuestID func() string
}

// NewCartService creates a CartService
func NewCartService(products store.ProductStore, carts store.CartStore, locker Locker, log logrus.FieldLogger) *CartService {
	return &CartService{
		products:   products,
		carts:      carts,
		locker:     locker,
		log:        log,
		newGuestID: NewGuestID,
	}
}

// Get returns the user's cart, else the guest's cart, else nil. A missing cart is not an error.
func (s *CartService) Get(ctx context.Context, owner Owner) (*models.Cart, error) {
	if owner.UserID != nil {
		cart, err := s.carts.FindByUser(ctx, *owner.UserID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("find user cart: %w", err)
		}
	}
	if owner.GuestID != "" {
		cart, err := s.carts.FindByGuest(ctx, owner.GuestID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("find guest cart: %w", err)
		}
	}
	return nil, nil
}

// AddItem adds a product line to the owner's cart, creating the cart on first use.
// The returned flag reports whether a new cart was created.
func (s *CartService) AddItem(ctx context.Context, owner Owner, line CartLine) (*models.Cart, bool, error) {
	product, err := s.products.FindByID(ctx, line.ProductID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false, apperr.NotFoundf("Product not found")
	} else if err != nil {
		return nil, false, fmt.Errorf("find product: %w", err)
	}
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	if owner.UserID == nil && owner.GuestID == "" {
		owner.GuestID = s.newGuestID()
	}

	unlock, err := s.locker.Lock(ctx, owner.lockKey())
	if err != nil {
		return nil, false, fmt.Errorf("lock cart: %w", err)
	}
	defer unlock()

	cart, err := s.Get(ctx, owner)
	if err != nil {
		return nil, false, err
	}

	created := cart == nil
	if created {
		cart = &models.Cart{}
		if owner.UserID != nil {
			cart.User = owner.UserID
		} else {
			cart.GuestID = owner.GuestID
		}
	}

	if i := cart.FindItem(product.ID, line.Size, line.Color); i >= 0 {
		cart.Products[i].Quantity += line.Quantity
	} else {
		cart.Products = append(cart.Products, models.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.FirstImage(),
			Price:     product.EffectivePrice(),
			Size:      line.Size,
			Color:     line.Color,
			Quantity:  line.Quantity,
		})
	}
	RecalculateTotal(cart)

	if err := s.carts.Save(ctx, cart); errors.Is(err, store.ErrDuplicate) {
		return nil, false, apperr.New(apperr.Conflict, "Cart was created by another request, please retry")
	} else if err != nil {
		return nil, false, fmt.Errorf("save cart: %w", err)
	}
	return cart, created, nil
}

// UpdateItem sets the quantity of a line. A quantity of zero or less removes it.
func (s *CartService) UpdateItem(ctx context.Context, owner Owner, line CartLine) (*models.Cart, error) {
	return s.mutateLine(ctx, owner, line, func(cart *models.Cart, i int) {
		if line.Quantity > 0 {
			cart.Products[i].Quantity = line.Quantity
			return
		}
		cart.Products = append(cart.Products[:i], cart.Products[i+1:]...)
	})
}

// RemoveItem drops a line. The cart is kept even when it becomes empty.
func (s *CartService) RemoveItem(ctx context.Context, owner Owner, line CartLine) (*models.Cart, error) {
	return s.mutateLine(ctx, owner, line, func(cart *models.Cart, i int) {
		cart.Products = append(cart.Products[:i], cart.Products[i+1:]...)
	})
}

func (s *CartService) mutateLine(ctx context.Context, owner Owner, line CartLine, apply func(*models.Cart, int)) (*models.Cart, error) {
	if owner.IsZero() {
		return nil, apperr.NotFoundf("Cart not found")
	}

	unlock, err := s.locker.Lock(ctx, owner.lockKey())
	if err != nil {
		return nil, fmt.Errorf("lock cart: %w", err)
	}
	defer unlock()

	cart, err := s.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, apperr.NotFoundf("Cart not found")
	}
	i := cart.FindItem(line.ProductID, line.Size, line.Color)
	if i < 0 {
		return nil, apperr.NotFoundf("Product not found in cart")
	}

	apply(cart, i)
	RecalculateTotal(cart)

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return cart, nil
}

// Merge folds the guest cart into the user's cart and removes the guest cart.
// Without a guest cart it returns the user's cart, or nil, unchanged.
func (s *CartService) Merge(ctx context.Context, guestID string, userID primitive.ObjectID) (*models.Cart, error) {
	unlockUser, err := s.locker.Lock(ctx, userLockKey(userID))
	if err != nil {
		return nil, fmt.Errorf("lock user cart: %w", err)
	}
	defer unlockUser()

	userCart, err := s.Get(ctx, Owner{UserID: &userID})
	if err != nil {
		return nil, err
	}
	if guestID == "" {
		return userCart, nil
	}

	unlockGuest, err := s.locker.Lock(ctx, guestLockKey(guestID))
	if err != nil {
		return nil, fmt.Errorf("lock guest cart: %w", err)
	}
	defer unlockGuest()

	guestCart, err := s.carts.FindByGuest(ctx, guestID)
	if errors.Is(err, store.ErrNotFound) {
		return userCart, nil
	} else if err != nil {
		return nil, fmt.Errorf("find guest cart: %w", err)
	}

	log := s.log.WithFields(logrus.Fields{"guestId": guestID, "userId": userID.Hex()})

	if userCart == nil {
		// the guest cart becomes the user's cart
		guestCart.GuestID = ""
		guestCart.User = &userID
		RecalculateTotal(guestCart)
		if err := s.carts.Save(ctx, guestCart); err != nil {
			return nil, fmt.Errorf("reassign guest cart: %w", err)
		}
		log.Info("guest cart assigned to user")
		return guestCart, nil
	}

	MergeLines(userCart, guestCart.Products)
	if err := s.carts.Save(ctx, userCart); err != nil {
		return nil, fmt.Errorf("save merged cart: %w", err)
	}
	if err := s.carts.Delete(ctx, guestCart.ID); err != nil {
		return nil, fmt.Errorf("delete guest cart: %w", err)
	}
	log.WithField("lines", len(guestCart.Products)).Info("guest cart merged")
	return userCart, nil
}

// MergeLines adds lines into cart, summing quantities of matching (product, size, color)
// tuples, and recalculates the total.
func MergeLines(cart *models.Cart, lines []models.CartItem) {
	for _, line := range lines {
		if i := cart.FindItem(line.ProductID, line.Size, line.Color); i >= 0 {
			cart.Products[i].Quantity += line.Quantity
			continue
		}
		cart.Products = append(cart.Products, line)
	}
	RecalculateTotal(cart)
}

// RecalculateTotal sets TotalPrice to the sum of quantity × price, rounded to cents.
func RecalculateTotal(cart *models.Cart) {
	total := decimal.Zero
	for _, item := range cart.Products {
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	cart.TotalPrice = total.Round(2).InexactFloat64()
}
