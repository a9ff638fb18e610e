package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"wearero-api/models"
	"wearero-api/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory stand-ins for the Mongo stores. Values are copied in and out so
// tests observe only what was saved.

type fakeProducts struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.Product
}

func newFakeProducts(ps ...models.Product) *fakeProducts {
	f := &fakeProducts{items: map[primitive.ObjectID]models.Product{}}
	for _, p := range ps {
		f.items[p.ID] = p
	}
	return f
}

func (f *fakeProducts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProducts) Find(_ context.Context, _ store.ProductQuery) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Product{}
	for _, p := range f.items {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProducts) BestSeller(_ context.Context) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *models.Product
	for _, p := range f.items {
		p := p
		if best == nil || p.Rating > best.Rating {
			best = &p
		}
	}
	if best == nil {
		return nil, store.ErrNotFound
	}
	return best, nil
}

func (f *fakeProducts) NewArrivals(_ context.Context, limit int) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Product{}
	for _, p := range f.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeProducts) Similar(_ context.Context, base *models.Product, limit int) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Product{}
	for _, p := range f.items {
		if p.ID != base.ID && p.Gender == base.Gender && p.Category == base.Category && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) Insert(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if existing.SKU == p.SKU {
			return store.ErrDuplicate
		}
	}
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now()
	f.items[p.ID] = *p
	return nil
}

func (f *fakeProducts) Update(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[p.ID]; !ok {
		return store.ErrNotFound
	}
	f.items[p.ID] = *p
	return nil
}

func (f *fakeProducts) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeCarts struct {
	mu        sync.Mutex
	items     map[primitive.ObjectID]models.Cart
	deleteErr error
	saves     int
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{items: map[primitive.ObjectID]models.Cart{}}
}

func cloneCart(c models.Cart) models.Cart {
	c.Products = append([]models.CartItem(nil), c.Products...)
	if c.User != nil {
		u := *c.User
		c.User = &u
	}
	return c
}

func (f *fakeCarts) find(match func(models.Cart) bool) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.items {
		if match(c) {
			out := cloneCart(c)
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeCarts) FindByUser(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	return f.find(func(c models.Cart) bool { return c.User != nil && *c.User == userID })
}

func (f *fakeCarts) FindByGuest(_ context.Context, guestID string) (*models.Cart, error) {
	return f.find(func(c models.Cart) bool { return c.GuestID == guestID })
}

func (f *fakeCarts) Save(_ context.Context, c *models.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if c.ID.IsZero() {
		for _, other := range f.items {
			if (c.User != nil && other.User != nil && *c.User == *other.User) ||
				(c.GuestID != "" && c.GuestID == other.GuestID) {
				return store.ErrDuplicate
			}
		}
		c.ID = primitive.NewObjectID()
	} else if _, ok := f.items[c.ID]; !ok {
		return store.ErrNotFound
	}
	f.items[c.ID] = cloneCart(*c)
	return nil
}

func (f *fakeCarts) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

func (f *fakeCarts) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for id, c := range f.items {
		if c.User != nil && *c.User == userID {
			delete(f.items, id)
		}
	}
	return nil
}

func (f *fakeCarts) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

type fakeOrders struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.Order
	clock time.Time
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{items: map[primitive.ObjectID]models.Order{}, clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeOrders) Insert(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = f.clock.Add(time.Minute)
	o.ID = primitive.NewObjectID()
	o.CreatedAt = f.clock
	f.items[o.ID] = *o
	return nil
}

func (f *fakeOrders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &o, nil
}

func (f *fakeOrders) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Order{}
	for _, o := range f.items {
		if o.User == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeOrders) ListAll(_ context.Context) ([]models.OrderWithOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.OrderWithOwner{}
	for _, o := range f.items {
		out = append(out, models.OrderWithOwner{Order: o})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeOrders) Update(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[o.ID]; !ok {
		return store.ErrNotFound
	}
	f.items[o.ID] = *o
	return nil
}

func (f *fakeOrders) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeOrders) SetPaymentStatus(_ context.Context, intentID, status string, paidAt *time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, o := range f.items {
		if o.PaymentIntentID != intentID || (paidAt == nil && o.IsPaid) {
			continue
		}
		o.PaymentStatus = status
		if paidAt != nil {
			o.IsPaid = true
			if o.PaidAt == nil {
				t := *paidAt
				o.PaidAt = &t
			}
		}
		f.items[id] = o
		n++
	}
	return n, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{items: map[primitive.ObjectID]models.User{}}
}

func (f *fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.items {
		if u.Email == models.NormalizeEmail(email) {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) List(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.User{}
	for _, u := range f.items {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) Insert(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	f.items[u.ID] = *u
	return nil
}

func (f *fakeUsers) Update(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[u.ID]; !ok {
		return store.ErrNotFound
	}
	for id, existing := range f.items {
		if id != u.ID && existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	f.items[u.ID] = *u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeUsers) AddToWishlist(_ context.Context, userID, productID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[userID]
	if !ok {
		return store.ErrNotFound
	}
	for _, id := range u.Wishlist {
		if id == productID {
			return nil
		}
	}
	u.Wishlist = append(append([]primitive.ObjectID(nil), u.Wishlist...), productID)
	f.items[userID] = u
	return nil
}

func (f *fakeUsers) RemoveFromWishlist(_ context.Context, userID, productID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[userID]
	if !ok {
		return store.ErrNotFound
	}
	kept := []primitive.ObjectID{}
	for _, id := range u.Wishlist {
		if id != productID {
			kept = append(kept, id)
		}
	}
	u.Wishlist = kept
	f.items[userID] = u
	return nil
}

type fakeProcessor struct {
	calls    int
	cents    int64
	metadata map[string]string
	err      error
}

func (f *fakeProcessor) CreateIntent(_ context.Context, cents int64, metadata map[string]string) (string, string, error) {
	f.calls++
	f.cents = cents
	f.metadata = metadata
	if f.err != nil {
		return "", "", f.err
	}
	return "pi_test_1", "pi_test_1_secret_abc", nil
}

type fakeTokens struct{}

func (fakeTokens) Generate(userID primitive.ObjectID, role string) (string, error) {
	return "token-" + userID.Hex() + "-" + role, nil
}

var errBoom = errors.New("boom")

func product(name string, price float64) models.Product {
	return models.Product{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Price:    price,
		SKU:      "SKU-" + name,
		Category: "Top Wear",
		Gender:   "Men",
		Images:   []models.ProductImage{{URL: "https://img.example/" + name + ".jpg"}},
	}
}
