package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"wearero-api/middleware"
	"wearero-api/models"
	"wearero-api/services"
	"wearero-api/store"
	"wearero-api/utils"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memProducts struct {
	store.ProductStore
	items map[primitive.ObjectID]models.Product
}

func (m *memProducts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

type memCarts struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.Cart
}

func (m *memCarts) find(match func(models.Cart) bool) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if match(c) {
			c.Products = append([]models.CartItem(nil), c.Products...)
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memCarts) FindByUser(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	return m.find(func(c models.Cart) bool { return c.User != nil && *c.User == userID })
}

func (m *memCarts) FindByGuest(_ context.Context, guestID string) (*models.Cart, error) {
	return m.find(func(c models.Cart) bool { return c.GuestID == guestID })
}

func (m *memCarts) Save(_ context.Context, c *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	stored := *c
	stored.Products = append([]models.CartItem(nil), c.Products...)
	m.items[c.ID] = stored
	return nil
}

func (m *memCarts) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

func (m *memCarts) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.items {
		if c.User != nil && *c.User == userID {
			delete(m.items, id)
		}
	}
	return nil
}

func newCartController(t *testing.T) (*CartController, models.Product) {
	t.Helper()
	log, _ := test.NewNullLogger()
	tee := models.Product{ID: primitive.NewObjectID(), Name: "Tee", Price: 20, SKU: "TEE-1"}
	products := &memProducts{items: map[primitive.ObjectID]models.Product{tee.ID: tee}}
	carts := &memCarts{items: map[primitive.ObjectID]models.Cart{}}
	svc := services.NewCartService(products, carts, services.NewLocalLocker(), log)
	return NewCartController(svc, log), tee
}

func cartBody(productID primitive.ObjectID, guestID string, quantity int) string {
	b, _ := json.Marshal(map[string]any{
		"productId": productID.Hex(),
		"size":      "M",
		"color":     "Red",
		"quantity":  quantity,
		"guestId":   guestID,
	})
	return string(b)
}

func asUser(r *http.Request, id primitive.ObjectID) *http.Request {
	claims := &utils.Claims{UserID: id.Hex(), Role: models.RoleCustomer}
	return r.WithContext(middleware.WithClaims(r.Context(), claims))
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) models.Cart {
	t.Helper()
	var cart models.Cart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	return cart
}

func TestGuestCartLifecycle(t *testing.T) {
	cc, tee := newCartController(t)

	rec := httptest.NewRecorder()
	cc.GetCart(rec, httptest.NewRequest(http.MethodGet, "/api/cart?guestId=guest_missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	cc.AddToCart(rec, httptest.NewRequest(http.MethodPost, "/api/cart", strings.NewReader(cartBody(tee.ID, "", 1))))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeCart(t, rec)
	require.True(t, strings.HasPrefix(created.GuestID, services.GuestPrefix), created.GuestID)
	assert.Nil(t, created.User)

	rec = httptest.NewRecorder()
	cc.AddToCart(rec, httptest.NewRequest(http.MethodPost, "/api/cart", strings.NewReader(cartBody(tee.ID, created.GuestID, 1))))
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeCart(t, rec)
	assert.Equal(t, created.ID, updated.ID)
	require.Len(t, updated.Products, 1)
	assert.Equal(t, 2, updated.Products[0].Quantity)
	assert.InDelta(t, 40.0, updated.TotalPrice, 1e-9)

	rec = httptest.NewRecorder()
	cc.GetCart(rec, httptest.NewRequest(http.MethodGet, "/api/cart?guestId="+created.GuestID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decodeCart(t, rec).ID)

	rec = httptest.NewRecorder()
	cc.RemoveFromCart(rec, httptest.NewRequest(http.MethodDelete, "/api/cart", strings.NewReader(cartBody(tee.ID, created.GuestID, 0))))
	require.Equal(t, http.StatusOK, rec.Code)
	emptied := decodeCart(t, rec)
	assert.Empty(t, emptied.Products)
	assert.Zero(t, emptied.TotalPrice)
}

func TestUserCartUsesToken(t *testing.T) {
	cc, tee := newCartController(t)
	uid := primitive.NewObjectID()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cart", strings.NewReader(cartBody(tee.ID, "", 3)))
	cc.AddToCart(rec, asUser(req, uid))
	require.Equal(t, http.StatusCreated, rec.Code)
	cart := decodeCart(t, rec)
	require.NotNil(t, cart.User)
	assert.Equal(t, uid, *cart.User)
	assert.Empty(t, cart.GuestID)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/api/cart", strings.NewReader(cartBody(tee.ID, "", 1)))
	cc.UpdateCart(rec, asUser(req, uid))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 20.0, decodeCart(t, rec).TotalPrice, 1e-9)

	rec = httptest.NewRecorder()
	cc.GetCart(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/cart", nil), uid))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCartErrors(t *testing.T) {
	cc, tee := newCartController(t)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		body    string
		want    int
	}{
		{"add unknown product", cc.AddToCart, cartBody(primitive.NewObjectID(), "", 1), http.StatusNotFound},
		{"add malformed body", cc.AddToCart, `{"productId":`, http.StatusBadRequest},
		{"update without cart", cc.UpdateCart, cartBody(tee.ID, "guest_none", 1), http.StatusNotFound},
		{"remove without cart", cc.RemoveFromCart, cartBody(tee.ID, "guest_none", 1), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(http.MethodPost, "/api/cart", strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMergeCart(t *testing.T) {
	cc, tee := newCartController(t)

	rec := httptest.NewRecorder()
	cc.MergeCart(rec, httptest.NewRequest(http.MethodPost, "/api/cart/merge", strings.NewReader(`{"guestId":"guest_x"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	uid := primitive.NewObjectID()
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cart/merge", strings.NewReader(`{"guestId":"guest_x"}`))
	cc.MergeCart(rec, asUser(req, uid))
	require.Equal(t, http.StatusOK, rec.Code)
	var msg utils.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, "Nothing to merge", msg.Message)

	rec = httptest.NewRecorder()
	cc.AddToCart(rec, httptest.NewRequest(http.MethodPost, "/api/cart", strings.NewReader(cartBody(tee.ID, "guest_x", 2))))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/cart/merge", strings.NewReader(`{"guestId":"guest_x"}`))
	cc.MergeCart(rec, asUser(req, uid))
	require.Equal(t, http.StatusOK, rec.Code)
	merged := decodeCart(t, rec)
	require.NotNil(t, merged.User)
	assert.Equal(t, uid, *merged.User)
	assert.Empty(t, merged.GuestID)
	assert.InDelta(t, 40.0, merged.TotalPrice, 1e-9)
}
