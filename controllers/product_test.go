package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"wearero-api/apperr"
	"wearero-api/store"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseProductQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/products?collection=Summer&category=all&size=S,M&color=Red&gender=Women&minPrice=10&maxPrice=99.5&sortBy=priceAsc&search=tee&limit=12", nil)

	q, err := ParseProductQuery(req)
	require.NoError(t, err)

	assert.Equal(t, "Summer", q.Collection)
	assert.Equal(t, "all", q.Category)
	assert.Equal(t, "S,M", q.Size)
	assert.Equal(t, "Red", q.Color)
	assert.Equal(t, "Women", q.Gender)
	require.NotNil(t, q.MinPrice)
	require.NotNil(t, q.MaxPrice)
	assert.Equal(t, 10.0, *q.MinPrice)
	assert.Equal(t, 99.5, *q.MaxPrice)
	assert.Equal(t, store.SortPriceAsc, q.SortBy)
	assert.Equal(t, "tee", q.Search)
	assert.Equal(t, int64(12), q.Limit)
}

func TestParseProductQueryInvalid(t *testing.T) {
	for _, raw := range []string{"minPrice=abc", "maxPrice=1e", "limit=-1", "limit=ten"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseProductQuery(httptest.NewRequest(http.MethodGet, "/api/products?"+raw, nil))
			assert.True(t, apperr.Is(err, apperr.Validation))
		})
	}

	q, err := ParseProductQuery(httptest.NewRequest(http.MethodGet, "/api/products", nil))
	require.NoError(t, err)
	assert.Nil(t, q.MinPrice)
	assert.Zero(t, q.Limit)
}

func TestPathID(t *testing.T) {
	id := primitive.NewObjectID()
	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": id.Hex()})
	got, err := pathID(req, "id", "product")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	req = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "nope"})
	_, err = pathID(req, "id", "product")
	assert.True(t, apperr.Is(err, apperr.Validation))
	assert.Equal(t, "Invalid product ID", apperr.PublicMessage(err))
}
