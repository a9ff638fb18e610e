package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wearero-api/models"
	"wearero-api/utils"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTokens(t *testing.T) *utils.TokenManager {
	t.Helper()
	tm, err := utils.NewTokenManager("middleware-secret", time.Hour)
	require.NoError(t, err)
	return tm
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	if id, ok := UserID(r.Context()); ok {
		w.Write([]byte(id.Hex()))
		return
	}
	w.Write([]byte("anonymous"))
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	tm := newTokens(t)
	auth := NewAuth(tm)
	h := auth.AuthMiddleware(http.HandlerFunc(echoUser))
	uid := primitive.NewObjectID()
	token, err := tm.Generate(uid, models.RoleCustomer)
	require.NoError(t, err)

	rec := serve(h, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uid.Hex(), rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "not-a-token").Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	tm := newTokens(t)
	h := NewAuth(tm).OptionalAuthMiddleware(http.HandlerFunc(echoUser))
	uid := primitive.NewObjectID()
	token, err := tm.Generate(uid, models.RoleCustomer)
	require.NoError(t, err)

	assert.Equal(t, uid.Hex(), serve(h, token).Body.String())
	assert.Equal(t, "anonymous", serve(h, "").Body.String())

	rec := serve(h, "expired-or-garbage")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestAdminMiddleware(t *testing.T) {
	tm := newTokens(t)
	h := NewAuth(tm).AuthMiddleware(AdminMiddleware(http.HandlerFunc(echoUser)))

	customer, err := tm.Generate(primitive.NewObjectID(), models.RoleCustomer)
	require.NoError(t, err)
	admin, err := tm.Generate(primitive.NewObjectID(), models.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, serve(h, customer).Code)
	assert.Equal(t, http.StatusOK, serve(h, admin).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(AdminMiddleware(http.HandlerFunc(echoUser)), "").Code)
}

func TestAccessLog(t *testing.T) {
	log, hook := test.NewNullLogger()
	h := AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/x", nil))

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])
	assert.Equal(t, "/api/products/x", entry.Data["path"])
}
