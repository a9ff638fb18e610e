package middleware

import (
	"context"
	"net/http"
	"strings"

	"wearero-api/models"
	"wearero-api/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// TokenParser verifies a bearer token
type TokenParser interface {
	Parse(token string) (*utils.Claims, error)
}

// Auth builds the authentication middlewares around a token parser
type Auth struct {
	tokens TokenParser
}

// NewAuth creates an Auth
func NewAuth(tokens TokenParser) *Auth {
	return &Auth{tokens: tokens}
}

// AuthMiddleware verifies JWT tokens and attaches the claims to the context
func (a *Auth) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, ok := bearerToken(r)
		if !ok {
			utils.RespondMessage(w, http.StatusUnauthorized, "Not authorized, no token provided")
			return
		}
		claims, err := a.tokens.Parse(tokenStr)
		if err != nil {
			utils.RespondMessage(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// OptionalAuthMiddleware attaches claims when a valid token is present and
// otherwise lets the request through anonymously.
func (a *Auth) OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tokenStr, ok := bearerToken(r); ok {
			if claims, err := a.tokens.Parse(tokenStr); err == nil {
				r = r.WithContext(WithClaims(r.Context(), claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// AdminMiddleware ensures that the user has admin privileges.
// It must run after AuthMiddleware.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			utils.RespondMessage(w, http.StatusUnauthorized, "Not authorized, no token provided")
			return
		}
		if claims.Role != models.RoleAdmin {
			utils.RespondMessage(w, http.StatusForbidden, "Not authorized as an admin")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithClaims returns a context carrying the caller's claims
func WithClaims(ctx context.Context, claims *utils.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

// ClaimsFromContext returns the claims attached by the auth middlewares
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok && claims != nil
}

// UserID returns the authenticated user's id, if any
func UserID(ctx context.Context) (primitive.ObjectID, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := claims.ObjectID()
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// IsAdmin reports whether the caller holds the admin role
func IsAdmin(ctx context.Context) bool {
	claims, ok := ClaimsFromContext(ctx)
	return ok && claims.Role == models.RoleAdmin
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
