package controllers

import (
	"context"
	"net/http"
	"time"

	"wearero-api/apperr"
	"wearero-api/middleware"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	requestTimeout = 10 * time.Second
	maxJSONBody    = 1 << 20
)

func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}

// pathID parses the named mux variable as an ObjectID
func pathID(r *http.Request, name, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		return primitive.NilObjectID, apperr.Validationf("Invalid %s ID", what)
	}
	return id, nil
}

// currentUser returns the authenticated caller. Routes behind AuthMiddleware always have one.
func currentUser(r *http.Request) (primitive.ObjectID, error) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		return primitive.NilObjectID, apperr.New(apperr.Unauthorized, "Not authorized, no token provided")
	}
	return id, nil
}

func limitBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
}
