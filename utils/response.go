package utils

import (
	"encoding/json"
	"net/http"

	"wearero-api/apperr"

	"github.com/sirupsen/logrus"
)

// Message is the body of every error and acknowledgement response
type Message struct {
	Message string `json:"message"`
}

// RespondJSON writes v as JSON with the given status
func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// RespondMessage writes {"message": msg}
func RespondMessage(w http.ResponseWriter, status int, msg string) {
	RespondJSON(w, status, Message{Message: msg})
}

// RespondError translates err to a status and a client-safe message.
// Unexpected errors are logged in full and reported as a generic server error.
func RespondError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	kind := apperr.KindOf(err)
	status := apperr.Status(kind)
	if kind == apperr.Unexpected {
		log.WithError(err).Error("request failed")
	}
	RespondMessage(w, status, apperr.PublicMessage(err))
}

// DecodeJSON reads a JSON request body into v. An invalid body is a validation error.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.Validation, "Invalid input", err)
	}
	return nil
}
