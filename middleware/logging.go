package middleware

import (
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/sirupsen/logrus"
)

// AccessLog logs one line per request with its status and duration
func AccessLog(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return handlers.CustomLoggingHandler(io.Discard, next, func(_ io.Writer, p handlers.LogFormatterParams) {
			entry := log.WithFields(logrus.Fields{
				"method":   p.Request.Method,
				"path":     p.URL.Path,
				"status":   p.StatusCode,
				"size":     p.Size,
				"duration": time.Since(p.TimeStamp).String(),
			})
			switch {
			case p.StatusCode >= http.StatusInternalServerError:
				entry.Error("request")
			case p.StatusCode >= http.StatusBadRequest:
				entry.Warn("request")
			default:
				entry.Info("request")
			}
		})
	}
}
