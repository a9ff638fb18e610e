package controllers

import (
	"context"
	"net/http"
	"time"

	"wearero-api/utils"

	"github.com/sirupsen/logrus"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// HealthController reports whether the service and its dependencies are reachable
type HealthController struct {
	checks map[string]HealthCheck
	log    logrus.FieldLogger
}

// NewHealthController creates a new HealthController
func NewHealthController(checks map[string]HealthCheck, log logrus.FieldLogger) *HealthController {
	return &HealthController{checks: checks, log: log}
}

// Health runs every check and answers 503 if any fails
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(hc.checks))
	for name, check := range hc.checks {
		if err := check(ctx); err != nil {
			hc.log.WithError(err).WithField("check", name).Warn("health check failed")
			results[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "up"
	}
	utils.RespondJSON(w, status, results)
}
