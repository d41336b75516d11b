package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// CreateRateLimiters creates the general per-IP limiter and the stricter
// one guarding session creation, which fans out to the FHIR server.
func (m *Middlewares) CreateRateLimiters() (normalLimiter, createSessionLimiter func(next http.Handler) http.Handler) {
	normalLimiter = httprate.LimitByIP(m.InternalConfig.App.MaxRequests, time.Second)
	createSessionLimiter = httprate.LimitByIP(m.InternalConfig.App.MaxSessionCreatesPerMinute, time.Minute)
	return normalLimiter, createSessionLimiter
}
