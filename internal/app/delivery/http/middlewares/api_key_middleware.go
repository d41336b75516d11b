package middlewares

import (
	"crypto/subtle"
	"net/http"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/exceptions"
	"smartmarkers-service/internal/pkg/utils"

	"go.uber.org/zap"
)

// APIKeyAuth guards the session API behind the launching application's
// key. With no key configured every request passes.
func (m *Middlewares) APIKeyAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := m.InternalConfig.App.APIKey
		if expected == "" {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := r.Header.Get(constvars.HeaderAPIKey)
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) != 1 {
			utils.LogSecurityEvent(m.Log, "invalid_api_key", utils.GetRequestID(r.Context()), "medium",
				zap.String(constvars.LoggingRemoteAddrKey, r.RemoteAddr),
				zap.String(constvars.LoggingEndpointKey, r.URL.Path),
				zap.String(constvars.LoggingMethodKey, r.Method),
				zap.Bool("key_present", apiKey != ""),
			)
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrInvalidAPIKey(nil))
			return
		}

		next.ServeHTTP(w, r)
	})
}
