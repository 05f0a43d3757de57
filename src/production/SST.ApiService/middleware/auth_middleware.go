package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.ApiService/apierrors"
	logger "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Logger"
	interfaces "gitlab.com/signalstash1/sst.telemetry_server/src/production/SST.Repository/Interfaces"
)

const (
	// AuthHeader carries the API key on every request.
	AuthHeader = "Authorization"

	// AuthScheme is the fixed literal preceding the key in the header.
	AuthScheme = "SignalStash"
)

// AuthMiddleware validates API keys against the key store. Ordinary and admin
// endpoints check different store namespaces; the key's textual prefix plays
// no part in the decision.
type AuthMiddleware struct {
	store  interfaces.KeyStore
	logger *logger.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(store interfaces.KeyStore, logger *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{store: store, logger: logger}
}

// extractAPIKey gets the key from the "Authorization: SignalStash <key>"
// header. Returns "" when the header is absent, uses a different scheme, or
// carries no key.
func extractAPIKey(r *http.Request) string {
	authHeader := r.Header.Get(AuthHeader)
	if authHeader == "" {
		return ""
	}
	key, ok := strings.CutPrefix(authHeader, AuthScheme+" ")
	if !ok {
		return ""
	}
	return key
}

// RequireKey authorizes requests against the ordinary key namespace.
func (m *AuthMiddleware) RequireKey() gin.HandlerFunc {
	return m.require(interfaces.ScopeOrdinary)
}

// RequireAdminKey authorizes requests against the admin key namespace.
func (m *AuthMiddleware) RequireAdminKey() gin.HandlerFunc {
	return m.require(interfaces.ScopeAdmin)
}

func (m *AuthMiddleware) require(scope interfaces.Scope) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := extractAPIKey(c.Request)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing or malformed Authorization header",
			})
			return
		}

		exists, err := m.store.Exists(c.Request.Context(), scope, key)
		if err != nil {
			// Store failure is an internal outcome, not "credential unknown".
			apierrors.Internal(c, m.logger, "key lookup failed", err)
			return
		}
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid API key",
			})
			return
		}

		c.Next()
	}
}
