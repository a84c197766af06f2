package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/tinypost/tinypost/internal/config"
	"github.com/tinypost/tinypost/internal/utils/tlog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RemoteUserHeader   = "Remote-User"
	RemoteTenantHeader = "Remote-Tenant"
)

type ContextMiddlewareConfig struct {
	CookieDomain      string
	SecureCookie      bool
	SessionCookieName string
}

// ContextMiddleware builds the user context from the headers set by the
// forward auth proxy and makes sure the browser carries a session cookie.
type ContextMiddleware struct {
	config ContextMiddlewareConfig
}

func NewContextMiddleware(config ContextMiddlewareConfig) *ContextMiddleware {
	return &ContextMiddleware{
		config: config,
	}
}

func (m *ContextMiddleware) Init() error {
	return nil
}

func (m *ContextMiddleware) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := strings.TrimSpace(c.GetHeader(RemoteUserHeader))
		tenant := strings.TrimSpace(c.GetHeader(RemoteTenantHeader))

		if username == "" || tenant == "" {
			c.Next()
			return
		}

		tenantID, err := strconv.ParseInt(tenant, 10, 64)

		if err != nil || tenantID <= 0 {
			tlog.App.Warn().Str("tenant", tenant).Msg("Ignoring request with invalid tenant header")
			c.Next()
			return
		}

		c.Set("context", &config.UserContext{
			Username:  username,
			TenantID:  tenantID,
			SessionID: m.sessionID(c),
		})

		c.Next()
	}
}

func (m *ContextMiddleware) sessionID(c *gin.Context) string {
	cookie, err := c.Cookie(m.config.SessionCookieName)

	if err == nil {
		if _, err := uuid.Parse(cookie); err == nil {
			return cookie
		}
	}

	sessionID := uuid.NewString()

	// Lax so the cookie comes back on the provider's redirect
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.config.SessionCookieName, sessionID, 0, "/", m.config.CookieDomain, m.config.SecureCookie, true)

	return sessionID
}
