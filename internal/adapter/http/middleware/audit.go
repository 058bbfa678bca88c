package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuditLog emits a structured audit event for every successful write
// operation, tagged with the acting user and the mapped action name.
func AuditLog(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}

		action, resource := mapPathToAction(c.Request.URL.Path, c.Request.Method)
		if action == "" {
			return
		}

		event := log.Info().
			Str("action", action).
			Str("resource", resource).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Str("client_ip", c.ClientIP())

		if uid, exists := c.Get(CtxUserID); exists {
			if id, ok := uid.(uuid.UUID); ok {
				event = event.Str("user_id", id.String())
			}
		}

		event.Msg("audit")
	}
}

func mapPathToAction(path, method string) (action, resource string) {
	switch {
	case path == "/api/v1/auth/register" && method == "POST":
		return "register", "user"
	case path == "/api/v1/auth/login" && method == "POST":
		return "login", "session"
	case path == "/api/v1/users/me/payout-preference" && method == "PUT":
		return "set_payout_preference", "user"
	case path == "/api/v1/wallets/deposit" && method == "POST":
		return "wallet_deposit", "wallet"
	case path == "/api/v1/wallets/convert" && method == "POST":
		return "convert", "wallet"
	case path == "/api/v1/invest/deposit" && method == "POST":
		return "invest_deposit", "investment"
	case path == "/api/v1/invest/reinvest" && method == "POST":
		return "reinvest", "investment"
	case path == "/api/v1/invest/claim" && method == "POST":
		return "claim", "investment"
	case path == "/api/v1/invest/auto-compound" && method == "PUT":
		return "set_auto_compound", "investment"
	case strings.HasPrefix(path, "/api/v1/admin/fx/rates") && method == "PUT":
		return "set_fx_rate", "fx_rate"
	case path == "/api/v1/admin/settlements" && method == "POST":
		return "settle", "payout"
	}
	return "", ""
}
