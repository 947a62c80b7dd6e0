package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// OperatorAudit logs every successful write made on an operator route,
// with the token subject that made it.
func OperatorAudit(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			return
		}

		action, resource := mapPathToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		log.Info().
			Bool("audit", true).
			Str("action", action).
			Str("resource_type", resource).
			Str("resource_id", c.Param("id")).
			Str("operator", c.GetString(CtxOperator)).
			Str("request_id", c.GetString(CtxRequestID)).
			Str("client_ip", c.ClientIP()).
			Int("status", c.Writer.Status()).
			Msg("operator action")
	}
}

func mapPathToAction(route, method string) (string, string) {
	switch {
	case route == "/api/v1/donations" && method == http.MethodPost:
		return "donation.create", "donation"
	case strings.HasPrefix(route, "/api/v1/ops/donations/") && strings.HasSuffix(route, "/distribute") && method == http.MethodPost:
		return "donation.distribute", "donation"
	}
	return "", ""
}
