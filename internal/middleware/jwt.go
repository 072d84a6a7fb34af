package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ashgrove/schedcore/internal/service"
	appErrors "github.com/ashgrove/schedcore/pkg/errors"
	"github.com/ashgrove/schedcore/pkg/response"
)

// ContextClientKey is the gin context key storing the authenticated client id.
const ContextClientKey = "jobClient"

// JWT guards the job-submission route, requiring a valid bearer token
// issued by AuthService.IssueToken. The optimisation core itself still
// never authenticates anyone; this protects only the demo gateway.
func JWT(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextClientKey, claims.Subject)
		c.Next()
	}
}
