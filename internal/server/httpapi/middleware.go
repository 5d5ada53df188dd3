package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"github.com/dmitrijs2005/dreamsync/internal/logging"
	"github.com/dmitrijs2005/dreamsync/internal/server/auth"
	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

// tokenFromRequest reads a bearer token from the Authorization header or,
// for websocket upgrades that cannot set headers, the token query parameter.
func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			fail(c, http.StatusUnauthorized, "missing token")
			return
		}

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				fail(c, http.StatusUnauthorized, common.ErrTokenExpired.Error())
				return
			}
			fail(c, http.StatusUnauthorized, common.ErrInvalidToken.Error())
			return
		}

		c.Set(userIDKey, userID)
		c.Request = c.Request.WithContext(logging.ContextWith(c.Request.Context(), "user_id", userID))
		c.Next()
	}
}

func callerID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
