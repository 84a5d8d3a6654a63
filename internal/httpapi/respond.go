package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirepath/hirepath/internal/apperrors"
	"github.com/hirepath/hirepath/internal/identity"
	"github.com/hirepath/hirepath/pkg/logger"
	"github.com/hirepath/hirepath/pkg/middleware"
)

// userKey caches the resolved local user on the gin context for the request.
const userKey = "current_user"

// abortError maps a service error onto the API's status taxonomy.
func abortError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// currentUser resolves the verified claims to the local user mirror,
// creating it on first authenticated access.
func currentUser(c *gin.Context, ident *identity.Service) (*identity.User, bool) {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*identity.User); ok {
			return u, true
		}
	}
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no verified identity"})
		return nil, false
	}
	u, err := ident.UpsertUserFromClaims(c.Request.Context(), claims)
	if err != nil {
		abortError(c, err)
		return nil, false
	}
	if u == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token carries no subject"})
		return nil, false
	}
	c.Set(userKey, u)
	return u, true
}
