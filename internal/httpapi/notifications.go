package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirepath/hirepath/internal/identity"
	"github.com/hirepath/hirepath/internal/notifications"
)

// RegisterNotificationRoutes wires the in-app notification endpoints.
func RegisterNotificationRoutes(rg *gin.RouterGroup, svc *notifications.Service, ident *identity.Service) {
	rg.GET("/me/notifications", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		unreadOnly := c.Query("unreadOnly") == "true"
		rows, err := svc.ListMine(c.Request.Context(), user.ID, unreadOnly, intQuery(c, "limit", 50))
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	})

	rg.GET("/me/notifications/unread-count", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		count, err := svc.UnreadCount(c.Request.Context(), user.ID)
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	})

	rg.POST("/me/notifications/:id/read", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		if err := svc.MarkRead(c.Request.Context(), c.Param("id"), user.ID); err != nil {
			abortError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	rg.POST("/me/notifications/read-all", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		if err := svc.MarkAllRead(c.Request.Context(), user.ID); err != nil {
			abortError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}
