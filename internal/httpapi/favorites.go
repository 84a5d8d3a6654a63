package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirepath/hirepath/internal/favorites"
	"github.com/hirepath/hirepath/internal/identity"
)

// RegisterFavoriteRoutes wires the saved-listing endpoints.
func RegisterFavoriteRoutes(rg *gin.RouterGroup, svc *favorites.Service, ident *identity.Service) {
	rg.PUT("/jobs/:id/favorite", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		if err := svc.Add(c.Request.Context(), user.ID, c.Param("id")); err != nil {
			abortError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	rg.DELETE("/jobs/:id/favorite", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		if err := svc.Remove(c.Request.Context(), user.ID, c.Param("id")); err != nil {
			abortError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	rg.GET("/jobs/:id/favorite", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		favorited, err := svc.IsFavorited(c.Request.Context(), user.ID, c.Param("id"))
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"favorited": favorited})
	})

	rg.GET("/me/favorites", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		limit := intQuery(c, "limit", 50)
		if c.Query("expand") == "jobs" {
			rows, err := svc.ListMineWithJobs(c.Request.Context(), user.ID, limit)
			if err != nil {
				abortError(c, err)
				return
			}
			c.JSON(http.StatusOK, rows)
			return
		}
		rows, err := svc.ListMine(c.Request.Context(), user.ID, limit)
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	})
}
