package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirepath/hirepath/internal/authz"
	"github.com/hirepath/hirepath/internal/identity"
	"github.com/hirepath/hirepath/internal/invitations"
	"github.com/hirepath/hirepath/internal/plans"
)

// RegisterCompanyRoutes wires the company context, usage, plan sync, members
// and invitation endpoints.
func RegisterCompanyRoutes(rg *gin.RouterGroup, ident *identity.Service, guard *authz.Guard, planSvc *plans.Service, inviteSvc *invitations.Service) {
	rg.GET("/me/company-context", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		externalOrgID := c.Query("externalOrgId")
		if externalOrgID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "externalOrgId is required"})
			return
		}
		company, member, err := ident.CompanyContext(c.Request.Context(), externalOrgID, user.ID)
		if err != nil {
			abortError(c, err)
			return
		}
		if company == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "company not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"company": company, "membership": member})
	})

	rg.GET("/companies/:id/usage", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		companyID := c.Param("id")
		if _, err := guard.RequireActiveMembership(c.Request.Context(), companyID, user.ID); err != nil {
			abortError(c, err)
			return
		}
		usage, err := planSvc.Usage(c.Request.Context(), companyID)
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, usage)
	})

	rg.POST("/companies/:id/plan", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		companyID := c.Param("id")
		if _, err := guard.RequireRole(c.Request.Context(), companyID, user.ID, identity.RoleAdmin); err != nil {
			abortError(c, err)
			return
		}
		var req struct {
			Plan      identity.Plan `json:"plan" binding:"required"`
			SeatLimit int           `json:"seatLimit"`
			JobLimit  int           `json:"jobLimit"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := planSvc.SyncPlan(c.Request.Context(), companyID, req.Plan, req.SeatLimit, req.JobLimit); err != nil {
			abortError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	rg.GET("/companies/:id/members", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		companyID := c.Param("id")
		if _, err := guard.RequireActiveMembership(c.Request.Context(), companyID, user.ID); err != nil {
			abortError(c, err)
			return
		}
		members, err := ident.Members().ListByCompany(c.Request.Context(), companyID)
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, members)
	})

	rg.POST("/companies/:id/invitations", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		var req struct {
			Email string        `json:"email" binding:"required"`
			Role  identity.Role `json:"role" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		member, err := inviteSvc.Invite(c.Request.Context(), user.ID, c.Param("id"), req.Email, req.Role)
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusCreated, member)
	})
}
