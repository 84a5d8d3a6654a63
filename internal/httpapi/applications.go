package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hirepath/hirepath/internal/applications"
	"github.com/hirepath/hirepath/internal/identity"
)

// RegisterApplicationRoutes wires the candidate and company sides of the
// application lifecycle.
func RegisterApplicationRoutes(rg *gin.RouterGroup, svc *applications.Service, ident *identity.Service) {
	rg.POST("/applications", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		var req struct {
			JobID       string            `json:"jobId" binding:"required"`
			CoverLetter string            `json:"coverLetter"`
			ResumeID    string            `json:"resumeId"`
			Answers     map[string]string `json:"answers"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		app, err := svc.Apply(c.Request.Context(), user.ID, applications.ApplyInput{
			JobID:       req.JobID,
			CoverLetter: req.CoverLetter,
			ResumeID:    req.ResumeID,
			Answers:     req.Answers,
		})
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusCreated, app)
	})

	rg.GET("/applications/mine", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		list, err := svc.ListMine(c.Request.Context(), user.ID, intQuery(c, "limit", 0))
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	rg.GET("/applications/:id", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		app, err := svc.Get(c.Request.Context(), user.ID, c.Param("id"))
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, app)
	})

	rg.POST("/applications/:id/withdraw", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		app, err := svc.Withdraw(c.Request.Context(), user.ID, c.Param("id"))
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, app)
	})

	rg.POST("/applications/:id/status", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		var req struct {
			Status applications.Status `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		app, err := svc.Decide(c.Request.Context(), user.ID, c.Param("id"), req.Status)
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, app)
	})

	rg.GET("/companies/:id/applications", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		f := applications.CompanyFilter{
			JobID:    c.Query("jobId"),
			MinYears: intQuery(c, "minYears", 0),
			MaxYears: intQuery(c, "maxYears", 0),
			Limit:    intQuery(c, "limit", 0),
		}
		if v := c.Query("status"); v != "" {
			for _, s := range strings.Split(v, ",") {
				f.Statuses = append(f.Statuses, applications.Status(s))
			}
		}
		if v := c.Query("skills"); v != "" {
			f.Skills = strings.Split(v, ",")
		}
		list, err := svc.ListCompany(c.Request.Context(), user.ID, c.Param("id"), f)
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	rg.POST("/jobs/:id/repair-count", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		count, err := svc.RepairApplicationCount(c.Request.Context(), user.ID, c.Param("id"))
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"applicationCount": count})
	})
}
