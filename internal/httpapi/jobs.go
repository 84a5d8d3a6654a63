package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hirepath/hirepath/internal/identity"
	"github.com/hirepath/hirepath/internal/jobs"
)

// RegisterJobRoutes wires the listing lifecycle and search endpoints.
func RegisterJobRoutes(rg *gin.RouterGroup, svc *jobs.Service, ident *identity.Service) {
	rg.GET("/jobs", func(c *gin.Context) {
		f := jobs.SearchFilter{
			Text:           c.Query("text"),
			CompanyID:      c.Query("companyId"),
			Location:       c.Query("location"),
			WorkplaceType:  jobs.WorkplaceType(c.Query("workplaceType")),
			EmploymentType: jobs.EmploymentType(c.Query("employmentType")),
			IncludeClosed:  c.Query("includeClosed") == "true",
			Limit:          intQuery(c, "limit", 0),
		}
		if v := c.Query("minSalary"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				f.MinSalary = &n
			}
		}
		if v := c.Query("tags"); v != "" {
			f.Tags = strings.Split(v, ",")
		}
		list, err := svc.Search(c.Request.Context(), f)
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	rg.GET("/jobs/:id", func(c *gin.Context) {
		j, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, j)
	})

	rg.POST("/jobs", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		var req struct {
			CompanyID         string              `json:"companyId" binding:"required"`
			Title             string              `json:"title" binding:"required"`
			Description       string              `json:"description"`
			Location          string              `json:"location"`
			EmploymentType    jobs.EmploymentType `json:"employmentType"`
			WorkplaceType     jobs.WorkplaceType  `json:"workplaceType"`
			SalaryMin         *int64              `json:"salaryMin"`
			SalaryMax         *int64              `json:"salaryMax"`
			SalaryCurrency    string              `json:"salaryCurrency"`
			Tags              []string            `json:"tags"`
			AutoCloseOnAccept bool                `json:"autoCloseOnAccept"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		j, err := svc.Create(c.Request.Context(), user.ID, jobs.CreateInput{
			CompanyID:         req.CompanyID,
			Title:             req.Title,
			Description:       req.Description,
			Location:          req.Location,
			EmploymentType:    req.EmploymentType,
			WorkplaceType:     req.WorkplaceType,
			SalaryMin:         req.SalaryMin,
			SalaryMax:         req.SalaryMax,
			SalaryCurrency:    req.SalaryCurrency,
			Tags:              req.Tags,
			AutoCloseOnAccept: req.AutoCloseOnAccept,
		})
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusCreated, j)
	})

	rg.PATCH("/jobs/:id", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		var req struct {
			Title             *string              `json:"title"`
			Description       *string              `json:"description"`
			Location          *string              `json:"location"`
			EmploymentType    *jobs.EmploymentType `json:"employmentType"`
			WorkplaceType     *jobs.WorkplaceType  `json:"workplaceType"`
			SalaryMin         *int64               `json:"salaryMin"`
			SalaryMax         *int64               `json:"salaryMax"`
			SalaryCurrency    *string              `json:"salaryCurrency"`
			Tags              *[]string            `json:"tags"`
			IsActive          *bool                `json:"isActive"`
			AutoCloseOnAccept *bool                `json:"autoCloseOnAccept"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		j, err := svc.Update(c.Request.Context(), user.ID, c.Param("id"), jobs.UpdateInput{
			Title:             req.Title,
			Description:       req.Description,
			Location:          req.Location,
			EmploymentType:    req.EmploymentType,
			WorkplaceType:     req.WorkplaceType,
			SalaryMin:         req.SalaryMin,
			SalaryMax:         req.SalaryMax,
			SalaryCurrency:    req.SalaryCurrency,
			Tags:              req.Tags,
			IsActive:          req.IsActive,
			AutoCloseOnAccept: req.AutoCloseOnAccept,
		})
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, j)
	})

	rg.POST("/jobs/:id/close", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		j, err := svc.Close(c.Request.Context(), user.ID, c.Param("id"))
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, j)
	})

	rg.GET("/companies/:id/jobs", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		list, err := svc.CompanyJobs(c.Request.Context(), user.ID, c.Param("id"),
			c.Query("includeClosed") == "true", intQuery(c, "limit", 0))
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})
}

func intQuery(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
