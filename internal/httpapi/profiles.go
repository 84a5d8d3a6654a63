package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hirepath/hirepath/internal/identity"
	"github.com/hirepath/hirepath/internal/profiles"
)

// RegisterProfileRoutes wires the candidate profile, resume and profile
// section endpoints under /me.
func RegisterProfileRoutes(rg *gin.RouterGroup, svc *profiles.Service, ident *identity.Service) {
	rg.GET("/me/profile", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		profile, err := svc.GetMine(c.Request.Context(), user.ID)
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	})

	rg.PUT("/me/profile", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		var req struct {
			Headline        string            `json:"headline"`
			Summary         string            `json:"summary"`
			Location        string            `json:"location"`
			ContactLinks    map[string]string `json:"contactLinks"`
			YearsExperience int               `json:"yearsExperience"`
			Skills          []string          `json:"skills"`
			OpenToWork      bool              `json:"openToWork"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		profile, err := svc.UpsertMine(c.Request.Context(), user.ID, profiles.ProfileInput{
			Headline:        req.Headline,
			Summary:         req.Summary,
			Location:        req.Location,
			ContactLinks:    req.ContactLinks,
			YearsExperience: req.YearsExperience,
			Skills:          req.Skills,
			OpenToWork:      req.OpenToWork,
		})
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	})

	rg.GET("/me/resumes", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		resumes, err := svc.ListResumes(c.Request.Context(), user.ID)
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, resumes)
	})

	rg.POST("/me/resumes", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read uploaded file"})
			return
		}
		defer file.Close()
		resume, err := svc.SaveResume(c.Request.Context(), user.ID, profiles.ResumeUpload{
			Title:       c.PostForm("title"),
			FileName:    fileHeader.Filename,
			Size:        fileHeader.Size,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Body:        file,
			MakeDefault: c.PostForm("makeDefault") == "true",
		})
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusCreated, resume)
	})

	rg.DELETE("/me/resumes/:id", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		if err := svc.DeleteResume(c.Request.Context(), user.ID, c.Param("id")); err != nil {
			abortError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	rg.GET("/me/resumes/:id/url", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		url, err := svc.ResumeURL(c.Request.Context(), user.ID, c.Param("id"))
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": url})
	})

	registerExperienceRoutes(rg, svc, ident)
	registerEducationRoutes(rg, svc, ident)
	registerCertificationRoutes(rg, svc, ident)
}

func registerExperienceRoutes(rg *gin.RouterGroup, svc *profiles.Service, ident *identity.Service) {
	type experienceRequest struct {
		Title       string     `json:"title" binding:"required"`
		Company     string     `json:"company" binding:"required"`
		Location    string     `json:"location"`
		StartDate   time.Time  `json:"startDate" binding:"required"`
		EndDate     *time.Time `json:"endDate"`
		Description string     `json:"description"`
		Order       int        `json:"order"`
	}
	toExperience := func(req experienceRequest) *profiles.Experience {
		return &profiles.Experience{
			Title:       req.Title,
			Company:     req.Company,
			Location:    req.Location,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			Description: req.Description,
			Order:       req.Order,
		}
	}

	rg.GET("/me/experiences", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		rows, err := svc.ListExperiences(c.Request.Context(), user.ID)
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	})

	rg.POST("/me/experiences", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		var req experienceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		row, err := svc.AddExperience(c.Request.Context(), user.ID, toExperience(req))
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusCreated, row)
	})

	rg.PUT("/me/experiences/:id", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		var req experienceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		exp := toExperience(req)
		exp.ID = c.Param("id")
		row, err := svc.UpdateExperience(c.Request.Context(), user.ID, exp)
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, row)
	})

	rg.DELETE("/me/experiences/:id", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		if err := svc.DeleteExperience(c.Request.Context(), user.ID, c.Param("id")); err != nil {
			abortError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func registerEducationRoutes(rg *gin.RouterGroup, svc *profiles.Service, ident *identity.Service) {
	type educationRequest struct {
		School    string     `json:"school" binding:"required"`
		Degree    string     `json:"degree"`
		Field     string     `json:"field"`
		StartDate time.Time  `json:"startDate" binding:"required"`
		EndDate   *time.Time `json:"endDate"`
		Order     int        `json:"order"`
	}
	toEducation := func(req educationRequest) *profiles.Education {
		return &profiles.Education{
			School:    req.School,
			Degree:    req.Degree,
			Field:     req.Field,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			Order:     req.Order,
		}
	}

	rg.GET("/me/educations", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		rows, err := svc.ListEducations(c.Request.Context(), user.ID)
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	})

	rg.POST("/me/educations", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		var req educationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		row, err := svc.AddEducation(c.Request.Context(), user.ID, toEducation(req))
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusCreated, row)
	})

	rg.PUT("/me/educations/:id", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		var req educationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		edu := toEducation(req)
		edu.ID = c.Param("id")
		row, err := svc.UpdateEducation(c.Request.Context(), user.ID, edu)
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, row)
	})

	rg.DELETE("/me/educations/:id", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		if err := svc.DeleteEducation(c.Request.Context(), user.ID, c.Param("id")); err != nil {
			abortError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func registerCertificationRoutes(rg *gin.RouterGroup, svc *profiles.Service, ident *identity.Service) {
	type certificationRequest struct {
		Name          string     `json:"name" binding:"required"`
		Issuer        string     `json:"issuer"`
		IssueDate     time.Time  `json:"issueDate" binding:"required"`
		ExpiryDate    *time.Time `json:"expiryDate"`
		CredentialURL string     `json:"credentialUrl"`
	}
	toCertification := func(req certificationRequest) *profiles.Certification {
		return &profiles.Certification{
			Name:          req.Name,
			Issuer:        req.Issuer,
			IssueDate:     req.IssueDate,
			ExpiryDate:    req.ExpiryDate,
			CredentialURL: req.CredentialURL,
		}
	}

	rg.GET("/me/certifications", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		rows, err := svc.ListCertifications(c.Request.Context(), user.ID)
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	})

	rg.POST("/me/certifications", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		var req certificationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		row, err := svc.AddCertification(c.Request.Context(), user.ID, toCertification(req))
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusCreated, row)
	})

	rg.PUT("/me/certifications/:id", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		var req certificationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cert := toCertification(req)
		cert.ID = c.Param("id")
		row, err := svc.UpdateCertification(c.Request.Context(), user.ID, cert)
		if err != nil {
			abortError(c, err)
			return
		}
		c.JSON(http.StatusOK, row)
	})

	rg.DELETE("/me/certifications/:id", func(c *gin.Context) {
		user, ok := currentUser(c, ident)
		if !ok {
			return
		}
		if err := svc.DeleteCertification(c.Request.Context(), user.ID, c.Param("id")); err != nil {
			abortError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}
