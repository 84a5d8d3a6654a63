package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirepath/hirepath/internal/applications"
	"github.com/hirepath/hirepath/internal/authz"
	"github.com/hirepath/hirepath/internal/favorites"
	"github.com/hirepath/hirepath/internal/identity"
	"github.com/hirepath/hirepath/internal/invitations"
	"github.com/hirepath/hirepath/internal/jobs"
	"github.com/hirepath/hirepath/internal/notifications"
	"github.com/hirepath/hirepath/internal/plans"
	"github.com/hirepath/hirepath/internal/profiles"
	"github.com/hirepath/hirepath/internal/webhook"
	"github.com/hirepath/hirepath/pkg/middleware"
)

// staticToken hands back a fixed claims map, standing in for a verified
// ID token.
type staticToken map[string]interface{}

func (t staticToken) Claims(v interface{}) error {
	m, ok := v.(*map[string]interface{})
	if !ok {
		return fmt.Errorf("unsupported claims target %T", v)
	}
	*m = t
	return nil
}

// subjectVerifier accepts any bearer token and uses it as the subject, so
// each test request can pick its identity.
type subjectVerifier struct{}

func (subjectVerifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	return staticToken{
		"sub":         raw,
		"email":       raw + "@example.com",
		"given_name":  "Casey",
		"family_name": raw,
	}, nil
}

type nullStore struct{}

func (nullStore) Put(_ context.Context, _ string, r io.Reader, _ int64, _ string) error {
	_, err := io.Copy(io.Discard, r)
	return err
}

func (nullStore) Remove(context.Context, string) error { return nil }

func (nullStore) PresignedGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.example/" + key, nil
}

const webhookSecret = "whsec_" + "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

type apiFixture struct {
	router   *gin.Engine
	ident    *identity.Service
	members  *identity.MemoryMemberRepository
	inbox    *notifications.Service
	jobsSvc  *jobs.Service
	verifier *webhook.Verifier
	company  *identity.Company
	upstream []*http.Request
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := identity.NewMemoryUserRepository()
	companies := identity.NewMemoryCompanyRepository()
	members := identity.NewMemoryMemberRepository()
	ident := identity.NewService(users, companies, members)

	guard := authz.NewGuard(members)
	jobsRepo := jobs.NewMemoryRepository()
	planSvc := plans.NewService(companies, members, jobsRepo)
	inbox := notifications.NewService(notifications.NewMemoryRepository())
	profileSvc := profiles.NewService(
		profiles.NewMemoryProfileRepository(),
		profiles.NewMemoryResumeRepository(),
		profiles.NewMemoryExperienceRepository(),
		profiles.NewMemoryEducationRepository(),
		profiles.NewMemoryCertificationRepository(),
		nullStore{},
	)
	jobsSvc := jobs.NewService(jobsRepo, guard, planSvc, companies, inbox)
	apps := applications.NewService(applications.NewMemoryRepository(), jobsSvc, guard, users, profileSvc, profileSvc, companies, inbox)
	jobsSvc.SetApplicantSource(apps)
	ident.SetJobCloser(jobsSvc)
	favSvc := favorites.NewService(favorites.NewMemoryRepository(), jobsSvc)

	f := &apiFixture{ident: ident, members: members, inbox: inbox, jobsSvc: jobsSvc}

	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.upstream = append(f.upstream, r)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"id":"inv_1"}`)
	}))
	t.Cleanup(remote.Close)
	inviteSvc := invitations.NewService(guard, planSvc, companies, members, remote.URL, "sk_test")

	verifier, err := webhook.NewVerifier(webhookSecret)
	require.NoError(t, err)
	f.verifier = verifier

	router := gin.New()
	RegisterWebhookRoutes(router.Group(""), verifier, ident)
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(subjectVerifier{}))
	RegisterJobRoutes(api, jobsSvc, ident)
	RegisterApplicationRoutes(api, apps, ident)
	RegisterCompanyRoutes(api, ident, guard, planSvc, inviteSvc)
	RegisterProfileRoutes(api, profileSvc, ident)
	RegisterFavoriteRoutes(api, favSvc, ident)
	RegisterNotificationRoutes(api, inbox, ident)
	f.router = router

	company, err := companies.UpsertByExternalOrgID(context.Background(), &identity.Company{
		ExternalOrgID: "org_1",
		Name:          "Acme Robotics",
		Slug:          "acme-robotics",
		Plan:          identity.PlanGrowth,
	})
	require.NoError(t, err)
	f.company = company
	f.addMember(t, "ext_admin", identity.RoleAdmin)
	return f
}

// addMember resolves the subject to a local user (creating it like a first
// authenticated request would) and grants an active membership.
func (f *apiFixture) addMember(t *testing.T, sub string, role identity.Role) *identity.User {
	t.Helper()
	u, err := f.ident.UpsertUserFromClaims(context.Background(), map[string]interface{}{
		"sub":         sub,
		"email":       sub + "@example.com",
		"given_name":  "Casey",
		"family_name": sub,
	})
	require.NoError(t, err)
	_, err = f.members.Upsert(context.Background(), &identity.CompanyMember{
		CompanyID: f.company.ID,
		UserID:    u.ID,
		Role:      role,
		Status:    identity.MemberActive,
	})
	require.NoError(t, err)
	return u
}

func (f *apiFixture) do(t *testing.T, method, path, sub string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sub != "" {
		req.Header.Set("Authorization", "Bearer "+sub)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func (f *apiFixture) createJob(t *testing.T, sub, title string) *jobs.JobListing {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/v1/jobs", sub, gin.H{
		"companyId":      f.company.ID,
		"title":          title,
		"description":    "Build robots.",
		"location":       "Berlin",
		"employmentType": "full_time",
		"workplaceType":  "remote",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var j jobs.JobListing
	decodeJSON(t, w, &j)
	return &j
}

func TestRequiresAuthentication(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/me/notifications", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJobLifecycleRoutes(t *testing.T) {
	f := newAPIFixture(t)
	j := f.createJob(t, "ext_admin", "Robotics Engineer")
	require.True(t, j.IsActive)
	require.Equal(t, "Acme Robotics", j.CompanyName)

	// public read
	w := f.do(t, http.MethodGet, "/api/v1/jobs/"+j.ID, "ext_visitor", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// search
	w = f.do(t, http.MethodGet, "/api/v1/jobs?text=robotics", "ext_visitor", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []jobs.JobListing
	decodeJSON(t, w, &list)
	require.Len(t, list, 1)

	// partial update
	w = f.do(t, http.MethodPatch, "/api/v1/jobs/"+j.ID, "ext_admin", gin.H{"title": "Senior Robotics Engineer"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated jobs.JobListing
	decodeJSON(t, w, &updated)
	assert.Equal(t, "Senior Robotics Engineer", updated.Title)

	// non-members cannot manage listings
	w = f.do(t, http.MethodPatch, "/api/v1/jobs/"+j.ID, "ext_visitor", gin.H{"title": "x"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/jobs/"+j.ID+"/close", "ext_admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var closed jobs.JobListing
	decodeJSON(t, w, &closed)
	assert.False(t, closed.IsActive)

	// company dashboard needs membership
	w = f.do(t, http.MethodGet, "/api/v1/companies/"+f.company.ID+"/jobs?includeClosed=true", "ext_visitor", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	w = f.do(t, http.MethodGet, "/api/v1/companies/"+f.company.ID+"/jobs?includeClosed=true", "ext_admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestApplicationRoutes(t *testing.T) {
	f := newAPIFixture(t)
	j := f.createJob(t, "ext_admin", "Robotics Engineer")

	w := f.do(t, http.MethodPost, "/api/v1/applications", "ext_cand", gin.H{
		"jobId":       j.ID,
		"coverLetter": "Hi there",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var app applications.Application
	decodeJSON(t, w, &app)
	require.Equal(t, applications.StatusSubmitted, app.Status)

	// duplicate apply
	w = f.do(t, http.MethodPost, "/api/v1/applications", "ext_cand", gin.H{"jobId": j.ID})
	require.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/applications/mine", "ext_cand", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []applications.Application
	decodeJSON(t, w, &mine)
	require.Len(t, mine, 1)

	// applicants cannot decide
	w = f.do(t, http.MethodPost, "/api/v1/applications/"+app.ID+"/status", "ext_cand", gin.H{"status": "accepted"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/applications/"+app.ID+"/status", "ext_admin", gin.H{"status": "in_review"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/companies/"+f.company.ID+"/applications?status=in_review", "ext_admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []applications.Application
	decodeJSON(t, w, &rows)
	require.Len(t, rows, 1)

	w = f.do(t, http.MethodPost, "/api/v1/applications/"+app.ID+"/withdraw", "ext_cand", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var withdrawn applications.Application
	decodeJSON(t, w, &withdrawn)
	assert.Equal(t, applications.StatusWithdrawn, withdrawn.Status)
}

func TestProfileAndResumeRoutes(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/me/profile", "ext_cand", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPut, "/api/v1/me/profile", "ext_cand", gin.H{
		"headline":        "Robotics engineer",
		"yearsExperience": 4,
		"skills":          []string{"Go", " go ", "ROS"},
		"openToWork":      true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var p profiles.Profile
	decodeJSON(t, w, &p)
	assert.Equal(t, []string{"Go", "ROS"}, p.Skills)

	w = f.do(t, http.MethodGet, "/api/v1/me/profile", "ext_cand", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// multipart resume upload
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "cv.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 stub"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("title", "Main CV"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/me/resumes", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer ext_cand")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resume profiles.Resume
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resume))
	assert.Equal(t, "Main CV", resume.Title)
	assert.True(t, resume.IsDefault)

	w = f.do(t, http.MethodGet, "/api/v1/me/resumes/"+resume.ID+"/url", "ext_cand", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var urlResp map[string]string
	decodeJSON(t, w, &urlResp)
	assert.Contains(t, urlResp["url"], "https://storage.example/")

	// another user cannot touch it
	w = f.do(t, http.MethodDelete, "/api/v1/me/resumes/"+resume.ID, "ext_other", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = f.do(t, http.MethodDelete, "/api/v1/me/resumes/"+resume.ID, "ext_cand", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// profile sections
	w = f.do(t, http.MethodPost, "/api/v1/me/experiences", "ext_cand", gin.H{
		"title":     "Engineer",
		"company":   "Acme",
		"startDate": "2020-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var exp profiles.Experience
	decodeJSON(t, w, &exp)

	w = f.do(t, http.MethodPut, "/api/v1/me/experiences/"+exp.ID, "ext_cand", gin.H{
		"title":     "Senior Engineer",
		"company":   "Acme",
		"startDate": "2020-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/me/experiences", "ext_cand", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var exps []profiles.Experience
	decodeJSON(t, w, &exps)
	require.Len(t, exps, 1)
	assert.Equal(t, "Senior Engineer", exps[0].Title)

	w = f.do(t, http.MethodDelete, "/api/v1/me/experiences/"+exp.ID, "ext_cand", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestFavoriteRoutes(t *testing.T) {
	f := newAPIFixture(t)
	j := f.createJob(t, "ext_admin", "Robotics Engineer")

	w := f.do(t, http.MethodPut, "/api/v1/jobs/"+j.ID+"/favorite", "ext_cand", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/jobs/"+j.ID+"/favorite", "ext_cand", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fav map[string]bool
	decodeJSON(t, w, &fav)
	assert.True(t, fav["favorited"])

	w = f.do(t, http.MethodGet, "/api/v1/me/favorites?expand=jobs", "ext_cand", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var expanded []jobs.JobListing
	decodeJSON(t, w, &expanded)
	require.Len(t, expanded, 1)

	w = f.do(t, http.MethodDelete, "/api/v1/jobs/"+j.ID+"/favorite", "ext_cand", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/me/favorites", "ext_cand", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var plain []favorites.Favorite
	decodeJSON(t, w, &plain)
	require.Empty(t, plain)
}

func TestNotificationRoutes(t *testing.T) {
	f := newAPIFixture(t)
	u := f.addMember(t, "ext_reader", identity.RoleMember)
	require.NoError(t, f.inbox.Notify(context.Background(), u.ID,
		notifications.TypeJobClosed, "Position closed", "Gone.", "/jobs/x", nil))

	w := f.do(t, http.MethodGet, "/api/v1/me/notifications/unread-count", "ext_reader", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var count map[string]int64
	decodeJSON(t, w, &count)
	require.EqualValues(t, 1, count["count"])

	w = f.do(t, http.MethodGet, "/api/v1/me/notifications?unreadOnly=true", "ext_reader", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []notifications.Notification
	decodeJSON(t, w, &rows)
	require.Len(t, rows, 1)

	w = f.do(t, http.MethodPost, "/api/v1/me/notifications/"+rows[0].ID+"/read", "ext_reader", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/me/notifications/unread-count", "ext_reader", nil)
	decodeJSON(t, w, &count)
	require.EqualValues(t, 0, count["count"])
}

func TestCompanyRoutes(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/me/company-context?externalOrgId=org_1", "ext_admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ctxResp struct {
		Company    identity.Company        `json:"company"`
		Membership *identity.CompanyMember `json:"membership"`
	}
	decodeJSON(t, w, &ctxResp)
	assert.Equal(t, f.company.ID, ctxResp.Company.ID)
	require.NotNil(t, ctxResp.Membership)
	assert.Equal(t, identity.RoleAdmin, ctxResp.Membership.Role)

	w = f.do(t, http.MethodGet, "/api/v1/me/company-context?externalOrgId=org_unknown", "ext_admin", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/companies/"+f.company.ID+"/usage", "ext_admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var usage plans.Usage
	decodeJSON(t, w, &usage)
	assert.EqualValues(t, 1, usage.ActiveMembers)

	// plan sync is admin only
	f.addMember(t, "ext_recruiter", identity.RoleRecruiter)
	w = f.do(t, http.MethodPost, "/api/v1/companies/"+f.company.ID+"/plan", "ext_recruiter",
		gin.H{"plan": "starter"})
	require.Equal(t, http.StatusForbidden, w.Code)
	w = f.do(t, http.MethodPost, "/api/v1/companies/"+f.company.ID+"/plan", "ext_admin",
		gin.H{"plan": "starter", "seatLimit": 12})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/companies/"+f.company.ID+"/members", "ext_admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var members []identity.CompanyMember
	decodeJSON(t, w, &members)
	require.Len(t, members, 2)
}

func TestInvitationRoute(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/companies/"+f.company.ID+"/invitations", "ext_admin",
		gin.H{"email": "new.hire@example.com", "role": "recruiter"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var member identity.CompanyMember
	decodeJSON(t, w, &member)
	assert.Equal(t, identity.MemberInvited, member.Status)
	require.Len(t, f.upstream, 1)
	assert.Equal(t, "/organizations/org_1/invitations", f.upstream[0].URL.Path)

	// non-admins may not invite
	f.addMember(t, "ext_recruiter", identity.RoleRecruiter)
	w = f.do(t, http.MethodPost, "/api/v1/companies/"+f.company.ID+"/invitations", "ext_recruiter",
		gin.H{"email": "x@example.com", "role": "member"})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Len(t, f.upstream, 1)
}

func signedWebhookRequest(t *testing.T, verifier *webhook.Verifier, id string, body []byte) *http.Request {
	t.Helper()
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewReader(body))
	req.Header.Set(webhook.HeaderID, id)
	req.Header.Set(webhook.HeaderTimestamp, ts)
	req.Header.Set(webhook.HeaderSignature, "v1,"+verifier.Sign(id, ts, body))
	return req
}

func TestWebhookRoute(t *testing.T) {
	f := newAPIFixture(t)

	body := []byte(`{"type":"user.created","data":{"id":"ext_hook","email_address":"hook@example.com","first_name":"Hope","last_name":"Hook"}}`)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, signedWebhookRequest(t, f.verifier, "msg_1", body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the mirror row now exists, so the subject can authenticate
	resp := f.do(t, http.MethodGet, "/api/v1/me/notifications/unread-count", "ext_hook", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	// tampered payload is rejected before processing
	req := signedWebhookRequest(t, f.verifier, "msg_2", body)
	req.Header.Set(webhook.HeaderSignature, "v1,AAAA")
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// unknown secret
	other, err := webhook.NewVerifier("whsec_" + base64.StdEncoding.EncodeToString([]byte("another-secret-another-secret!!!")))
	require.NoError(t, err)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, signedWebhookRequest(t, other, "msg_3", body))
	require.Equal(t, http.StatusBadRequest, w.Code)
}
