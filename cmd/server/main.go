package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hirepath/hirepath/internal/apperrors"
	"github.com/hirepath/hirepath/internal/applications"
	"github.com/hirepath/hirepath/internal/authz"
	"github.com/hirepath/hirepath/internal/config"
	"github.com/hirepath/hirepath/internal/database"
	"github.com/hirepath/hirepath/internal/favorites"
	"github.com/hirepath/hirepath/internal/httpapi"
	"github.com/hirepath/hirepath/internal/identity"
	"github.com/hirepath/hirepath/internal/invitations"
	"github.com/hirepath/hirepath/internal/jobs"
	"github.com/hirepath/hirepath/internal/notifications"
	"github.com/hirepath/hirepath/internal/oidc"
	"github.com/hirepath/hirepath/internal/plans"
	"github.com/hirepath/hirepath/internal/profiles"
	"github.com/hirepath/hirepath/internal/storage"
	"github.com/hirepath/hirepath/internal/webhook"
	"github.com/hirepath/hirepath/pkg/logger"
	"github.com/hirepath/hirepath/pkg/metrics"
	"github.com/hirepath/hirepath/pkg/middleware"
)

var startTime = time.Now()

// unavailableStore stands in when no object storage is configured so the
// rest of the API still works; resume operations report an upstream failure.
type unavailableStore struct{}

func (unavailableStore) Put(context.Context, string, io.Reader, int64, string) error {
	return fmt.Errorf("%w: object storage not configured", apperrors.ErrUpstreamFailure)
}

func (unavailableStore) Remove(context.Context, string) error {
	return fmt.Errorf("%w: object storage not configured", apperrors.ErrUpstreamFailure)
}

func (unavailableStore) PresignedGet(context.Context, string, time.Duration) (string, error) {
	return "", fmt.Errorf("%w: object storage not configured", apperrors.ErrUpstreamFailure)
}

// repos bundles every repository behind its interface so the Mongo and
// in-memory wirings are interchangeable.
type repos struct {
	users     identity.UserRepository
	companies identity.CompanyRepository
	members   identity.MemberRepository
	jobs      jobs.Repository
	apps      applications.Repository
	favs      favorites.Repository
	notes     notifications.Repository
	profiles  profiles.ProfileRepository
	resumes   profiles.ResumeRepository
	exps      profiles.ExperienceRepository
	edus      profiles.EducationRepository
	certs     profiles.CertificationRepository
}

func memoryRepos() *repos {
	return &repos{
		users:     identity.NewMemoryUserRepository(),
		companies: identity.NewMemoryCompanyRepository(),
		members:   identity.NewMemoryMemberRepository(),
		jobs:      jobs.NewMemoryRepository(),
		apps:      applications.NewMemoryRepository(),
		favs:      favorites.NewMemoryRepository(),
		notes:     notifications.NewMemoryRepository(),
		profiles:  profiles.NewMemoryProfileRepository(),
		resumes:   profiles.NewMemoryResumeRepository(),
		exps:      profiles.NewMemoryExperienceRepository(),
		edus:      profiles.NewMemoryEducationRepository(),
		certs:     profiles.NewMemoryCertificationRepository(),
	}
}

func mongoRepos(db *mongo.Database) *repos {
	return &repos{
		users:     identity.NewMongoUserRepository(db.Collection("users")),
		companies: identity.NewMongoCompanyRepository(db.Collection("companies")),
		members:   identity.NewMongoMemberRepository(db.Collection("company_members")),
		jobs:      jobs.NewMongoRepository(db.Collection("job_listings")),
		apps:      applications.NewMongoRepository(db.Collection("applications")),
		favs:      favorites.NewMongoRepository(db.Collection("favorites")),
		notes:     notifications.NewMongoRepository(db.Collection("notifications")),
		profiles:  profiles.NewMongoProfileRepository(db.Collection("profiles")),
		resumes:   profiles.NewMongoResumeRepository(db.Collection("resumes")),
		exps:      profiles.NewMongoExperienceRepository(db.Collection("experiences")),
		edus:      profiles.NewMongoEducationRepository(db.Collection("educations")),
		certs:     profiles.NewMongoCertificationRepository(db.Collection("certifications")),
	}
}

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: issuer=%v mongo=%v redis=%v", cfg.Identity.Issuer != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "")

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS for dev/test. Production should sit behind a stricter
	// policy at the edge.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})

	ctx := context.Background()

	// Redis first so the rate limiter can use it when configured.
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			rdb = nil
		} else {
			logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Mongo with retry to tolerate startup races; memory repos keep the
	// service usable for local development without a database.
	var store *repos
	var mongoOK bool
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts, using memory repositories: %v", maxAttempts, errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			db := client.Database(cfg.MongoDB.Database)
			if err := database.EnsureIndexes(ctx, db); err != nil {
				logger.Fatalf("%v", err)
			}
			store = mongoRepos(db)
			mongoOK = true
		}
	}
	if store == nil {
		store = memoryRepos()
	}

	var objectStore profiles.ObjectStore
	if os.Getenv("MINIO_ENDPOINT") != "" {
		ms, err := storage.NewMinIOStorage(storage.LoadMinIOConfig())
		if err != nil {
			logger.Fatalf("failed to initialize object storage: %v", err)
		}
		objectStore = ms
	} else {
		logger.Warnf("MINIO_ENDPOINT not set, resume uploads will fail")
		objectStore = unavailableStore{}
	}

	// Token verifier: real OIDC when an issuer is configured, a shared-secret
	// verifier for local development, and the claims-only verifier strictly
	// for integration tests.
	var verifier middleware.Verifier
	switch {
	case cfg.Identity.Issuer != "" && cfg.Identity.ClientID != "":
		v, err := oidc.NewVerifier(ctx, cfg.Identity.Issuer, cfg.Identity.ClientID)
		if err != nil {
			logger.Fatalf("failed to initialize OIDC verifier: %v", err)
		}
		verifier = v
	case cfg.Identity.LocalSecret != "":
		v, err := oidc.NewLocalVerifier(cfg.Identity.LocalSecret)
		if err != nil {
			logger.Fatalf("failed to initialize local verifier: %v", err)
		}
		logger.Warnf("using shared-secret token verification (development mode)")
		verifier = v
	case strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true"):
		logger.Warnf("enabling insecure token verifier (integration mode)")
		verifier = oidc.NewInsecureVerifier()
	default:
		logger.Fatalf("no token verifier configured: set IDENTITY_ISSUER, IDENTITY_LOCAL_SECRET or ALLOW_INSECURE_TOKEN")
	}

	// Domain services.
	ident := identity.NewService(store.users, store.companies, store.members)
	guard := authz.NewGuard(store.members)
	planSvc := plans.NewService(store.companies, store.members, store.jobs)
	inbox := notifications.NewService(store.notes)
	profileSvc := profiles.NewService(store.profiles, store.resumes, store.exps, store.edus, store.certs, objectStore)
	jobsSvc := jobs.NewService(store.jobs, guard, planSvc, store.companies, inbox)
	appsSvc := applications.NewService(store.apps, jobsSvc, guard, store.users, profileSvc, profileSvc, store.companies, inbox)
	jobsSvc.SetApplicantSource(appsSvc)
	ident.SetJobCloser(jobsSvc)
	favSvc := favorites.NewService(store.favs, jobsSvc)
	inviteSvc := invitations.NewService(guard, planSvc, store.companies, store.members, cfg.Identity.APIBaseURL, cfg.Identity.APIKey)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{
			"mongo": mongoOK || cfg.MongoDB.URI == "",
			"redis": rdb != nil || !cfg.RateLimit.UseRedis,
		}
		ready := deps["mongo"] && deps["redis"]
		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": fmt.Sprintf("%s", time.Since(startTime))})
	})

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.Identity.WebhookSecret != "" {
		wv, err := webhook.NewVerifier(cfg.Identity.WebhookSecret)
		if err != nil {
			logger.Fatalf("failed to initialize webhook verifier: %v", err)
		}
		httpapi.RegisterWebhookRoutes(r.Group(""), wv, ident)
	} else {
		logger.Warnf("IDENTITY_WEBHOOK_SECRET not set, webhook endpoint disabled")
	}

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(verifier))
	httpapi.RegisterJobRoutes(api, jobsSvc, ident)
	httpapi.RegisterApplicationRoutes(api, appsSvc, ident)
	httpapi.RegisterCompanyRoutes(api, ident, guard, planSvc, inviteSvc)
	httpapi.RegisterProfileRoutes(api, profileSvc, ident)
	httpapi.RegisterFavoriteRoutes(api, favSvc, ident)
	httpapi.RegisterNotificationRoutes(api, inbox, ident)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting hirepath API on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
