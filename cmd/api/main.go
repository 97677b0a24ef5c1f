package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"flowrk-backend/config"
	_ "flowrk-backend/docs" // Important for Swagger
	v1 "flowrk-backend/internal/delivery/http/v1"
	"flowrk-backend/internal/domain"
	"flowrk-backend/internal/repository"
	"flowrk-backend/internal/repository/collection"
	firebasestore "flowrk-backend/internal/repository/firebase"
	"flowrk-backend/internal/repository/memory"
	mongostore "flowrk-backend/internal/repository/mongo"
	pgstore "flowrk-backend/internal/repository/postgres"
	redisrepo "flowrk-backend/internal/repository/redis"
	"flowrk-backend/internal/session"
	"flowrk-backend/internal/usecase"
	"flowrk-backend/pkg/auth"
	"flowrk-backend/pkg/database"
	"flowrk-backend/pkg/email"
	"flowrk-backend/pkg/logger"
	"flowrk-backend/pkg/redis"
	"flowrk-backend/pkg/validation"
)

// sessionCacheMaxAge bounds how long a revocation made by another instance can go unseen.
const sessionCacheMaxAge = time.Minute

// @title           Flowrk API
// @version         1.0
// @description     Hyperlocal job marketplace backend: jobs, worker and employer profiles, admin console.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting Flowrk backend", "port", cfg.Port, "store", cfg.StoreDriver)

	// 3. Setup Redis (optional, caches fall back to memory)
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, using in-memory fallbacks", "error", err)
	}
	defer redis.Close()

	// 4. Setup Store
	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 15*time.Second)
	backend, closeStore, err := openStore(bootCtx, cfg)
	cancelBoot()
	if err != nil {
		logger.Log.Error("Failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()
	store := repository.NewBoundedStore(backend, cfg.StoreDriver, time.Duration(cfg.StoreTimeoutSeconds)*time.Second)

	// 5. Setup Collections
	jobs := collection.New[domain.Job](store, domain.CollectionJobs, collection.GeneratedKeys)
	workers := collection.New[domain.WorkerProfile](store, domain.CollectionWorkers, collection.CallerKeys)
	employers := collection.New[domain.EmployerProfile](store, domain.CollectionEmployers, collection.CallerKeys)
	auditLogs := collection.New[domain.AuditLog](store, domain.CollectionAuditLogs, collection.GeneratedKeys)
	notifications := collection.New[domain.Notification](store, domain.CollectionNotifications, collection.GeneratedKeys)
	contacts := collection.New[domain.ContactMessage](store, domain.CollectionContactMessages, collection.GeneratedKeys)

	// 6. Setup Identity Provider and Caches
	sessions := auth.NewSessions(cfg.SessionSecret, time.Duration(cfg.SessionTTLMinutes)*time.Minute)
	provider := auth.NewGoogleProvider(auth.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		JWKSURL:      cfg.GoogleJWKSURL,
	}, sessions, auth.NewRevocations(redis.Client()))

	sessionCache := session.NewCache(provider, sessionCacheMaxAge)
	defer sessionCache.Close()

	roleTTL := time.Duration(cfg.RoleCacheTTLMinutes) * time.Minute
	roleCache := redisrepo.NewRoleCache(redis.Client(), roleTTL, memory.NewRoleCache(roleTTL))

	// 7. Setup Email Forwarding
	mailer := email.NewContactMailer(cfg)
	if !mailer.IsConfigured() {
		logger.Log.Warn("SMTP not configured - contact messages will be stored but not forwarded")
	}

	// 8. Setup UseCases
	validate := validation.New()
	links := usecase.LinkConfig{SiteName: cfg.SiteName, CountryCode: cfg.WhatsAppCountryCode}

	identityUC := usecase.NewIdentityUsecase(provider, sessionCache, roleCache, workers, employers, usecase.IdentityConfig{
		AdminEmails: cfg.AdminEmails,
		AuthTimeout: time.Duration(cfg.AuthTimeoutSeconds) * time.Second,
	})
	auditLogger := usecase.NewAuditLogger(auditLogs)
	contentUC := usecase.NewContentUsecase(store, notifications, contacts, auditLogger, mailer, identityUC.IsAdmin, validate)
	jobUC := usecase.NewJobUsecase(jobs, employers, validate, links)
	workerUC := usecase.NewWorkerUsecase(workers, employers, jobs, contentUC, validate, links)
	employerUC := usecase.NewEmployerUsecase(employers, workers, contentUC, validate)
	adminUC := usecase.NewAdminUsecase(jobs, workers, employers, auditLogs, auditLogger, identityUC.IsAdmin)

	var redisCheck func(ctx context.Context) error
	if redis.Client() != nil {
		redisCheck = redis.HealthCheck
	}
	healthUC := usecase.NewHealthUsecase(store, redisCheck)

	// 9. Setup Router
	validation.RegisterBindingValidators()
	router := v1.NewRouter(v1.RouterDeps{
		IdentityUC: identityUC,
		Sessions:   sessionCache,
		JobUC:      jobUC,
		WorkerUC:   workerUC,
		EmployerUC: employerUC,
		AdminUC:    adminUC,
		ContentUC:  contentUC,
		HealthUC:   healthUC,
		Config:     cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

// openStore connects the backend named by STORE_DRIVER. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config) (domain.PathStore, func(), error) {
	switch cfg.StoreDriver {
	case "memory", "":
		logger.Log.Warn("Using the in-memory store: data is lost on restart")
		return memory.NewStore(), func() {}, nil

	case "firebase":
		client, err := database.NewFirebaseDatabase(ctx, cfg.FirebaseDatabaseURL, cfg.FirebaseCredentials)
		if err != nil {
			return nil, nil, err
		}
		return firebasestore.NewStore(client), func() {}, nil

	case "postgres":
		pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			return nil, nil, err
		}
		store := pgstore.NewStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres schema: %w", err)
		}
		return store, pool.Close, nil

	case "mongo":
		client, err := database.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				logger.Log.Warn("mongo disconnect failed", "error", err)
			}
		}
		return mongostore.NewStore(client.Database(cfg.MongoDatabase)), closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
