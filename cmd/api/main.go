package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "feedback/docs" // This is for Swagger
	"feedback/internal/auth"
	"feedback/internal/config"
	"feedback/internal/database"
	"feedback/internal/handlers"
	"feedback/internal/logger"
	"feedback/internal/middleware"
	"feedback/internal/models"
	"feedback/internal/repository"
	"feedback/internal/service"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Feedback API
// @version 1.0
// @description Backend API for the employee performance review platform

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logger
	logger.Setup(cfg.Log.Level)

	slog.Info("Starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
		"log_level", cfg.Log.Level,
	)

	// Initialize database
	db, err := database.New(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func(db *database.Database) {
		err := db.Close()
		if err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}(db)

	slog.Info("Database connection established")

	// Run database migrations
	migrator := database.NewMigrationExecutor(db.DB)
	if err := migrator.RunMigrations("./migrations"); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	jobRoleRepo := repository.NewJobRoleRepository(db.DB)
	criteriaRepo := repository.NewCriteriaRepository(db.DB)
	reviewRepo := repository.NewReviewRepository(db.DB)
	sheetRepo := repository.NewSheetRepository(db.DB)
	answerRepo := repository.NewAnswerRepository(db.DB)
	sheetAnswerRepo := repository.NewSheetAnswerRepository(db.DB)
	selfReviewRepo := repository.NewSelfReviewRepository(db.DB)
	auditRepo := repository.NewAuditRepository(db.DB)

	// Initialize services
	authService, err := auth.NewService(&cfg.JWT)
	if err != nil {
		slog.Error("Failed to initialize auth service", "error", err)
		os.Exit(1)
	}
	auditService := service.NewAuditService(auditRepo)
	userService := service.NewUserService(userRepo, jobRoleRepo, auditService)
	criteriaService := service.NewCriteriaService(jobRoleRepo, criteriaRepo, auditService)
	reviewService := service.NewReviewService(db.DB, reviewRepo, sheetRepo, answerRepo, sheetAnswerRepo, selfReviewRepo, userRepo, criteriaRepo, auditService)
	sheetService := service.NewSheetService(db.DB, sheetRepo, reviewRepo, answerRepo, sheetAnswerRepo, userRepo, criteriaRepo, jobRoleRepo, auditService, reviewService)
	answerService := service.NewAnswerService(answerRepo, sheetAnswerRepo, sheetRepo, reviewRepo, userRepo, criteriaRepo, auditService, reviewService)

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(authService, userRepo)
	rbacMw := middleware.NewRBACMiddleware()
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	userHandler := handlers.NewUserHandler(userService)
	jobRoleHandler := handlers.NewJobRoleHandler(criteriaService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	sheetHandler := handlers.NewSheetHandler(sheetService)
	answerHandler := handlers.NewAnswerHandler(answerService)
	auditHandler := handlers.NewAuditHandler(auditService)

	headOrAdmin := rbacMw.RequireAnyRole(models.RoleHead, models.RoleAdmin)

	// Setup router
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	// User routes
	mux.Handle("GET /api/v1/users/me", authMw.Authenticate(http.HandlerFunc(userHandler.GetMe)))
	mux.Handle("GET /api/v1/users", authMw.Authenticate(http.HandlerFunc(userHandler.ListUsers)))
	mux.Handle("GET /api/v1/users/{id}", authMw.Authenticate(http.HandlerFunc(userHandler.GetUser)))
	mux.Handle("PATCH /api/v1/users/{id}",
		authMw.Authenticate(
			headOrAdmin(
				http.HandlerFunc(userHandler.UpdateUser),
			),
		),
	)

	// Job role and criteria routes
	mux.Handle("GET /api/v1/job-roles", authMw.Authenticate(http.HandlerFunc(jobRoleHandler.ListJobRoles)))
	mux.Handle("POST /api/v1/job-roles",
		authMw.Authenticate(
			headOrAdmin(
				http.HandlerFunc(jobRoleHandler.CreateJobRole),
			),
		),
	)
	mux.Handle("GET /api/v1/job-roles/{id}/criteria", authMw.Authenticate(http.HandlerFunc(jobRoleHandler.ListCriteria)))
	mux.Handle("POST /api/v1/job-roles/{id}/criteria",
		authMw.Authenticate(
			headOrAdmin(
				http.HandlerFunc(jobRoleHandler.CreateCriteria),
			),
		),
	)
	mux.Handle("PATCH /api/v1/criteria/{id}",
		authMw.Authenticate(
			headOrAdmin(
				http.HandlerFunc(jobRoleHandler.UpdateCriteria),
			),
		),
	)
	mux.Handle("GET /api/v1/criteria/{id}/expectations", authMw.Authenticate(http.HandlerFunc(jobRoleHandler.ListExpectations)))
	mux.Handle("POST /api/v1/criteria/{id}/expectations",
		authMw.Authenticate(
			headOrAdmin(
				http.HandlerFunc(jobRoleHandler.CreateExpectation),
			),
		),
	)

	// Review routes
	mux.Handle("GET /api/v1/reviews", authMw.Authenticate(http.HandlerFunc(reviewHandler.ListReviews)))
	mux.Handle("POST /api/v1/reviews",
		authMw.Authenticate(
			headOrAdmin(
				http.HandlerFunc(reviewHandler.CreateReview),
			),
		),
	)
	mux.Handle("GET /api/v1/reviews/{id}", authMw.Authenticate(http.HandlerFunc(reviewHandler.GetReview)))
	mux.Handle("PATCH /api/v1/reviews/{id}",
		authMw.Authenticate(
			headOrAdmin(
				http.HandlerFunc(reviewHandler.UpdateReview),
			),
		),
	)
	mux.Handle("PUT /api/v1/reviews/{id}/weights",
		authMw.Authenticate(
			headOrAdmin(
				http.HandlerFunc(reviewHandler.SetWeights),
			),
		),
	)
	mux.Handle("PUT /api/v1/reviews/{id}/self-review", authMw.Authenticate(http.HandlerFunc(reviewHandler.UpdateSelfReview)))

	// Sheet routes
	mux.Handle("GET /api/v1/sheets", authMw.Authenticate(http.HandlerFunc(sheetHandler.ListMySheets)))
	mux.Handle("POST /api/v1/sheets",
		authMw.Authenticate(
			headOrAdmin(
				http.HandlerFunc(sheetHandler.CreateSheet),
			),
		),
	)
	mux.Handle("GET /api/v1/sheets/{id}", authMw.Authenticate(http.HandlerFunc(sheetHandler.GetSheet)))
	mux.Handle("PATCH /api/v1/sheets/{id}", authMw.Authenticate(http.HandlerFunc(sheetHandler.UpdateSheet)))
	mux.Handle("PUT /api/v1/sheets/{id}/answers/{criteriaId}", authMw.Authenticate(http.HandlerFunc(answerHandler.SaveAnswer)))
	mux.Handle("PUT /api/v1/sheets/{id}/sheet-answer", authMw.Authenticate(http.HandlerFunc(answerHandler.SaveSheetAnswer)))

	// Admin routes
	mux.Handle("GET /api/v1/admin/audit-logs",
		authMw.Authenticate(
			rbacMw.RequireAdmin(
				http.HandlerFunc(auditHandler.ListAuditLogs),
			),
		),
	)

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, err := w.Write([]byte(`{"status":"unhealthy","database":"error"}`))
			if err != nil {
				slog.Error("Failed to write health check response", "error", err)
			}
			return
		}
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(`{"status":"healthy","version":"` + cfg.App.Version + `"}`))
		if err != nil {
			slog.Error("Failed to write health check response", "error", err)
		}
	})

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Apply global middleware
	handler := middleware.LoggingMiddleware(
		middleware.SecurityHeaders(
			corsMw.Handler(
				rateLimiter.Limit(mux),
			),
		),
	)

	// Create server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
