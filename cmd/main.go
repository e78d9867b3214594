package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"water-service/internal/config"
	"water-service/internal/database/minio"
	"water-service/internal/database/postgres"
	"water-service/internal/database/redis"
	"water-service/internal/event"
	"water-service/internal/handlers"
	"water-service/internal/mail"
	"water-service/internal/metrics"
	"water-service/internal/repository"
	"water-service/internal/services"
	"water-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func setupLogging(logDir string) (*os.File, error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic: %v\n", r)
		}
	}()

	fmt.Println("Log directory:", logDir)
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	if absPath, err := filepath.Abs(logFile); err == nil {
		fmt.Printf("Log file at absolute path: %s\n", absPath)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	return file, nil
}

func main() {
	cfg := config.New()

	logFile, err := setupLogging(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	// db connection; blocks until the database answers
	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	if err != nil {
		log.Printf("error connect to database: %s", err)
		postgres.RetryConnectOnFailed(30*time.Second, &db, cfg.PostgresCfg)
	}
	defer db.Close()

	redisClient, err := redis.NewRedisClient(cfg.RedisCfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Optional collaborators. Each stays an untyped nil interface when missing
	// so the services can skip it.
	var blobs services.BlobStore
	minioClient, err := minio.NewMinioClient(cfg.MinioCfg)
	if err != nil {
		slog.Error("document storage unavailable, uploads will be recorded as absent", "error", err)
	} else {
		blobs = minioClient
	}

	var publisher services.EventPublisher
	var eventPublisher *event.RequestEventPublisher
	rabbit, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		slog.Error("RabbitMQ unavailable, request events disabled", "error", err)
	} else {
		defer rabbit.Close()
		eventPublisher = event.NewRequestEventPublisher(rabbit.Channel)
		publisher = eventPublisher
	}

	var mailer services.Mailer
	if cfg.MailCfg.Enabled {
		mailer = mail.NewEmailService(cfg.MailCfg)
	} else {
		slog.Info("MAIL_ENABLED is false, confirmation emails disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	var poolWg sync.WaitGroup
	pool := worker.NewWorkingPool(cfg.WorkerCfg.NumWorkers, cfg.WorkerCfg.QueueSize)
	poolWg.Add(1)
	go pool.Start(ctx, &poolWg)

	// repositories
	requestRepository := repository.NewWaterServiceRequestRepository(db)
	sessionRepository := repository.NewSessionRepository(redisClient.GetClient())

	// services
	notifier := services.NewNotifier(pool, publisher, mailer)
	requestService := services.NewWaterServiceRequestService(requestRepository, blobs, minio.Storage.Documents, notifier)
	adminService := services.NewAdminService(requestRepository, blobs, minio.Storage.Documents, cfg.MinioCfg.PresignExpiry, notifier)
	sessionService := services.NewSessionService(sessionRepository, cfg.AuthCfg.SessionTTL)
	authService, err := services.NewAuthService(cfg.AuthCfg, sessionService, services.NewJWTService(cfg.AuthCfg.JWTSecret))
	if err != nil {
		log.Fatalf("Failed to initialize auth service: %v", err)
	}

	// handlers
	middleware := handlers.NewMiddleware(authService)
	requestHandler := handlers.NewWaterServiceRequestHandler(requestService)
	adminHandler := handlers.NewAdminHandler(adminService, middleware)
	authHandler := handlers.NewAuthHandler(authService, middleware, cfg.AuthCfg.SessionTTL, cfg.AuthCfg.SecureCookie)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), handlers.Recovery(), metrics.GinMiddleware())
	r.MaxMultipartMemory = 8 << 20

	r.GET("/checkhealth", func(c *gin.Context) {
		health := gin.H{
			"service":  "water-service",
			"database": postgres.DBStatus(),
			"storage":  blobs != nil,
			"events":   eventPublisher != nil,
			"mail":     mailer != nil,
		}
		if eventPublisher != nil {
			health["event_stats"] = eventPublisher.Stats()
		}
		c.JSON(http.StatusOK, health)
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Register routes
	requestHandler.RegisterRoutes(r)
	adminHandler.RegisterRoutes(r)
	authHandler.RegisterRoutes(r)

	server := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting water-service on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// workers exit before the deferred connection closes run
	cancel()
	poolWg.Wait()
	log.Println("Server exited")
}
