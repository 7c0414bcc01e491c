package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"proctor-service/config"
	_ "proctor-service/docs"
	"proctor-service/internal/camera"
	"proctor-service/internal/constants"
	"proctor-service/internal/disqualification"
	"proctor-service/internal/handlers"
	"proctor-service/internal/middleware"
	"proctor-service/internal/progress"
	"proctor-service/internal/reporting"
	"proctor-service/internal/repository"
	ws "proctor-service/internal/websocket"
	"proctor-service/pkg/cache"
	"proctor-service/pkg/database"
	"proctor-service/pkg/messaging"
	"proctor-service/pkg/storage"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func serve(ctx context.Context, cfg *config.Config) error {
	dbClient, err := database.NewClient(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", cfg.DB.Driver, err)
	}
	log.Printf("Connected to %s", cfg.DB.Driver)
	defer dbClient.Close()

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := dbClient.InitSchema(initCtx); err != nil {
		log.Printf("Warning: Failed to initialize schema: %v", err)
	} else {
		log.Println("Schema initialized")
	}
	cancel()

	// The progress cache is optional; a nil interface disables it.
	var progressCache progress.Cache
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		redisClient = nil
	} else {
		log.Println("Connected to Redis")
		defer redisClient.Close()
		progressCache = redisClient
	}

	var events reporting.Publisher
	var rabbitClient *messaging.RabbitMQClient
	if cfg.RabbitMQ.Enabled {
		rabbitClient, err = messaging.NewRabbitMQClient(&cfg.RabbitMQ)
		if err != nil {
			log.Printf("Warning: Failed to connect to RabbitMQ: %v", err)
		} else {
			log.Println("Connected to RabbitMQ")
			defer rabbitClient.Close()
			events = rabbitClient
		}
	}

	var reports reporting.ReportStore
	if cfg.S3.Enabled {
		s3Client, err := storage.NewS3Client(&cfg.S3)
		if err != nil {
			log.Printf("Warning: Failed to create S3 client: %v", err)
		} else if err := s3Client.CreateBucket(ctx, s3Client.Bucket()); err != nil {
			log.Printf("Warning: Failed to prepare bucket %s: %v", s3Client.Bucket(), err)
		} else {
			log.Printf("Integrity reports go to bucket %s", s3Client.Bucket())
			reports = s3Client
		}
	}

	progressRepo := repository.NewProgressRepository(dbClient.GetDB())
	sessionRepo := repository.NewSessionRepository(dbClient.GetDB())
	progressService := progress.NewService(progress.NewCachedStore(progressRepo, progressCache, cfg.Redis.TTL))
	recorder := reporting.NewRecorder(sessionRepo, events, reports)

	hub := ws.NewHub(ws.Options{
		Policy: disqualification.Policy{
			TabSwitchLimit:   cfg.Proctor.TabSwitchLimit,
			DevToolsLimit:    cfg.Proctor.DevToolsLimit,
			MultiFaceSeconds: cfg.Proctor.MultiFaceSeconds,
			NoFaceSeconds:    cfg.Proctor.NoFaceSeconds,
		},
		Constraints:   camera.DefaultConstraints(cfg.Proctor.CameraWidth, cfg.Proctor.CameraHeight),
		PromptTimeout: cfg.Proctor.CameraPromptTimeout,
		RedirectDelay: cfg.Proctor.RedirectDelay,
		HomePath:      cfg.Server.HomePath,
		FaceProvider:  cfg.Proctor.FaceProvider,
		Progress:      progressService,
		Recorder:      recorder,
	})
	go hub.Run()
	log.Println("WebSocket hub started")

	grpcServer, healthServer, err := startGRPC(cfg.Server.GRPCPort)
	if err != nil {
		return err
	}
	defer grpcServer.GracefulStop()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Logger())
	router.Use(middleware.ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"service":         "proctor-service",
			"active_sessions": hub.ActiveSessions(),
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := dbClient.Ping(pingCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
			"redis":  redisClient != nil,
			"events": rabbitClient != nil && !rabbitClient.IsClosed(),
			"report": reports != nil,
		})
	})

	auth := middleware.JWTAuth(&cfg.Auth)

	progressHandler := handlers.NewProgressHandler(progressService)
	api := router.Group("/api")
	{
		api.GET("/games", auth, progressHandler.ListGames)
		api.GET("/progress", auth, progressHandler.GetProgress)
		api.GET("/leaderboard", progressHandler.GetLeaderboard)
	}

	sessionHandler := handlers.NewSessionHandler(sessionRepo)
	sessions := api.Group("/sessions", auth)
	{
		sessions.GET("", sessionHandler.GetSessions)
		sessions.GET("/:id", sessionHandler.GetSession)
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	wsHandler := handlers.NewWebSocketHandler(hub, cfg, progressService)
	router.GET("/ws", auth, wsHandler.HandleWebSocket)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.HTTPPort,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Proctor Service HTTP server starting on port %s...", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to start HTTP server: %w", err)
	case <-ctx.Done():
	}

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shut down HTTP server: %v", err)
	}

	log.Println("Proctor service stopped")
	return nil
}

func startGRPC(port string) (*grpc.Server, *health.Server, error) {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, nil, fmt.Errorf("listen on %s: %w", port, err)
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(constants.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	go func() {
		log.Printf("gRPC health server listening at %v", listener.Addr())
		if err := grpcServer.Serve(listener); err != nil {
			log.Printf("gRPC server stopped: %v", err)
		}
	}()

	return grpcServer, healthServer, nil
}
