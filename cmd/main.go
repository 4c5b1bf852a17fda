package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	chatUseCase "github.com/billychen0894/spareTalk-chat-app/application/usecases/chat"
	"github.com/billychen0894/spareTalk-chat-app/infrastructure/cache"
	"github.com/billychen0894/spareTalk-chat-app/infrastructure/config"
	"github.com/billychen0894/spareTalk-chat-app/infrastructure/jobs"
	"github.com/billychen0894/spareTalk-chat-app/infrastructure/logger"
	"github.com/billychen0894/spareTalk-chat-app/infrastructure/metrics"
	repositories "github.com/billychen0894/spareTalk-chat-app/infrastructure/persistence/repository"
	"github.com/billychen0894/spareTalk-chat-app/infrastructure/tracing"
	ws "github.com/billychen0894/spareTalk-chat-app/infrastructure/websocket"
	"github.com/billychen0894/spareTalk-chat-app/presentation/controllers/chat"
	wsController "github.com/billychen0894/spareTalk-chat-app/presentation/controllers/websocket"
	"github.com/billychen0894/spareTalk-chat-app/presentation/middlewares"
	"github.com/billychen0894/spareTalk-chat-app/presentation/routes"
)

func main() {
	cfg := config.GetConfig()

	var loggerInstance *logger.Logger
	var err error
	if cfg.IsProduction() {
		loggerInstance, err = logger.NewProductionLogger(cfg.Logger.Level)
	} else {
		loggerInstance, err = logger.NewDevelopmentLogger()
	}
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing logger: %w", err))
	}
	defer func() {
		if err := loggerInstance.Log.Sync(); err != nil {
			loggerInstance.Log.Error("failed to sync logger", zap.Error(err))
		}
	}()

	loggerInstance.Info("Starting spareTalk chat API")

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		loggerInstance.Panic("error initializing redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			loggerInstance.Error("failed to close redis client", zap.Error(err))
		}
	}()

	tracer, shutdownTracer, err := tracing.InitTracer(cfg)
	if err != nil {
		loggerInstance.Panic("error initializing tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			loggerInstance.Error("failed to shut down tracer", zap.Error(err))
		}
	}()

	switch cfg.Server.RunMode {
	case "release", "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	router := gin.Default()
	router.Use(middlewares.GinLogger(loggerInstance))
	router.Use(middlewares.CorsMiddleware(cfg))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	chatRoomRepo := repositories.NewChatRoomRepository(redisClient, cfg.Chat.MessageCap, tracer)
	queueRepo := repositories.NewUserQueueRepository(redisClient)
	userRepo := repositories.NewUserRepository(redisClient, tracer)
	sessionRepo := repositories.NewUserSessionRepository(redisClient)
	eventRepo := repositories.NewEventRepository(redisClient, cfg.Chat.IdempotencyWindow)

	chatUC := chatUseCase.NewChatUseCase(
		chatRoomRepo,
		queueRepo,
		userRepo,
		sessionRepo,
		eventRepo,
		cfg.Chat.InactivityThreshold,
		loggerInstance,
	)

	metricsManager := metrics.NewManager()

	wsCore := ws.NewCore(loggerInstance)
	coreCtx, stopCore := context.WithCancel(context.Background())
	go wsCore.Run(coreCtx)

	socketController := wsController.NewChatSocketController(chatUC, wsCore, metricsManager, loggerInstance)

	cleanupJob := jobs.NewRoomCleanupJob(
		chatUC,
		socketController,
		loggerInstance,
		cfg.Chat.ReaperInterval,
		cfg.Chat.ReaperMaxRetries,
	)
	go cleanupJob.Start(coreCtx)

	v1 := router.Group("/api/v1")
	{
		chatController := chat.NewChatController(chatUC)
		routes.ChatRoutes(v1, chatController)
		routes.WebsocketRoutes(v1, socketController)
	}

	metrics.GetHandler(router.Group("/internal"), metricsManager)

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.Server.ExternalPort),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		loggerInstance.Info("Server starting",
			zap.String("port", cfg.Server.ExternalPort),
			zap.String("mode", cfg.Server.RunMode),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			loggerInstance.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	loggerInstance.Info("Server started successfully",
		zap.String("port", cfg.Server.ExternalPort),
		zap.String("domain", cfg.Server.Domain),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	loggerInstance.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		loggerInstance.Error("Server forced to shutdown", zap.Error(err))
	}

	cleanupJob.Stop()
	stopCore()
	wsCore.Shutdown()

	loggerInstance.Info("Server exited successfully")
}
