// File: renthaven/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"renthaven/config"
	"renthaven/cron"
	"renthaven/database"
	conversationRepoPkg "renthaven/database/repository/conversation"
	propertyRepoPkg "renthaven/database/repository/property"
	viewingRepoPkg "renthaven/database/repository/viewing"
	"renthaven/handlers"
	"renthaven/middleware"
	"renthaven/routes"
	"renthaven/services/chat"
	ai "renthaven/services/intelligence"
	"renthaven/services/scheduling"
	"renthaven/utils"
	"renthaven/worker"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSchedulingCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	viewingRepo := viewingRepoPkg.NewMongoViewingRepo()
	propertyRepo := propertyRepoPkg.NewMongoPropertyRepo()
	conversationRepo := conversationRepoPkg.NewMongoConversationRepo()
	landlordLocker := viewingRepoPkg.NewMongoLandlordLocker()

	if err := viewingRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure viewing indexes: %v", err)
	}
	if err := landlordLocker.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure lock indexes: %v", err)
	}

	// services.
	availabilityCache := scheduling.NewRedisAvailabilityCache(
		utils.GetSchedulingCacheClient(),
		time.Duration(config.AppConfig.AvailabilityCacheTTL)*time.Second,
	)

	availabilityChecker := &scheduling.DefaultAvailabilityChecker{
		Bookings: viewingRepo,
		Cache:    availabilityCache,
		Schedule: scheduling.DefaultWeeklySchedule(),
		LeadTime: time.Duration(config.AppConfig.ViewingLeadTimeHours) * time.Hour,
		Buffer:   time.Duration(config.AppConfig.ConflictBufferMinutes) * time.Minute,
	}

	viewingService := &scheduling.DefaultViewingRequestService{
		Repo:       viewingRepo,
		Properties: propertyRepo,
		Cache:      availabilityCache,
	}

	geminiClient := ai.NewGeminiClient(config.AppConfig.GeminiAPIKey)
	intentExtractor := ai.NewGeminiIntentExtractor(geminiClient)
	responseComposer := ai.NewGeminiResponseComposer(geminiClient)

	orchestrator := &scheduling.DefaultSchedulingOrchestrator{
		Extractor:     intentExtractor,
		Availability:  availabilityChecker,
		Requests:      viewingService,
		Locker:        landlordLocker,
		IntentTimeout: time.Duration(config.AppConfig.IntentTimeoutSeconds) * time.Second,
	}

	hub := chat.NewHub()
	go hub.Run()

	dispatcher := worker.NewAsynqDispatcher(worker.RedisOpt())
	chatService := &chat.DefaultChatService{
		Repo:             conversationRepo,
		Hub:              hub,
		Dispatcher:       dispatcher,
		AssistantEnabled: config.AppConfig.AssistantEnabled,
	}

	worker.InitAssistantWorker(&worker.AssistantWorker{
		Orchestrator: orchestrator,
		Composer:     responseComposer,
		Chat:         chatService,
		Properties:   propertyRepo,
	})

	cleanupScheduler := cron.InitCleanupScheduler(viewingService)
	defer cleanupScheduler.Stop()

	// handlers.
	handlers.ViewingService = viewingService
	handlers.AvailabilityService = availabilityChecker
	handlers.ViewingLocker = landlordLocker
	handlers.PropertyRepo = propertyRepo
	handlers.ChatSvc = chatService
	handlers.ChatHub = hub

	routes.RegisterRoutes(router)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
