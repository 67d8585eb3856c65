package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"surveyforge/internal/cache"
	"surveyforge/internal/config"
	"surveyforge/internal/logger"
	"surveyforge/internal/repository"
	"surveyforge/internal/service"
	"surveyforge/internal/transport/rest"
	"surveyforge/internal/transport/ws"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.New(false).Fatal(ctx, "failed to load config", err)
	}
	log := logger.New(cfg.IsDevelopment())
	defer log.Sync()

	loc, err := cfg.Survey.Location()
	if err != nil {
		log.Fatal(ctx, "unknown results timezone", err, map[string]interface{}{"timezone": cfg.Survey.Timezone})
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatal(ctx, "failed to connect to MongoDB", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal(ctx, "failed to ping MongoDB", err)
	}
	log.Info(ctx, "connected to MongoDB", map[string]interface{}{"database": cfg.Mongo.Database})

	db := mongoClient.Database(cfg.Mongo.Database)
	if err := repository.EnsureIndexes(pingCtx, db); err != nil {
		log.Fatal(ctx, "failed to create indexes", err)
	}

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal(ctx, "failed to ping Redis", err, map[string]interface{}{"addr": cfg.Redis.Addr})
	}
	log.Info(ctx, "connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub(log)
	defer wsHub.Close()

	// Initialize repositories
	surveyRepo := repository.NewSurveyRepo(db)
	responseRepo := repository.NewResponseRepo(db)
	themeRepo := repository.NewThemeRepo(db)
	assetStore := repository.NewAssetStore(db)

	// Initialize caches
	surveyCache := cache.NewSurveyCache(rdb, cfg.Survey.CacheTTL)
	markers := cache.NewRespondentCache(rdb)
	summaries := cache.NewSummaryCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(cfg.Auth)
	surveySvc := service.NewSurveyService(surveyRepo, responseRepo, surveyCache, markers, summaries, log)
	submissionSvc := service.NewSubmissionService(surveySvc, responseRepo, markers, summaries, log)
	respondentSvc := service.NewRespondentService(surveySvc, responseRepo, markers, authSvc)
	resultsSvc := service.NewResultsService(surveySvc, responseRepo, summaries, log, loc)
	themeSvc := service.NewThemeService(themeRepo, log)
	assetSvc := service.NewAssetService(assetStore, cfg.Survey.MaxUploadBytes, log)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	surveySvc.SetBroadcaster(wsHub)
	submissionSvc.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		Config:            cfg,
		Logger:            log,
		AuthService:       authSvc,
		SurveyService:     surveySvc,
		RespondentService: respondentSvc,
		SubmissionService: submissionSvc,
		ResultsService:    resultsSvc,
		ThemeService:      themeSvc,
		AssetService:      assetSvc,
		WSHub:             wsHub,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info(ctx, "server starting", map[string]interface{}{
			"port":            cfg.Port,
			"admin_username":  cfg.Auth.AdminUsername,
			"public_base_url": cfg.Survey.PublicBaseURL,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(ctx, "server stopped", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info(ctx, "shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server forced to shutdown", err)
	}

	log.Info(ctx, "server exited")
}
