// Package commands provides CLI commands for the admin tool
package commands

import (
	"context"
	"fmt"
	"surveyforge/internal/cache"
	"surveyforge/internal/config"
	"surveyforge/internal/logger"
	"surveyforge/internal/repository"
	"surveyforge/internal/service"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Services are the parts of the server the commands drive
type Services struct {
	Surveys *service.SurveyService
	Results *service.ResultsService
}

// Env connects to the stores on first use so commands that need no
// database, like hash-password, start without one.
type Env struct {
	cfg      *config.Config
	log      *logger.Logger
	mongo    *mongo.Client
	redis    *redis.Client
	services *Services
}

// NewEnv creates a lazy command environment
func NewEnv(cfg *config.Config, log *logger.Logger) *Env {
	return &Env{cfg: cfg, log: log}
}

// Services connects to MongoDB and Redis and builds the services
func (e *Env) Services(ctx context.Context) (*Services, error) {
	if e.services != nil {
		return e.services, nil
	}

	loc, err := e.cfg.Survey.Location()
	if err != nil {
		return nil, fmt.Errorf("unknown results timezone %q: %w", e.cfg.Survey.Timezone, err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(e.cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	e.mongo = client
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(e.cfg.Mongo.Database)
	if err := repository.EnsureIndexes(connectCtx, db); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	e.redis = redis.NewClient(&redis.Options{
		Addr:     e.cfg.Redis.Addr,
		Password: e.cfg.Redis.Password,
		DB:       e.cfg.Redis.DB,
	})
	if err := e.redis.Ping(connectCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	surveyRepo := repository.NewSurveyRepo(db)
	responseRepo := repository.NewResponseRepo(db)
	markers := cache.NewRespondentCache(e.redis)
	summaries := cache.NewSummaryCache(e.redis)

	surveys := service.NewSurveyService(surveyRepo, responseRepo, cache.NewSurveyCache(e.redis, e.cfg.Survey.CacheTTL), markers, summaries, e.log)
	e.services = &Services{
		Surveys: surveys,
		Results: service.NewResultsService(surveys, responseRepo, summaries, e.log, loc),
	}
	return e.services, nil
}

// Close releases whatever connections were opened
func (e *Env) Close(ctx context.Context) {
	if e.redis != nil {
		if err := e.redis.Close(); err != nil {
			e.log.Warn(ctx, "failed to close Redis connection", map[string]interface{}{"error": err.Error()})
		}
	}
	if e.mongo != nil {
		if err := e.mongo.Disconnect(ctx); err != nil {
			e.log.Warn(ctx, "failed to close MongoDB connection", map[string]interface{}{"error": err.Error()})
		}
	}
}
