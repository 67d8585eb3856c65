package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"surveyforge/internal/model"
	"time"

	"github.com/redis/go-redis/v9"
)

// SurveyCache holds survey definitions so a form view loads the document once
type SurveyCache interface {
	Get(ctx context.Context, surveyID string) (*model.Survey, error)
	Set(ctx context.Context, survey *model.Survey) error
	Invalidate(ctx context.Context, surveyID string) error
}

type surveyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSurveyCache creates a new survey cache
func NewSurveyCache(client *redis.Client, ttl time.Duration) SurveyCache {
	return &surveyCache{
		client: client,
		ttl:    ttl,
	}
}

func surveyKey(surveyID string) string {
	return fmt.Sprintf("survey:%s:def", surveyID)
}

func (c *surveyCache) Get(ctx context.Context, surveyID string) (*model.Survey, error) {
	data, err := c.client.Get(ctx, surveyKey(surveyID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var survey model.Survey
	if err := json.Unmarshal(data, &survey); err != nil {
		return nil, err
	}
	return &survey, nil
}

func (c *surveyCache) Set(ctx context.Context, survey *model.Survey) error {
	data, err := json.Marshal(survey)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, surveyKey(survey.ID), data, c.ttl).Err()
}

func (c *surveyCache) Invalidate(ctx context.Context, surveyID string) error {
	return c.client.Del(ctx, surveyKey(surveyID)).Err()
}
