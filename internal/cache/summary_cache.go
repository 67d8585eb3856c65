package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"surveyforge/internal/model"
	"time"

	"github.com/redis/go-redis/v9"
)

// SummaryCache holds dashboard counters per survey. Entries are short-lived
// because the recent-activity window moves with the clock.
type SummaryCache interface {
	Get(ctx context.Context, surveyID string) (*model.ResultsSummary, error)
	Set(ctx context.Context, surveyID string, summary *model.ResultsSummary) error
	Invalidate(ctx context.Context, surveyID string) error
}

type summaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache creates a new summary cache
func NewSummaryCache(client *redis.Client) SummaryCache {
	return &summaryCache{
		client: client,
		ttl:    time.Minute,
	}
}

func summaryKey(surveyID string) string {
	return fmt.Sprintf("survey:%s:summary", surveyID)
}

func (c *summaryCache) Get(ctx context.Context, surveyID string) (*model.ResultsSummary, error) {
	data, err := c.client.Get(ctx, summaryKey(surveyID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var summary model.ResultsSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *summaryCache) Set(ctx context.Context, surveyID string, summary *model.ResultsSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, summaryKey(surveyID), data, c.ttl).Err()
}

func (c *summaryCache) Invalidate(ctx context.Context, surveyID string) error {
	return c.client.Del(ctx, summaryKey(surveyID)).Err()
}
