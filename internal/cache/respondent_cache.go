package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RespondentCache records "has submitted" markers per survey and respondent
// key (normalized email or client token).
type RespondentCache interface {
	MarkResponded(ctx context.Context, surveyID, key string) error
	HasResponded(ctx context.Context, surveyID, key string) (bool, error)
	Clear(ctx context.Context, surveyID string) error
}

type respondentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRespondentCache creates a respondent marker cache. Markers outlive most
// browser sessions; records in the database remain the source of truth.
func NewRespondentCache(client *redis.Client) RespondentCache {
	return &respondentCache{
		client: client,
		ttl:    90 * 24 * time.Hour,
	}
}

func respondedKey(surveyID string) string {
	return fmt.Sprintf("survey:%s:responded", surveyID)
}

func (c *respondentCache) MarkResponded(ctx context.Context, surveyID, key string) error {
	pipe := c.client.TxPipeline()
	pipe.SAdd(ctx, respondedKey(surveyID), key)
	pipe.Expire(ctx, respondedKey(surveyID), c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *respondentCache) HasResponded(ctx context.Context, surveyID, key string) (bool, error) {
	return c.client.SIsMember(ctx, respondedKey(surveyID), key).Result()
}

func (c *respondentCache) Clear(ctx context.Context, surveyID string) error {
	return c.client.Del(ctx, respondedKey(surveyID)).Err()
}
