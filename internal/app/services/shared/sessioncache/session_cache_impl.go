package sessioncache

import (
	"context"
	"fmt"
	"smartmarkers-service/internal/app/contracts"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/dto/responses"
	"smartmarkers-service/internal/pkg/exceptions"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type sessionCache struct {
	redisRepo contracts.RedisRepository
	ttl       time.Duration
	Log       *zap.Logger
}

// NewSessionCache keeps a read-only summary of each live session in redis so
// other replicas can answer GET requests for it.
func NewSessionCache(repo contracts.RedisRepository, ttl time.Duration, logger *zap.Logger) contracts.SessionCache {
	return &sessionCache{
		redisRepo: repo,
		ttl:       ttl,
		Log:       logger,
	}
}

func summaryKey(sessionID string) string {
	return fmt.Sprintf(constvars.RedisKeySessionSummaryFormat, sessionID)
}

func (c *sessionCache) SaveSummary(ctx context.Context, summary *responses.Session) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	key := summaryKey(summary.SessionID)
	c.Log.Info("sessionCache.SaveSummary called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRedisKey, key),
	)

	if err := c.redisRepo.Set(ctx, key, summary, c.ttl); err != nil {
		c.Log.Error("sessionCache.SaveSummary error calling redisRepo.Set",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// FindSummary returns nil without error when nothing is cached for sessionID.
func (c *sessionCache) FindSummary(ctx context.Context, sessionID string) (*responses.Session, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	key := summaryKey(sessionID)
	c.Log.Info("sessionCache.FindSummary called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRedisKey, key),
	)

	data, err := c.redisRepo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, nil
	}

	summary := new(responses.Session)
	if err := json.Unmarshal([]byte(data), summary); err != nil {
		return nil, exceptions.ErrCannotParseJSON(err)
	}
	return summary, nil
}

func (c *sessionCache) DeleteSummary(ctx context.Context, sessionID string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("sessionCache.DeleteSummary called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, sessionID),
	)
	return c.redisRepo.Delete(ctx, summaryKey(sessionID))
}
