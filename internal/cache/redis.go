package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"research-match/internal/config"
	"research-match/internal/domain/matching"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	scoreKeyPrefix        = "match:score:"
	batchProjectKeyPrefix = "match:batch:project:"
	batchStudentKeyPrefix = "match:batch:student:"
)

// Redis is the durable backing store for both caches. Entries carry their
// own expires_at so lazy-expiry and stats semantics match the memory store;
// the server-side TTL is set to twice the logical TTL only to let an
// offline compaction window see the garbage before Redis drops it.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
	now    func() time.Time
}

func NewRedis(cfg config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "localhost"
	}
	port := strings.TrimSpace(cfg.Port)
	if port == "" {
		port = "6379"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis unavailable: %w", err)
	}

	return &Redis{client: client, logger: logger, now: time.Now}, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.client == nil {
		return errors.New("redis unavailable")
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

type storedEntry struct {
	Score     *matching.MatchScore     `json:"score,omitempty"`
	Ranking   []matching.RankedStudent `json:"ranking,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
	ExpiresAt time.Time                `json:"expires_at"`
}

func (r *Redis) getEntry(ctx context.Context, key string) (storedEntry, bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return storedEntry{}, false, nil
		}
		return storedEntry{}, false, err
	}

	var e storedEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return storedEntry{}, false, err
	}
	if !e.ExpiresAt.After(r.now()) {
		// Lazy expiry: behave as a miss and drop the entry.
		if err := r.client.Del(ctx, key).Err(); err != nil {
			r.logger.Warn("expired cache entry delete failed", zap.String("key", key), zap.Error(err))
		}
		return storedEntry{}, false, nil
	}
	return e, true, nil
}

func (r *Redis) putEntry(ctx context.Context, key string, e storedEntry, ttl time.Duration) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, b, 2*ttl).Err()
}

func (r *Redis) deleteByPattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			r.logger.Warn("cache delete failed",
				zap.String("key", iter.Val()),
				zap.String("pattern", pattern),
				zap.Error(err),
			)
		}
	}
	return iter.Err()
}

func (r *Redis) statsByPattern(ctx context.Context, pattern string) (matching.CacheStats, error) {
	st := matching.CacheStats{}
	now := r.now()

	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		st.TotalEntries++
		b, err := r.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var e storedEntry
		if err := json.Unmarshal(b, &e); err != nil {
			continue
		}
		if !e.ExpiresAt.After(now) {
			st.ExpiredEntries++
		}
	}
	if err := iter.Err(); err != nil {
		return matching.CacheStats{}, err
	}
	return st, nil
}

// RedisScoreCache implements matching.ScoreCache on top of Redis.
type RedisScoreCache struct {
	r *Redis
}

func NewRedisScoreCache(r *Redis) *RedisScoreCache {
	return &RedisScoreCache{r: r}
}

func scoreKey(studentID, projectID uuid.UUID) string {
	return scoreKeyPrefix + studentID.String() + ":" + projectID.String()
}

func (c *RedisScoreCache) Get(ctx context.Context, studentID, projectID uuid.UUID) (matching.MatchScore, bool, error) {
	e, ok, err := c.r.getEntry(ctx, scoreKey(studentID, projectID))
	if err != nil || !ok || e.Score == nil {
		return matching.MatchScore{}, false, err
	}
	return *e.Score, true, nil
}

func (c *RedisScoreCache) Put(ctx context.Context, studentID, projectID uuid.UUID, score matching.MatchScore, ttl time.Duration) error {
	now := c.r.now()
	return c.r.putEntry(ctx, scoreKey(studentID, projectID), storedEntry{
		Score:     &score,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, ttl)
}

func (c *RedisScoreCache) Invalidate(ctx context.Context, studentID, projectID uuid.UUID) error {
	return c.r.client.Del(ctx, scoreKey(studentID, projectID)).Err()
}

func (c *RedisScoreCache) InvalidateByStudent(ctx context.Context, studentID uuid.UUID) error {
	return c.r.deleteByPattern(ctx, scoreKeyPrefix+studentID.String()+":*")
}

func (c *RedisScoreCache) InvalidateByProject(ctx context.Context, projectID uuid.UUID) error {
	return c.r.deleteByPattern(ctx, scoreKeyPrefix+"*:"+projectID.String())
}

func (c *RedisScoreCache) Stats(ctx context.Context) (matching.CacheStats, error) {
	return c.r.statsByPattern(ctx, scoreKeyPrefix+"*")
}

func (c *RedisScoreCache) ClearAll(ctx context.Context) error {
	return c.r.deleteByPattern(ctx, scoreKeyPrefix+"*")
}

// RedisBatchCache implements matching.BatchCache on top of Redis.
type RedisBatchCache struct {
	r *Redis
}

func NewRedisBatchCache(r *Redis) *RedisBatchCache {
	return &RedisBatchCache{r: r}
}

func (c *RedisBatchCache) GetProjectRanking(ctx context.Context, projectID uuid.UUID) ([]matching.RankedStudent, bool, error) {
	e, ok, err := c.r.getEntry(ctx, batchProjectKeyPrefix+projectID.String())
	if err != nil || !ok {
		return nil, false, err
	}
	return e.Ranking, true, nil
}

func (c *RedisBatchCache) PutProjectRanking(ctx context.Context, projectID uuid.UUID, ranking []matching.RankedStudent, ttl time.Duration) error {
	now := c.r.now()
	return c.r.putEntry(ctx, batchProjectKeyPrefix+projectID.String(), storedEntry{
		Ranking:   ranking,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, ttl)
}

func (c *RedisBatchCache) InvalidateByStudent(ctx context.Context, studentID uuid.UUID) error {
	return c.r.client.Del(ctx, batchStudentKeyPrefix+studentID.String()).Err()
}

func (c *RedisBatchCache) InvalidateByProject(ctx context.Context, projectID uuid.UUID) error {
	return c.r.client.Del(ctx, batchProjectKeyPrefix+projectID.String()).Err()
}

func (c *RedisBatchCache) Stats(ctx context.Context) (matching.CacheStats, error) {
	return c.r.statsByPattern(ctx, "match:batch:*")
}

func (c *RedisBatchCache) ClearAll(ctx context.Context) error {
	return c.r.deleteByPattern(ctx, "match:batch:*")
}
