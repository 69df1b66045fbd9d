// Package rediscache caches computed student summaries so repeat reads
// skip the graph aggregation queries.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dakshlabs/examgraph-backend/internal/platform/envutil"
	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
	"github.com/dakshlabs/examgraph-backend/internal/types"
)

type SummaryCache interface {
	Get(ctx context.Context, studentID int64) (*types.StudentSummary, error)
	Set(ctx context.Context, sum *types.StudentSummary) error
	Invalidate(ctx context.Context, studentID int64) error
	Close() error
}

type summaryCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewSummaryCache connects to REDIS_ADDR. An empty REDIS_ADDR returns a
// no-op cache so the service runs without Redis in development.
func NewSummaryCache(log *logger.Logger) (SummaryCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		log.Warn("REDIS_ADDR not set, summary cache disabled")
		return nopCache{}, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := time.Duration(envutil.Int("SUMMARY_CACHE_TTL_SECONDS", 900)) * time.Second
	return &summaryCache{
		log: log.With("service", "SummaryCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func summaryKey(studentID int64) string {
	return fmt.Sprintf("summary:student:%d", studentID)
}

// Get returns nil on a cache miss.
func (c *summaryCache) Get(ctx context.Context, studentID int64) (*types.StudentSummary, error) {
	raw, err := c.rdb.Get(ctx, summaryKey(studentID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("summary cache get: %w", err)
	}
	var sum types.StudentSummary
	if err := json.Unmarshal(raw, &sum); err != nil {
		return nil, fmt.Errorf("summary cache decode: %w", err)
	}
	return &sum, nil
}

func (c *summaryCache) Set(ctx context.Context, sum *types.StudentSummary) error {
	raw, err := json.Marshal(sum)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, summaryKey(sum.StudentID), raw, c.ttl).Err()
}

func (c *summaryCache) Invalidate(ctx context.Context, studentID int64) error {
	return c.rdb.Del(ctx, summaryKey(studentID)).Err()
}

func (c *summaryCache) Close() error {
	return c.rdb.Close()
}

type nopCache struct{}

func (nopCache) Get(context.Context, int64) (*types.StudentSummary, error) { return nil, nil }
func (nopCache) Set(context.Context, *types.StudentSummary) error          { return nil }
func (nopCache) Invalidate(context.Context, int64) error                   { return nil }
func (nopCache) Close() error                                              { return nil }
