package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/slide-flow/internal/config"
	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/redis/go-redis/v9"
)

// popTimeout bounds each blocking pop so cancellation is noticed.
const popTimeout = 2 * time.Second

type implQueue struct {
	rdb     *redis.Client
	jobsKey string
	seenKey string
	logger  logger.Logger
	now     func() time.Time
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg config.QueueConfig, log logger.Logger) (Queue, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	return newWithClient(rdb, cfg, log), nil
}

func newWithClient(rdb *redis.Client, cfg config.QueueConfig, log logger.Logger) *implQueue {
	return &implQueue{
		rdb:     rdb,
		jobsKey: cfg.JobsKey,
		seenKey: cfg.SeenKey,
		logger:  log,
		now:     time.Now,
	}
}
