package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func (q *implQueue) Enqueue(ctx context.Context, videoPath string) (bool, error) {
	abs, err := filepath.Abs(videoPath)
	if err != nil {
		return false, fmt.Errorf("resolve %s: %w", videoPath, err)
	}

	added, err := q.rdb.SAdd(ctx, q.seenKey, abs).Result()
	if err != nil {
		return false, fmt.Errorf("mark seen: %w", err)
	}
	if added == 0 {
		q.logger.Debug(ctx, "Already queued: %s", abs)
		return false, nil
	}

	payload, err := encodeJob(Job{ID: uuid.NewString(), VideoPath: abs, EnqueuedAt: q.now().UTC()})
	if err != nil {
		return false, err
	}
	if err := q.rdb.LPush(ctx, q.jobsKey, payload).Err(); err != nil {
		// Undo the seen mark so a retry can enqueue it
		q.rdb.SRem(ctx, q.seenKey, abs)
		return false, fmt.Errorf("push job: %w", err)
	}

	q.logger.Info(ctx, "Queued %s", abs)
	return true, nil
}

func (q *implQueue) Forget(ctx context.Context, videoPath string) error {
	abs, err := filepath.Abs(videoPath)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", videoPath, err)
	}
	return q.rdb.SRem(ctx, q.seenKey, abs).Err()
}

func (q *implQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.jobsKey).Result()
}

func (q *implQueue) Close() error {
	return q.rdb.Close()
}

func (q *implQueue) Work(ctx context.Context, concurrency int, handler Handler) error {
	sem := newSemaphore(concurrency)
	defer sem.wait()

	q.logger.Info(ctx, "Worker started (max concurrent: %d) on %s", cap(sem.ch), q.jobsKey)

	for {
		if err := sem.acquire(ctx); err != nil {
			return err
		}

		job, err := q.pop(ctx)
		if err != nil {
			sem.release()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			q.logger.Error(ctx, "Failed to pop job: %v", err)
			continue
		}

		go func(job Job) {
			defer sem.release()
			q.logger.Info(ctx, "Job %s: %s", job.ID, job.VideoPath)
			if err := handler(ctx, job.VideoPath); err != nil {
				q.logger.Error(ctx, "Job %s failed: %v", job.ID, err)
				// Allow the video to be queued again after a failure
				if err := q.Forget(context.WithoutCancel(ctx), job.VideoPath); err != nil {
					q.logger.Warn(ctx, "Failed to clear seen mark for %s: %v", job.VideoPath, err)
				}
			}
		}(job)
	}
}

func (q *implQueue) pop(ctx context.Context) (Job, error) {
	res, err := q.rdb.BRPop(ctx, popTimeout, q.jobsKey).Result()
	if err != nil {
		return Job{}, err
	}
	// BRPOP replies with [key, value]
	if len(res) != 2 {
		return Job{}, fmt.Errorf("unexpected BRPOP reply of %d items", len(res))
	}
	return decodeJob(res[1])
}

func encodeJob(j Job) (string, error) {
	b, err := json.Marshal(j)
	if err != nil {
		return "", fmt.Errorf("encode job: %w", err)
	}
	return string(b), nil
}

func decodeJob(s string) (Job, error) {
	var j Job
	if err := json.Unmarshal([]byte(s), &j); err != nil {
		return Job{}, fmt.Errorf("decode job: %w", err)
	}
	if j.VideoPath == "" {
		return Job{}, errors.New("decode job: missing video_path")
	}
	return j, nil
}
