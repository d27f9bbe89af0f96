package worker

// retry_cron.go
// Background goroutine that periodically feeds dead-lettered budget alerts
// back into their queue. Uses the Circuit Breaker to avoid replaying while
// the SMTP relay is still down.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bfrpaulondev/fitness-api/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	replayTickInterval = 2 * time.Minute
	replayBatchSize    = 20

	// MaxDLQReplays bounds how often one job comes back from the DLQ.
	MaxDLQReplays = 3
)

// RetryCronConfig holds all dependencies for the replay goroutine.
type RetryCronConfig struct {
	RDB      *redis.Client
	CB       *infra.CircuitBreaker
	Queue    string
	Interval time.Duration // 0 = replayTickInterval
}

// StartRetryCron launches the DLQ replay loop. It respects ctx for shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = replayTickInterval
	}
	if cfg.Queue == "" {
		cfg.Queue = QueueBudgetAlert
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Str("queue", cfg.Queue).Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				if n, err := ReplayDLQ(ctx, cfg); err != nil {
					log.Error().Err(err).Msg("retry_cron: replay failed")
				} else if n > 0 {
					log.Info().Int("count", n).Str("queue", cfg.Queue).Msg("retry_cron: jobs replayed")
				}
			}
		}
	}()
}

// ReplayDLQ moves up to replayBatchSize of the oldest DLQ entries back to
// their queue. Entries already replayed MaxDLQReplays times are parked.
// It returns how many jobs were re-enqueued.
func ReplayDLQ(ctx context.Context, cfg RetryCronConfig) (int, error) {
	// If CB is open, skip entirely, replaying now would fail again
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return 0, nil
	}

	dlqKey := DLQPrefix + cfg.Queue
	replayed := 0
	for i := 0; i < replayBatchSize; i++ {
		raw, err := cfg.RDB.RPop(ctx, dlqKey).Result()
		if errors.Is(err, redis.Nil) {
			return replayed, nil
		}
		if err != nil {
			return replayed, err
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Str("dlq_key", dlqKey).Msg("retry_cron: corrupt DLQ entry parked")
			_ = cfg.RDB.LPush(ctx, dlqKey+ParkedSuffix, raw).Err()
			continue
		}

		if entry.Replays >= MaxDLQReplays {
			if err := cfg.RDB.LPush(ctx, dlqKey+ParkedSuffix, raw).Err(); err != nil {
				return replayed, err
			}
			log.Warn().
				Str("job_type", entry.JobType).
				Int("replays", entry.Replays).
				Msg("retry_cron: max replays exceeded, job parked")
			continue
		}

		queue := entry.OriginalQueue
		if queue == "" {
			queue = cfg.Queue
		}
		job := Job{Type: entry.JobType, Payload: entry.Payload, Replays: entry.Replays + 1}
		if err := pushJob(ctx, cfg.RDB, queue, job); err != nil {
			// put it back so the next tick can try again
			_ = cfg.RDB.RPush(ctx, dlqKey, raw).Err()
			return replayed, err
		}
		replayed++
	}
	return replayed, nil
}
