package worker

// dlq.go: Dead Letter Queue
// Jobs whose handler gave up are moved here. A periodic replay (retry_cron.go)
// feeds them back a bounded number of times; after that they are parked for
// manual inspection. Uses Redis lists: dlq:{original_queue} and
// dlq:{original_queue}:parked.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix    = "dlq:"
	ParkedSuffix = ":parked"
)

// DLQEntry wraps a failed job with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // ISO 8601
	Attempts      int             `json:"attempts"`
	Replays       int             `json:"replays"`
}

// SendToDLQ pushes a failed job to the dead letter queue. It only logs on
// failure; the caller has nothing better to do with the job.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string, attempts int) {
	if rdb == nil {
		log.Error().Str("queue", queue).Str("job_type", job.Type).Str("reason", reason).Msg("dlq: no redis client, job dropped")
		return
	}

	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       job.Type,
		Payload:       job.Payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      attempts,
		Replays:       job.Replays,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	dlqKey := DLQPrefix + queue
	if err := rdb.LPush(ctx, dlqKey, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", dlqKey).Msg("dlq: failed to push to DLQ")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("reason", reason).
		Int("attempts", attempts).
		Int("replays", job.Replays).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of entries in a DLQ for monitoring.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
