package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueBudgetAlert = "jobs:budget_alert"

	JobBudgetAlert = "budget_alert"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	// Replays counts how many times the job came back from the DLQ.
	Replays int `json:"replays,omitempty"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb       *redis.Client
	dedupeTTL time.Duration
}

// NewDispatcher builds a Dispatcher. dedupeTTL is how long an alert for the
// same list and status is suppressed; zero disables suppression.
func NewDispatcher(rdb *redis.Client, dedupeTTL time.Duration) *Dispatcher {
	return &Dispatcher{rdb: rdb, dedupeTTL: dedupeTTL}
}

// EnqueueBudgetAlert pushes a budget alert job unless an identical alert
// (same list, same status) was already queued inside the dedupe window.
// The dedupe marker only survives a successful push.
func (d *Dispatcher) EnqueueBudgetAlert(ctx context.Context, payload BudgetAlertPayload) error {
	if d.dedupeTTL <= 0 {
		return d.enqueue(ctx, QueueBudgetAlert, JobBudgetAlert, payload, 0)
	}

	key := "alerta:" + payload.ListaID + ":" + payload.Status
	nuevo, err := d.rdb.SetNX(ctx, key, payload.EmitidaAt, d.dedupeTTL).Result()
	if err != nil {
		return err
	}
	if !nuevo {
		log.Debug().Str("lista_id", payload.ListaID).Str("status", payload.Status).Msg("alerta duplicada, omitida")
		return nil
	}
	if err := d.enqueue(ctx, QueueBudgetAlert, JobBudgetAlert, payload, 0); err != nil {
		if delErr := d.rdb.Del(ctx, key).Err(); delErr != nil {
			log.Warn().Err(delErr).Str("key", key).Msg("no se pudo liberar la marca de alerta")
		}
		return err
	}
	return nil
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}, replays int) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return pushJob(ctx, d.rdb, queue, Job{Type: jobType, Payload: data, Replays: replays})
}

func pushJob(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// JobHandler processes one decoded job. A returned error sends the job to the DLQ.
type JobHandler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// WorkerHandlers routes job types to their handlers.
type WorkerHandlers struct {
	BudgetAlert JobHandler
}

func (h WorkerHandlers) forType(jobType string) JobHandler {
	switch jobType {
	case JobBudgetAlert:
		return h.BudgetAlert
	}
	return nil
}

// StartWorkerPool launches numWorkers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP, zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers WorkerHandlers) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, handlers)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, handlers WorkerHandlers) {
	queues := []string{QueueBudgetAlert}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Msg("worker: BRPOP failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	h := handlers.forType(job.Type)
	if h == nil {
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("no handler for job type")
		return
	}

	log.Info().Str("type", job.Type).Str("queue", queue).Int("replays", job.Replays).Msg("processing job")
	if err := h.Process(ctx, job.Payload); err != nil {
		SendToDLQ(ctx, rdb, queue, job, err.Error(), MaxAttempts)
	}
}
