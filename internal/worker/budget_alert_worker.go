package worker

// budget_alert_worker.go
// Processes budget alert jobs from QueueBudgetAlert and delivers them by
// email. Delivery goes through the circuit breaker with exponential backoff
// (max 3 attempts); exhausted jobs are returned as errors so the pool moves
// them to the DLQ.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bfrpaulondev/fitness-api/internal/infra"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// MaxAttempts is the number of delivery attempts per dequeued job.
const MaxAttempts = 3

// BudgetAlertPayload is the job envelope sent to QueueBudgetAlert.
type BudgetAlertPayload struct {
	ListaID   string          `json:"lista_id"`
	UserID    string          `json:"user_id"`
	Nombre    string          `json:"nombre"`
	Status    string          `json:"status"` // warn | over
	Spent     decimal.Decimal `json:"spent"`
	Budget    decimal.Decimal `json:"budget"`
	Email     string          `json:"email,omitempty"`
	EmitidaAt string          `json:"emitida_at"`
}

// Notifier delivers a rendered alert. *infra.Mailer implements it.
type Notifier interface {
	SendBudgetAlert(to, subject, body string) error
}

// BudgetAlertWorker processes budget alert jobs.
type BudgetAlertWorker struct {
	notifier         Notifier
	cb               *infra.CircuitBreaker
	defaultRecipient string

	// BackoffBase is the wait before the second attempt; it doubles after.
	BackoffBase time.Duration
}

func NewBudgetAlertWorker(notifier Notifier, cb *infra.CircuitBreaker, defaultRecipient string) *BudgetAlertWorker {
	return &BudgetAlertWorker{
		notifier:         notifier,
		cb:               cb,
		defaultRecipient: defaultRecipient,
		BackoffBase:      time.Second,
	}
}

// Process delivers one alert. Malformed payloads and alerts without any
// recipient are dropped with a log line; only delivery failures are errors.
func (w *BudgetAlertWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var p BudgetAlertPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Error().Err(err).Msg("budget_alert_worker: invalid payload")
		return nil
	}

	to := p.Email
	if to == "" {
		to = w.defaultRecipient
	}
	if to == "" {
		log.Warn().Str("lista_id", p.ListaID).Msg("budget_alert_worker: no recipient, skipping")
		return nil
	}

	subject, body := renderAlerta(p)
	err := withRetry(ctx, MaxAttempts, w.BackoffBase, func(attempt int) error {
		err := w.cb.Execute(func() error {
			return w.notifier.SendBudgetAlert(to, subject, body)
		})
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("lista_id", p.ListaID).
				Msg("budget_alert_worker: delivery attempt failed")
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("budget alert %s: %w", p.ListaID, err)
	}

	log.Info().Str("lista_id", p.ListaID).Str("status", p.Status).Msg("budget_alert_worker: alert delivered")
	return nil
}

func renderAlerta(p BudgetAlertPayload) (subject, body string) {
	switch p.Status {
	case "over":
		subject = fmt.Sprintf("Presupuesto superado: %s", p.Nombre)
	default:
		subject = fmt.Sprintf("Presupuesto casi agotado: %s", p.Nombre)
	}
	body = fmt.Sprintf(
		"Tu lista %q lleva gastado %s de un presupuesto de %s.\nEstado: %s\n",
		p.Nombre, p.Spent.StringFixed(2), p.Budget.StringFixed(2), p.Status,
	)
	return subject, body
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = base, 3 = 2*base.
// Returns nil if any attempt succeeds; last error otherwise.
// ErrCircuitOpen stops early since later attempts would fail the same way.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := base * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		err := fn(i)
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, infra.ErrCircuitOpen) {
			return err
		}
	}
	return lastErr
}
