package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bfrpaulondev/fitness-api/internal/infra"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Notifier = (*fakeNotifier)(nil)

type fakeNotifier struct {
	mu       sync.Mutex
	fallos   int // calls that fail before the first success
	enviados []string
	llamadas int
}

func (f *fakeNotifier) SendBudgetAlert(to, subject, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.llamadas++
	if f.llamadas <= f.fallos {
		return errors.New("smtp: 451 temporary failure")
	}
	f.enviados = append(f.enviados, to+"|"+subject)
	return nil
}

func payload(t *testing.T, p BudgetAlertPayload) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	return b
}

func alertaWarn() BudgetAlertPayload {
	return BudgetAlertPayload{
		ListaID: "l-1",
		UserID:  "u-1",
		Nombre:  "Marzo",
		Status:  "warn",
		Spent:   decimal.NewFromInt(85),
		Budget:  decimal.NewFromInt(100),
		Email:   "ana@example.com",
	}
}

func newTestWorker(n Notifier, defaultRecipient string) *BudgetAlertWorker {
	w := NewBudgetAlertWorker(n, infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp")), defaultRecipient)
	w.BackoffBase = time.Millisecond
	return w
}

func TestBudgetAlertWorker_Entrega(t *testing.T) {
	n := &fakeNotifier{}
	w := newTestWorker(n, "ops@example.com")

	require.NoError(t, w.Process(context.Background(), payload(t, alertaWarn())))
	require.Len(t, n.enviados, 1)
	assert.Equal(t, "ana@example.com|Presupuesto casi agotado: Marzo", n.enviados[0])
}

func TestBudgetAlertWorker_DestinatarioPorDefecto(t *testing.T) {
	n := &fakeNotifier{}
	w := newTestWorker(n, "ops@example.com")
	p := alertaWarn()
	p.Email = ""

	require.NoError(t, w.Process(context.Background(), payload(t, p)))
	require.Len(t, n.enviados, 1)
	assert.Contains(t, n.enviados[0], "ops@example.com")
}

func TestBudgetAlertWorker_SinDestinatarioSeDescarta(t *testing.T) {
	n := &fakeNotifier{}
	w := newTestWorker(n, "")
	p := alertaWarn()
	p.Email = ""

	assert.NoError(t, w.Process(context.Background(), payload(t, p)))
	assert.Zero(t, n.llamadas)
}

func TestBudgetAlertWorker_PayloadInvalido(t *testing.T) {
	n := &fakeNotifier{}
	assert.NoError(t, newTestWorker(n, "").Process(context.Background(), json.RawMessage(`{"lista_id":`)))
	assert.Zero(t, n.llamadas)
}

func TestBudgetAlertWorker_ReintentaHastaEntregar(t *testing.T) {
	n := &fakeNotifier{fallos: 2}
	w := newTestWorker(n, "")

	require.NoError(t, w.Process(context.Background(), payload(t, alertaWarn())))
	assert.Equal(t, 3, n.llamadas)
	assert.Len(t, n.enviados, 1)
}

func TestBudgetAlertWorker_AgotaIntentos(t *testing.T) {
	n := &fakeNotifier{fallos: 10}
	w := newTestWorker(n, "")

	err := w.Process(context.Background(), payload(t, alertaWarn()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "l-1")
	assert.Equal(t, MaxAttempts, n.llamadas)
}

func TestBudgetAlertWorker_CircuitoAbierto(t *testing.T) {
	n := &fakeNotifier{fallos: 100}
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{Name: "smtp", FailureThreshold: 1, OpenTimeout: time.Hour})
	w := NewBudgetAlertWorker(n, cb, "")
	w.BackoffBase = time.Millisecond

	err := w.Process(context.Background(), payload(t, alertaWarn()))
	require.Error(t, err)
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
	assert.Equal(t, 1, n.llamadas, "an open breaker stops retrying")
}

func TestRenderAlerta(t *testing.T) {
	p := alertaWarn()
	p.Status = "over"
	p.Spent = decimal.RequireFromString("120.5")

	subject, body := renderAlerta(p)
	assert.Equal(t, "Presupuesto superado: Marzo", subject)
	assert.Contains(t, body, "120.50")
	assert.Contains(t, body, "100.00")
}

func TestWithRetry(t *testing.T) {
	t.Run("primer intento", func(t *testing.T) {
		calls := 0
		err := withRetry(context.Background(), 3, time.Millisecond, func(int) error { calls++; return nil })
		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("devuelve el ultimo error", func(t *testing.T) {
		var attempts []int
		err := withRetry(context.Background(), 3, time.Millisecond, func(i int) error {
			attempts = append(attempts, i)
			return errors.New("fallo")
		})
		assert.EqualError(t, err, "fallo")
		assert.Equal(t, []int{0, 1, 2}, attempts)
	})

	t.Run("contexto cancelado", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := withRetry(ctx, 3, time.Hour, func(int) error { return errors.New("fallo") })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// ── processJob ───────────────────────────────────────────────────────────────

type recordingHandler struct {
	got []json.RawMessage
	err error
}

func (h *recordingHandler) Process(_ context.Context, raw json.RawMessage) error {
	h.got = append(h.got, raw)
	return h.err
}

func TestProcessJob_Despacha(t *testing.T) {
	h := &recordingHandler{}
	job, err := json.Marshal(Job{Type: JobBudgetAlert, Payload: payload(t, alertaWarn())})
	require.NoError(t, err)

	processJob(context.Background(), nil, WorkerHandlers{BudgetAlert: h}, QueueBudgetAlert, string(job))
	require.Len(t, h.got, 1)

	var p BudgetAlertPayload
	require.NoError(t, json.Unmarshal(h.got[0], &p))
	assert.Equal(t, "l-1", p.ListaID)
}

func TestProcessJob_IgnoraDesconocidosYCorruptos(t *testing.T) {
	h := &recordingHandler{}
	handlers := WorkerHandlers{BudgetAlert: h}

	processJob(context.Background(), nil, handlers, QueueBudgetAlert, "no-json")
	processJob(context.Background(), nil, handlers, QueueBudgetAlert, `{"type":"otro","payload":{}}`)
	assert.Empty(t, h.got)
}

func TestProcessJob_ErrorSinRedisNoPanica(t *testing.T) {
	h := &recordingHandler{err: errors.New("smtp caido")}
	job, err := json.Marshal(Job{Type: JobBudgetAlert, Payload: json.RawMessage(`{}`)})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		processJob(context.Background(), nil, WorkerHandlers{BudgetAlert: h}, QueueBudgetAlert, string(job))
	})
	assert.Len(t, h.got, 1)
}
