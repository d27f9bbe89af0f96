package worker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ redis.Hook = (*memRedis)(nil)

// memRedis answers SET NX, DEL and LPUSH in memory so Dispatcher runs
// without a server. lpushFallos makes the next N pushes fail.
type memRedis struct {
	mu          sync.Mutex
	claves      map[string]string
	cola        []string
	lpushFallos int
}

func newMemRedis(t *testing.T) (*redis.Client, *memRedis) {
	t.Helper()
	m := &memRedis{claves: make(map[string]string)}
	rdb := redis.NewClient(&redis.Options{Addr: "memoria:0"})
	rdb.AddHook(m)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, m
}

func (m *memRedis) DialHook(redis.DialHook) redis.DialHook {
	return func(context.Context, string, string) (net.Conn, error) {
		return nil, errors.New("memRedis: sin red")
	}
}

func (m *memRedis) ProcessPipelineHook(redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(context.Context, []redis.Cmder) error {
		return errors.New("memRedis: pipeline no soportado")
	}
}

func (m *memRedis) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		args := cmd.Args()
		switch c := cmd.(type) {
		case *redis.BoolCmd: // SET key val EX n NX
			key := args[1].(string)
			if _, ok := m.claves[key]; ok {
				c.SetVal(false)
				return nil
			}
			m.claves[key] = fmt.Sprint(args[2])
			c.SetVal(true)
			return nil
		case *redis.IntCmd:
			switch cmd.Name() {
			case "del":
				n := int64(0)
				for _, k := range args[1:] {
					if _, ok := m.claves[k.(string)]; ok {
						delete(m.claves, k.(string))
						n++
					}
				}
				c.SetVal(n)
				return nil
			case "lpush":
				if m.lpushFallos > 0 {
					m.lpushFallos--
					err := errors.New("LPUSH: connection reset")
					c.SetErr(err)
					return err
				}
				for _, v := range args[2:] {
					m.cola = append(m.cola, fmt.Sprint(v))
				}
				c.SetVal(int64(len(m.cola)))
				return nil
			}
		}
		err := fmt.Errorf("memRedis: comando %q no soportado", cmd.Name())
		cmd.SetErr(err)
		return err
	}
}

func TestDispatcher_PushFallidoNoDejaMarca(t *testing.T) {
	rdb, m := newMemRedis(t)
	m.lpushFallos = 1
	d := NewDispatcher(rdb, time.Hour)
	ctx := context.Background()

	require.Error(t, d.EnqueueBudgetAlert(ctx, alertaWarn()))
	assert.Empty(t, m.claves, "a failed push must not leave the dedupe marker behind")
	assert.Empty(t, m.cola)

	require.NoError(t, d.EnqueueBudgetAlert(ctx, alertaWarn()))
	assert.Len(t, m.cola, 1, "the retried alert is queued")

	require.NoError(t, d.EnqueueBudgetAlert(ctx, alertaWarn()))
	assert.Len(t, m.cola, 1, "once queued, the same alert is suppressed")
}

func TestDispatcher_SinVentanaNoDeduplica(t *testing.T) {
	rdb, m := newMemRedis(t)
	d := NewDispatcher(rdb, 0)
	ctx := context.Background()

	require.NoError(t, d.EnqueueBudgetAlert(ctx, alertaWarn()))
	require.NoError(t, d.EnqueueBudgetAlert(ctx, alertaWarn()))
	assert.Len(t, m.cola, 2)
	assert.Empty(t, m.claves)
}
