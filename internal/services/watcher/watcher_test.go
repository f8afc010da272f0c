package watcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/jmfx-signals/internal/models"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

// paidAfter возвращает оплаченную запись начиная с n-го чтения.
type paidAfter struct {
	n     int32
	calls atomic.Int32
	err   error
}

func (r *paidAfter) GetSubscription(_ context.Context, email string) (models.Subscription, error) {
	c := r.calls.Add(1)
	if r.err != nil {
		return models.Subscription{}, r.err
	}
	if r.n > 0 && c >= r.n {
		return models.Subscription{Email: email, IsPaid: true, Plan: models.PlanMonthly}, nil
	}
	return models.Subscription{Email: email, IsPending: true, Plan: models.PlanNone}, nil
}

func TestWait_AlreadyPaid(t *testing.T) {
	r := &paidAfter{n: 1}
	w := New(r, newNoopLogger(), time.Hour, 0)

	sub, err := w.Wait(context.Background(), "u@x.com")
	require.NoError(t, err)
	assert.True(t, sub.IsPaid)
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestWait_BecomesPaid(t *testing.T) {
	r := &paidAfter{n: 3}
	w := New(r, newNoopLogger(), 5*time.Millisecond, time.Second)

	sub, err := w.Wait(context.Background(), "u@x.com")
	require.NoError(t, err)
	assert.True(t, sub.IsPaid)
	assert.Equal(t, int32(3), r.calls.Load())
}

func TestWait_Timeout(t *testing.T) {
	r := &paidAfter{}
	w := New(r, newNoopLogger(), 5*time.Millisecond, 30*time.Millisecond)

	sub, err := w.Wait(context.Background(), "u@x.com")
	require.ErrorIs(t, err, ErrTimeout)
	assert.True(t, sub.IsPending)
	assert.GreaterOrEqual(t, r.calls.Load(), int32(2))
}

func TestWait_Cancelled(t *testing.T) {
	r := &paidAfter{}
	w := New(r, newNoopLogger(), 5*time.Millisecond, 0)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := w.Wait(ctx, "u@x.com")
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestWait_ReadErrorsKeepPolling(t *testing.T) {
	r := &paidAfter{err: errors.New("store down")}
	w := New(r, newNoopLogger(), 5*time.Millisecond, 30*time.Millisecond)

	_, err := w.Wait(context.Background(), "u@x.com")
	require.ErrorIs(t, err, ErrTimeout)
	assert.GreaterOrEqual(t, r.calls.Load(), int32(2))
}
