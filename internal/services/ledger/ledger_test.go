package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/jmfx-signals/internal/lib/latency"
	"github.com/magabrotheeeer/jmfx-signals/internal/models"
	"github.com/magabrotheeeer/jmfx-signals/internal/storage"
)

const adminEmail = "admin@jmfx.com"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type metricsSpy struct {
	mu           sync.Mutex
	transitions  []string
	readFailures []string
}

func (m *metricsSpy) IncLedgerTransition(from, to string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, from+"->"+to)
}

func (m *metricsSpy) IncStoreReadFailure(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readFailures = append(m.readFailures, key)
}

type StoreMock struct{ mock.Mock }

func (m *StoreMock) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *StoreMock) Set(ctx context.Context, key, value string) error {
	return m.Called(ctx, key, value).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func setupLedger(t *testing.T) (*Ledger, *storage.Memory, *fakeClock, *metricsSpy) {
	t.Helper()
	store := storage.NewMemory()
	clock := &fakeClock{now: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)}
	spy := &metricsSpy{}
	l := New(store, latency.None{}, newNoopLogger(), spy, adminEmail, WithClock(clock.Now))
	return l, store, clock, spy
}

func TestGetSubscription_UnknownEmailDefault(t *testing.T) {
	l, store, _, _ := setupLedger(t)
	ctx := context.Background()

	for _, email := range []string{"a@b.com", "nobody@example.com", ""} {
		got, err := l.GetSubscription(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, models.Subscription{Email: email, Plan: models.PlanNone}, got)
	}

	_, err := store.Get(ctx, storage.KeySubscriptions)
	assert.ErrorIs(t, err, storage.ErrNotFound, "default record must not be persisted")
}

func TestGetSubscription_Admin(t *testing.T) {
	l, store, _, _ := setupLedger(t)
	ctx := context.Background()

	// состояние в хранилище не влияет на запись администратора
	require.NoError(t, store.Set(ctx, storage.KeySubscriptions,
		`[{"email":"admin@jmfx.com","isPaid":false,"isPending":true,"plan":"Monthly"}]`))

	got, err := l.GetSubscription(ctx, adminEmail)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)
	assert.True(t, got.IsPaid)
	assert.False(t, got.IsPending)
	assert.Equal(t, models.PlanLifetime, got.Plan)
	assert.Equal(t, adminEmail, got.Email)
	assert.True(t, l.IsAdmin(adminEmail))
	assert.True(t, l.IsAdmin(" Admin@JMFX.com "))
	assert.False(t, l.IsAdmin("a@b.com"))
}

func TestIsAdmin_NormalizesConfiguredEmail(t *testing.T) {
	l := New(storage.NewMemory(), latency.None{}, newNoopLogger(), &metricsSpy{}, " Admin@JMFX.com")
	assert.True(t, l.IsAdmin("admin@jmfx.com"))

	noAdmin := New(storage.NewMemory(), latency.None{}, newNoopLogger(), &metricsSpy{}, "")
	assert.False(t, noAdmin.IsAdmin(""))
}

func TestRequestActivation_Idempotent(t *testing.T) {
	l, _, _, spy := setupLedger(t)
	ctx := context.Background()

	require.NoError(t, l.RequestActivation(ctx, "a@b.com"))
	got, err := l.GetSubscription(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, got.IsPending)
	assert.False(t, got.IsPaid)
	assert.Equal(t, models.PlanMonthly, got.Plan)

	require.NoError(t, l.RequestActivation(ctx, "a@b.com"))
	require.NoError(t, l.RequestActivation(ctx, "c@d.com"))

	all, err := l.GetAllSubscriptions(ctx)
	require.NoError(t, err)
	count := 0
	for _, s := range all {
		if s.Email == "a@b.com" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Len(t, all, 2)
	assert.Equal(t, []string{"none->pending", "pending->pending", "none->pending"}, spy.transitions)
}

func TestRequestActivation_ReplacesActive(t *testing.T) {
	l, _, _, _ := setupLedger(t)
	ctx := context.Background()

	require.NoError(t, l.RequestActivation(ctx, "a@b.com"))
	_, err := l.AdminApproveUser(ctx, "a@b.com")
	require.NoError(t, err)

	require.NoError(t, l.RequestActivation(ctx, "a@b.com"))
	got, err := l.GetSubscription(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, got.IsPending)
	assert.False(t, got.IsPaid)
	assert.Nil(t, got.ExpiryDate)
}

func TestAdminApproveUser(t *testing.T) {
	l, _, clock, _ := setupLedger(t)
	ctx := context.Background()

	require.NoError(t, l.RequestActivation(ctx, "a@b.com"))
	approved, err := l.AdminApproveUser(ctx, "a@b.com")
	require.NoError(t, err)

	got, err := l.GetSubscription(ctx, "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, approved.ExpiryDate)
	assert.True(t, got.IsPaid)
	assert.False(t, got.IsPending)
	require.NotNil(t, got.ExpiryDate)
	assert.WithinDuration(t, clock.Now().Add(30*24*time.Hour), *got.ExpiryDate, time.Second)
	assert.True(t, approved.ExpiryDate.Equal(*got.ExpiryDate))
}

func TestAdminApproveUser_MissingRecord(t *testing.T) {
	l, store, _, _ := setupLedger(t)
	ctx := context.Background()

	_, err := l.AdminApproveUser(ctx, "ghost@b.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(ctx, storage.KeySubscriptions)
	assert.ErrorIs(t, err, storage.ErrNotFound, "nothing must be written")
}

func TestAdminRejectUser(t *testing.T) {
	l, _, _, spy := setupLedger(t)
	ctx := context.Background()

	require.NoError(t, l.RequestActivation(ctx, "a@b.com"))
	require.NoError(t, l.RequestActivation(ctx, "c@d.com"))
	_, err := l.AdminApproveUser(ctx, "c@d.com")
	require.NoError(t, err)

	require.NoError(t, l.AdminRejectUser(ctx, "a@b.com"))
	require.NoError(t, l.AdminRejectUser(ctx, "c@d.com"))

	for _, email := range []string{"a@b.com", "c@d.com"} {
		got, err := l.GetSubscription(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, models.Subscription{Email: email, Plan: models.PlanNone}, got)
	}
	assert.Contains(t, spy.transitions, "pending->none")
	assert.Contains(t, spy.transitions, "active->none")
}

func TestAdminRejectUser_MissingRecordIsNoop(t *testing.T) {
	l, _, _, spy := setupLedger(t)
	assert.NoError(t, l.AdminRejectUser(context.Background(), "ghost@b.com"))
	assert.Empty(t, spy.transitions)
}

func TestLazyExpiry_Scenario(t *testing.T) {
	l, store, clock, spy := setupLedger(t)
	ctx := context.Background()

	require.NoError(t, l.RequestActivation(ctx, "a@b.com"))
	_, err := l.AdminApproveUser(ctx, "a@b.com")
	require.NoError(t, err)

	got, err := l.GetSubscription(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, got.IsPaid)
	require.NotNil(t, got.ExpiryDate)
	assert.WithinDuration(t, clock.Now().Add(30*24*time.Hour), *got.ExpiryDate, time.Second)

	clock.Advance(31 * 24 * time.Hour)

	got, err = l.GetSubscription(ctx, "a@b.com")
	require.NoError(t, err)
	assert.False(t, got.IsPaid)
	assert.Equal(t, models.PlanNone, got.Plan)

	// исправление сохранено в хранилище
	raw, err := store.Get(ctx, storage.KeySubscriptions)
	require.NoError(t, err)
	var persisted []models.Subscription
	require.NoError(t, storage.DecodeJSON(storage.KeySubscriptions, raw, &persisted))
	require.Len(t, persisted, 1)
	assert.False(t, persisted[0].IsPaid)
	assert.Equal(t, models.PlanNone, persisted[0].Plan)

	// повторное чтение ничего не меняет
	again, err := l.GetSubscription(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, got, again)
	raw2, err := store.Get(ctx, storage.KeySubscriptions)
	require.NoError(t, err)
	assert.Equal(t, raw, raw2)

	expiredCount := 0
	for _, tr := range spy.transitions {
		if tr == "active->expired" {
			expiredCount++
		}
	}
	assert.Equal(t, 1, expiredCount)
}

func TestGetAllSubscriptions_AppliesExpiry(t *testing.T) {
	l, _, clock, _ := setupLedger(t)
	ctx := context.Background()

	require.NoError(t, l.RequestActivation(ctx, "old@b.com"))
	_, err := l.AdminApproveUser(ctx, "old@b.com")
	require.NoError(t, err)

	clock.Advance(31 * 24 * time.Hour)

	require.NoError(t, l.RequestActivation(ctx, "new@b.com"))
	require.NoError(t, l.RequestActivation(ctx, "paid@b.com"))
	_, err = l.AdminApproveUser(ctx, "paid@b.com")
	require.NoError(t, err)

	all, err := l.GetAllSubscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	pending, active := Partition(all)
	require.Len(t, pending, 1)
	assert.Equal(t, "new@b.com", pending[0].Email)
	require.Len(t, active, 1)
	assert.Equal(t, "paid@b.com", active[0].Email)
}

func TestPartition_Empty(t *testing.T) {
	pending, active := Partition(nil)
	assert.NotNil(t, pending)
	assert.NotNil(t, active)
	assert.Empty(t, pending)
	assert.Empty(t, active)
}

func TestLoad_MalformedResets(t *testing.T) {
	l, store, _, spy := setupLedger(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, storage.KeySubscriptions, "{broken"))

	got, err := l.GetSubscription(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, models.Subscription{Email: "a@b.com", Plan: models.PlanNone}, got)

	raw, err := store.Get(ctx, storage.KeySubscriptions)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
	assert.Equal(t, []string{storage.KeySubscriptions}, spy.readFailures)
}

func TestLedger_StoreErrors(t *testing.T) {
	storeErr := errors.New("store down")

	tests := []struct {
		name string
		call func(l *Ledger) error
	}{
		{"get", func(l *Ledger) error { _, err := l.GetSubscription(context.Background(), "a@b.com"); return err }},
		{"all", func(l *Ledger) error { _, err := l.GetAllSubscriptions(context.Background()); return err }},
		{"request", func(l *Ledger) error { return l.RequestActivation(context.Background(), "a@b.com") }},
		{"approve", func(l *Ledger) error { _, err := l.AdminApproveUser(context.Background(), "a@b.com"); return err }},
		{"reject", func(l *Ledger) error { return l.AdminRejectUser(context.Background(), "a@b.com") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &StoreMock{}
			store.On("Get", mock.Anything, storage.KeySubscriptions).Return("", storeErr)
			l := New(store, latency.None{}, newNoopLogger(), &metricsSpy{}, adminEmail)

			err := tt.call(l)
			assert.ErrorIs(t, err, storeErr)
			store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRequestActivation_WriteFailure(t *testing.T) {
	store := &StoreMock{}
	store.On("Get", mock.Anything, storage.KeySubscriptions).Return("[]", nil)
	store.On("Set", mock.Anything, storage.KeySubscriptions, mock.Anything).Return(errors.New("disk full"))
	l := New(store, latency.None{}, newNoopLogger(), &metricsSpy{}, adminEmail)

	err := l.RequestActivation(context.Background(), "a@b.com")
	assert.Error(t, err)
	store.AssertExpectations(t)
}

func TestRequestActivation_WriteSurvivesCancel(t *testing.T) {
	store := &StoreMock{}
	ctx, cancel := context.WithCancel(context.Background())
	store.On("Get", mock.Anything, storage.KeySubscriptions).Return("[]", nil).Run(func(mock.Arguments) {
		cancel()
	})
	store.On("Set", mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil }),
		storage.KeySubscriptions, mock.Anything).Return(nil)
	l := New(store, latency.None{}, newNoopLogger(), &metricsSpy{}, adminEmail)

	require.NoError(t, l.RequestActivation(ctx, "a@b.com"))
	store.AssertExpectations(t)
}

func TestMutations_CompleteWhenCancelledDuringDelay(t *testing.T) {
	store := storage.NewMemory()
	l := New(store, latency.New(0.01), newNoopLogger(), &metricsSpy{}, adminEmail)

	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(2*time.Millisecond, cancel)
	defer timer.Stop()

	require.NoError(t, l.RequestActivation(ctx, "a@b.com"))
	<-ctx.Done()

	got, err := l.GetSubscription(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.True(t, got.IsPending)
	assert.Equal(t, models.PlanMonthly, got.Plan)
}

func TestMutations_CompleteWithCancelledContext(t *testing.T) {
	l, _, _, _ := setupLedger(t)
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, l.RequestActivation(cancelled, "a@b.com"))
	require.NoError(t, l.RequestActivation(cancelled, "c@d.com"))

	approved, err := l.AdminApproveUser(cancelled, "a@b.com")
	require.NoError(t, err)
	assert.True(t, approved.IsPaid)

	require.NoError(t, l.AdminRejectUser(cancelled, "c@d.com"))

	all, err := l.GetAllSubscriptions(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "a@b.com", all[0].Email)
	assert.True(t, all[0].IsPaid)
}

func TestLedger_ConcurrentRequests(t *testing.T) {
	l, _, _, _ := setupLedger(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	emails := []string{"a@b.com", "b@b.com", "c@b.com", "d@b.com", "e@b.com"}
	for _, e := range emails {
		wg.Add(1)
		go func(email string) {
			defer wg.Done()
			assert.NoError(t, l.RequestActivation(ctx, email))
		}(e)
	}
	wg.Wait()

	all, err := l.GetAllSubscriptions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(emails))
}
