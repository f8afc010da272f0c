// Package ledger реализует реестр подписок: запрос активации, подтверждение
// и отклонение администратором, ленивое истечение при чтении.
//
// Все записи хранятся одним JSON массивом под ключом storage.KeySubscriptions.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/magabrotheeeer/jmfx-signals/internal/lib/latency"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
	"github.com/magabrotheeeer/jmfx-signals/internal/models"
	"github.com/magabrotheeeer/jmfx-signals/internal/storage"
)

// SubscriptionPeriod срок подписки после подтверждения оплаты.
const SubscriptionPeriod = 30 * 24 * time.Hour

// ErrNotFound запись подписки для email отсутствует.
var ErrNotFound = errors.New("subscription not found")

// KeyValue хранилище, в котором лежит реестр.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Metrics счётчики, которые пишет реестр.
type Metrics interface {
	IncLedgerTransition(from, to string)
	IncStoreReadFailure(key string)
}

// Ledger реестр подписок.
type Ledger struct {
	store      KeyValue
	delay      latency.Delayer
	log        *slog.Logger
	metrics    Metrics
	adminEmail string
	now        func() time.Time

	// mu сериализует чтение-изменение-запись массива подписок.
	mu sync.Mutex
}

// Option настраивает Ledger.
type Option func(*Ledger)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// New создает реестр поверх хранилища store.
func New(store KeyValue, delay latency.Delayer, log *slog.Logger, metrics Metrics, adminEmail string, opts ...Option) *Ledger {
	l := &Ledger{
		store:      store,
		delay:      delay,
		log:        log,
		metrics:    metrics,
		adminEmail: normalizeEmail(adminEmail),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsAdmin сообщает, принадлежит ли email администратору. Регистр не учитывается.
func (l *Ledger) IsAdmin(email string) bool {
	return l.adminEmail != "" && normalizeEmail(email) == l.adminEmail
}

// GetSubscription возвращает подписку пользователя. Истёкшая подписка исправляется и сохраняется.
// Для неизвестного email возвращается неоплаченная запись, она не сохраняется.
func (l *Ledger) GetSubscription(ctx context.Context, email string) (models.Subscription, error) {
	const op = "ledger.GetSubscription"
	l.delay.Delay(ctx, latency.GetSubscription)

	if l.IsAdmin(email) {
		return models.Subscription{
			Email:   email,
			IsPaid:  true,
			Plan:    models.PlanLifetime,
			IsAdmin: true,
		}, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	subs, err := l.load(ctx)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}

	i := indexOf(subs, email)
	if i < 0 {
		return defaultSubscription(email), nil
	}

	rec, changed := OnRead(subs[i], l.now())
	if changed {
		subs[i] = rec
		if err := l.save(ctx, subs); err != nil {
			return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
		}
		l.metrics.IncLedgerTransition(string(StateActive), string(StateExpired))
		l.log.Info("subscription expired", slog.String("email", email))
	}
	return rec, nil
}

// GetAllSubscriptions возвращает все записи реестра с применённым истечением.
func (l *Ledger) GetAllSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	const op = "ledger.GetAllSubscriptions"
	l.delay.Delay(ctx, latency.GetAllSubscriptions)

	l.mu.Lock()
	defer l.mu.Unlock()

	subs, err := l.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := l.now()
	expired := 0
	for i := range subs {
		rec, changed := OnRead(subs[i], now)
		if changed {
			subs[i] = rec
			expired++
		}
	}
	if expired > 0 {
		if err := l.save(ctx, subs); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		for range expired {
			l.metrics.IncLedgerTransition(string(StateActive), string(StateExpired))
		}
		l.log.Info("subscriptions expired", slog.Int("count", expired))
	}
	return subs, nil
}

// RequestActivation заменяет запись пользователя на ожидающую подтверждения с планом Monthly.
func (l *Ledger) RequestActivation(ctx context.Context, email string) error {
	const op = "ledger.RequestActivation"
	l.delay.Delay(ctx, latency.RequestActivation)
	// запись доводится до конца даже после отмены запроса
	ctx = context.WithoutCancel(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	subs, err := l.load(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	from := StateNone
	if i := indexOf(subs, email); i >= 0 {
		from = StateOf(subs[i], l.now())
	}

	subs = without(subs, email)
	subs = append(subs, models.Subscription{
		Email:     email,
		IsPaid:    false,
		IsPending: true,
		Plan:      models.PlanMonthly,
	})
	if err := l.save(ctx, subs); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	l.metrics.IncLedgerTransition(string(from), string(StatePending))
	l.log.Info("activation requested", slog.String("email", email))
	return nil
}

// AdminApproveUser подтверждает оплату: подписка активна SubscriptionPeriod с текущего момента.
func (l *Ledger) AdminApproveUser(ctx context.Context, email string) (models.Subscription, error) {
	const op = "ledger.AdminApproveUser"
	l.delay.Delay(ctx, latency.ApproveUser)
	// запись доводится до конца даже после отмены запроса
	ctx = context.WithoutCancel(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	subs, err := l.load(ctx)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}

	i := indexOf(subs, email)
	if i < 0 {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	now := l.now()
	from := StateOf(subs[i], now)
	expiry := now.Add(SubscriptionPeriod).UTC()
	subs[i].IsPaid = true
	subs[i].IsPending = false
	subs[i].ExpiryDate = &expiry
	if err := l.save(ctx, subs); err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}

	l.metrics.IncLedgerTransition(string(from), string(StateActive))
	l.log.Info("subscription approved", slog.String("email", email), slog.Time("expiry", expiry))
	return subs[i], nil
}

// AdminRejectUser удаляет запись пользователя в любом состоянии. Отсутствие записи не ошибка.
func (l *Ledger) AdminRejectUser(ctx context.Context, email string) error {
	const op = "ledger.AdminRejectUser"
	l.delay.Delay(ctx, latency.RejectUser)
	// запись доводится до конца даже после отмены запроса
	ctx = context.WithoutCancel(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	subs, err := l.load(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	i := indexOf(subs, email)
	if i < 0 {
		l.log.Debug("reject of unknown subscription ignored", slog.String("email", email))
		return nil
	}
	from := StateOf(subs[i], l.now())

	if err := l.save(ctx, without(subs, email)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	l.metrics.IncLedgerTransition(string(from), string(StateNone))
	l.log.Info("subscription rejected", slog.String("email", email))
	return nil
}

// Partition делит записи на ожидающие подтверждения и оплаченные.
func Partition(subs []models.Subscription) (pending, active []models.Subscription) {
	pending = make([]models.Subscription, 0)
	active = make([]models.Subscription, 0)
	for _, s := range subs {
		if s.IsPending {
			pending = append(pending, s)
		}
		if s.IsPaid {
			active = append(active, s)
		}
	}
	return pending, active
}

// load читает реестр. Повреждённое значение сбрасывается к пустому массиву.
func (l *Ledger) load(ctx context.Context) ([]models.Subscription, error) {
	raw, err := l.store.Get(ctx, storage.KeySubscriptions)
	if errors.Is(err, storage.ErrNotFound) {
		return []models.Subscription{}, nil
	}
	if err != nil {
		return nil, err
	}

	var subs []models.Subscription
	err = storage.DecodeJSON(storage.KeySubscriptions, raw, &subs)
	var rerr *storage.RecoverableError
	if errors.As(err, &rerr) {
		l.log.Warn("malformed subscriptions reset", sl.Err(err))
		l.metrics.IncStoreReadFailure(rerr.Key)
		if err := l.save(ctx, []models.Subscription{}); err != nil {
			return nil, err
		}
		return []models.Subscription{}, nil
	}
	if subs == nil {
		subs = []models.Subscription{}
	}
	return subs, nil
}

// save перезаписывает реестр целиком. Отмена запроса не прерывает запись.
func (l *Ledger) save(ctx context.Context, subs []models.Subscription) error {
	val, err := storage.EncodeJSON(subs)
	if err != nil {
		return err
	}
	return l.store.Set(context.WithoutCancel(ctx), storage.KeySubscriptions, val)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func defaultSubscription(email string) models.Subscription {
	return models.Subscription{Email: email, Plan: models.PlanNone}
}

func indexOf(subs []models.Subscription, email string) int {
	for i, s := range subs {
		if s.Email == email {
			return i
		}
	}
	return -1
}

func without(subs []models.Subscription, email string) []models.Subscription {
	out := make([]models.Subscription, 0, len(subs))
	for _, s := range subs {
		if s.Email != email {
			out = append(out, s)
		}
	}
	return out
}
