// Package cloudstore хранит участников VIP группы, историю анализов, реквизиты оплаты
// и счётчик участников в key-value хранилище.
package cloudstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/jmfx-signals/internal/lib/latency"
	"github.com/magabrotheeeer/jmfx-signals/internal/lib/sl"
	"github.com/magabrotheeeer/jmfx-signals/internal/models"
	"github.com/magabrotheeeer/jmfx-signals/internal/storage"
)

// SeedTotalCount значение счётчика участников, пока он не сохранён.
const SeedTotalCount = 10540

// DefaultPaymentInfo реквизиты, пока администратор их не изменил.
var DefaultPaymentInfo = models.PaymentInfo{
	PhoneNumber: "07XX XXX XXX",
	AccountName: "JM EXPERT ANALYST",
}

// KeyValue хранилище, поверх которого работает Store.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
}

// Metrics счётчики повреждённых значений.
type Metrics interface {
	IncStoreReadFailure(key string)
}

// Store облачное хранилище дашборда.
type Store struct {
	kv      KeyValue
	delay   latency.Delayer
	log     *slog.Logger
	metrics Metrics
	now     func() time.Time
	newID   func() string

	// mu сериализует чтение-изменение-запись списков и счётчика.
	mu sync.Mutex
}

// New создаёт Store.
func New(kv KeyValue, delay latency.Delayer, log *slog.Logger, metrics Metrics) *Store {
	return &Store{
		kv:      kv,
		delay:   delay,
		log:     log,
		metrics: metrics,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// GetMembers возвращает участников группы, новые первыми.
func (s *Store) GetMembers(ctx context.Context) ([]models.Member, error) {
	const op = "cloudstore.GetMembers"
	s.delay.Delay(ctx, latency.GetMembers)

	members := []models.Member{}
	if err := s.load(ctx, storage.KeyMembers, &members, "[]"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return members, nil
}

// SaveMember добавляет участника в начало списка и увеличивает счётчик на единицу.
func (s *Store) SaveMember(ctx context.Context, email string) (models.Member, error) {
	const op = "cloudstore.SaveMember"
	s.delay.Delay(ctx, latency.GetMembers)
	// запись доводится до конца даже после отмены запроса
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	members := []models.Member{}
	if err := s.load(ctx, storage.KeyMembers, &members, "[]"); err != nil {
		return models.Member{}, fmt.Errorf("%s: %w", op, err)
	}

	member := models.Member{
		ID:       s.newID(),
		Email:    email,
		JoinedAt: s.now().Format(time.DateOnly),
	}
	if err := s.save(ctx, storage.KeyMembers, append([]models.Member{member}, members...)); err != nil {
		return models.Member{}, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.addToTotal(ctx, 1); err != nil {
		return models.Member{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("member saved", slog.String("id", member.ID))
	return member, nil
}

// BulkAddMembers увеличивает счётчик участников на count и возвращает новое значение.
func (s *Store) BulkAddMembers(ctx context.Context, count int) (int, error) {
	const op = "cloudstore.BulkAddMembers"
	s.delay.Delay(ctx, latency.BulkAddMembers)
	// запись доводится до конца даже после отмены запроса
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	total, err := s.addToTotal(ctx, count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("members bulk added", slog.Int("count", count), slog.Int("total", total))
	return total, nil
}

// TotalMembers возвращает значение счётчика участников.
func (s *Store) TotalMembers(ctx context.Context) (int, error) {
	const op = "cloudstore.TotalMembers"
	total, err := s.loadTotal(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}

// SaveAnalysis добавляет анализ в начало истории.
func (s *Store) SaveAnalysis(ctx context.Context, rec models.AnalysisRecord) error {
	const op = "cloudstore.SaveAnalysis"
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	history := []models.AnalysisRecord{}
	if err := s.load(ctx, storage.KeyHistory, &history, "[]"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.save(ctx, storage.KeyHistory, append([]models.AnalysisRecord{rec}, history...)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetHistory возвращает историю анализов, новые первыми.
func (s *Store) GetHistory(ctx context.Context) ([]models.AnalysisRecord, error) {
	const op = "cloudstore.GetHistory"

	history := []models.AnalysisRecord{}
	if err := s.load(ctx, storage.KeyHistory, &history, "[]"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return history, nil
}

// GetPaymentInfo возвращает реквизиты оплаты или DefaultPaymentInfo.
func (s *Store) GetPaymentInfo(ctx context.Context) (models.PaymentInfo, error) {
	const op = "cloudstore.GetPaymentInfo"
	s.delay.Delay(ctx, latency.GetPaymentInfo)

	info := DefaultPaymentInfo
	def, err := storage.EncodeJSON(DefaultPaymentInfo)
	if err != nil {
		return models.PaymentInfo{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.load(ctx, storage.KeyPaymentInfo, &info, def); err != nil {
		return models.PaymentInfo{}, fmt.Errorf("%s: %w", op, err)
	}
	return info, nil
}

// UpdatePaymentInfo полностью заменяет реквизиты оплаты.
func (s *Store) UpdatePaymentInfo(ctx context.Context, phoneNumber, accountName string) (models.PaymentInfo, error) {
	const op = "cloudstore.UpdatePaymentInfo"
	s.delay.Delay(ctx, latency.UpdatePaymentInfo)
	// запись доводится до конца даже после отмены запроса
	ctx = context.WithoutCancel(ctx)

	info := models.PaymentInfo{PhoneNumber: phoneNumber, AccountName: accountName}
	if err := s.save(ctx, storage.KeyPaymentInfo, info); err != nil {
		return models.PaymentInfo{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("payment info updated")
	return info, nil
}

// CheckServerStatus сообщает, доступно ли хранилище.
func (s *Store) CheckServerStatus(ctx context.Context) bool {
	if err := s.kv.Ping(ctx); err != nil {
		s.log.Warn("store ping failed", sl.Err(err))
		return false
	}
	return true
}

func (s *Store) addToTotal(ctx context.Context, delta int) (int, error) {
	total, err := s.loadTotal(ctx)
	if err != nil {
		return 0, err
	}
	total += delta
	if err := s.kv.Set(context.WithoutCancel(ctx), storage.KeyTotalCount, strconv.Itoa(total)); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) loadTotal(ctx context.Context) (int, error) {
	total := SeedTotalCount
	if err := s.load(ctx, storage.KeyTotalCount, &total, strconv.Itoa(SeedTotalCount)); err != nil {
		return 0, err
	}
	return total, nil
}

// load читает ключ в dst. Отсутствующий ключ оставляет dst без изменений.
// Повреждённое значение перезаписывается def, а dst остаётся значением по умолчанию.
func (s *Store) load(ctx context.Context, key string, dst any, def string) error {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	err = storage.DecodeJSON(key, raw, dst)
	var rerr *storage.RecoverableError
	if errors.As(err, &rerr) {
		s.log.Warn("malformed value reset to default", slog.String("key", key), sl.Err(err))
		s.metrics.IncStoreReadFailure(key)
		if err := s.kv.Set(context.WithoutCancel(ctx), key, def); err != nil {
			return err
		}
		return storage.DecodeJSON(key, def, dst)
	}
	return err
}

// save перезаписывает ключ. Отмена запроса не прерывает запись.
func (s *Store) save(ctx context.Context, key string, v any) error {
	val, err := storage.EncodeJSON(v)
	if err != nil {
		return err
	}
	return s.kv.Set(context.WithoutCancel(ctx), key, val)
}
