// Package latency добавляет искусственную задержку перед операциями хранилища,
// имитируя сетевой запрос к удалённому серверу.
package latency

import (
	"context"
	"time"
)

// Op имя операции, для которой задана задержка.
type Op string

const (
	GetSubscription     Op = "getSubscription"
	GetAllSubscriptions Op = "getAllSubscriptions"
	RequestActivation   Op = "requestActivation"
	ApproveUser         Op = "adminApproveUser"
	RejectUser          Op = "adminRejectUser"
	GetMembers          Op = "getMembers"
	BulkAddMembers      Op = "bulkAddMembers"
	GetPaymentInfo      Op = "getPaymentInfo"
	UpdatePaymentInfo   Op = "updatePaymentInfo"
)

// Defaults базовые длительности операций.
var Defaults = map[Op]time.Duration{
	GetSubscription:     400 * time.Millisecond,
	GetAllSubscriptions: 800 * time.Millisecond,
	RequestActivation:   1500 * time.Millisecond,
	ApproveUser:         1000 * time.Millisecond,
	RejectUser:          800 * time.Millisecond,
	GetMembers:          500 * time.Millisecond,
	BulkAddMembers:      1000 * time.Millisecond,
	GetPaymentInfo:      300 * time.Millisecond,
	UpdatePaymentInfo:   800 * time.Millisecond,
}

// Delayer выдерживает паузу перед операцией.
type Delayer interface {
	Delay(ctx context.Context, op Op)
}

// Scaled задерживает операции на Defaults, умноженные на scale.
type Scaled struct {
	durations map[Op]time.Duration
	scale     float64
}

// New создаёт Delayer. Нулевой или отрицательный scale отключает задержки.
func New(scale float64) Delayer {
	if scale <= 0 {
		return None{}
	}
	return &Scaled{durations: Defaults, scale: scale}
}

// Duration возвращает итоговую задержку операции.
func (s *Scaled) Duration(op Op) time.Duration {
	return time.Duration(float64(s.durations[op]) * s.scale)
}

// Delay ждёт положенное время или отмены контекста.
// Отмена только сокращает ожидание, операция после неё всё равно выполняется.
func (s *Scaled) Delay(ctx context.Context, op Op) {
	d := s.Duration(op)
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// None не задерживает операции.
type None struct{}

// Delay ничего не делает.
func (None) Delay(context.Context, Op) {}
