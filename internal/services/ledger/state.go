package ledger

import (
	"time"

	"github.com/magabrotheeeer/jmfx-signals/internal/models"
)

// State состояние подписки, вычисляемое из записи на момент чтения.
type State string

const (
	StateNone    State = "none"
	StatePending State = "pending"
	StateActive  State = "active"
	StateExpired State = "expired"
)

// StateOf определяет состояние записи на момент now.
// Оплаченная запись без даты окончания считается активной бессрочно.
func StateOf(rec models.Subscription, now time.Time) State {
	switch {
	case rec.IsPaid && rec.ExpiryDate != nil && now.After(*rec.ExpiryDate):
		return StateExpired
	case rec.IsPaid:
		return StateActive
	case rec.IsPending:
		return StatePending
	default:
		return StateNone
	}
}

// OnRead применяется к каждой прочитанной записи. Истёкшая подписка
// переводится в неоплаченную с планом None, changed сообщает, что запись нужно сохранить.
func OnRead(rec models.Subscription, now time.Time) (models.Subscription, bool) {
	if StateOf(rec, now) != StateExpired {
		return rec, false
	}
	rec.IsPaid = false
	rec.Plan = models.PlanNone
	return rec, true
}
