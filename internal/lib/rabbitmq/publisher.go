package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/jmfx-signals/internal/models"
)

// PublishMessage публикует message как persistent JSON сообщение.
func PublishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SignalPublisher публикует сигналы в обменник с фиксированным ключом маршрутизации.
// Канал amqp не потокобезопасен, публикации сериализуются.
type SignalPublisher struct {
	mu         sync.Mutex
	ch         *amqp.Channel
	exchange   string
	routingKey string
}

// NewSignalPublisher создаёт SignalPublisher поверх настроенного канала.
func NewSignalPublisher(ch *amqp.Channel, exchange, routingKey string) *SignalPublisher {
	return &SignalPublisher{ch: ch, exchange: exchange, routingKey: routingKey}
}

// PublishSignal отправляет сигнал в VIP очередь.
func (p *SignalPublisher) PublishSignal(ctx context.Context, msg models.SignalMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return PublishMessage(p.ch, p.exchange, p.routingKey, msg)
}
