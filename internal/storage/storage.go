// Package storage описывает key-value хранилище, поверх которого работают реестр подписок
// и облачное хранилище дашборда. Каждое значение сериализуется в JSON целиком,
// запись всегда полностью перезаписывает ключ.
package storage

import (
	"context"
	"errors"
)

// Ключи хранилища: одна коллекция или одно значение на каждую сущность.
const (
	KeyMembers       = "jm_fx_cloud_members"
	KeyHistory       = "jm_fx_cloud_history"
	KeyPaymentInfo   = "jm_fx_payment_info"
	KeySubscriptions = "jm_fx_cloud_subs"
	KeyTotalCount    = "jm_fx_total_count"
)

// ErrNotFound возвращается, если ключ отсутствует в хранилище.
var ErrNotFound = errors.New("key not found")

// Store абстрактное key-value хранилище.
// Реализации: in-memory, Redis и PostgreSQL.
type Store interface {
	// Get возвращает значение по ключу или ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set полностью перезаписывает значение ключа.
	Set(ctx context.Context, key, value string) error
	// Delete удаляет ключ. Удаление отсутствующего ключа не является ошибкой.
	Delete(ctx context.Context, key string) error
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
}
