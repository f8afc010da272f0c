// Package storagetest содержит общий набор проверок для реализаций storage.Store.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/jmfx-signals/internal/storage"
)

// Run прогоняет проверки контракта storage.Store на хранилище, созданном newStore.
// newStore вызывается для каждого подтеста и должен возвращать пустое хранилище.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Helper()

	t.Run("get missing key", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, storage.KeyPaymentInfo, `{"phoneNumber":"0700"}`))

		got, err := s.Get(ctx, storage.KeyPaymentInfo)
		require.NoError(t, err)
		assert.Equal(t, `{"phoneNumber":"0700"}`, got)
	})

	t.Run("set overwrites", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, storage.KeyTotalCount, "10540"))
		require.NoError(t, s.Set(ctx, storage.KeyTotalCount, "11040"))

		got, err := s.Get(ctx, storage.KeyTotalCount)
		require.NoError(t, err)
		assert.Equal(t, "11040", got)
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, storage.KeyMembers, "[]"))
		require.NoError(t, s.Delete(ctx, storage.KeyMembers))

		_, err := s.Get(ctx, storage.KeyMembers)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete missing key", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Delete(context.Background(), "missing"))
	})

	t.Run("ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(context.Background()))
	})
}
