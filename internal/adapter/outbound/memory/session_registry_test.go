package memory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/parcelapi/planengine/internal/domain/billing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRegistry(t *testing.T) {
	t.Run("add and get", func(t *testing.T) {
		registry := NewSessionRegistry(10, time.Hour, nil)
		session := billing.NewSession(time.Now())

		registry.Add(session)
		got, err := registry.Get(session.ID())

		require.NoError(t, err)
		assert.Same(t, session, got)
		assert.Equal(t, 1, registry.Len())
	})

	t.Run("unknown id", func(t *testing.T) {
		registry := NewSessionRegistry(10, time.Hour, nil)

		_, err := registry.Get(uuid.New())
		assert.ErrorIs(t, err, billing.ErrSessionNotFound)
	})

	t.Run("remove", func(t *testing.T) {
		registry := NewSessionRegistry(10, time.Hour, nil)
		session := billing.NewSession(time.Now())
		registry.Add(session)

		registry.Remove(session.ID())

		_, err := registry.Get(session.ID())
		assert.ErrorIs(t, err, billing.ErrSessionNotFound)
		assert.Equal(t, 0, registry.Len())
	})

	t.Run("evicts least recently used over capacity", func(t *testing.T) {
		registry := NewSessionRegistry(2, time.Hour, nil)
		first, second, third := billing.NewSession(time.Now()), billing.NewSession(time.Now()), billing.NewSession(time.Now())

		registry.Add(first)
		registry.Add(second)
		_, err := registry.Get(first.ID())
		require.NoError(t, err)
		registry.Add(third)

		_, err = registry.Get(second.ID())
		assert.ErrorIs(t, err, billing.ErrSessionNotFound)
		_, err = registry.Get(first.ID())
		assert.NoError(t, err)
		assert.Equal(t, 2, registry.Len())
	})

	t.Run("expires sessions after ttl", func(t *testing.T) {
		registry := NewSessionRegistry(10, 20*time.Millisecond, nil)
		session := billing.NewSession(time.Now())
		registry.Add(session)

		assert.Eventually(t, func() bool {
			_, err := registry.Get(session.ID())
			return err != nil
		}, time.Second, 10*time.Millisecond)
	})
}
