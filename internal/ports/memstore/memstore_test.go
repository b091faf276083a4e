package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sevens/internal/ports"
)

func TestReadWriteDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Read(ctx, "rooms/ABCD/board")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	require.NoError(t, s.Write(ctx, "rooms/ABCD/board", map[string]int{"x": 1}))
	raw, err := s.Read(ctx, "rooms/ABCD/board")
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1}`, string(raw))

	require.NoError(t, s.Write(ctx, "rooms/ABCD/board", nil))
	_, err = s.Read(ctx, "rooms/ABCD/board")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestAtomicIncrement(t *testing.T) {
	ctx := context.Background()
	s := New()

	n, err := s.AtomicIncrement(ctx, "counter", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.AtomicIncrement(ctx, "counter", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestMultiPathUpdateAtomicBatch(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Write(ctx, "rooms/R/gameState/turnNumber", 4))
	require.NoError(t, s.Write(ctx, "rooms/R/gameState/currentTurn", "u1"))

	err := s.MultiPathUpdate(ctx, map[string]any{
		"rooms/R/gameState/turnNumber":  ports.Delta(1),
		"rooms/R/gameState/currentTurn": "u2",
		"rooms/R/gameState/lastAction":  nil,
	})
	require.NoError(t, err)

	raw, err := s.Read(ctx, "rooms/R/gameState/turnNumber")
	require.NoError(t, err)
	assert.Equal(t, "5", string(raw))

	raw, err = s.Read(ctx, "rooms/R/gameState/currentTurn")
	require.NoError(t, err)
	assert.Equal(t, `"u2"`, string(raw))

	_, err = s.Read(ctx, "rooms/R/gameState/lastAction")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSubscribeDeliversInOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Write(ctx, "p", "a"))

	var got []string
	sub, err := s.Subscribe(ctx, "p", func(raw []byte) {
		got = append(got, string(raw))
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, s.Write(ctx, "p", "b"))
	require.NoError(t, s.Write(ctx, "p", "c"))

	assert.Equal(t, []string{`"a"`, `"b"`, `"c"`}, got)

	sub.Unsubscribe()
	require.NoError(t, s.Write(ctx, "p", "d"))
	assert.Len(t, got, 3)
}
