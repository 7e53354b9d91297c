package nan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAllocateTake(t *testing.T) {
	registry := NewTransactionRegistry()

	record := &pendingTx{kind: txConfig, clientID: 7}
	id := registry.Allocate(record)
	assert.Equal(t, 1, registry.Len())

	got, ok := registry.Take(id)
	require.True(t, ok)
	assert.Same(t, record, got)
	assert.Equal(t, 0, registry.Len())

	_, ok = registry.Take(id)
	assert.False(t, ok, "a taken id must be unknown")
}

func TestRegistryIDsStrictlyIncrease(t *testing.T) {
	registry := NewTransactionRegistry()

	prev := registry.Allocate(&pendingTx{kind: txNoOp})
	for i := 0; i < 99; i++ {
		id := registry.Allocate(&pendingTx{kind: txNoOp})
		require.Greater(t, id, prev)
		prev = id
	}
}

func TestRegistrySweepClient(t *testing.T) {
	registry := NewTransactionRegistry()

	mine1 := registry.Allocate(&pendingTx{kind: txConfig, clientID: 10})
	other := registry.Allocate(&pendingTx{kind: txCreateSession, clientID: 11})
	mine2 := registry.Allocate(&pendingTx{kind: txSendMessage, clientID: 10})
	noop := registry.Allocate(&pendingTx{kind: txNoOp})

	swept := registry.SweepClient(10)
	require.Len(t, swept, 2)
	sweptIDs := []uint16{swept[0].id, swept[1].id}
	assert.ElementsMatch(t, []uint16{mine1, mine2}, sweptIDs)

	assert.False(t, registry.contains(mine1))
	assert.False(t, registry.contains(mine2))
	assert.True(t, registry.contains(other))
	assert.True(t, registry.contains(noop), "NoOp transactions belong to no client")
}

func TestRegistryWrapSkipsOccupiedSlots(t *testing.T) {
	registry := NewTransactionRegistry()

	// park a record on the id the counter will wrap to
	registry.nextID = 1
	held := registry.Allocate(&pendingTx{kind: txNoOp})
	require.Equal(t, uint16(1), held)

	registry.nextID = 0xFFFF
	last := registry.Allocate(&pendingTx{kind: txNoOp})
	assert.Equal(t, uint16(0xFFFF), last)

	// 0 is never issued and 1 is still held, so the wrap lands on 2
	next := registry.Allocate(&pendingTx{kind: txNoOp})
	assert.Equal(t, uint16(2), next)
}
