package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlitQueue_Push_Front_Pop_FIFO(t *testing.T) {
	// GIVEN an empty queue
	q := &FlitQueue{}
	fA := &Flit{PacketID: 1}
	fB := &Flit{PacketID: 2}

	// WHEN two flits are pushed
	q.Push(fA)
	q.Push(fB)

	// THEN Front returns the first without removing it, and Len reflects both
	assert.Same(t, fA, q.Front())
	assert.Equal(t, 2, q.Len())

	// AND Pop removes and returns in FIFO order
	assert.Same(t, fA, q.Pop())
	assert.Same(t, fB, q.Pop())
}

func TestFlitQueue_Empty_FrontAndPopReturnNil(t *testing.T) {
	// GIVEN an empty queue
	q := &FlitQueue{}

	// WHEN Front/Pop are called
	// THEN both return nil and Len is 0
	assert.Nil(t, q.Front())
	assert.Nil(t, q.Pop())
	assert.Equal(t, 0, q.Len())
}
