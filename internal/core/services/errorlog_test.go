package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trblackw/teton-tracker-sub001/internal/core/domain"
)

func record(n int) domain.PollError {
	return domain.PollError{
		Time:    time.Now(),
		Message: fmt.Sprintf("error %d", n),
		Context: fmt.Sprintf("context %d", n),
	}
}

func TestErrorRing_AppendBelowCapacity(t *testing.T) {
	r := newErrorRing(10)

	for i := 0; i < 3; i++ {
		r.Append(record(i))
	}

	require.Equal(t, 3, r.Len())
	snap := r.Snapshot()
	assert.Equal(t, "error 0", snap[0].Message)
	assert.Equal(t, "error 2", snap[2].Message)
}

func TestErrorRing_EvictsOldestFirst(t *testing.T) {
	r := newErrorRing(10)

	// The 11th entry evicts the oldest; relative order is preserved.
	for i := 0; i < 11; i++ {
		r.Append(record(i))
	}

	require.Equal(t, 10, r.Len())
	snap := r.Snapshot()
	assert.Equal(t, "error 1", snap[0].Message)
	assert.Equal(t, "error 10", snap[9].Message)
	for i := 1; i < len(snap); i++ {
		assert.Equal(t, fmt.Sprintf("error %d", i+1), snap[i].Message)
	}
}

func TestErrorRing_LongOverflow(t *testing.T) {
	r := newErrorRing(10)

	for i := 0; i < 35; i++ {
		r.Append(record(i))
	}

	require.Equal(t, 10, r.Len())
	snap := r.Snapshot()
	assert.Equal(t, "error 25", snap[0].Message)
	assert.Equal(t, "error 34", snap[9].Message)
}

func TestErrorRing_SnapshotIsCopy(t *testing.T) {
	r := newErrorRing(10)
	r.Append(record(0))

	snap := r.Snapshot()
	snap[0].Message = "tampered"

	assert.Equal(t, "error 0", r.Snapshot()[0].Message)
}

func TestErrorRing_Empty(t *testing.T) {
	r := newErrorRing(10)
	assert.Zero(t, r.Len())
	assert.Empty(t, r.Snapshot())
}
