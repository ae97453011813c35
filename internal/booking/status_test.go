package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus(" confirmed ")
	require.True(t, ok)
	assert.Equal(t, StatusConfirmed, s)

	_, ok = ParseStatus("SEATED")
	assert.False(t, ok)

	_, ok = ParseStatus("")
	assert.False(t, ok)
}

func TestTransitionTable(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusConfirmed))
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
	assert.True(t, CanTransition(StatusConfirmed, StatusCompleted))
	assert.True(t, CanTransition(StatusConfirmed, StatusCancelled))
	assert.True(t, CanTransition(StatusConfirmed, StatusNoShow))

	assert.False(t, CanTransition(StatusPending, StatusCompleted))
	assert.False(t, CanTransition(StatusPending, StatusNoShow))
	assert.False(t, CanTransition(StatusConfirmed, StatusConfirmed))
	assert.False(t, CanTransition(StatusConfirmed, StatusPending))
}

// Every terminal status must reject every target, including itself.
func TestTerminalStatusesAllowNoTransitions(t *testing.T) {
	terminals := []Status{StatusCompleted, StatusCancelled, StatusNoShow}
	targets := []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow}
	for _, from := range terminals {
		assert.True(t, from.Terminal())
		for _, to := range targets {
			_, err := Transition(from, to, nil, nil, time.Now())
			require.NotNil(t, err, "expected %s -> %s to fail", from, to)
			assert.Equal(t, CodeInvalidStatusTransition, err.Code)
			assert.Contains(t, err.Message, string(from))
			assert.Contains(t, err.Message, string(to))
		}
	}
}

func TestTransitionSideEffects(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	change, err := Transition(StatusPending, StatusConfirmed, nil, nil, now)
	require.Nil(t, err)
	require.NotNil(t, change.ConfirmedAt)
	assert.Equal(t, now, *change.ConfirmedAt)
	assert.Nil(t, change.CompletedAt)
	assert.False(t, change.ClearTotalAmount)

	total := int64(84000)
	change, err = Transition(StatusConfirmed, StatusCompleted, nil, &total, now)
	require.Nil(t, err)
	require.NotNil(t, change.CompletedAt)
	assert.Equal(t, now, *change.CompletedAt)
	require.NotNil(t, change.TotalAmount)
	assert.Equal(t, total, *change.TotalAmount)

	reason := "customer asked to cancel"
	change, err = Transition(StatusConfirmed, StatusCancelled, &reason, nil, now)
	require.Nil(t, err)
	require.NotNil(t, change.CancellationReason)
	assert.Equal(t, reason, *change.CancellationReason)
	assert.True(t, change.ClearTotalAmount)

	// owner/admin cancellations may omit the reason
	change, err = Transition(StatusPending, StatusCancelled, nil, nil, now)
	require.Nil(t, err)
	assert.Nil(t, change.CancellationReason)
	assert.True(t, change.ClearTotalAmount)

	change, err = Transition(StatusConfirmed, StatusNoShow, nil, nil, now)
	require.Nil(t, err)
	assert.Nil(t, change.ConfirmedAt)
	assert.Nil(t, change.CompletedAt)
	assert.Nil(t, change.CancellationReason)
	assert.False(t, change.ClearTotalAmount)
}

func TestActiveStatuses(t *testing.T) {
	assert.True(t, StatusPending.Active())
	assert.True(t, StatusConfirmed.Active())
	assert.False(t, StatusCompleted.Active())
	assert.False(t, StatusCancelled.Active())
	assert.False(t, StatusNoShow.Active())
}
