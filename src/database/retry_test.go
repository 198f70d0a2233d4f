package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	err := WithRetry(func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRetriesLockedErrors(t *testing.T) {
	calls := 0
	err := WithRetry(func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryGivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	locked := errors.New("database is locked")
	err := WithRetry(func() error {
		calls++
		return locked
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryDoesNotRetryOtherErrors(t *testing.T) {
	calls := 0
	boom := errors.New("UNIQUE constraint failed")
	err := WithRetry(func() error {
		calls++
		return boom
	})
	assert.Equal(t, boom, err)
	assert.Equal(t, 1, calls)
}

func TestIsLockedError(t *testing.T) {
	assert.True(t, isLockedError(errors.New("database is locked")))
	assert.True(t, isLockedError(errors.New("SQLITE: Database Table is Locked")))
	assert.False(t, isLockedError(errors.New("no such table")))
	assert.False(t, isLockedError(nil))
}
