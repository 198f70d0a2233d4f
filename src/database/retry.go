package database

import (
	"strings"
	"time"

	"github.com/username/stonksoverwatch/backend/src/logger"
)

const (
	maxWriteAttempts  = 3
	initialRetryDelay = 100 * time.Millisecond
)

// WithRetry runs fn, retrying when SQLite reports a locked database.
// The first retry waits a fixed delay; subsequent delays double. Any other
// error, or exhaustion of the attempts, is returned to the caller.
func WithRetry(fn func() error) error {
	var err error
	delay := initialRetryDelay

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !isLockedError(err) {
			return err
		}
		if attempt == maxWriteAttempts {
			break
		}
		logger.L.Warn("Database locked, retrying write", "attempt", attempt, "delay", delay.String())
		time.Sleep(delay)
		delay *= 2
	}
	return err
}

func isLockedError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}
