package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/meinhoongagan/medical-turns/apperrors"
	"github.com/meinhoongagan/medical-turns/repositories"
)

// Locker guards short critical sections across instances.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, string, error)
	Unlock(ctx context.Context, key, token string) error
}

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

// notFoundAs turns a repository miss into a NotFound error naming the entity.
func notFoundAs(err error, entity string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound("%s not found", entity)
	}
	return err
}

// duplicateAs turns a unique violation into a Conflict error with msg.
func duplicateAs(err error, format string, args ...any) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return apperrors.Conflict(format, args...)
	}
	return err
}

func countWords(text string) int {
	return len(strings.Fields(text))
}

func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}
