package invoices

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/invoicecapture-backend/pkg/errors"
)

// EditLocker serializes full edits of the same invoice.
type EditLocker interface {
	Lock(ctx context.Context, invoiceID uuid.UUID) (release func(context.Context), err error)
}

type lockObtainer interface {
	LockKey(parts ...string) string
	Obtain(ctx context.Context, key string, ttl time.Duration) (*redislock.Lock, error)
}

type redisEditLocker struct {
	locks lockObtainer
	ttl   time.Duration
}

// NewRedisEditLocker guards edits with a short redis lock that is never retried.
func NewRedisEditLocker(locks lockObtainer, ttl time.Duration) EditLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &redisEditLocker{locks: locks, ttl: ttl}
}

func (l *redisEditLocker) Lock(ctx context.Context, invoiceID uuid.UUID) (func(context.Context), error) {
	lock, err := l.locks.Obtain(ctx, l.locks.LockKey("invoice", invoiceID.String()), l.ttl)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "invoice is being edited by someone else")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire invoice edit lock")
	}
	return func(ctx context.Context) {
		_ = lock.Release(ctx)
	}, nil
}

// NoopEditLocker performs no locking.
type NoopEditLocker struct{}

func (NoopEditLocker) Lock(context.Context, uuid.UUID) (func(context.Context), error) {
	return func(context.Context) {}, nil
}
