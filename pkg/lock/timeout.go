package lock

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout 在规定时间内未能获得锁
var ErrTimeout = errors.New("lock acquisition timed out")

// WithTimeout 为每次加锁附加超时，超时返回 ErrTimeout
type WithTimeout struct {
	Locker  Locker
	Timeout time.Duration
}

func (w WithTimeout) Lock(ctx context.Context, key string) (func(), error) {
	if w.Timeout <= 0 {
		return w.Locker.Lock(ctx, key)
	}
	lockCtx, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()

	release, err := w.Locker.Lock(lockCtx, key)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, ErrTimeout
		}
		return nil, err
	}
	return release, nil
}
