package service

import (
	"context"
	"dungeon_backend/pkg/lock"
)

type heldLocksKey struct{}

func heldLocks(ctx context.Context) map[string]bool {
	held, _ := ctx.Value(heldLocksKey{}).(map[string]bool)
	return held
}

// withLock 若 ctx 中已持有同一把锁（由 withLocks 获取）则直接执行
func withLock(ctx context.Context, locker lock.Locker, key string, fn func() error) error {
	if heldLocks(ctx)[key] {
		return fn()
	}
	release, err := locker.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

// withLocks 按给定顺序获取全部锁，任一失败则释放已获取的锁且不执行 fn。
// fn 收到的 ctx 记录了已持有的锁，内部的 withLock 不会重复加锁
func withLocks(ctx context.Context, locker lock.Locker, keys []string, fn func(ctx context.Context) error) error {
	held := make(map[string]bool, len(keys))
	for k := range heldLocks(ctx) {
		held[k] = true
	}

	var releases []func()
	defer func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}()
	for _, key := range keys {
		if held[key] {
			continue
		}
		release, err := locker.Lock(ctx, key)
		if err != nil {
			return err
		}
		releases = append(releases, release)
		held[key] = true
	}

	return fn(context.WithValue(ctx, heldLocksKey{}, held))
}

func studentKey(id string) string     { return "student:" + id }
func mentalKey(id string) string      { return "mental:" + id }
func instructorKey(key string) string { return "instructor:" + key }
func sessionKey(id string) string     { return "raid:session:" + id }
func participantKey(id string) string { return "raid:participant:" + id }
