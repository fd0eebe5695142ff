package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Govind-619/DomainDesk/utils"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// Locker serialises work on a key. The returned func releases the lock and is
// safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// LocalLocker is an in-process keyed mutex. It is enough when a single
// instance of the service owns the database.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker returns an empty LocalLocker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*keyLock)}
}

// Lock blocks until key is free or ctx is done
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, kl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.ch
			l.release(key, kl)
		})
	}, nil
}

func (l *LocalLocker) release(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisLocker is a best-effort distributed lock for running several
// instances against one database. The database row lock and unique index
// still guard correctness if a lease expires early.
type RedisLocker struct {
	client *redis.Client
	script *redis.Script
	ttl    time.Duration
	retry  time.Duration
}

// NewRedisLocker builds a locker on an existing client
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{
		client: client,
		script: redis.NewScript(lockReleaseScript),
		ttl:    ttl,
		retry:  50 * time.Millisecond,
	}
}

// Lock polls SET NX until it wins the key or ctx is done
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	if key == "" {
		return nil, errors.New("lock key is empty")
	}
	key = "domaindesk:lock:" + key
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := l.script.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
				utils.LogWarn("Failed to release lock %s: %v", key, err)
			}
		})
	}, nil
}
