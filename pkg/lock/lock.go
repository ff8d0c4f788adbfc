package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`

// Redis is a short lived mutual exclusion lock over SET NX. It only filters out
// duplicates; holders must not rely on it for correctness.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

// Connect opens a client and checks that the server answers.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            addr,
		PoolSize:        10,
		PoolTimeout:     4 * time.Second,
		ConnMaxIdleTime: 5 * time.Minute,
		MaxRetries:      3,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	zap.L().Info("redis connected", zap.String("addr", addr))
	return client, nil
}

func (r *Redis) Key(name string) string {
	return fmt.Sprintf("%s:%s", r.prefix, name)
}

// Acquire takes the lock named name. When it is already held acquired is false and
// release is a no-op.
func (r *Redis) Acquire(ctx context.Context, name string) (release func(), acquired bool, err error) {
	key := r.Key(name)
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
	if err != nil {
		return func() {}, false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return func() {}, false, nil
	}

	release = func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := r.client.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
			zap.L().Warn("can't release lock", zap.String("key", key), zap.Error(err))
		}
	}
	return release, true, nil
}

// Noop always grants the lock. Used when no Redis is configured.
type Noop struct{}

func (Noop) Acquire(context.Context, string) (func(), bool, error) {
	return func() {}, true, nil
}
