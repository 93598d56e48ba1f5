package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still carries our token.
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// extendScript pushes the expiry back only while the key still carries our token.
var extendScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("PEXPIRE", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// Redis is a Locker backed by SET NX PX on a single key. While held, the key's
// expiry is extended every refresh so a run longer than the TTL keeps the lock;
// a crashed holder still loses it after at most one TTL.
type Redis struct {
	client  *redis.Client
	key     string
	ttl     time.Duration
	refresh time.Duration

	mu    sync.Mutex
	token string
	stop  chan struct{}
	done  chan struct{}
}

// NewRedis creates a Redis Locker. The connection is lazy; errors surface on TryLock.
func NewRedis(cfg Config) (*Redis, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("redis lock requires an address")
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})
	return newRedisWithClient(client, cfg), nil
}

func newRedisWithClient(client *redis.Client, cfg Config) *Redis {
	key := cfg.Key
	if key == "" {
		key = "catalog-sync:run"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Redis{client: client, key: key, ttl: ttl, refresh: ttl / 3}
}

// TryLock implements Locker.
func (r *Redis) TryLock(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token != "" {
		return false, nil
	}

	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, r.key, token, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", r.key, err)
	}
	if ok {
		r.token = token
		r.stop = make(chan struct{})
		r.done = make(chan struct{})
		go r.heartbeat(token, r.stop, r.done)
	}
	return ok, nil
}

// heartbeat extends the lock until stop is closed or the token is gone.
func (r *Redis) heartbeat(token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), min(r.refresh, 5*time.Second))
			n, err := extendScript.Run(ctx, r.client, []string{r.key}, token, r.ttl.Milliseconds()).Int()
			cancel()
			if err == nil && n == 0 {
				// Expired and taken over; Unlock reports ErrNotHeld.
				return
			}
		}
	}
}

// Unlock implements Locker. A lock that expired and was taken over is not released.
func (r *Redis) Unlock(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token == "" {
		return ErrNotHeld
	}
	token := r.token
	r.token = ""
	close(r.stop)
	<-r.done

	n, err := releaseScript.Run(ctx, r.client, []string{r.key}, token).Int()
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", r.key, err)
	}
	if n == 0 {
		return ErrNotHeld
	}
	return nil
}

// Close stops the heartbeat of a held lock, leaving the key to expire, and
// closes the Redis connection pool.
func (r *Redis) Close() error {
	r.mu.Lock()
	if r.token != "" {
		r.token = ""
		close(r.stop)
		<-r.done
	}
	r.mu.Unlock()
	return r.client.Close()
}
