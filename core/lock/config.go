package lock

import "time"

const (
	// BackendMemory serializes runs inside a single process.
	BackendMemory = "memory"
	// BackendRedis serializes runs across replicas sharing one Redis.
	BackendRedis = "redis"
)

// Config holds configuration for the run lock.
type Config struct {
	// Backend is the lock implementation (memory, redis).
	Backend string `mapstructure:"backend" default:"memory"`
	// RedisAddr is the host:port of the Redis server.
	RedisAddr string `mapstructure:"redis_addr" default:""`
	// RedisPassword is the Redis AUTH password.
	RedisPassword string `mapstructure:"redis_password" default:""`
	// RedisDB is the Redis logical database.
	RedisDB int `mapstructure:"redis_db" default:"0"`
	// Key is the Redis key holding the lock token.
	Key string `mapstructure:"key" default:"catalog-sync:run"`
	// TTL bounds how long a crashed holder can keep the lock.
	TTL time.Duration `mapstructure:"ttl" default:"30m"`
}
