package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotHeld is returned by Unlock when the caller does not own the lock anymore.
var ErrNotHeld = errors.New("lock not held")

// Locker guards the single active sync run.
type Locker interface {
	// TryLock acquires the lock without waiting. ok is false when another run holds it.
	TryLock(ctx context.Context) (ok bool, err error)
	// Unlock releases a lock acquired by this Locker.
	Unlock(ctx context.Context) error
}

// New builds the Locker selected by cfg.Backend.
func New(cfg Config) (Locker, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemory(), nil
	case BackendRedis:
		return NewRedis(cfg)
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.Backend)
	}
}

// Memory is an in-process Locker.
type Memory struct {
	mu   sync.Mutex
	held bool
}

// NewMemory creates an unlocked in-process Locker.
func NewMemory() *Memory {
	return &Memory{}
}

// TryLock implements Locker.
func (m *Memory) TryLock(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held {
		return false, nil
	}
	m.held = true
	return true, nil
}

// Unlock implements Locker.
func (m *Memory) Unlock(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.held {
		return ErrNotHeld
	}
	m.held = false
	return nil
}
