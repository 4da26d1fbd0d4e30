// Package lock serializes the validate-then-write section of schedule
// creation per employee, in process or across processes through Redis.
package lock

import (
	"context"
	"fmt"
	"sync"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

// Unlock releases a held lock. Calling it more than once is a no-op.
type Unlock func()

// Locker acquires a named lock, waiting until ctx is done.
// Failing to acquire before ctx is done is an ErrConflict.
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// KeyedMutex is an in-process Locker with one mutex per key.
// Entries are dropped once nobody holds or waits for them.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

// NewKeyedMutex creates an empty KeyedMutex
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyLock)}
}

func (k *KeyedMutex) Lock(ctx context.Context, key string) (Unlock, error) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-l.ch
				k.release(key, l)
			})
		}, nil
	case <-ctx.Done():
		k.release(key, l)
		return nil, fmt.Errorf("timed out waiting for lock %s: %w: %w", key, model.ErrConflict, ctx.Err())
	}
}

func (k *KeyedMutex) release(key string, l *keyLock) {
	k.mu.Lock()
	defer k.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
}

// Len returns the number of keys currently held or waited on
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

// EmployeeKey is the lock key for an employee's schedule
func EmployeeKey(employeeID string) string {
	return "schedule:employee:" + employeeID
}
