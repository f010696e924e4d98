// Package lock provides keyed mutual exclusion for booking check-and-write sequences.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrLockTimeout is returned when a lock could not be acquired in time.
var ErrLockTimeout = errors.New("lock: acquire timed out")

// DefaultWait bounds how long Acquire waits when the context has no deadline.
const DefaultWait = 5 * time.Second

// Locker grants exclusive access to a key until release is called.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// RoomDayKey is the lock key guarding bookings of one room on one date.
func RoomDayKey(roomID int64, date string) string {
	return fmt.Sprintf("booking:room:%d:date:%s", roomID, date)
}

// BookingKey is the lock key guarding edits of one booking. Holders of a
// BookingKey may go on to take a RoomDayKey, never the other way round.
func BookingKey(bookingID int64) string {
	return fmt.Sprintf("booking:id:%d", bookingID)
}

// LocalLocker serializes holders of the same key within one process.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*localSlot
	wait  time.Duration
}

type localSlot struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker creates an in-process locker. wait <= 0 uses DefaultWait.
func NewLocalLocker(wait time.Duration) *LocalLocker {
	if wait <= 0 {
		wait = DefaultWait
	}
	return &LocalLocker{slots: make(map[string]*localSlot), wait: wait}
}

// Acquire blocks until key is free, the context ends, or the wait elapses.
func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	slot := l.ref(key)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(key)
		return nil, ctx.Err()
	case <-timer.C:
		l.unref(key)
		return nil, ErrLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			l.unref(key)
		})
	}, nil
}

func (l *LocalLocker) ref(key string) *localSlot {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &localSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	return slot
}

func (l *LocalLocker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot := l.slots[key]
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}
