package locker

import "sync"

type Locker interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

// Table hands out one lock per key. Every Get must be paired with exactly
// one Unlock or RUnlock of the returned Locker.
type Table interface {
	Len() int
	Get(int64) Locker
}

type locker struct {
	n   int32 // refer
	k   int64
	t   *table
	lkr sync.RWMutex
}

type table struct {
	sync.Mutex
	mp map[int64]*locker
}

func (l *locker) Lock() {
	l.lkr.Lock()
}

func (l *locker) RLock() {
	l.lkr.RLock()
}

func (l *locker) Unlock() {
	l.lkr.Unlock()
	l.t.put(l)
}

func (l *locker) RUnlock() {
	l.lkr.RUnlock()
	l.t.put(l)
}
