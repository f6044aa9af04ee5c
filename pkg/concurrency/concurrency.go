package concurrency

import (
	"sync"
	"time"
)

// goroutine safe wrappers around primitive values

type Int64 struct {
	value int64
	rw    sync.RWMutex
}

func (i *Int64) Get() int64 {
	i.rw.RLock()
	defer i.rw.RUnlock()
	return i.value
}

func (i *Int64) Set(value int64) {
	i.rw.Lock()
	defer i.rw.Unlock()
	i.value = value
}

func (i *Int64) Add(delta int64) int64 {
	i.rw.Lock()
	defer i.rw.Unlock()
	i.value += delta
	return i.value
}

type Time struct {
	value time.Time
	rw    sync.RWMutex
}

func (t *Time) Get() time.Time {
	t.rw.RLock()
	defer t.rw.RUnlock()
	return t.value
}

func (t *Time) Set(value time.Time) {
	t.rw.Lock()
	defer t.rw.Unlock()
	t.value = value
}
