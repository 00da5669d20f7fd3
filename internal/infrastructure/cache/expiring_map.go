package cache

import (
	"strings"
	"sync"
	"time"
)

type item struct {
	value     []byte
	expiresAt time.Time
}

func (i item) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && !now.Before(i.expiresAt)
}

// expiringMap is a mutex-guarded map whose entries lapse after a TTL. A
// background sweeper removes lapsed entries until close is called.
type expiringMap struct {
	mu        sync.RWMutex
	items     map[string]item
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newExpiringMap(sweepEvery time.Duration) *expiringMap {
	m := &expiringMap{
		items:    make(map[string]item),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	if sweepEvery > 0 {
		m.wg.Add(1)
		go m.sweepLoop(sweepEvery)
	}
	return m
}

func (m *expiringMap) get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[key]
	if !ok || it.expired(m.now()) {
		return nil, false
	}
	return it.value, true
}

func (m *expiringMap) set(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = m.newItem(value, ttl)
}

// setIfAbsent stores value unless a live entry exists and reports whether it did
func (m *expiringMap) setIfAbsent(key string, value []byte, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it, ok := m.items[key]; ok && !it.expired(m.now()) {
		return false
	}
	m.items[key] = m.newItem(value, ttl)
	return true
}

func (m *expiringMap) newItem(value []byte, ttl time.Duration) item {
	it := item{value: value}
	if ttl > 0 {
		it.expiresAt = m.now().Add(ttl)
	}
	return it
}

// deletePrefix removes every key starting with prefix and returns how many went
func (m *expiringMap) deletePrefix(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
			removed++
		}
	}
	return removed
}

func (m *expiringMap) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for key, it := range m.items {
		if it.expired(now) {
			delete(m.items, key)
		}
	}
}

func (m *expiringMap) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *expiringMap) sweepLoop(every time.Duration) {
	defer m.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

// close stops the sweeper. Safe to call multiple times.
func (m *expiringMap) close() {
	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.wg.Wait()
	})
}
