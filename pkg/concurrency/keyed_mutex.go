// Package concurrency 동시성 제어를 위한 보조 도구들을 제공합니다.
package concurrency

import (
	"sync"
)

// KeyedMutex 키 단위로 독립적인 잠금을 제공합니다.
// 서로 다른 키(예: 카테고리별 캐시 파일)에 대한 작업은 병렬로 진행되며,
// 같은 키에 대한 작업만 직렬화됩니다. 참조 카운트로 더 이상 사용되지 않는
// 잠금 엔트리를 맵에서 제거하여 키 수가 누적되지 않도록 합니다.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
	pool    sync.Pool
}

type lockEntry struct {
	mu       sync.Mutex
	refCount int
}

// NewKeyedMutex 새로운 KeyedMutex 인스턴스를 생성합니다.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		entries: make(map[string]*lockEntry),
		pool: sync.Pool{
			New: func() interface{} {
				return &lockEntry{}
			},
		},
	}
}

// Len 현재 활성화된(잠겨있거나 대기자가 있는) 키의 개수를 반환합니다.
func (km *KeyedMutex) Len() int {
	km.mu.Lock()
	defer km.mu.Unlock()
	return len(km.entries)
}

// acquireEntry 키에 대한 잠금 엔트리를 찾거나 새로 만들고 참조 카운트를 증가시킵니다.
// 호출하는 쪽에서 km.mu를 이미 잡고 있어야 합니다.
func (km *KeyedMutex) acquireEntry(key string) *lockEntry {
	e, ok := km.entries[key]
	if !ok {
		e = km.pool.Get().(*lockEntry)
		e.refCount = 1
		km.entries[key] = e
	} else {
		e.refCount++
	}
	return e
}

// Lock 지정된 키에 대한 잠금을 획득합니다.
func (km *KeyedMutex) Lock(key string) {
	km.mu.Lock()
	e := km.acquireEntry(key)
	km.mu.Unlock()

	e.mu.Lock()
}

// TryLock 지정된 키에 대한 잠금을 시도합니다.
// 잠금을 획득하면 true를, 이미 다른 고루틴이 소유하고 있으면 대기하지 않고 false를 반환합니다.
// true가 반환된 경우에만 Unlock을 호출해야 합니다.
func (km *KeyedMutex) TryLock(key string) bool {
	km.mu.Lock()

	e, ok := km.entries[key]
	if !ok {
		// 키가 없으면 새로 생성하므로 잠금은 항상 성공합니다.
		e = km.acquireEntry(key)
		km.mu.Unlock()

		e.mu.Lock()
		return true
	}

	if e.mu.TryLock() {
		e.refCount++
		km.mu.Unlock()
		return true
	}

	km.mu.Unlock()
	return false
}

// WithLock 지정된 키에 대한 잠금을 획득한 상태에서 fn을 실행합니다.
// fn이 패닉하더라도 잠금은 해제됩니다.
func (km *KeyedMutex) WithLock(key string, fn func() error) error {
	km.Lock(key)
	defer km.Unlock(key)
	return fn()
}

// Unlock 지정된 키에 대한 잠금을 해제합니다.
// 잠겨있지 않은 키에 대해 호출하면 런타임 패닉이 발생합니다.
func (km *KeyedMutex) Unlock(key string) {
	km.mu.Lock()
	defer km.mu.Unlock()

	e, ok := km.entries[key]
	if !ok {
		panic("잠기지 않은 KeyedMutex의 잠금 해제 시도")
	}

	e.mu.Unlock()

	e.refCount--
	if e.refCount <= 0 {
		delete(km.entries, key)
		km.pool.Put(e)
	}
}
