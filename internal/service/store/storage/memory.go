package storage

import (
	"sync"

	"github.com/darkkaiser/affiliate-store-server/internal/service/store/product"
)

// MemoryCacheStore 메모리 기반의 CacheStore 구현체입니다.
// 주로 테스트에서 파일 시스템 의존성을 제거하기 위해 사용합니다.
type MemoryCacheStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ CacheStore = (*MemoryCacheStore)(nil)

// NewMemoryCacheStore 새로운 MemoryCacheStore 인스턴스를 생성합니다.
func NewMemoryCacheStore() *MemoryCacheStore {
	return &MemoryCacheStore{
		entries: make(map[string]*Entry),
	}
}

func (s *MemoryCacheStore) Load(key string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, ErrEntryNotFound
	}

	// 호출자의 변경으로부터 내부 상태를 보호하기 위해 복사본을 반환합니다.
	cloned := *entry
	cloned.Products = append([]product.Product(nil), entry.Products...)
	return &cloned, nil
}

func (s *MemoryCacheStore) Save(key string, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cloned := *entry
	cloned.Products = append([]product.Product(nil), entry.Products...)
	s.entries[key] = &cloned
	return nil
}

func (s *MemoryCacheStore) Clear(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}
