// Package storage 사이트맵 수집 결과의 영속 캐시를 제공합니다.
//
// 캐시는 키(사이트맵 URL 또는 업로드 식별자) 단위의 JSON 파일로 저장되며,
// 저장된 fingerprint와 현재 설정된 소스가 일치할 때만 재사용됩니다.
package storage

import (
	"time"

	"github.com/darkkaiser/affiliate-store-server/internal/service/store/product"
)

// Entry 영속 캐시에 저장되는 단위 데이터입니다.
type Entry struct {
	// Fingerprint 이 엔트리를 생성한 소스의 식별자 (사이트맵 URL 또는 업로드 파일명)
	Fingerprint string `json:"fingerprint"`

	// CreatedAt 엔트리 생성 시각
	CreatedAt time.Time `json:"created_at"`

	// Products 정규화가 완료된 전체 상품 목록
	Products []product.Product `json:"products"`
}

// IsFresh 엔트리가 주어진 fingerprint에 대해 유효한지 판단합니다.
// 유효성은 TTL이 아닌 fingerprint 일치 여부로만 결정됩니다.
func (e *Entry) IsFresh(fingerprint string) bool {
	return e != nil && fingerprint != "" && e.Fingerprint == fingerprint
}

// CacheStore 영속 캐시 저장소 인터페이스입니다.
// 테스트에서는 파일 시스템 대신 메모리 구현체로 대체할 수 있습니다.
type CacheStore interface {
	// Load 지정된 키의 캐시 엔트리를 읽어옵니다.
	// 엔트리가 없으면 ErrEntryNotFound를 반환합니다.
	Load(key string) (*Entry, error)

	// Save 캐시 엔트리를 저장합니다. 기존 엔트리는 덮어씁니다.
	Save(key string, entry *Entry) error

	// Clear 지정된 키의 캐시 엔트리를 삭제합니다.
	// 엔트리가 존재하지 않아도 에러를 반환하지 않습니다.
	Clear(key string) error
}
