package csvsource

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/darkkaiser/affiliate-store-server/internal/service/store/fetch"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/product"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/source"
	applog "github.com/darkkaiser/affiliate-store-server/pkg/log"
)

// component 로깅용 컴포넌트 이름
const component = "store.csvsource"

// cacheTTL 병합 결과의 메모리 캐시 유지 시간
const cacheTTL = 10 * time.Minute

// CategoryCSV 카테고리 하나에 매핑되는 CSV 본문입니다.
// 설정에 등록된 순서가 곧 병합 순서입니다.
type CategoryCSV struct {
	Category string
	Text     string
}

// Input 한 번의 적재에 필요한 입력 전체입니다.
// 설정이 호출 시점마다 새로 읽히므로, 호출자가 매번 현재 설정으로 구성하여 전달합니다.
type Input struct {
	Categories   []CategoryCSV
	DefaultText  string
	FallbackFile string

	Settings source.Settings
}

// Pipeline CSV 상품 수집 파이프라인입니다.
//
// 적재 결과는 TTL 기반 메모리 캐시에 보관되며, TTL 이내의 호출은
// 재파싱 없이 캐시된 상품 집합을 반환합니다.
type Pipeline struct {
	fetcher fetch.Fetcher

	mu        sync.RWMutex
	cached    []product.Product
	cachedAt  time.Time
	hasCached bool
}

// NewPipeline 새로운 CSV 파이프라인을 생성합니다.
// fetcher는 폴백 CSV를 URL에서 읽어올 때 사용됩니다.
func NewPipeline(fetcher fetch.Fetcher) *Pipeline {
	return &Pipeline{
		fetcher: fetcher,
	}
}

// Load 현재 설정 기준의 전체 상품 집합을 반환합니다.
//
// 병합 순서:
//  1. 카테고리별 CSV (설정 순서대로, 카테고리명을 오버라이드로 적용)
//  2. 기본 CSV 본문 (오버라이드 없음)
//  3. 1~2 결과가 비어있으면 폴백 파일/URL의 CSV (오버라이드 없음)
//
// 개별 CSV의 파싱 실패는 로그만 남기고 해당 소스의 기여를 비운 채 계속 진행합니다.
// 중복 ID는 나중에 처리된 소스의 상품이 이전 상품을 덮어씁니다.
func (p *Pipeline) Load(ctx context.Context, in Input) ([]product.Product, error) {
	p.mu.RLock()
	if p.hasCached && time.Since(p.cachedAt) < cacheTTL {
		cached := p.cached
		p.mu.RUnlock()
		return cached, nil
	}
	p.mu.RUnlock()

	var all []product.Product

	// 1. 카테고리별 CSV (우선순위 높음)
	for _, cat := range in.Categories {
		if cat.Text == "" {
			continue
		}

		products, err := parseAndNormalize(cat.Text, cat.Category, in.Settings)
		if err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"category": cat.Category,
				"error":    err,
			}).Error("카테고리 CSV 파싱 실패: 해당 카테고리를 제외하고 적재를 계속합니다")
			continue
		}
		all = append(all, products...)
	}

	// 2. 기본 CSV (폴백)
	if in.DefaultText != "" {
		products, err := parseAndNormalize(in.DefaultText, "", in.Settings)
		if err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"error": err,
			}).Error("기본 CSV 파싱 실패: 기본 CSV를 제외하고 적재를 계속합니다")
		} else {
			all = append(all, products...)
		}
	}

	// 3. 여전히 비어있으면 폴백 파일/URL에서 읽기 시도
	// 네트워크/파싱 실패는 빈 집합으로 처리하며 에러를 전파하지 않습니다.
	if len(all) == 0 && in.FallbackFile != "" {
		csvText, err := p.readFallback(ctx, in.FallbackFile)
		if err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"file":  in.FallbackFile,
				"error": err,
			}).Warn("폴백 CSV 읽기 실패: 빈 상품 집합으로 처리합니다")
		} else {
			products, err := parseAndNormalize(csvText, "", in.Settings)
			if err != nil {
				applog.WithComponentAndFields(component, applog.Fields{
					"file":  in.FallbackFile,
					"error": err,
				}).Warn("폴백 CSV 파싱 실패: 빈 상품 집합으로 처리합니다")
			} else {
				all = append(all, products...)
			}
		}
	}

	// 중복 제거: 같은 ID가 여러 번 나오면 마지막 상품이 남습니다.
	// 순서는 각 ID가 처음 등장한 위치를 유지합니다.
	deduped := dedupByID(all)

	p.mu.Lock()
	p.cached = deduped
	p.cachedAt = time.Now()
	p.hasCached = true
	p.mu.Unlock()

	return deduped, nil
}

// ClearCache 적재 결과의 메모리 캐시를 무효화합니다.
// 다음 Load 호출은 소스로부터 다시 파싱합니다.
func (p *Pipeline) ClearCache() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cached = nil
	p.cachedAt = time.Time{}
	p.hasCached = false
}

// readFallback 폴백 CSV를 로컬 파일 또는 URL에서 읽어옵니다.
func (p *Pipeline) readFallback(ctx context.Context, path string) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return fetch.GetBody(ctx, p.fetcher, path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func parseAndNormalize(csvText, categoryOverride string, st source.Settings) ([]product.Product, error) {
	rows, err := ParseRows(csvText)
	if err != nil {
		return nil, err
	}

	products := make([]product.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, Normalize(row, categoryOverride, st))
	}
	return products, nil
}

// dedupByID 상품 ID 기준으로 중복을 제거합니다.
// 각 ID의 첫 등장 위치가 순서를 결정하고, 값은 마지막 등장 상품으로 대체됩니다.
func dedupByID(products []product.Product) []product.Product {
	indexByID := make(map[string]int, len(products))
	deduped := make([]product.Product, 0, len(products))

	for _, p := range products {
		if idx, ok := indexByID[p.ID]; ok {
			deduped[idx] = p
			continue
		}
		indexByID[p.ID] = len(deduped)
		deduped = append(deduped, p)
	}

	return deduped
}
