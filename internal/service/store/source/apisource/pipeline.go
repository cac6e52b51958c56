package apisource

import (
	"context"
	"math"
	"net/url"
	"strings"
	"sync"
	"time"

	apperrors "github.com/darkkaiser/affiliate-store-server/internal/pkg/errors"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/cloak"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/fetch"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/prefix"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/product"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/source"
	applog "github.com/darkkaiser/affiliate-store-server/pkg/log"
)

// component 로깅용 컴포넌트 이름
const component = "store.apisource"

// cacheTTL 수집 결과의 메모리 캐시 유지 시간
const cacheTTL = 10 * time.Minute

// Input 한 번의 적재에 필요한 입력 전체입니다.
type Input struct {
	Endpoint string
	Token    string

	Settings source.Settings
}

// Pipeline 원격 상품 API 수집 파이프라인입니다.
type Pipeline struct {
	fetcher fetch.Fetcher

	mu        sync.RWMutex
	cached    []product.Product
	cachedAt  time.Time
	hasCached bool
}

// NewPipeline 새로운 원격 API 파이프라인을 생성합니다.
func NewPipeline(fetcher fetch.Fetcher) *Pipeline {
	return &Pipeline{
		fetcher: fetcher,
	}
}

// Load 현재 설정 기준의 전체 상품 집합을 반환합니다.
//
// TTL 이내의 재호출은 캐시된 결과를 반환합니다. 요청/파싱 실패는 에러로
// 전달되며, 빈 집합으로 처리할지는 호출자(스토어 서비스)가 결정합니다.
func (p *Pipeline) Load(ctx context.Context, in Input) ([]product.Product, error) {
	p.mu.RLock()
	if p.hasCached && time.Since(p.cachedAt) < cacheTTL {
		cached := p.cached
		p.mu.RUnlock()
		return cached, nil
	}
	p.mu.RUnlock()

	if in.Endpoint == "" {
		return nil, apperrors.New(apperrors.InvalidInput, "상품 API 엔드포인트가 설정되어 있지 않습니다")
	}

	body, err := fetch.GetBody(ctx, p.fetcher, buildRequestURL(in.Endpoint, in.Token))
	if err != nil {
		return nil, err
	}

	entries, err := ParseEntries(body)
	if err != nil {
		return nil, err
	}

	products := make([]product.Product, 0, len(entries))
	for _, entry := range entries {
		products = append(products, normalize(entry, in.Settings))
	}

	p.mu.Lock()
	p.cached = products
	p.cachedAt = time.Now()
	p.hasCached = true
	p.mu.Unlock()

	applog.WithComponentAndFields(component, applog.Fields{
		"products": len(products),
	}).Debug("상품 API 수집이 완료되었습니다")

	return products, nil
}

// ClearCache 수집 결과의 메모리 캐시를 무효화합니다.
func (p *Pipeline) ClearCache() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cached = nil
	p.cachedAt = time.Time{}
	p.hasCached = false
}

// buildRequestURL 엔드포인트에 접근 토큰을 쿼리 파라미터로 덧붙입니다.
func buildRequestURL(endpoint, token string) string {
	if token == "" {
		return endpoint
	}

	separator := "?"
	if strings.Contains(endpoint, "?") {
		separator = "&"
	}
	return endpoint + separator + "access_token=" + url.QueryEscape(token)
}

// normalize API 레코드 하나를 표준 상품 모델로 변환합니다.
// 가격, 할인율, 카테고리 결정 규칙은 CSV 소스와 동일합니다.
func normalize(entry Entry, st source.Settings) product.Product {
	originalPrice := source.ParseFloat(entry.OriginalPrice)
	if originalPrice == 0 {
		originalPrice = source.ParseFloat(entry.Price)
	}

	currentPrice := source.ParseFloat(entry.PriceMin)
	if currentPrice == 0 {
		currentPrice = source.ParseFloat(entry.Price)
	}

	discountPct := source.ParseInt(entry.Discount)
	if discountPct <= 0 {
		if originalPrice > currentPrice && originalPrice > 0 {
			discountPct = int(math.Round((originalPrice - currentPrice) / originalPrice * 100))
		} else {
			discountPct = 0
		}
	}

	images := source.SplitImageList(entry.Images)

	picture := entry.Image
	if picture == "" && len(images) > 0 {
		picture = images[0]
	}

	id := entry.ID
	if id == "" {
		id = source.RandomToken(9)
	}

	category := entry.Category
	if category == "" {
		category = st.DefaultCategory
	}

	return product.Product{
		ID:                   id,
		Name:                 prefix.PrefixedName(id, entry.Name, st.PrefixWords, st.PrefixEnabled),
		Picture:              picture,
		OtherPictures:        strings.Join(images, ","),
		Price:                originalPrice,
		Discounted:           currentPrice,
		DiscountedPercentage: discountPct,
		Currency:             st.DefaultCurrency,
		Link:                 entry.URL,
		TrackingLink:         cloak.Build(st.CloakingToken, entry.URL, st.CloakingBaseURL),
		CategoryName:         category,
		AdvertiserID:         entry.ShopID,
		ShopID:               entry.ShopName,
		Variations:           entry.Variations,
	}
}
