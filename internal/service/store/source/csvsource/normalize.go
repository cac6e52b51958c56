package csvsource

import (
	"math"
	"strings"

	"github.com/darkkaiser/affiliate-store-server/internal/service/store/cloak"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/prefix"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/product"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/source"
)

// Normalize CSV 원시 레코드 하나를 표준 상품 모델로 변환합니다.
//
// 변환 규칙:
//   - 정가 = original_price, 없으면 price, 없으면 0
//   - 판매가 = price_min, 없으면 price, 없으면 0
//   - 할인율 = discount 필드가 양수면 그 값, 아니면 정가/판매가로부터 계산 (음수 방지)
//   - 카테고리 = categoryOverride > 행의 category > 기본 카테고리
//   - 추적 링크는 항상 클로킹 함수를 통해 생성됩니다. 이를 건너뛰는 경로는 없습니다.
func Normalize(row Row, categoryOverride string, st source.Settings) product.Product {
	originalPrice := source.ParseFloat(row.OriginalPrice)
	if originalPrice == 0 {
		originalPrice = source.ParseFloat(row.Price)
	}

	currentPrice := source.ParseFloat(row.PriceMin)
	if currentPrice == 0 {
		currentPrice = source.ParseFloat(row.Price)
	}

	discountPct := source.ParseInt(row.Discount)
	if discountPct <= 0 {
		if originalPrice > currentPrice && originalPrice > 0 {
			discountPct = int(math.Round((originalPrice - currentPrice) / originalPrice * 100))
		} else {
			discountPct = 0
		}
	}

	images := source.SplitImageList(row.Images)

	picture := row.Image
	if picture == "" && len(images) > 0 {
		picture = images[0]
	}

	id := row.ID
	if id == "" {
		// 소스에 ID가 없으면 짧은 랜덤 토큰을 합성합니다.
		id = source.RandomToken(9)
	}

	category := categoryOverride
	if category == "" {
		category = row.Category
	}
	if category == "" {
		category = st.DefaultCategory
	}

	return product.Product{
		ID:                   id,
		Name:                 prefix.PrefixedName(id, row.Name, st.PrefixWords, st.PrefixEnabled),
		Picture:              picture,
		OtherPictures:        strings.Join(images, ","),
		Price:                originalPrice,
		Discounted:           currentPrice,
		DiscountedPercentage: discountPct,
		Currency:             st.DefaultCurrency,
		Link:                 row.URL,
		TrackingLink:         cloak.Build(st.CloakingToken, row.URL, st.CloakingBaseURL),
		CategoryID:           "",
		CategoryName:         category,
		AdvertiserID:         row.ShopID,
		ShopID:               row.ShopName,
		Variations:           row.Variations,
	}
}
