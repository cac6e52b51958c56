package sitemap

import (
	"fmt"

	"github.com/darkkaiser/affiliate-store-server/internal/service/store/cloak"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/prefix"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/product"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/source"
)

// 사이트맵 loc 항목에는 가격, 이미지 등의 상품 속성이 없으므로
// 정규화 시 고정된 대체값을 사용합니다.
const (
	placeholderPicture = "https://images.unsplash.com/photo-1523275335684-37898b6baf30?auto=format&fit=crop&q=80&w=800"

	placeholderPrice           = 990.0
	placeholderDiscountedPrice = 790.0
	placeholderDiscountPct     = 20

	placeholderCategoryID   = "sitemap"
	placeholderCategoryName = "Sitemap Products"
	placeholderAdvertiserID = "Sitemap"
	placeholderShopID       = "Sitemap Store"
)

// normalizeLoc 사이트맵 loc 항목을 표준 상품 구조로 정규화합니다.
func normalizeLoc(loc string, index int, st source.Settings) product.Product {
	id, name := deriveIdentity(loc, index)
	return buildPlaceholderProduct(id, name, loc, st)
}

// buildProductFromSlug 캐시에 없는 상품을 딥링크 slug로부터 즉석에서 재구성합니다.
func buildProductFromSlug(id, slug string, st source.Settings) product.Product {
	return buildPlaceholderProduct(id, deriveNameFromSlug(slug), slug, st)
}

// placeholderProducts 사이트맵을 아직 가져오지 못한 상태에서 즉시 응답하기 위한
// 합성 상품 목록을 만듭니다.
func placeholderProducts(count int, st source.Settings) []product.Product {
	products := make([]product.Product, 0, count)
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("s-%d", i)
		name := fmt.Sprintf("Product %d", i+1)
		products = append(products, buildPlaceholderProduct(id, name, "", st))
	}
	return products
}

func buildPlaceholderProduct(id, name, link string, st source.Settings) product.Product {
	return product.Product{
		ID:                   id,
		Name:                 prefix.PrefixedName(id, name, st.PrefixWords, st.PrefixEnabled),
		Picture:              placeholderPicture,
		Price:                placeholderPrice,
		Discounted:           placeholderDiscountedPrice,
		DiscountedPercentage: placeholderDiscountPct,
		Currency:             st.DefaultCurrency,
		Link:                 link,
		TrackingLink:         cloak.Build(st.CloakingToken, link, st.CloakingBaseURL),
		CategoryID:           placeholderCategoryID,
		CategoryName:         placeholderCategoryName,
		AdvertiserID:         placeholderAdvertiserID,
		ShopID:               placeholderShopID,
	}
}
