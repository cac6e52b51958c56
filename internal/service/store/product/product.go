// Package product 스토어 전반에서 사용되는 표준 상품 모델을 정의합니다.
//
// 모든 데이터 소스(CSV, 사이트맵, 원격 API)는 수집 직후 이 패키지의 Product
// 형태로 정규화되며, 이후 단계(필터링, 페이징, API 응답)는 소스 종류를 알지 못합니다.
package product

// Product 정규화가 완료된 표준 상품 모델입니다.
// 한 번 생성된 이후에는 변경되지 않는 것을 전제로 합니다.
type Product struct {
	// ID 결과 집합 내에서 유일한 상품 식별자. 빈 값이 허용되지 않으며,
	// 소스에 식별자가 없는 경우 파이프라인이 합성합니다.
	ID string `json:"product_id"`

	Name string `json:"product_name"`

	// Picture 대표 이미지 URL
	Picture string `json:"product_picture"`

	// OtherPictures 추가 이미지 URL 목록 (쉼표로 연결된 문자열)
	OtherPictures string `json:"product_other_pictures"`

	// Price 정가, Discounted 판매가
	Price      float64 `json:"product_price"`
	Discounted float64 `json:"product_discounted"`

	// DiscountedPercentage 할인율 (0~100 정수)
	DiscountedPercentage int `json:"product_discounted_percentage"`

	Currency string `json:"product_currency"`

	// Link 원본 상품 URL, TrackingLink 클로킹된 추적 URL.
	// TrackingLink는 항상 (Link, 클로킹 설정)의 순수 함수로 유도되며 독립적으로 변경되지 않습니다.
	Link         string `json:"product_link"`
	TrackingLink string `json:"tracking_link"`

	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	AdvertiserID string `json:"advertiser_id"`
	ShopID       string `json:"shop_id"`
	Variations   string `json:"variations"`
}

// Meta 페이징 메타데이터입니다.
// Total은 필터링된 집합의 크기이며, 원본 집합의 크기가 아닙니다.
type Meta struct {
	Total int `json:"total"`
	Limit int `json:"limit"`
	Page  int `json:"page"`
}

// PagedResult 페이징이 적용된 상품 조회 결과입니다.
//
// 불변 조건:
//   - len(Data) <= Meta.Limit
//   - Data는 필터링된 집합의 (page-1)*limit 위치에서 시작하는 연속 구간
type PagedResult struct {
	Meta Meta      `json:"meta"`
	Data []Product `json:"data"`
}
