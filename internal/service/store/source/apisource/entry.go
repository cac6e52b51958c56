// Package apisource 원격 상품 API로부터 상품을 수집하는 파이프라인입니다.
//
// 설정된 엔드포인트에 토큰을 붙여 GET 요청을 보내고, JSON 응답을 원시 레코드로
// 파싱한 뒤 CSV 소스와 같은 규칙으로 정규화합니다. 결과는 일정 시간(TTL) 동안
// 메모리에 캐싱됩니다.
package apisource

import (
	"strings"

	apperrors "github.com/darkkaiser/affiliate-store-server/internal/pkg/errors"
	"github.com/tidwall/gjson"
)

// Entry API 응답의 상품 레코드 하나입니다.
// CSV 행과 마찬가지로 모든 필드를 문자열로 보관하고, 타입 변환은 정규화 단계에서 합니다.
type Entry struct {
	ID            string
	URL           string
	Name          string
	Price         string
	PriceMin      string
	OriginalPrice string
	Discount      string
	ShopName      string
	Image         string
	Images        string
	Category      string
	ShopID        string
	Variations    string
}

// ParseEntries API 응답 JSON에서 상품 레코드 목록을 추출합니다.
//
// 응답 형태는 제공자마다 다르므로 최상위 배열, data 배열, products 배열을
// 순서대로 시도합니다. 필드 이름도 스네이크 표기의 변형들을 허용합니다.
func ParseEntries(jsonText string) ([]Entry, error) {
	if !gjson.Valid(jsonText) {
		return nil, apperrors.New(apperrors.ParsingFailed, "상품 API 응답이 유효한 JSON이 아닙니다")
	}

	root := gjson.Parse(jsonText)

	items := root
	if !items.IsArray() {
		for _, path := range []string{"data", "products", "result.products"} {
			if candidate := root.Get(path); candidate.IsArray() {
				items = candidate
				break
			}
		}
	}
	if !items.IsArray() {
		return nil, apperrors.New(apperrors.ParsingFailed, "상품 API 응답에서 상품 배열을 찾을 수 없습니다")
	}

	var entries []Entry
	items.ForEach(func(_, item gjson.Result) bool {
		entry := Entry{
			ID:            pick(item, "product_id", "id"),
			URL:           pick(item, "product_link", "url", "link"),
			Name:          pick(item, "product_name", "name"),
			Price:         pick(item, "product_price", "price"),
			PriceMin:      pick(item, "price_min"),
			OriginalPrice: pick(item, "original_price"),
			Discount:      pick(item, "product_discounted_percentage", "discount"),
			ShopName:      pick(item, "shop_name"),
			Image:         pick(item, "product_picture", "image", "picture"),
			Images:        pickImageList(item, "product_other_pictures", "images"),
			Category:      pick(item, "category_name", "category"),
			ShopID:        pick(item, "advertiser_id", "shopid"),
			Variations:    pick(item, "variations"),
		}

		if entry.ID == "" && entry.Name == "" {
			return true
		}

		entries = append(entries, entry)
		return true
	})

	return entries, nil
}

// pick 후보 경로들 중 처음으로 존재하는 필드의 문자열 값을 반환합니다.
func pick(item gjson.Result, paths ...string) string {
	for _, path := range paths {
		if v := item.Get(path); v.Exists() {
			return v.String()
		}
	}
	return ""
}

// pickImageList 이미지 목록 필드를 줄바꿈으로 연결된 문자열로 반환합니다.
// JSON 배열과 문자열(쉼표 또는 줄바꿈 구분) 형태를 모두 허용합니다.
func pickImageList(item gjson.Result, paths ...string) string {
	for _, path := range paths {
		v := item.Get(path)
		if !v.Exists() {
			continue
		}

		if v.IsArray() {
			var images []string
			v.ForEach(func(_, image gjson.Result) bool {
				images = append(images, image.String())
				return true
			})
			return strings.Join(images, "\n")
		}

		return strings.ReplaceAll(v.String(), ",", "\n")
	}
	return ""
}
