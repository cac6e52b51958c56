package store

import (
	"strings"

	"github.com/darkkaiser/affiliate-store-server/internal/service/store/product"
	"golang.org/x/text/unicode/norm"
)

const (
	// defaultLimit 페이지 크기를 지정하지 않았을 때의 기본값
	defaultLimit = 20

	// maxLimit 한 페이지에 허용되는 최대 상품 수
	maxLimit = 100
)

// Query 상품 목록 조회 조건입니다.
type Query struct {
	// Keyword 상품명 또는 카테고리명에 대한 부분 일치 검색어
	Keyword string

	// Category 카테고리명 완전 일치 필터
	Category string

	Page  int
	Limit int
}

// normalize 비교용 문자열을 만듭니다.
// 유니코드 정규화(NFC)를 먼저 적용하므로, 자소가 분리된 태국어/라틴 입력도
// 같은 문자열로 취급됩니다.
func normalizeForCompare(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// filterProducts 조회 조건에 맞는 상품만 남깁니다.
//
//   - 카테고리는 대소문자 구분 없는 완전 일치
//   - 키워드는 상품명 또는 카테고리명에 대한 대소문자 구분 없는 부분 일치
//   - 두 조건이 모두 지정되면 둘 다 만족해야 합니다.
func filterProducts(products []product.Product, q Query) []product.Product {
	category := normalizeForCompare(strings.TrimSpace(q.Category))
	keyword := normalizeForCompare(strings.TrimSpace(q.Keyword))

	if category == "" && keyword == "" {
		return products
	}

	filtered := make([]product.Product, 0, len(products))
	for _, p := range products {
		if category != "" && normalizeForCompare(p.CategoryName) != category {
			continue
		}

		if keyword != "" {
			name := normalizeForCompare(p.Name)
			categoryName := normalizeForCompare(p.CategoryName)
			if !strings.Contains(name, keyword) && !strings.Contains(categoryName, keyword) {
				continue
			}
		}

		filtered = append(filtered, p)
	}

	return filtered
}

// paginate 필터링된 상품 집합에 페이징을 적용합니다.
//
// 페이지와 페이지 크기가 지정되지 않았거나 유효하지 않으면 기본값을 적용하며,
// 범위를 벗어난 페이지는 빈 목록을 반환합니다. Meta.Total은 항상
// 필터링된 집합 전체의 크기입니다.
func paginate(filtered []product.Product, q Query) product.PagedResult {
	page := q.Page
	if page < 1 {
		page = 1
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	start := (page - 1) * limit
	end := start + limit

	data := []product.Product{}
	if start < len(filtered) {
		if end > len(filtered) {
			end = len(filtered)
		}
		data = filtered[start:end]
	}

	return product.PagedResult{
		Meta: product.Meta{
			Total: len(filtered),
			Limit: limit,
			Page:  page,
		},
		Data: data,
	}
}
