package store

import (
	"testing"

	"github.com/darkkaiser/affiliate-store-server/internal/service/store/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProducts() []product.Product {
	return []product.Product{
		{ID: "i1", Name: "Blue Shirt", CategoryName: "Clothes"},
		{ID: "i2", Name: "Red Shirt", CategoryName: "clothes"},
		{ID: "i3", Name: "Running Shoes", CategoryName: "Shoes"},
		{ID: "i4", Name: "เสื้อยืด", CategoryName: "เสื้อผ้า"},
		{ID: "i5", Name: "Phone Case", CategoryName: "Accessories"},
	}
}

// TestFilterProducts는 카테고리/키워드 필터링 규칙을 검증합니다.
func TestFilterProducts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		query       Query
		expectedIDs []string
	}{
		{
			name:        "조건이 없으면 전체 반환",
			query:       Query{},
			expectedIDs: []string{"i1", "i2", "i3", "i4", "i5"},
		},
		{
			name:        "카테고리 완전 일치 (대소문자 무시)",
			query:       Query{Category: "CLOTHES"},
			expectedIDs: []string{"i1", "i2"},
		},
		{
			name:        "키워드는 상품명 부분 일치",
			query:       Query{Keyword: "shirt"},
			expectedIDs: []string{"i1", "i2"},
		},
		{
			name:        "키워드는 카테고리명에도 일치",
			query:       Query{Keyword: "accessor"},
			expectedIDs: []string{"i5"},
		},
		{
			name:        "카테고리와 키워드 동시 지정 시 둘 다 만족",
			query:       Query{Category: "Clothes", Keyword: "blue"},
			expectedIDs: []string{"i1"},
		},
		{
			name:        "태국어 키워드",
			query:       Query{Keyword: "เสื้อ"},
			expectedIDs: []string{"i4"},
		},
		{
			name:        "일치하는 상품이 없으면 빈 목록",
			query:       Query{Keyword: "no-such-product"},
			expectedIDs: []string{},
		},
		{
			name:        "조건의 앞뒤 공백은 무시",
			query:       Query{Category: "  Shoes  "},
			expectedIDs: []string{"i3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			filtered := filterProducts(sampleProducts(), tt.query)

			ids := make([]string, 0, len(filtered))
			for _, p := range filtered {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
		})
	}
}

// TestPaginate는 페이징 경계 조건을 검증합니다.
func TestPaginate(t *testing.T) {
	t.Parallel()

	products := sampleProducts()

	t.Run("기본값 적용", func(t *testing.T) {
		t.Parallel()

		result := paginate(products, Query{})
		assert.Equal(t, 1, result.Meta.Page)
		assert.Equal(t, 20, result.Meta.Limit)
		assert.Equal(t, 5, result.Meta.Total)
		assert.Len(t, result.Data, 5)
	})

	t.Run("페이지 분할", func(t *testing.T) {
		t.Parallel()

		result := paginate(products, Query{Page: 2, Limit: 2})
		assert.Equal(t, 5, result.Meta.Total)
		require.Len(t, result.Data, 2)
		assert.Equal(t, "i3", result.Data[0].ID)
		assert.Equal(t, "i4", result.Data[1].ID)
	})

	t.Run("마지막 페이지는 남은 만큼만", func(t *testing.T) {
		t.Parallel()

		result := paginate(products, Query{Page: 3, Limit: 2})
		require.Len(t, result.Data, 1)
		assert.Equal(t, "i5", result.Data[0].ID)
	})

	t.Run("범위를 벗어난 페이지는 빈 목록", func(t *testing.T) {
		t.Parallel()

		result := paginate(products, Query{Page: 100, Limit: 20})
		assert.NotNil(t, result.Data, "null이 아닌 빈 배열이어야 함")
		assert.Empty(t, result.Data)
		assert.Equal(t, 5, result.Meta.Total)
	})

	t.Run("0 이하의 페이지는 1로 보정", func(t *testing.T) {
		t.Parallel()

		result := paginate(products, Query{Page: -1, Limit: 2})
		assert.Equal(t, 1, result.Meta.Page)
		require.Len(t, result.Data, 2)
		assert.Equal(t, "i1", result.Data[0].ID)
	})

	t.Run("페이지 크기 상한 적용", func(t *testing.T) {
		t.Parallel()

		result := paginate(products, Query{Limit: 10000})
		assert.Equal(t, 100, result.Meta.Limit)
	})

	t.Run("빈 집합", func(t *testing.T) {
		t.Parallel()

		result := paginate(nil, Query{})
		assert.NotNil(t, result.Data)
		assert.Empty(t, result.Data)
		assert.Equal(t, 0, result.Meta.Total)
	})
}
