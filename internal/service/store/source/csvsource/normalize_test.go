package csvsource

import (
	"testing"

	"github.com/darkkaiser/affiliate-store-server/internal/service/store/source"
	"github.com/stretchr/testify/assert"
)

func testSettings() source.Settings {
	return source.Settings{
		CloakingToken:   "tok",
		DefaultCurrency: "THB",
		DefaultCategory: "ทั่วไป",
	}
}

// TestNormalize_Prices는 정가/판매가/할인율 계산 규칙을 검증합니다.
func TestNormalize_Prices(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		row              Row
		expectedPrice    float64
		expectedDiscount float64
		expectedPct      int
	}{
		{
			name:             "정가 1000 판매가 800이면 할인율 20%",
			row:              Row{ID: "i1", OriginalPrice: "1000", PriceMin: "800"},
			expectedPrice:    1000,
			expectedDiscount: 800,
			expectedPct:      20,
		},
		{
			name:             "정가와 판매가가 같으면 할인율 0",
			row:              Row{ID: "i1", OriginalPrice: "990", PriceMin: "990"},
			expectedPrice:    990,
			expectedDiscount: 990,
			expectedPct:      0,
		},
		{
			name:             "판매가가 정가보다 높아도 음수 할인율 방지",
			row:              Row{ID: "i1", OriginalPrice: "500", PriceMin: "700"},
			expectedPrice:    500,
			expectedDiscount: 700,
			expectedPct:      0,
		},
		{
			name:             "discount 필드가 양수면 계산값보다 우선",
			row:              Row{ID: "i1", OriginalPrice: "1000", PriceMin: "800", Discount: "35%"},
			expectedPrice:    1000,
			expectedDiscount: 800,
			expectedPct:      35,
		},
		{
			name:             "정가가 없으면 price로 폴백",
			row:              Row{ID: "i1", Price: "990"},
			expectedPrice:    990,
			expectedDiscount: 990,
			expectedPct:      0,
		},
		{
			name:             "가격 정보가 전혀 없으면 0",
			row:              Row{ID: "i1"},
			expectedPrice:    0,
			expectedDiscount: 0,
			expectedPct:      0,
		},
		{
			name:             "할인율 반올림 (1000 -> 666은 33%)",
			row:              Row{ID: "i1", OriginalPrice: "1000", PriceMin: "666"},
			expectedPrice:    1000,
			expectedDiscount: 666,
			expectedPct:      33,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := Normalize(tt.row, "", testSettings())

			assert.InDelta(t, tt.expectedPrice, p.Price, 0.0001)
			assert.InDelta(t, tt.expectedDiscount, p.Discounted, 0.0001)
			assert.Equal(t, tt.expectedPct, p.DiscountedPercentage)
		})
	}
}

// TestNormalize_Category는 카테고리 결정 우선순위를 검증합니다.
func TestNormalize_Category(t *testing.T) {
	t.Parallel()

	st := testSettings()

	t.Run("오버라이드가 최우선", func(t *testing.T) {
		t.Parallel()

		p := Normalize(Row{ID: "i1", Category: "เสื้อผ้า"}, "รองเท้า", st)
		assert.Equal(t, "รองเท้า", p.CategoryName)
	})

	t.Run("오버라이드가 없으면 행의 카테고리", func(t *testing.T) {
		t.Parallel()

		p := Normalize(Row{ID: "i1", Category: "เสื้อผ้า"}, "", st)
		assert.Equal(t, "เสื้อผ้า", p.CategoryName)
	})

	t.Run("둘 다 없으면 기본 카테고리", func(t *testing.T) {
		t.Parallel()

		p := Normalize(Row{ID: "i1"}, "", st)
		assert.Equal(t, "ทั่วไป", p.CategoryName)
	})
}

// TestNormalize_Fields는 그 외 필드 매핑을 검증합니다.
func TestNormalize_Fields(t *testing.T) {
	t.Parallel()

	st := testSettings()
	st.PrefixWords = []string{"ถูกสุด"}
	st.PrefixEnabled = true

	row := Row{
		ID:         "i100",
		Name:       "เสื้อยืด",
		URL:        "https://example.com/p/100",
		Images:     "https://cdn.example.com/1.jpg\nhttps://cdn.example.com/2.jpg",
		ShopName:   "My Shop",
		ShopID:     "shop-1",
		Variations: "S,M,L",
	}

	p := Normalize(row, "", st)

	assert.Equal(t, "i100", p.ID)
	assert.Equal(t, "ถูกสุด เสื้อยืด", p.Name)
	assert.Equal(t, "https://cdn.example.com/1.jpg", p.Picture, "대표 이미지가 없으면 목록의 첫 항목 사용")
	assert.Equal(t, "https://cdn.example.com/1.jpg,https://cdn.example.com/2.jpg", p.OtherPictures)
	assert.Equal(t, "THB", p.Currency)
	assert.Equal(t, "https://example.com/p/100", p.Link)
	assert.Equal(t, "https://goeco.mobi/?token=tok&url=https%3A%2F%2Fexample.com%2Fp%2F100&source=lazada_2026", p.TrackingLink)
	assert.Equal(t, "shop-1", p.AdvertiserID)
	assert.Equal(t, "My Shop", p.ShopID)
	assert.Equal(t, "S,M,L", p.Variations)
}

// TestNormalize_SynthesizedID는 ID가 없는 행의 합성 ID 부여를 검증합니다.
func TestNormalize_SynthesizedID(t *testing.T) {
	t.Parallel()

	p := Normalize(Row{Name: "이름만 있는 상품"}, "", testSettings())
	assert.Len(t, p.ID, 9)
}
