// Package csvsource CSV 텍스트로부터 상품을 수집하는 파이프라인입니다.
//
// 설정에 등록된 카테고리별 CSV, 기본 CSV, 파일/URL 폴백 CSV를 순서대로 병합한 뒤
// 상품 ID 기준으로 중복을 제거하고, 결과를 일정 시간(TTL) 동안 메모리에 캐싱합니다.
package csvsource

import (
	"encoding/csv"
	"io"
	"strings"

	apperrors "github.com/darkkaiser/affiliate-store-server/internal/pkg/errors"
)

// Row CSV 한 행의 원시 레코드입니다.
// 모든 필드는 파싱 전의 문자열 그대로이며, 타입 변환은 정규화 단계에서 수행합니다.
type Row struct {
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

// ParseRows CSV 텍스트를 원시 레코드 목록으로 파싱합니다.
//
//   - 첫 행은 헤더로 간주하며, 헤더 이름으로 컬럼 위치를 식별합니다.
//   - UTF-8 BOM은 제거하고, 빈 줄은 건너뜁니다.
//   - ID와 이름이 모두 비어있는 행은 식별이 불가능하므로 제외합니다.
//   - 행마다 컬럼 수가 다른 파일도 허용합니다. (FieldsPerRecord = -1)
func ParseRows(csvText string) ([]Row, error) {
	csvText = strings.TrimPrefix(csvText, "\uFEFF")

	reader := csv.NewReader(strings.NewReader(csvText))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, apperrors.New(apperrors.ParsingFailed, "CSV에 헤더 행이 없습니다")
		}
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, "CSV 헤더 행 파싱이 실패하였습니다")
	}

	// 헤더 이름 -> 컬럼 인덱스 매핑
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ParsingFailed, "CSV 데이터 행 파싱이 실패하였습니다")
		}

		row := Row{
			ID:            field(record, "id"),
			URL:           field(record, "url"),
			Name:          field(record, "name"),
			Price:         field(record, "price"),
			PriceMin:      field(record, "price_min"),
			OriginalPrice: field(record, "original_price"),
			Discount:      field(record, "discount"),
			ShopName:      field(record, "shop_name"),
			Image:         field(record, "image"),
			Images:        field(record, "images"),
			Category:      field(record, "category"),
			ShopID:        field(record, "shopid"),
			Variations:    field(record, "variations"),
		}

		// ID도 이름도 없는 행은 상품으로 식별할 수 없으므로 정규화 전에 제외합니다.
		if row.ID == "" && row.Name == "" {
			continue
		}

		rows = append(rows, row)
	}

	return rows, nil
}
