// Package source 상품 데이터 소스(CSV, 사이트맵, 원격 API) 공통 타입과
// 정규화 보조 함수를 제공합니다.
//
// 각 소스의 원시 레코드는 소스별 패키지에서 고유한 타입으로 다루며,
// 정규화 함수만 표준 상품 모델(product.Product)로 수렴합니다.
package source

import (
	"math/rand/v2"
	"strconv"
	"strings"
)

// Settings 정규화 시점에 참조되는 스토어 설정 스냅샷입니다.
//
// 설정은 호출 시점마다 새로 읽어 전달되므로, 관리자의 설정 변경이
// 다음 조회부터 즉시 반영됩니다.
type Settings struct {
	CloakingToken   string
	CloakingBaseURL string

	DefaultCurrency string
	DefaultCategory string

	PrefixWords   []string
	PrefixEnabled bool
}

// ParseFloat 숫자 필드를 관대하게 파싱합니다.
//
// 원시 데이터의 가격 셀에는 "1,290.50", "990 ฿" 같은 형태가 섞여 들어오므로,
// 문자열 앞부분의 숫자만 읽고 나머지는 무시합니다. 파싱이 불가능하면 0을 반환하며,
// 절대 에러를 발생시키지 않습니다. (잘못된 가격 셀 하나 때문에 수집 전체가 실패하면 안 됨)
func ParseFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	end := 0
	seenDot := false
	for ; end < len(s); end++ {
		c := s[end]
		if c >= '0' && c <= '9' {
			continue
		}
		if c == '.' && !seenDot && end > 0 {
			seenDot = true
			continue
		}
		if (c == '-' || c == '+') && end == 0 {
			continue
		}
		break
	}

	if end == 0 {
		return 0
	}

	result, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return result
}

// ParseInt 정수 필드를 관대하게 파싱합니다. ("20%" -> 20, 파싱 불가 -> 0)
func ParseInt(s string) int {
	return int(ParseFloat(s))
}

const tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// RandomToken 지정된 길이의 base36 랜덤 토큰을 생성합니다.
// 소스에 상품 ID가 없을 때 합성 ID로 사용됩니다.
func RandomToken(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	for range n {
		sb.WriteByte(tokenAlphabet[rand.IntN(len(tokenAlphabet))])
	}
	return sb.String()
}

// SplitImageList 줄바꿈으로 구분된 이미지 URL 목록을 분리합니다.
// 공백을 제거한 뒤 HTTP(S) 스키마로 시작하는 항목만 유지합니다.
func SplitImageList(s string) []string {
	if s == "" {
		return nil
	}

	var images []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "http") {
			images = append(images, line)
		}
	}
	return images
}
