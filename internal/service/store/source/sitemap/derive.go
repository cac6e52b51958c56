package sitemap

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// lazadaIDPattern 상품 URL의 마지막 경로 조각에 포함된 숫자 ID 마커입니다.
// 예: "/super-phone-x-i123456789.html" -> ID "123456789"
var lazadaIDPattern = regexp.MustCompile(`-i(\d+)`)

// trailingDigitsPattern ID 마커가 없을 때 폴백으로 사용하는 말미 숫자 패턴입니다.
var trailingDigitsPattern = regexp.MustCompile(`(\d+)$`)

// deriveIdentity 사이트맵 loc URL로부터 상품 ID와 표시용 이름을 유도합니다.
//
// ID 유도 규칙(우선순위 순):
//  1. 마지막 경로 조각의 "-i<숫자>" 마커
//  2. 마지막 경로 조각의 말미 숫자
//  3. 위치 기반 폴백 "s-<인덱스>"
//
// 이름은 ID 마커 앞의 텍스트에서 구분자(-, _)를 공백으로 치환하고
// URL 디코딩, ".html" 제거를 거쳐 만들어집니다.
func deriveIdentity(loc string, index int) (id, name string) {
	segment := lastPathSegment(loc)
	raw := strings.TrimSuffix(segment, ".html")

	namePart := raw

	if m := lazadaIDPattern.FindStringSubmatch(raw); m != nil {
		id = m[1]
		namePart = raw[:strings.Index(raw, m[0])]
	} else if m := trailingDigitsPattern.FindStringSubmatch(raw); m != nil && len(m[1]) < len(raw) {
		id = m[1]
		namePart = strings.TrimRight(raw[:len(raw)-len(m[1])], "-_")
	} else {
		id = fmt.Sprintf("s-%d", index)
	}

	return id, humanizeSegment(namePart)
}

// deriveNameFromSlug 딥링크 slug로부터 표시용 이름을 유도합니다.
// ID 마커와 파일 확장자를 제거한 뒤 구분자를 공백으로 치환합니다.
func deriveNameFromSlug(slug string) string {
	raw := strings.TrimSuffix(lastPathSegment(slug), ".html")

	if m := lazadaIDPattern.FindStringSubmatch(raw); m != nil {
		raw = raw[:strings.Index(raw, m[0])]
	}

	return humanizeSegment(raw)
}

// lastPathSegment URL 경로의 마지막 비어있지 않은 조각을 반환합니다.
func lastPathSegment(loc string) string {
	trimmed := strings.TrimRight(loc, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

// humanizeSegment URL 조각을 사람이 읽을 수 있는 이름으로 변환합니다.
func humanizeSegment(segment string) string {
	name := strings.NewReplacer("-", " ", "_", " ").Replace(segment)

	// 퍼센트 인코딩된 조각(태국어 상품명 등)을 복원합니다.
	// 디코딩에 실패하면 치환된 문자열을 그대로 사용합니다.
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}

	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		name = "Product"
	}
	return name
}
