// Package prefix 상품 ID로부터 결정적인 마케팅 접두어를 유도합니다.
//
// 동일한 상품 ID와 동일한 접두어 목록에 대해 항상 같은 접두어가 선택되어야 합니다.
// 페이지를 새로고침해도 SEO에 노출되는 상품명이 흔들리지 않기 위한 요구사항입니다.
package prefix

const hashBound = 1_000_000

// Hash 상품 ID에 대한 순서 민감 롤링 해시를 계산합니다.
// 수식: h = (h*31 + 문자코드) % 1_000_000
//
// 유니코드 코드 포인트 단위로 계산하므로 어떤 입력에 대해서도 안정적입니다.
// (실무에서 상품 ID는 ASCII이지만, 업로드 파일명 등 임의 입력도 들어올 수 있음)
func Hash(productID string) int {
	h := 0
	for _, r := range productID {
		h = (h*31 + int(r)) % hashBound
	}
	return h
}

// Pick 접두어 목록에서 상품 ID에 대응하는 접두어를 선택합니다.
// 기능이 비활성화되었거나 목록이 비어있으면 빈 문자열을 반환합니다.
func Pick(productID string, words []string, enabled bool) string {
	if !enabled || len(words) == 0 {
		return ""
	}
	return words[Hash(productID)%len(words)]
}

// PrefixedName 접두어가 적용된 상품명을 반환합니다.
// 접두어가 없으면 상품명을 그대로 반환합니다.
func PrefixedName(productID, name string, words []string, enabled bool) string {
	p := Pick(productID, words, enabled)
	if p == "" {
		return name
	}
	return p + " " + name
}
