// Package cloak 상품의 원본 URL을 어필리에이트 추적(클로킹) URL로 변환합니다.
package cloak

import "strings"

const (
	// defaultRedirectBaseURL 커스텀 Base URL이 설정되지 않았을 때 사용되는 기본 리다이렉트 호스트
	defaultRedirectBaseURL = "https://goeco.mobi/?token="

	// campaignSource 추적 URL에 고정적으로 붙는 캠페인 식별 태그
	campaignSource = "lazada_2026"

	tokenMarker = "?token="
)

// Build 클로킹 설정과 목적지 URL로부터 추적 URL을 생성합니다.
//
// 규칙(우선순위 순):
//  1. destinationURL이 비어있으면 빈 문자열을 반환합니다.
//  2. customBaseURL에 "?token=" 마커가 포함되어 있으면 그 값을 기반으로 생성합니다.
//     기존에 붙어있던 &url= 이후 부분은 중복 방지를 위해 제거합니다.
//  3. token만 설정되어 있으면 기본 리다이렉트 호스트와 조합합니다.
//  4. 클로킹 정보가 전혀 없으면 목적지 URL을 그대로 반환합니다.
//
// 동일한 입력에 대해 항상 동일한 결과를 반환합니다. (캐싱과 테스트의 전제 조건)
func Build(token, destinationURL, customBaseURL string) string {
	if destinationURL == "" {
		return ""
	}

	if customBaseURL != "" && strings.Contains(customBaseURL, tokenMarker) {
		base := customBaseURL
		if idx := strings.Index(base, "&url="); idx >= 0 {
			base = base[:idx]
		}
		return base + "&url=" + EncodeURIComponent(destinationURL) + "&source=" + campaignSource
	}

	if token != "" {
		return defaultRedirectBaseURL + token + "&url=" + EncodeURIComponent(destinationURL) + "&source=" + campaignSource
	}

	return destinationURL
}
