package sitemap

import (
	"strings"

	"github.com/darkkaiser/affiliate-store-server/internal/service/store/cloak"
	"github.com/tidwall/gjson"
)

// Proxy CORS 우회 프록시 하나의 요청 URL 생성 규칙입니다.
//
// 프록시는 설정된 순서대로 시도되며, 첫 번째로 사용 가능한 XML을 반환한
// 프록시가 채택됩니다. (이후 프록시는 시도하지 않음)
type Proxy struct {
	// Name 로그 식별용 이름
	Name string

	// BuildURL 대상 URL을 프록시 경유 요청 URL로 변환합니다.
	BuildURL func(targetURL string) string

	// JSONEnvelope 응답이 {"contents": "<xml...>"} 형태의 JSON 봉투인지 여부.
	// true이면 본문에서 contents 필드를 추출한 값을 XML로 취급합니다.
	JSONEnvelope bool
}

// ExtractBody 프록시 응답 본문에서 실제 XML 텍스트를 추출합니다.
func (p Proxy) ExtractBody(body string) string {
	if !p.JSONEnvelope {
		return body
	}

	// JSON 봉투 프록시인데 JSON이 아닌 응답이 오는 경우도 있으므로,
	// contents 필드 추출에 실패하면 본문을 그대로 사용합니다.
	if contents := gjson.Get(body, "contents"); contents.Exists() {
		return contents.String()
	}
	return body
}

// DefaultProxies 기본 프록시 목록을 반환합니다.
// 마지막 항목은 프록시를 거치지 않는 직접 요청입니다.
func DefaultProxies() []Proxy {
	return []Proxy{
		{
			Name: "allorigins-get",
			BuildURL: func(targetURL string) string {
				return "https://api.allorigins.win/get?url=" + cloak.EncodeURIComponent(targetURL)
			},
			JSONEnvelope: true,
		},
		{
			Name: "allorigins-raw",
			BuildURL: func(targetURL string) string {
				return "https://api.allorigins.win/raw?url=" + cloak.EncodeURIComponent(targetURL)
			},
		},
		{
			Name: "corsproxy",
			BuildURL: func(targetURL string) string {
				return "https://corsproxy.io/?" + cloak.EncodeURIComponent(targetURL)
			},
		},
		{
			Name: "direct",
			BuildURL: func(targetURL string) string {
				return targetURL
			},
		},
	}
}

// looksLikeSitemap 본문에 사이트맵 루트 마커가 포함되어 있는지 검사합니다.
func looksLikeSitemap(body string) bool {
	return strings.Contains(body, "<urlset") || strings.Contains(body, "<sitemapindex")
}

// looksGzipped 본문이 gzip 압축 데이터인지 매직 바이트로 검사합니다.
func looksGzipped(body string) bool {
	return len(body) >= 2 && body[0] == 0x1f && body[1] == 0x8b
}
