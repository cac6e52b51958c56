package fetch

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxBodySnippetBytes 에러 메시지에 포함할 응답 본문의 최대 길이 (4KB)
const maxBodySnippetBytes = 4 * 1024

// HTTPStatusError HTTP 요청 실패 시 상태 코드와 응답 정보를 포함하는 구조화된 에러입니다.
//
// 상태 코드, URL, 응답 본문 일부를 구조화된 필드로 제공하여,
// 호출자가 에러 상황을 정확히 파악하고 적절한 대응(다음 프록시 시도, 로깅 등)을 할 수 있도록 돕습니다.
type HTTPStatusError struct {
	// StatusCode 서버가 반환한 HTTP 상태 코드
	StatusCode int

	// Status HTTP 상태 코드에 대응하는 텍스트 설명 (예: "404 Not Found")
	Status string

	// URL 요청을 보낸 대상 URL
	URL string

	// BodySnippet 응답 본문의 앞부분 (최대 4KB, 디버깅용)
	BodySnippet string
}

func (e *HTTPStatusError) Error() string {
	msg := fmt.Sprintf("HTTP %d (%s)", e.StatusCode, e.Status)
	if e.URL != "" {
		msg += fmt.Sprintf(" URL: %s", e.URL)
	}
	if e.BodySnippet != "" {
		msg += fmt.Sprintf(", Body: %s", e.BodySnippet)
	}
	return msg
}

// CheckResponseStatus 응답의 상태 코드가 2xx 범위인지 검증합니다.
//
// 검증에 실패하면 응답 본문의 앞부분을 읽어 HTTPStatusError에 담아 반환합니다.
// 이 경우 응답 객체의 Body는 이 함수가 소비하므로 호출자가 다시 읽을 수 없습니다.
func CheckResponseStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var snippet string
	if resp.Body != nil {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippetBytes))
		snippet = strings.TrimSpace(string(b))
	}

	var url string
	if resp.Request != nil && resp.Request.URL != nil {
		url = resp.Request.URL.Redacted()
	}

	return &HTTPStatusError{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		URL:         url,
		BodySnippet: snippet,
	}
}
