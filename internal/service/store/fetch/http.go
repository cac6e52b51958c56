package fetch

import (
	"net/http"
	"time"
)

// defaultTimeout HTTP 요청의 기본 타임아웃입니다.
// 프록시 중 하나가 응답 없이 매달리더라도 전체 수집이 멈추지 않도록 전송 계층에서 강제합니다.
const defaultTimeout = 30 * time.Second

// HTTPFetcher 기본 타임아웃이 내장된 표준 HTTP 클라이언트 구현체입니다.
type HTTPFetcher struct {
	client *http.Client
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher 기본 타임아웃(30초) 설정이 포함된 새로운 HTTPFetcher 인스턴스를 생성합니다.
func NewHTTPFetcher() *HTTPFetcher {
	return NewHTTPFetcherWithTimeout(defaultTimeout)
}

// NewHTTPFetcherWithTimeout 지정된 타임아웃을 사용하는 HTTPFetcher 인스턴스를 생성합니다.
// timeout이 0 이하이면 기본값(30초)으로 보정합니다.
func NewHTTPFetcherWithTimeout(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Do HTTP 요청을 실행합니다.
func (f *HTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	return f.client.Do(req)
}
