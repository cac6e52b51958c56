package fetch

import (
	"math/rand/v2"
	"net/http"
	"time"

	applog "github.com/darkkaiser/affiliate-store-server/pkg/log"
)

const (
	// maxAllowedRetries 허용 가능한 최대 재시도 횟수
	maxAllowedRetries = 10

	// defaultMinRetryDelay 재시도 대기 시간의 기본 시작값
	defaultMinRetryDelay = 1 * time.Second

	// defaultMaxRetryDelay 지수 백오프 증가 시 대기 시간 상한선
	defaultMaxRetryDelay = 30 * time.Second
)

// RetryFetcher HTTP 요청 실패 시 자동으로 재시도를 수행하는 미들웨어입니다.
//
// 주요 특징:
//   - 지수 백오프: 재시도 간격을 2배씩 증가시켜 서버 부하를 분산
//   - Jitter: 무작위 지연을 추가하여 동시 다발적인 재시도 문제 방지
//   - 멱등 메서드(GET, HEAD 등)만 재시도하며 POST, PATCH는 재시도하지 않음
//   - 컨텍스트 취소 감지: 대기 중 요청이 취소되면 즉시 중단
type RetryFetcher struct {
	delegate Fetcher

	maxRetries    int
	minRetryDelay time.Duration
	maxRetryDelay time.Duration
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*RetryFetcher)(nil)

// NewRetryFetcher 새로운 RetryFetcher 인스턴스를 생성합니다.
// maxRetries는 0~10 범위로, retryDelay는 1초 이상으로 보정됩니다.
func NewRetryFetcher(delegate Fetcher, maxRetries int, retryDelay time.Duration) *RetryFetcher {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if maxRetries > maxAllowedRetries {
		maxRetries = maxAllowedRetries
	}
	if retryDelay < defaultMinRetryDelay {
		retryDelay = defaultMinRetryDelay
	}

	return &RetryFetcher{
		delegate:      delegate,
		maxRetries:    maxRetries,
		minRetryDelay: retryDelay,
		maxRetryDelay: defaultMaxRetryDelay,
	}
}

// Do HTTP 요청을 수행하며, 실패 시 설정된 정책에 따라 자동으로 재시도합니다.
//
// 재시도 대상: 네트워크 오류, 5xx 서버 에러, 429, 408
// 재시도 제외: 비멱등 메서드, 4xx 클라이언트 에러, 컨텍스트 취소
func (f *RetryFetcher) Do(req *http.Request) (*http.Response, error) {
	effectiveMaxRetries := f.maxRetries

	// 비멱등 메서드는 재시도 시 데이터 중복 생성/수정 위험이 있으므로 재시도를 비활성화합니다.
	if !isIdempotentMethod(req.Method) {
		effectiveMaxRetries = 0
	}

	// Body 재구성이 불가능한 요청도 재시도할 수 없습니다.
	if req.Body != nil && req.GetBody == nil {
		effectiveMaxRetries = 0
	}

	var lastResp *http.Response
	var lastErr error

	for i := 0; i <= effectiveMaxRetries; i++ {
		if i > 0 {
			// 지수 백오프 계산: minRetryDelay * 2^(i-1), 상한 maxRetryDelay
			delay := f.minRetryDelay * time.Duration(1<<(i-1))
			if delay > f.maxRetryDelay {
				delay = f.maxRetryDelay
			}

			// Full Jitter: 0 ~ delay 범위에서 무작위 선택, 너무 짧으면 시작값으로 보정
			delay = time.Duration(rand.Int64N(int64(delay) + 1))
			if delay < time.Millisecond {
				delay = f.minRetryDelay
			}

			applog.WithComponentAndFields(component, applog.Fields{
				"url":         req.URL.Redacted(),
				"retry":       i,
				"max_retries": effectiveMaxRetries,
				"delay":       delay.String(),
			}).Warn("일시적 오류로 인해 요청 재시도를 준비합니다")

			timer := time.NewTimer(delay)
			select {
			case <-req.Context().Done():
				timer.Stop()
				return nil, req.Context().Err()
			case <-timer.C:
			}

			// 재시도를 위해 Body를 재구성합니다.
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				req.Body = body
			}
		}

		resp, err := f.delegate.Do(req)
		if err != nil {
			// 컨텍스트 취소는 재시도 대상이 아닙니다.
			if req.Context().Err() != nil {
				return nil, err
			}
			lastResp, lastErr = nil, err
			continue
		}

		if !isRetryableStatus(resp.StatusCode) {
			return resp, nil
		}

		// 재시도 가능한 상태 코드: 커넥션 재사용을 위해 Body를 비우고 다음 시도로 넘어갑니다.
		lastResp, lastErr = resp, nil
		if i < effectiveMaxRetries {
			drainAndCloseBody(resp.Body)
			lastResp = nil
		}
	}

	if lastResp != nil {
		return lastResp, nil
	}
	return nil, lastErr
}

// isIdempotentMethod HTTP 메서드의 멱등성 여부를 반환합니다.
func isIdempotentMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// isRetryableStatus 재시도 가능한 HTTP 상태 코드인지 판단합니다.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	case http.StatusNotImplemented, http.StatusHTTPVersionNotSupported, http.StatusNetworkAuthenticationRequired:
		return false
	}
	return statusCode >= 500
}
