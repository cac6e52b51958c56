package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/darkkaiser/affiliate-store-server/internal/pkg/errors"
	"golang.org/x/net/html/charset"
)

// maxBodyBytes 한 번의 응답에서 읽어들일 본문의 최대 크기 (10MB)
// 사이트맵 XML이 비정상적으로 클 때 메모리 고갈을 방지합니다.
const maxBodyBytes = 10 * 1024 * 1024

// ReadBody 응답 본문 전체를 문자열로 읽어 반환합니다.
//
// 응답 헤더의 Content-Type을 분석하여 비 UTF-8 인코딩 본문도 UTF-8로 변환하며,
// 본문 크기는 maxBodyBytes로 제한됩니다. 응답 객체의 Body는 이 함수가 닫습니다.
//
// 단, gzip 압축 본문은 인코딩 변환을 거치지 않고 원본 바이트 그대로 반환합니다.
// 변환기가 매직 바이트(0x8b)를 비 UTF-8 문자로 재작성해 버리면
// 호출하는 쪽에서 압축 여부를 더 이상 판별할 수 없기 때문입니다.
func ReadBody(resp *http.Response) (string, error) {
	defer drainAndCloseBody(resp.Body)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.System, "응답 본문을 읽는 중 오류가 발생했습니다")
	}

	if isGzipMagic(raw) {
		return string(raw), nil
	}

	utf8Reader, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ParsingFailed, "응답 본문의 인코딩 변환이 실패하였습니다")
	}

	b, err := io.ReadAll(utf8Reader)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.System, "응답 본문을 읽는 중 오류가 발생했습니다")
	}

	return string(b), nil
}

// isGzipMagic 본문이 gzip 매직 바이트로 시작하는지 검사합니다.
func isGzipMagic(raw []byte) bool {
	return len(raw) >= 2 && raw[0] == 0x1f && raw[1] == 0x8b
}

// GetBody 지정된 URL로 GET 요청을 보내고, 상태 코드를 검증한 뒤 본문을 문자열로 반환합니다.
func GetBody(ctx context.Context, f Fetcher, url string) (string, error) {
	resp, err := Get(ctx, f, url)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.Unavailable, fmt.Sprintf("페이지(%s) 요청 중 네트워크 또는 클라이언트 에러가 발생했습니다", url))
	}

	if err := CheckResponseStatus(resp); err != nil {
		drainAndCloseBody(resp.Body)
		return "", err
	}

	return ReadBody(resp)
}
