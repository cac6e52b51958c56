package fetch

import (
	"bytes"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestResponse ReadBody 테스트용 응답 객체를 생성합니다.
func newTestResponse(body []byte, contentType string) *http.Response {
	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
}

func TestReadBody(t *testing.T) {
	t.Parallel()

	t.Run("UTF-8 본문은 그대로 반환", func(t *testing.T) {
		t.Parallel()

		body, err := ReadBody(newTestResponse([]byte("<urlset>สินค้า</urlset>"), "application/xml; charset=utf-8"))

		require.NoError(t, err)
		assert.Equal(t, "<urlset>สินค้า</urlset>", body)
	})

	t.Run("비 UTF-8 본문은 UTF-8로 변환", func(t *testing.T) {
		t.Parallel()

		// "café"의 ISO-8859-1 표현
		raw := []byte{'c', 'a', 'f', 0xe9}

		body, err := ReadBody(newTestResponse(raw, "text/plain; charset=iso-8859-1"))

		require.NoError(t, err)
		assert.Equal(t, "café", body)
	})

	t.Run("gzip 본문은 인코딩 변환 없이 원본 바이트 유지", func(t *testing.T) {
		t.Parallel()

		raw := []byte{0x1f, 0x8b, 0x08, 0x00, 0x01, 0x02}

		tests := []struct {
			name        string
			contentType string
		}{
			{"Content-Type 지정", "application/gzip"},
			{"Content-Type 미지정", ""},
			{"XML로 잘못 선언된 경우", "application/xml"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				body, err := ReadBody(newTestResponse(raw, tt.contentType))

				require.NoError(t, err)
				// 매직 바이트(0x1f 0x8b)가 보존되어야 호출부가 압축 여부를 판별할 수 있다.
				assert.Equal(t, string(raw), body)
			})
		}
	})

	t.Run("빈 본문", func(t *testing.T) {
		t.Parallel()

		body, err := ReadBody(newTestResponse(nil, ""))

		require.NoError(t, err)
		assert.Empty(t, body)
	})
}

func TestIsGzipMagic(t *testing.T) {
	t.Parallel()

	assert.True(t, isGzipMagic([]byte{0x1f, 0x8b}))
	assert.True(t, isGzipMagic([]byte{0x1f, 0x8b, 0x08}))
	assert.False(t, isGzipMagic([]byte{0x1f}))
	assert.False(t, isGzipMagic([]byte("<urlset>")))
	assert.False(t, isGzipMagic(nil))
}
