package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/darkkaiser/affiliate-store-server/internal/service/api/httputil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// invokeAppKeyMiddleware 미들웨어를 통과시켜 next 핸들러 호출 여부와 에러를 반환합니다.
func invokeAppKeyMiddleware(t *testing.T, configuredKey, targetURL string, setup func(*http.Request)) (bool, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, targetURL, nil)
	if setup != nil {
		setup(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	nextCalled := false
	next := func(c echo.Context) error {
		nextCalled = true
		return nil
	}

	err := RequireAppKey(configuredKey)(next)(c)
	return nextCalled, err
}

func TestRequireAppKey(t *testing.T) {
	t.Parallel()

	const appKey = "secret-app-key-0001"

	t.Run("X-App-Key 헤더로 인증 성공", func(t *testing.T) {
		t.Parallel()

		nextCalled, err := invokeAppKeyMiddleware(t, appKey, "/api/v1/store/refresh", func(req *http.Request) {
			req.Header.Set("X-App-Key", appKey)
		})

		require.NoError(t, err)
		assert.True(t, nextCalled)
	})

	t.Run("app_key 쿼리 파라미터로 인증 성공", func(t *testing.T) {
		t.Parallel()

		nextCalled, err := invokeAppKeyMiddleware(t, appKey, "/api/v1/store/refresh?app_key="+appKey, nil)

		require.NoError(t, err)
		assert.True(t, nextCalled)
	})

	t.Run("헤더가 쿼리 파라미터보다 우선", func(t *testing.T) {
		t.Parallel()

		nextCalled, err := invokeAppKeyMiddleware(t, appKey, "/api/v1/store/refresh?app_key=wrong", func(req *http.Request) {
			req.Header.Set("X-App-Key", appKey)
		})

		require.NoError(t, err)
		assert.True(t, nextCalled)
	})

	t.Run("App Key 미전달시 401", func(t *testing.T) {
		t.Parallel()

		nextCalled, err := invokeAppKeyMiddleware(t, appKey, "/api/v1/store/refresh", nil)

		assert.False(t, nextCalled)

		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusUnauthorized, he.Code)

		resp, ok := he.Message.(httputil.ErrorResponse)
		require.True(t, ok)
		assert.Equal(t, "app_key는 필수입니다", resp.Message)
	})

	t.Run("잘못된 App Key는 401", func(t *testing.T) {
		t.Parallel()

		nextCalled, err := invokeAppKeyMiddleware(t, appKey, "/api/v1/store/refresh", func(req *http.Request) {
			req.Header.Set("X-App-Key", "wrong-key")
		})

		assert.False(t, nextCalled)

		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("서버에 App Key 미설정시 항상 401", func(t *testing.T) {
		t.Parallel()

		// 올바른 키를 보내도 서버 설정이 비어 있으면 거부된다.
		nextCalled, err := invokeAppKeyMiddleware(t, "", "/api/v1/store/refresh", func(req *http.Request) {
			req.Header.Set("X-App-Key", "anything")
		})

		assert.False(t, nextCalled)

		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})
}
