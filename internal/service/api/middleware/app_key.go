package middleware

import (
	"crypto/subtle"

	"github.com/darkkaiser/affiliate-store-server/internal/service/api/httputil"
	applog "github.com/darkkaiser/affiliate-store-server/pkg/log"
	"github.com/labstack/echo/v4"
)

const (
	// headerXAppKey 관리자 인증용 HTTP 헤더 키 (권장 방식)
	headerXAppKey = "X-App-Key"

	// queryParamAppKey 관리자 인증용 쿼리 파라미터 키 (레거시 호환)
	queryParamAppKey = "app_key"
)

// RequireAppKey 스토어 관리 엔드포인트의 App Key 인증 미들웨어를 반환합니다.
//
// App Key는 X-App-Key 헤더 또는 app_key 쿼리 파라미터로 전달합니다.
// 서버에 App Key가 설정되어 있지 않으면 관리 엔드포인트 전체가 비활성화되어
// 모든 요청이 거부됩니다. 키 비교는 타이밍 공격을 피하기 위해 상수 시간으로 수행합니다.
func RequireAppKey(appKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if appKey == "" {
				return httputil.NewUnauthorizedError("관리자 API 키가 설정되어 있지 않아 이 엔드포인트는 비활성화되었습니다")
			}

			received := extractAppKey(c)
			if received == "" {
				return httputil.NewUnauthorizedError("app_key는 필수입니다")
			}

			if subtle.ConstantTimeCompare([]byte(received), []byte(appKey)) != 1 {
				applog.WithComponentAndFields(component, applog.Fields{
					"path":             c.Request().URL.Path,
					"remote_ip":        c.RealIP(),
					"received_app_key": applog.MaskSensitiveData(received),
				}).Warn("APP_KEY 불일치")

				return httputil.NewUnauthorizedError("app_key가 유효하지 않습니다")
			}

			return next(c)
		}
	}
}

// extractAppKey App Key를 추출합니다. X-App-Key 헤더를 우선하고,
// 없으면 쿼리 파라미터를 확인합니다.
func extractAppKey(c echo.Context) string {
	if appKey := c.Request().Header.Get(headerXAppKey); appKey != "" {
		return appKey
	}
	return c.QueryParam(queryParamAppKey)
}
