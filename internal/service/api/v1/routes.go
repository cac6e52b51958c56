// Package v1 상품 스토어 API의 v1 버전 라우트를 정의하고 설정합니다.
//
// 주요 엔드포인트:
//   - GET    /api/v1/products        - 상품 목록 조회 (검색/필터/페이징)
//   - GET    /api/v1/products/:id    - 상품 단건 조회
//   - POST   /api/v1/store/refresh   - 활성 소스 즉시 재수집 (관리자)
//   - POST   /api/v1/store/sitemap   - 사이트맵 XML 업로드 수집 (관리자)
//   - DELETE /api/v1/store/cache     - 캐시 초기화 (관리자)
//   - PUT    /api/v1/store/settings  - 스토어 설정 교체 (관리자)
//
// 상품 조회는 인증 없이 허용되며, /store 하위의 관리 엔드포인트는
// App Key 인증을 요구합니다.
package v1

import (
	"github.com/darkkaiser/affiliate-store-server/internal/service/api/middleware"
	"github.com/darkkaiser/affiliate-store-server/internal/service/api/v1/handler"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes Echo 인스턴스에 v1 API 라우트를 설정합니다.
func RegisterRoutes(e *echo.Echo, h *handler.Handler, appKey string) {
	v1Group := e.Group("/api/v1")

	// 공개 엔드포인트: 상품 조회
	v1Group.GET("/products", h.ListProductsHandler)
	v1Group.GET("/products/:id", h.GetProductHandler)

	// 관리 엔드포인트: App Key 인증 필요
	storeGroup := v1Group.Group("/store", middleware.RequireAppKey(appKey))
	storeGroup.POST("/refresh", h.RefreshStoreHandler)
	storeGroup.POST("/sitemap", h.UploadSitemapHandler)
	storeGroup.DELETE("/cache", h.ClearCacheHandler)
	storeGroup.PUT("/settings", h.UpdateSettingsHandler)
}
