// Package handler 상품 스토어 API v1의 요청 핸들러를 제공합니다.
package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/darkkaiser/affiliate-store-server/internal/config"
	"github.com/darkkaiser/affiliate-store-server/internal/service/api/httputil"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/product"
	"github.com/labstack/echo/v4"
)

// StoreService 핸들러가 사용하는 스토어 서비스 인터페이스입니다.
// 테스트에서는 실제 서비스 대신 스텁으로 대체할 수 있습니다.
type StoreService interface {
	FetchProducts(ctx context.Context, q store.Query) (product.PagedResult, error)
	GetProductByID(ctx context.Context, id, slug string) (product.Product, error)
	Refresh(ctx context.Context) (int, error)
	IngestSitemap(name, xmlText string) (int, error)
	ClearCache() error
	UpdateSettings(newConfig config.StoreConfig) error
}

// RefreshResponse 재수집 요청의 응답 형식입니다.
type RefreshResponse struct {
	ResultCode int    `json:"result_code"`
	Message    string `json:"message"`
	Products   int    `json:"products"`
}

// Handler 스토어 API v1 핸들러입니다.
type Handler struct {
	storeService StoreService
}

// NewHandler Handler 인스턴스를 생성합니다.
func NewHandler(storeService StoreService) *Handler {
	if storeService == nil {
		panic("StoreService는 필수입니다")
	}

	return &Handler{
		storeService: storeService,
	}
}

// ListProductsHandler 조회 조건에 맞는 상품 목록을 페이징하여 반환합니다.
//
// 쿼리 파라미터:
//   - keyword: 상품명/카테고리명 부분 일치 검색어
//   - category: 카테고리명 완전 일치 필터
//   - page: 페이지 번호 (기본 1)
//   - limit: 페이지 크기 (기본 20)
func (h *Handler) ListProductsHandler(c echo.Context) error {
	page, err := parsePositiveIntParam(c, "page")
	if err != nil {
		return err
	}
	limit, err := parsePositiveIntParam(c, "limit")
	if err != nil {
		return err
	}

	result, err := h.storeService.FetchProducts(c.Request().Context(), store.Query{
		Keyword:  c.QueryParam("keyword"),
		Category: c.QueryParam("category"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return httputil.FromAppError(err)
	}

	return c.JSON(http.StatusOK, result)
}

// GetProductHandler 상품 하나를 조회합니다.
// slug 쿼리 파라미터가 있으면 캐시에 없는 상품도 재구성을 시도합니다.
func (h *Handler) GetProductHandler(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return httputil.NewBadRequestError("상품 ID는 필수입니다")
	}

	p, err := h.storeService.GetProductByID(c.Request().Context(), id, c.QueryParam("slug"))
	if err != nil {
		return httputil.FromAppError(err)
	}

	return c.JSON(http.StatusOK, p)
}

// RefreshStoreHandler 활성 데이터 소스를 즉시 재수집합니다.
// 수집 실패의 원인이 응답으로 그대로 전달됩니다.
func (h *Handler) RefreshStoreHandler(c echo.Context) error {
	count, err := h.storeService.Refresh(c.Request().Context())
	if err != nil {
		return httputil.FromAppError(err)
	}

	return c.JSON(http.StatusOK, RefreshResponse{
		ResultCode: 0,
		Message:    "상품 재수집이 완료되었습니다",
		Products:   count,
	})
}

// UploadSitemapHandler 요청 본문으로 전달된 사이트맵 XML을 수집합니다.
// 업로드 식별자는 X-File-Name 헤더 또는 name 쿼리 파라미터로 지정하며,
// 없으면 기본값이 사용됩니다.
func (h *Handler) UploadSitemapHandler(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return httputil.NewBadRequestError("요청 본문을 읽을 수 없습니다")
	}
	if len(body) == 0 {
		return httputil.NewBadRequestError("사이트맵 XML 본문이 비어있습니다")
	}

	name := strings.TrimSpace(c.Request().Header.Get("X-File-Name"))
	if name == "" {
		name = strings.TrimSpace(c.QueryParam("name"))
	}
	if name == "" {
		name = "sitemap-upload"
	}

	count, err := h.storeService.IngestSitemap(name, string(body))
	if err != nil {
		return httputil.FromAppError(err)
	}

	return c.JSON(http.StatusOK, RefreshResponse{
		ResultCode: 0,
		Message:    "업로드된 사이트맵 수집이 완료되었습니다",
		Products:   count,
	})
}

// ClearCacheHandler 모든 파이프라인의 캐시를 무효화합니다.
func (h *Handler) ClearCacheHandler(c echo.Context) error {
	if err := h.storeService.ClearCache(); err != nil {
		return httputil.FromAppError(err)
	}

	return httputil.SuccessWithMessage(c, "캐시가 초기화되었습니다")
}

// UpdateSettingsHandler 스토어 설정을 교체합니다.
// 요청 본문은 스토어 설정 전체이며, 검증에 실패하면 기존 설정이 유지됩니다.
func (h *Handler) UpdateSettingsHandler(c echo.Context) error {
	var newConfig config.StoreConfig
	if err := c.Bind(&newConfig); err != nil {
		return httputil.NewBadRequestError("요청 본문이 유효한 스토어 설정 형식이 아닙니다")
	}

	if err := h.storeService.UpdateSettings(newConfig); err != nil {
		return httputil.FromAppError(err)
	}

	return httputil.SuccessWithMessage(c, "스토어 설정이 교체되었습니다")
}

// parsePositiveIntParam 쿼리 파라미터를 양의 정수로 파싱합니다.
// 파라미터가 없으면 0을 반환하고, 형식이 잘못되었으면 400 에러를 반환합니다.
func parsePositiveIntParam(c echo.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, httputil.NewBadRequestError(name + " 파라미터는 1 이상의 정수여야 합니다")
	}
	return value, nil
}
