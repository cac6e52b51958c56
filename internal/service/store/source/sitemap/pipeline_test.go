package sitemap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/affiliate-store-server/internal/pkg/errors"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/fetch"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/source"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer 프록시 동작을 흉내내는 테스트 서버를 생성합니다.
//
//   - /fail: 500 응답
//   - /denied: 사이트맵이 아닌 HTML 응답
//   - /gzip: gzip 매직 바이트로 시작하는 본문
//   - /ok: 정상 사이트맵 XML
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/fail", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/denied", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>Access Denied</body></html>"))
	})
	mux.HandleFunc("/gzip", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/gzip")
		_, _ = w.Write([]byte{0x1f, 0x8b, 0x08, 0x00, 0x01, 0x02})
	})
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(sampleSitemap))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// staticProxy 대상 URL과 무관하게 항상 지정된 주소로 요청하는 테스트용 프록시를 만듭니다.
func staticProxy(name, requestURL string) Proxy {
	return Proxy{
		Name: name,
		BuildURL: func(string) string {
			return requestURL
		},
	}
}

func newTestPipeline(t *testing.T, store storage.CacheStore, proxies ...Proxy) *Pipeline {
	t.Helper()
	return NewPipeline(fetch.NewHTTPFetcher(), store, proxies)
}

// TestPipeline_Refresh_ProxyFallback은 앞선 프록시가 실패했을 때
// 다음 프록시로 넘어가 수집이 성공하는지 검증합니다.
func TestPipeline_Refresh_ProxyFallback(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	store := storage.NewMemoryCacheStore()

	p := newTestPipeline(t, store,
		staticProxy("p1", server.URL+"/fail"),
		staticProxy("p2", server.URL+"/denied"),
		staticProxy("p3", server.URL+"/ok"),
	)

	cfg := Config{URL: "https://example.com/sitemap.xml", Settings: source.Settings{}}

	count, err := p.Refresh(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	entry, err := store.Load("sitemap-products")
	require.NoError(t, err)
	assert.Equal(t, cfg.URL, entry.Fingerprint)
	require.Len(t, entry.Products, 2)
	assert.Equal(t, "100", entry.Products[0].ID)
	assert.Equal(t, "item one", entry.Products[0].Name)
}

// TestPipeline_Refresh_Errors는 수집 실패 상황별 에러 분류를 검증합니다.
func TestPipeline_Refresh_Errors(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	t.Run("URL이 비어있으면 InvalidInput", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, storage.NewMemoryCacheStore(), staticProxy("p1", server.URL+"/ok"))

		_, err := p.Refresh(context.Background(), Config{})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})

	t.Run("모든 프록시가 응답 실패하면 Unavailable", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, storage.NewMemoryCacheStore(),
			staticProxy("p1", server.URL+"/fail"),
			staticProxy("p2", server.URL+"/fail"),
		)

		_, err := p.Refresh(context.Background(), Config{URL: "https://example.com/sitemap.xml"})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.Unavailable))
	})

	t.Run("본문은 받았지만 사이트맵이 아니면 ParsingFailed", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, storage.NewMemoryCacheStore(),
			staticProxy("p1", server.URL+"/fail"),
			staticProxy("p2", server.URL+"/denied"),
		)

		_, err := p.Refresh(context.Background(), Config{URL: "https://example.com/sitemap.xml"})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ParsingFailed))
	})

	t.Run("gzip 본문은 나머지 프록시를 시도하지 않고 즉시 실패", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, storage.NewMemoryCacheStore(),
			staticProxy("p1", server.URL+"/gzip"),
			staticProxy("p2", server.URL+"/ok"),
		)

		_, err := p.Refresh(context.Background(), Config{URL: "https://example.com/sitemap.xml"})
		assert.ErrorIs(t, err, ErrCompressedSitemap)
	})
}

// TestPipeline_Products_FreshCache는 fingerprint가 일치하는 캐시의 재사용을 검증합니다.
func TestPipeline_Products_FreshCache(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryCacheStore()
	cfg := Config{URL: "https://example.com/sitemap.xml"}

	require.NoError(t, store.Save("sitemap-products", &storage.Entry{
		Fingerprint: cfg.URL,
		CreatedAt:   time.Now(),
		Products:    placeholderProducts(3, source.Settings{}),
	}))

	// fetcher가 nil이어도 캐시가 유효하면 네트워크에 접근하지 않는다.
	p := NewPipeline(nil, store, []Proxy{staticProxy("p1", "http://127.0.0.1:1/unreachable")})

	products, err := p.Products(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, products, 3)
}

// TestPipeline_Products_StaleCache는 fingerprint가 어긋났을 때
// 합성 상품 즉시 응답과 백그라운드 갱신을 검증합니다.
func TestPipeline_Products_StaleCache(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	store := storage.NewMemoryCacheStore()

	// 이전 사이트맵 URL 기준의 캐시가 남아있는 상황
	require.NoError(t, store.Save("sitemap-products", &storage.Entry{
		Fingerprint: "https://old.example.com/sitemap.xml",
		CreatedAt:   time.Now(),
		Products:    placeholderProducts(3, source.Settings{}),
	}))

	p := newTestPipeline(t, store, staticProxy("p1", server.URL+"/ok"))

	cfg := Config{URL: "https://new.example.com/sitemap.xml"}

	products, err := p.Products(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, products, 12, "합성 상품으로 즉시 응답")
	assert.Equal(t, "s-0", products[0].ID)
	assert.Equal(t, "Product 1", products[0].Name)

	// 백그라운드 갱신이 새 URL 기준으로 캐시를 교체할 때까지 대기
	require.Eventually(t, func() bool {
		entry, err := store.Load("sitemap-products")
		return err == nil && entry.Fingerprint == cfg.URL
	}, 5*time.Second, 10*time.Millisecond)

	products, err = p.Products(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, products, 2, "갱신 후에는 수집된 상품 제공")
}

// TestPipeline_Products_NoURL은 URL 미설정 시 갱신 없이 합성 상품만 반환하는지 검증합니다.
func TestPipeline_Products_NoURL(t *testing.T) {
	t.Parallel()

	p := NewPipeline(nil, storage.NewMemoryCacheStore(), []Proxy{staticProxy("p1", "http://127.0.0.1:1/unreachable")})

	products, err := p.Products(context.Background(), Config{})
	require.NoError(t, err)
	assert.Len(t, products, 12)
}

// TestPipeline_RefreshFromUpload는 업로드 수집과 업로드 fingerprint의 우선 적용을 검증합니다.
func TestPipeline_RefreshFromUpload(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryCacheStore()
	p := NewPipeline(nil, store, []Proxy{staticProxy("p1", "http://127.0.0.1:1/unreachable")})

	cfg := Config{URL: "https://example.com/sitemap.xml"}

	count, err := p.RefreshFromUpload("products.xml", sampleSitemap, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// URL이 설정되어 있어도 업로드된 집합이 우선 제공된다.
	products, err := p.Products(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "100", products[0].ID)

	// 캐시 초기화 후에는 다시 합성 상품으로 돌아간다.
	require.NoError(t, p.ClearCache())

	products, err = p.Products(context.Background(), Config{})
	require.NoError(t, err)
	assert.Len(t, products, 12)
}

// TestPipeline_RefreshFromUpload_SurvivesRestart는 업로드 스냅샷이
// 프로세스 재시작 이후에도 계속 제공되는지 검증합니다.
func TestPipeline_RefreshFromUpload_SurvivesRestart(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryCacheStore()
	cfg := Config{URL: "https://example.com/sitemap.xml"}

	p1 := NewPipeline(nil, store, []Proxy{staticProxy("p1", "http://127.0.0.1:1/unreachable")})

	count, err := p1.RefreshFromUpload("products.xml", sampleSitemap, cfg)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	// 같은 영속 캐시 위에 새 파이프라인을 만들어 재시작을 흉내낸다.
	// 설정된 URL과 fingerprint가 어긋나더라도 업로드 엔트리는 유효해야 한다.
	p2 := NewPipeline(nil, store, []Proxy{staticProxy("p1", "http://127.0.0.1:1/unreachable")})

	products, err := p2.Products(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "100", products[0].ID)

	// 캐시 초기화는 재시작 이후에도 업로드 스냅샷을 해제한다.
	require.NoError(t, p2.ClearCache())

	products, err = p2.Products(context.Background(), Config{})
	require.NoError(t, err)
	assert.Len(t, products, 12)
}

// TestPipeline_RefreshFromUpload_EmptyName은 업로드 식별자 검증을 확인합니다.
func TestPipeline_RefreshFromUpload_EmptyName(t *testing.T) {
	t.Parallel()

	p := NewPipeline(nil, storage.NewMemoryCacheStore(), nil)

	_, err := p.RefreshFromUpload("", sampleSitemap, Config{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
}

// TestPipeline_ProductByID는 단일 상품 조회의 3단계 폴백을 검증합니다.
func TestPipeline_ProductByID(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryCacheStore()
	p := NewPipeline(nil, store, nil)

	cfg := Config{Settings: source.Settings{DefaultCurrency: "THB"}}

	_, err := p.RefreshFromUpload("products.xml", sampleSitemap, cfg)
	require.NoError(t, err)

	t.Run("캐시에 있는 상품", func(t *testing.T) {
		prod, err := p.ProductByID(context.Background(), cfg, "100", "")
		require.NoError(t, err)
		assert.Equal(t, "item one", prod.Name)
	})

	t.Run("캐시에 없으면 slug로 재구성", func(t *testing.T) {
		prod, err := p.ProductByID(context.Background(), cfg, "999", "/products/nice-shirt-i999.html")
		require.NoError(t, err)
		assert.Equal(t, "999", prod.ID)
		assert.Equal(t, "nice shirt", prod.Name)
		assert.Equal(t, "THB", prod.Currency)
	})

	t.Run("캐시에도 없고 slug도 없으면 NotFound", func(t *testing.T) {
		_, err := p.ProductByID(context.Background(), cfg, "no-such-id", "")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.NotFound))
	})
}
