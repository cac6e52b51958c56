package store

import (
	"context"
	"testing"

	"github.com/darkkaiser/affiliate-store-server/internal/config"
	apperrors "github.com/darkkaiser/affiliate-store-server/internal/pkg/errors"
	"github.com/darkkaiser/affiliate-store-server/internal/service/notification"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceTestSitemap = `<urlset>
<url><loc>https://example.com/products/item-one-i100.html</loc></url>
<url><loc>https://example.com/products/item-two-i200.html</loc></url>
</urlset>`

func newTestAppConfig() *config.AppConfig {
	return &config.AppConfig{
		HTTPRetry: config.HTTPRetryConfig{MaxRetries: 0, RetryDelay: "1s"},
		Store: config.StoreConfig{
			DataSource: config.DataSourceCSV,
			Sitemap: config.SitemapConfig{
				MaxEntries: 1000,
			},
			CSV: config.CSVConfig{
				DefaultText: "id,name,price\ni1,first,990\ni2,second,500\n",
			},
			DefaultCurrency: "THB",
			DefaultCategory: "ทั่วไป",
		},
	}
}

func newTestService(t *testing.T, appConfig *config.AppConfig) *Service {
	t.Helper()
	return NewServiceWithDeps(appConfig, notification.NewNoopSender(), nil, storage.NewMemoryCacheStore())
}

// TestService_FetchProducts는 CSV 소스 기준의 목록 조회를 검증합니다.
func TestService_FetchProducts(t *testing.T) {
	t.Parallel()

	s := newTestService(t, newTestAppConfig())

	result, err := s.FetchProducts(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Meta.Total)
	require.Len(t, result.Data, 2)
	assert.Equal(t, "i1", result.Data[0].ID)
	assert.Equal(t, "THB", result.Data[0].Currency)
}

// TestService_FetchProducts_LoadFailure는 적재 실패 시 빈 집합 응답을 검증합니다.
func TestService_FetchProducts_LoadFailure(t *testing.T) {
	t.Parallel()

	appConfig := newTestAppConfig()
	appConfig.Store.DataSource = "unknown-source"

	s := newTestService(t, appConfig)

	result, err := s.FetchProducts(context.Background(), Query{})
	require.NoError(t, err, "조회 경로는 적재가 실패해도 응답해야 함")
	assert.Equal(t, 0, result.Meta.Total)
	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Data)
}

// TestService_GetProductByID는 단일 상품 조회 규칙을 검증합니다.
func TestService_GetProductByID(t *testing.T) {
	t.Parallel()

	s := newTestService(t, newTestAppConfig())

	t.Run("존재하는 상품", func(t *testing.T) {
		t.Parallel()

		p, err := s.GetProductByID(context.Background(), "i1", "")
		require.NoError(t, err)
		assert.Equal(t, "first", p.Name)
	})

	t.Run("빈 ID는 InvalidInput", func(t *testing.T) {
		t.Parallel()

		_, err := s.GetProductByID(context.Background(), "", "")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})

	t.Run("없는 상품은 NotFound", func(t *testing.T) {
		t.Parallel()

		_, err := s.GetProductByID(context.Background(), "no-such-id", "")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.NotFound))
	})
}

// TestService_GetProductByID_SitemapSlug는 사이트맵 소스의 slug 재구성 경로를 검증합니다.
func TestService_GetProductByID_SitemapSlug(t *testing.T) {
	t.Parallel()

	appConfig := newTestAppConfig()
	appConfig.Store.DataSource = config.DataSourceSitemap

	s := newTestService(t, appConfig)

	p, err := s.GetProductByID(context.Background(), "999", "/products/nice-shirt-i999.html")
	require.NoError(t, err)
	assert.Equal(t, "999", p.ID)
	assert.Equal(t, "nice shirt", p.Name)
}

// TestService_IngestSitemap은 업로드 수집과 이후 조회 반영을 검증합니다.
func TestService_IngestSitemap(t *testing.T) {
	t.Parallel()

	appConfig := newTestAppConfig()
	appConfig.Store.DataSource = config.DataSourceSitemap

	s := newTestService(t, appConfig)

	count, err := s.IngestSitemap("products.xml", serviceTestSitemap)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	result, err := s.FetchProducts(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Meta.Total)
	assert.Equal(t, "100", result.Data[0].ID)
}

// TestService_UpdateSettings는 런타임 설정 교체와 캐시 무효화를 검증합니다.
func TestService_UpdateSettings(t *testing.T) {
	t.Parallel()

	s := newTestService(t, newTestAppConfig())

	// 설정 교체 전의 적재 결과를 캐시에 올린다.
	result, err := s.FetchProducts(context.Background(), Query{})
	require.NoError(t, err)
	require.Equal(t, 2, result.Meta.Total)

	newConfig := s.StoreSettings()
	newConfig.CSV.DefaultText = "id,name\nn1,updated\n"

	require.NoError(t, s.UpdateSettings(newConfig))

	// 교체와 함께 캐시가 무효화되어 새 설정이 즉시 반영된다.
	result, err = s.FetchProducts(context.Background(), Query{})
	require.NoError(t, err)
	require.Equal(t, 1, result.Meta.Total)
	assert.Equal(t, "n1", result.Data[0].ID)
}

// TestService_UpdateSettings_Invalid는 잘못된 설정 교체의 거부를 검증합니다.
func TestService_UpdateSettings_Invalid(t *testing.T) {
	t.Parallel()

	s := newTestService(t, newTestAppConfig())

	tests := []struct {
		name   string
		mutate func(*config.StoreConfig)
	}{
		{
			name: "알 수 없는 데이터 소스",
			mutate: func(c *config.StoreConfig) {
				c.DataSource = "invalid"
			},
		},
		{
			name: "api 소스인데 엔드포인트 없음",
			mutate: func(c *config.StoreConfig) {
				c.DataSource = config.DataSourceAPI
				c.API.Endpoint = ""
			},
		},
		{
			name: "사이트맵 최대 엔트리 0",
			mutate: func(c *config.StoreConfig) {
				c.Sitemap.MaxEntries = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			newConfig := s.StoreSettings()
			tt.mutate(&newConfig)

			err := s.UpdateSettings(newConfig)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.InvalidInput))

			// 기존 설정은 유지된다.
			assert.Equal(t, config.DataSourceCSV, s.StoreSettings().DataSource)
		})
	}
}

// TestService_Refresh는 소스별 즉시 재수집 경로를 검증합니다.
func TestService_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("CSV 소스", func(t *testing.T) {
		t.Parallel()

		s := newTestService(t, newTestAppConfig())

		count, err := s.Refresh(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("사이트맵 소스인데 URL 미설정이면 InvalidInput", func(t *testing.T) {
		t.Parallel()

		appConfig := newTestAppConfig()
		appConfig.Store.DataSource = config.DataSourceSitemap

		s := newTestService(t, appConfig)

		_, err := s.Refresh(context.Background())
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})
}
