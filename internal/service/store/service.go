// Package store 상품 수집 파이프라인(CSV, 사이트맵, 원격 API)을 묶어
// 조회, 갱신, 캐시 관리 기능을 제공하는 스토어 서비스입니다.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/darkkaiser/affiliate-store-server/internal/config"
	apperrors "github.com/darkkaiser/affiliate-store-server/internal/pkg/errors"
	"github.com/darkkaiser/affiliate-store-server/internal/service/notification"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/fetch"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/product"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/source"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/source/apisource"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/source/csvsource"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/source/sitemap"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/storage"
	"github.com/darkkaiser/affiliate-store-server/pkg/cronx"
	applog "github.com/darkkaiser/affiliate-store-server/pkg/log"
	"github.com/robfig/cron/v3"
)

// component 로깅용 컴포넌트 이름
const component = "store.service"

// refreshTimeout 스케줄 갱신 한 번에 허용하는 최대 시간
const refreshTimeout = 2 * time.Minute

// Service 상품 스토어 서비스입니다.
//
// 세 가지 데이터 소스 파이프라인을 보유하며, 호출 시점의 설정에 따라
// 활성 파이프라인을 선택합니다. 스토어 설정은 관리자 API를 통해 런타임에
// 교체될 수 있고, 교체된 설정은 다음 조회부터 즉시 반영됩니다.
type Service struct {
	settingsMu  sync.RWMutex
	storeConfig config.StoreConfig

	csvPipeline     *csvsource.Pipeline
	apiPipeline     *apisource.Pipeline
	sitemapPipeline *sitemap.Pipeline

	notificationSender notification.Sender

	refreshTimeSpec string
	cron            *cron.Cron

	running   bool
	runningMu sync.Mutex
}

// NewService 스토어 서비스를 생성합니다.
//
// HTTP 재시도 정책이 적용된 요청 체인과 파일 기반 영속 캐시를 구성합니다.
// 영속 캐시 디렉토리를 만들 수 없으면 에러를 반환합니다.
func NewService(appConfig *config.AppConfig, notificationSender notification.Sender) (*Service, error) {
	if appConfig == nil {
		panic("AppConfig는 필수입니다")
	}
	if notificationSender == nil {
		panic("NotificationSender는 필수입니다")
	}

	retryDelay, err := time.ParseDuration(appConfig.HTTPRetry.RetryDelay)
	if err != nil {
		// 설정 로드 시점에 이미 검증되므로 여기에 도달하면 프로그래밍 오류입니다.
		return nil, apperrors.Wrap(err, apperrors.Internal, "HTTP 재시도 대기 시간 설정이 유효하지 않습니다")
	}

	var fetcher fetch.Fetcher = fetch.NewHTTPFetcher()
	fetcher = fetch.NewUserAgentFetcher(fetcher, nil)
	fetcher = fetch.NewRetryFetcher(fetcher, appConfig.HTTPRetry.MaxRetries, retryDelay)

	cacheStore, err := storage.NewFileCacheStore(appConfig.Store.DataDir)
	if err != nil {
		return nil, err
	}

	return NewServiceWithDeps(appConfig, notificationSender, fetcher, cacheStore), nil
}

// NewServiceWithDeps 외부에서 구성한 요청 체인과 캐시 저장소로 스토어 서비스를 생성합니다.
func NewServiceWithDeps(appConfig *config.AppConfig, notificationSender notification.Sender, fetcher fetch.Fetcher, cacheStore storage.CacheStore) *Service {
	return &Service{
		storeConfig: appConfig.Store,

		csvPipeline:     csvsource.NewPipeline(fetcher),
		apiPipeline:     apisource.NewPipeline(fetcher),
		sitemapPipeline: sitemap.NewPipeline(fetcher, cacheStore, nil),

		notificationSender: notificationSender,

		refreshTimeSpec: appConfig.Store.Sitemap.RefreshTimeSpec,
	}
}

// Start 스토어 서비스를 시작합니다.
//
// 사이트맵 갱신 스케줄(refresh_time_spec)이 설정되어 있으면 Cron 엔진을
// 기동하여 주기적으로 사이트맵을 재수집합니다. 스케줄이 없으면 별도의
// 백그라운드 작업 없이 종료 신호만 대기합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("서비스 시작 진입: 스토어 서비스 초기화 프로세스를 시작합니다")

	if s.running {
		serviceStopWG.Done()
		applog.WithComponent(component).Warn("스토어 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	if s.refreshTimeSpec != "" {
		s.cron = cron.New(
			cron.WithParser(cronx.StandardParser()),
			cron.WithLogger(cron.VerbosePrintfLogger(applog.StandardLogger())),
			cron.WithChain(
				cron.Recover(cron.VerbosePrintfLogger(applog.StandardLogger())),
				cron.SkipIfStillRunning(cron.VerbosePrintfLogger(applog.StandardLogger())),
			),
		)

		if _, err := s.cron.AddFunc(s.refreshTimeSpec, s.runScheduledRefresh); err != nil {
			serviceStopWG.Done()
			return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("사이트맵 갱신 스케줄 등록이 실패하였습니다: '%s'", s.refreshTimeSpec))
		}

		s.cron.Start()

		applog.WithComponentAndFields(component, applog.Fields{
			"spec": s.refreshTimeSpec,
		}).Info("사이트맵 주기 갱신 스케줄이 등록되었습니다")
	}

	s.running = true

	go func() {
		defer serviceStopWG.Done()

		<-serviceStopCtx.Done()

		s.stop()
	}()

	applog.WithComponent(component).Info("서비스 시작 완료: 스토어 서비스가 정상적으로 초기화되었습니다")

	return nil
}

// stop Cron 엔진을 중지하고 실행 중인 갱신 작업의 완료를 대기합니다.
func (s *Service) stop() {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return
	}

	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}

	s.running = false

	applog.WithComponent(component).Info("스토어 서비스가 중지되었습니다")
}

// runScheduledRefresh 스케줄에 의해 호출되는 사이트맵 갱신 작업입니다.
// 실패 시 로그와 함께 운영자 알림을 발송하며, 다음 스케줄에서 다시 시도합니다.
func (s *Service) runScheduledRefresh() {
	cfg := s.StoreSettings()
	if cfg.DataSource != config.DataSourceSitemap || cfg.Sitemap.URL == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	count, err := s.sitemapPipeline.Refresh(ctx, s.sitemapConfig(cfg))
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"url":   cfg.Sitemap.URL,
			"error": err,
		}).Error("사이트맵 주기 갱신이 실패하였습니다")

		if notifyErr := s.notificationSender.NotifyDefaultWithError(fmt.Sprintf("사이트맵 주기 갱신이 실패하였습니다.\r\n\r\n%s", err)); notifyErr != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"error": notifyErr,
			}).Warn("갱신 실패 알림 발송이 실패하였습니다")
		}
		return
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"products": count,
	}).Info("사이트맵 주기 갱신이 완료되었습니다")
}

// StoreSettings 현재 스토어 설정의 스냅샷을 반환합니다.
func (s *Service) StoreSettings() config.StoreConfig {
	s.settingsMu.RLock()
	defer s.settingsMu.RUnlock()

	return s.storeConfig
}

// UpdateSettings 스토어 설정을 교체합니다.
//
// 교체 전에 설정의 정합성을 검증하며, 검증에 실패하면 기존 설정을 유지합니다.
// 교체가 완료되면 모든 파이프라인의 캐시를 무효화하여 다음 조회부터
// 새 설정이 반영되도록 합니다.
func (s *Service) UpdateSettings(newConfig config.StoreConfig) error {
	if err := newConfig.Validate(); err != nil {
		return err
	}

	s.settingsMu.Lock()
	s.storeConfig = newConfig
	s.settingsMu.Unlock()

	applog.WithComponentAndFields(component, applog.Fields{
		"data_source": newConfig.DataSource,
	}).Info("스토어 설정이 교체되었습니다")

	return s.ClearCache()
}

// FetchProducts 조회 조건에 맞는 상품 목록을 페이징하여 반환합니다.
//
// 활성 파이프라인에서 전체 상품 집합을 가져온 뒤 필터링과 페이징을 적용합니다.
// 원격 API 소스의 적재 실패는 빈 집합으로 대체됩니다. (조회 경로는 항상 응답해야 함)
func (s *Service) FetchProducts(ctx context.Context, q Query) (product.PagedResult, error) {
	cfg := s.StoreSettings()

	products, err := s.loadProducts(ctx, cfg)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"data_source": cfg.DataSource,
			"error":       err,
		}).Error("상품 적재 실패: 빈 상품 집합으로 응답합니다")
		products = nil
	}

	return paginate(filterProducts(products, q), q), nil
}

// GetProductByID 상품 하나를 조회합니다.
//
// 사이트맵 소스에서는 캐시에 없는 상품도 slug로부터 재구성될 수 있습니다.
// 그 외 소스에서는 적재된 집합에서 ID로만 찾습니다.
func (s *Service) GetProductByID(ctx context.Context, id, slug string) (product.Product, error) {
	if id == "" {
		return product.Product{}, apperrors.New(apperrors.InvalidInput, "상품 ID는 필수입니다")
	}

	cfg := s.StoreSettings()

	if cfg.DataSource == config.DataSourceSitemap {
		return s.sitemapPipeline.ProductByID(ctx, s.sitemapConfig(cfg), id, slug)
	}

	products, err := s.loadProducts(ctx, cfg)
	if err != nil {
		return product.Product{}, err
	}

	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}

	return product.Product{}, apperrors.Newf(apperrors.NotFound, "상품(%s)을 찾을 수 없습니다", id)
}

// Refresh 활성 데이터 소스를 즉시 재수집합니다.
//
// 조회 경로와 달리 수집 실패가 에러로 그대로 반환되므로,
// 관리자가 실패 원인을 확인할 수 있습니다. 반환값은 수집된 상품 수입니다.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	cfg := s.StoreSettings()

	switch cfg.DataSource {
	case config.DataSourceSitemap:
		return s.sitemapPipeline.Refresh(ctx, s.sitemapConfig(cfg))

	case config.DataSourceCSV:
		s.csvPipeline.ClearCache()
		products, err := s.csvPipeline.Load(ctx, s.csvInput(cfg))
		if err != nil {
			return 0, err
		}
		return len(products), nil

	case config.DataSourceAPI:
		s.apiPipeline.ClearCache()
		products, err := s.apiPipeline.Load(ctx, s.apiInput(cfg))
		if err != nil {
			return 0, err
		}
		return len(products), nil
	}

	return 0, apperrors.Newf(apperrors.InvalidInput, "알 수 없는 데이터 소스입니다: '%s'", cfg.DataSource)
}

// IngestSitemap 업로드된 사이트맵 XML 본문을 수집하여 캐시를 교체합니다.
func (s *Service) IngestSitemap(name, xmlText string) (int, error) {
	cfg := s.StoreSettings()
	return s.sitemapPipeline.RefreshFromUpload(name, xmlText, s.sitemapConfig(cfg))
}

// ClearCache 모든 파이프라인의 캐시를 무효화합니다.
func (s *Service) ClearCache() error {
	s.csvPipeline.ClearCache()
	s.apiPipeline.ClearCache()
	return s.sitemapPipeline.ClearCache()
}

// loadProducts 활성 파이프라인에서 전체 상품 집합을 가져옵니다.
func (s *Service) loadProducts(ctx context.Context, cfg config.StoreConfig) ([]product.Product, error) {
	switch cfg.DataSource {
	case config.DataSourceCSV:
		return s.csvPipeline.Load(ctx, s.csvInput(cfg))
	case config.DataSourceAPI:
		return s.apiPipeline.Load(ctx, s.apiInput(cfg))
	case config.DataSourceSitemap:
		return s.sitemapPipeline.Products(ctx, s.sitemapConfig(cfg))
	}
	return nil, apperrors.Newf(apperrors.InvalidInput, "알 수 없는 데이터 소스입니다: '%s'", cfg.DataSource)
}

// sourceSettings 정규화 단계에 전달되는 설정 스냅샷을 만듭니다.
func (s *Service) sourceSettings(cfg config.StoreConfig) source.Settings {
	return source.Settings{
		CloakingToken:   cfg.Cloaking.Token,
		CloakingBaseURL: cfg.Cloaking.BaseURL,

		DefaultCurrency: cfg.DefaultCurrency,
		DefaultCategory: cfg.DefaultCategory,

		PrefixWords:   cfg.Prefix.Words,
		PrefixEnabled: cfg.Prefix.Enabled,
	}
}

func (s *Service) csvInput(cfg config.StoreConfig) csvsource.Input {
	categories := make([]csvsource.CategoryCSV, 0, len(cfg.CSV.Categories))
	for _, cat := range cfg.CSV.Categories {
		categories = append(categories, csvsource.CategoryCSV{
			Category: cat.Category,
			Text:     cat.Text,
		})
	}

	return csvsource.Input{
		Categories:   categories,
		DefaultText:  cfg.CSV.DefaultText,
		FallbackFile: cfg.CSV.FallbackFile,

		Settings: s.sourceSettings(cfg),
	}
}

func (s *Service) apiInput(cfg config.StoreConfig) apisource.Input {
	return apisource.Input{
		Endpoint: cfg.API.Endpoint,
		Token:    cfg.API.Token,

		Settings: s.sourceSettings(cfg),
	}
}

func (s *Service) sitemapConfig(cfg config.StoreConfig) sitemap.Config {
	return sitemap.Config{
		URL:        cfg.Sitemap.URL,
		MaxEntries: cfg.Sitemap.MaxEntries,

		Settings: s.sourceSettings(cfg),
	}
}
