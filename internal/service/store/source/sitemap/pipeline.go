package sitemap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/darkkaiser/affiliate-store-server/internal/pkg/errors"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/fetch"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/product"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/source"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store/storage"
	applog "github.com/darkkaiser/affiliate-store-server/pkg/log"
)

// component 로깅용 컴포넌트 이름
const component = "store.sitemap"

const (
	// cacheKey 영속 캐시 파일의 키. 소스 구분은 키가 아닌 fingerprint로 합니다.
	cacheKey = "sitemap-products"

	// defaultMaxEntries 설정에 상한이 없을 때 적용하는 기본 엔트리 상한
	defaultMaxEntries = 1000

	// placeholderCount 캐시 미스 시 즉시 응답용으로 생성하는 합성 상품 수
	placeholderCount = 12

	// backgroundRefreshTimeout 백그라운드 갱신 한 번에 허용하는 최대 시간
	backgroundRefreshTimeout = 2 * time.Minute

	// uploadFingerprintPrefix 업로드로 수집된 캐시 엔트리의 fingerprint 접두어.
	// 이 접두어가 붙은 엔트리는 캐시 초기화 또는 URL 재수집 전까지 유효합니다.
	uploadFingerprintPrefix = "upload:"
)

// Config 사이트맵 파이프라인의 호출 시점 설정입니다.
// 설정은 호출마다 새로 읽히므로 파이프라인은 설정을 보관하지 않습니다.
type Config struct {
	// URL 수집 대상 사이트맵 URL
	URL string

	// MaxEntries 정규화할 loc 엔트리의 상한 (0 이하이면 기본값 적용)
	MaxEntries int

	Settings source.Settings
}

// Pipeline 사이트맵 상품 수집 파이프라인입니다.
//
// 수집 결과는 영속 캐시(storage.CacheStore)에 fingerprint와 함께 저장되며,
// fingerprint가 현재 소스와 일치하는 동안에는 재수집 없이 캐시를 제공합니다.
// 캐시가 없거나 fingerprint가 어긋나면 합성 상품으로 즉시 응답하고
// 백그라운드에서 한 번의 갱신을 시작합니다.
type Pipeline struct {
	fetcher fetch.Fetcher
	store   storage.CacheStore
	proxies []Proxy

	// refreshing 백그라운드 갱신이 동시에 여러 개 뜨는 것을 막는 플래그
	refreshing atomic.Bool

	// mu는 uploadFingerprint를 보호합니다.
	// 업로드로 수집한 이후에는 설정된 URL 대신 업로드 fingerprint가 기준이 됩니다.
	mu                sync.RWMutex
	uploadFingerprint string
}

// NewPipeline 새로운 사이트맵 파이프라인을 생성합니다.
// proxies가 비어있으면 기본 프록시 목록을 사용합니다.
func NewPipeline(fetcher fetch.Fetcher, store storage.CacheStore, proxies []Proxy) *Pipeline {
	if len(proxies) == 0 {
		proxies = DefaultProxies()
	}

	return &Pipeline{
		fetcher: fetcher,
		store:   store,
		proxies: proxies,
	}
}

// Products 현재 설정 기준의 전체 상품 집합을 반환합니다.
//
// 캐시 엔트리의 fingerprint가 현재 소스와 일치하면 캐시를 그대로 반환합니다.
// 업로드로 수집된 엔트리(fingerprint가 "upload:"로 시작)는 프로세스 재시작
// 이후에도 캐시 초기화 또는 URL 재수집 전까지 계속 유효한 것으로 취급합니다.
// 일치하지 않으면(최초 기동, 사이트맵 URL 변경 등) 합성 상품 목록을 즉시
// 반환하면서 백그라운드 갱신을 시작합니다. 갱신 실패는 로그로만 남으며,
// 다음 Products 호출이 다시 갱신을 시도합니다.
func (p *Pipeline) Products(ctx context.Context, cfg Config) ([]product.Product, error) {
	fingerprint := p.expectedFingerprint(cfg)

	entry, err := p.store.Load(cacheKey)
	if err != nil && !errors.Is(err, storage.ErrEntryNotFound) {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Warn("사이트맵 캐시 읽기 실패: 캐시가 없는 것으로 간주합니다")
	}

	if entry.IsFresh(fingerprint) || isUploadEntry(entry) {
		return entry.Products, nil
	}

	if cfg.URL != "" {
		p.refreshInBackground(cfg)
	}

	return placeholderProducts(placeholderCount, cfg.Settings), nil
}

// Refresh 사이트맵을 즉시 재수집하여 캐시를 교체합니다.
//
// Products의 백그라운드 갱신과 달리 에러를 호출자에게 그대로 전달하므로,
// 관리자가 수집 실패의 원인을 응답으로 확인할 수 있습니다.
// 성공 시 업로드 fingerprint는 해제되고 설정된 URL이 기준이 됩니다.
func (p *Pipeline) Refresh(ctx context.Context, cfg Config) (int, error) {
	if cfg.URL == "" {
		return 0, apperrors.New(apperrors.InvalidInput, "사이트맵 URL이 설정되어 있지 않습니다")
	}

	xmlText, err := p.fetchXML(ctx, cfg.URL)
	if err != nil {
		return 0, err
	}

	products, err := p.normalizeAll(xmlText, cfg)
	if err != nil {
		return 0, err
	}

	if err := p.store.Save(cacheKey, &storage.Entry{
		Fingerprint: cfg.URL,
		CreatedAt:   time.Now(),
		Products:    products,
	}); err != nil {
		return 0, err
	}

	p.mu.Lock()
	p.uploadFingerprint = ""
	p.mu.Unlock()

	applog.WithComponentAndFields(component, applog.Fields{
		"url":      cfg.URL,
		"products": len(products),
	}).Info("사이트맵 수집이 완료되었습니다")

	return len(products), nil
}

// RefreshFromUpload 업로드된 사이트맵 XML 본문으로 캐시를 교체합니다.
//
// name은 업로드 파일명 등 업로드를 식별하는 값이며 fingerprint로 저장됩니다.
// 이후의 Products 호출은 캐시 초기화 또는 URL 재수집 전까지 업로드된 집합을 제공합니다.
func (p *Pipeline) RefreshFromUpload(name, xmlText string, cfg Config) (int, error) {
	if name == "" {
		return 0, apperrors.New(apperrors.InvalidInput, "업로드 식별자가 비어있습니다")
	}

	fingerprint := uploadFingerprintPrefix + name

	products, err := p.normalizeAll(xmlText, cfg)
	if err != nil {
		return 0, err
	}

	if err := p.store.Save(cacheKey, &storage.Entry{
		Fingerprint: fingerprint,
		CreatedAt:   time.Now(),
		Products:    products,
	}); err != nil {
		return 0, err
	}

	p.mu.Lock()
	p.uploadFingerprint = fingerprint
	p.mu.Unlock()

	applog.WithComponentAndFields(component, applog.Fields{
		"upload":   name,
		"products": len(products),
	}).Info("업로드된 사이트맵 수집이 완료되었습니다")

	return len(products), nil
}

// ProductByID 상품 하나를 조회합니다.
//
// 캐시에서 먼저 찾고, 없으면 slug(상품 URL 경로)로부터 즉석에서 재구성합니다.
// 재구성된 상품은 캐시에 저장하지 않습니다. slug마저 없으면 NotFound를 반환합니다.
func (p *Pipeline) ProductByID(ctx context.Context, cfg Config, id, slug string) (product.Product, error) {
	entry, err := p.store.Load(cacheKey)
	if err == nil {
		for _, prod := range entry.Products {
			if prod.ID == id {
				return prod, nil
			}
		}
	} else if !errors.Is(err, storage.ErrEntryNotFound) {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Warn("사이트맵 캐시 읽기 실패: 캐시가 없는 것으로 간주합니다")
	}

	if slug != "" {
		return buildProductFromSlug(id, slug, cfg.Settings), nil
	}

	return product.Product{}, apperrors.Newf(apperrors.NotFound, "상품(%s)을 찾을 수 없습니다", id)
}

// ClearCache 영속 캐시와 업로드 상태를 초기화합니다.
func (p *Pipeline) ClearCache() error {
	p.mu.Lock()
	p.uploadFingerprint = ""
	p.mu.Unlock()

	return p.store.Clear(cacheKey)
}

// isUploadEntry 캐시 엔트리가 업로드로 수집된 것인지 검사합니다.
// 업로드 엔트리는 재시작으로 메모리의 업로드 상태가 사라진 뒤에도 유효합니다.
func isUploadEntry(entry *storage.Entry) bool {
	return entry != nil && strings.HasPrefix(entry.Fingerprint, uploadFingerprintPrefix)
}

// expectedFingerprint 현재 시점에 캐시가 일치해야 하는 fingerprint를 반환합니다.
func (p *Pipeline) expectedFingerprint(cfg Config) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.uploadFingerprint != "" {
		return p.uploadFingerprint
	}
	return cfg.URL
}

// refreshInBackground 백그라운드 갱신을 시작합니다.
// 이미 갱신이 진행 중이면 아무 일도 하지 않습니다.
func (p *Pipeline) refreshInBackground(cfg Config) {
	if !p.refreshing.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer p.refreshing.Store(false)

		defer func() {
			if r := recover(); r != nil {
				applog.WithComponentAndFields(component, applog.Fields{
					"panic": r,
				}).Error("사이트맵 백그라운드 갱신 중 panic이 발생하였습니다")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), backgroundRefreshTimeout)
		defer cancel()

		if _, err := p.Refresh(ctx, cfg); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"url":   cfg.URL,
				"error": err,
			}).Error("사이트맵 백그라운드 갱신이 실패하였습니다")
		}
	}()
}

// fetchXML 프록시들을 순서대로 시도하여 사용 가능한 사이트맵 XML을 가져옵니다.
//
//   - 네트워크/상태코드 실패는 다음 프록시로 넘어갑니다.
//   - gzip 압축 본문은 즉시 실패입니다. (다른 프록시도 같은 본문을 반환하므로)
//   - 본문은 받았지만 어떤 것도 사이트맵이 아니면 내용 문제로,
//     모든 프록시가 응답조차 주지 못하면 가용성 문제로 구분하여 에러를 만듭니다.
func (p *Pipeline) fetchXML(ctx context.Context, sitemapURL string) (string, error) {
	sawContent := false

	for _, proxy := range p.proxies {
		requestURL := proxy.BuildURL(sitemapURL)

		body, err := fetch.GetBody(ctx, p.fetcher, requestURL)
		if err != nil {
			if ctx.Err() != nil {
				return "", apperrors.Wrap(ctx.Err(), apperrors.Timeout, "사이트맵 수집이 중단되었습니다")
			}

			applog.WithComponentAndFields(component, applog.Fields{
				"proxy": proxy.Name,
				"error": err,
			}).Warn("프록시 요청 실패: 다음 프록시를 시도합니다")
			continue
		}

		xmlText := proxy.ExtractBody(body)

		if looksGzipped(xmlText) {
			return "", ErrCompressedSitemap
		}

		if looksLikeSitemap(xmlText) {
			applog.WithComponentAndFields(component, applog.Fields{
				"proxy": proxy.Name,
				"bytes": len(xmlText),
			}).Debug("프록시로부터 사이트맵 XML을 수신하였습니다")
			return xmlText, nil
		}

		sawContent = true
		applog.WithComponentAndFields(component, applog.Fields{
			"proxy": proxy.Name,
		}).Warn("사이트맵이 아닌 응답 수신: 다음 프록시를 시도합니다")
	}

	if sawContent {
		return "", apperrors.New(apperrors.ParsingFailed, fmt.Sprintf("사이트맵(%s)에서 사용 가능한 XML을 찾지 못했습니다", sitemapURL))
	}
	return "", apperrors.New(apperrors.Unavailable, fmt.Sprintf("모든 프록시에서 사이트맵(%s) 요청이 실패하였습니다", sitemapURL))
}

// normalizeAll 사이트맵 XML에서 loc 엔트리를 추출하고 상한을 적용한 뒤 정규화합니다.
func (p *Pipeline) normalizeAll(xmlText string, cfg Config) ([]product.Product, error) {
	locs, err := ParseLocs(xmlText)
	if err != nil {
		return nil, err
	}

	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	if len(locs) > maxEntries {
		applog.WithComponentAndFields(component, applog.Fields{
			"entries": len(locs),
			"limit":   maxEntries,
		}).Warn("사이트맵 엔트리가 상한을 초과하여 앞부분만 사용합니다")
		locs = locs[:maxEntries]
	}

	products := make([]product.Product, 0, len(locs))
	for i, loc := range locs {
		products = append(products, normalizeLoc(loc, i, cfg.Settings))
	}
	return products, nil
}
