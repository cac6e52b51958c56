package config

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/affiliate-store-server/internal/pkg/errors"
	"github.com/darkkaiser/affiliate-store-server/pkg/cronx"
)

// 스토어가 상품 데이터를 읽어오는 데이터 소스 종류
const (
	DataSourceAPI     = "api"
	DataSourceCSV     = "csv"
	DataSourceSitemap = "sitemap"
)

// AppConfig 애플리케이션의 모든 설정을 관장하는 최상위 루트 구조체
type AppConfig struct {
	Debug     bool            `json:"debug"`
	HTTPRetry HTTPRetryConfig `json:"http_retry"`
	Store     StoreConfig     `json:"store"`
	API       APIConfig       `json:"api"`
	Notifiers NotifierConfig  `json:"notifiers"`
}

// validate 설정 파일 로드 직후, 각 설정 항목의 정합성과 필수 값의 유효성을 검증합니다.
func (c *AppConfig) validate() error {
	if err := validateStruct(c, "애플리케이션 설정"); err != nil {
		return err
	}
	if err := c.HTTPRetry.validate(); err != nil {
		return err
	}
	if err := c.Store.validate(); err != nil {
		return err
	}
	if err := c.API.validate(); err != nil {
		return err
	}
	return c.Notifiers.validate()
}

// VerifyRecommendations 서비스 운영의 안정성과 보안을 위해 권장되는 설정 준수 여부를 진단합니다.
// 강제적인 에러를 발생시키지는 않으나, 잠재적 위험 요소에 대한 경고 메시지를 반환합니다.
func (c *AppConfig) VerifyRecommendations() []string {
	var warnings []string

	if c.API.ListenPort < 1024 {
		warnings = append(warnings, fmt.Sprintf("시스템 예약 포트(1-1023)를 사용하도록 설정되었습니다(port: %d). 이 경우 서버 구동 시 관리자 권한이 필요할 수 있습니다", c.API.ListenPort))
	}
	if strings.TrimSpace(c.API.AppKey) == "" {
		warnings = append(warnings, "관리자 API 키(api.app_key)가 설정되지 않아 스토어 관리 엔드포인트가 비활성화됩니다")
	}
	if c.Store.DataSource == DataSourceSitemap && c.Store.Cloaking.Token == "" && c.Store.Cloaking.BaseURL == "" {
		warnings = append(warnings, "클로킹 토큰(store.cloaking.token)이 비어있어 상품 추적 링크가 원본 링크 그대로 노출됩니다")
	}

	return warnings
}

// HTTPRetryConfig HTTP 요청 실패 시 재시도 횟수와 대기 시간을 정의하는 설정 구조체
type HTTPRetryConfig struct {
	MaxRetries int    `json:"max_retries"`
	RetryDelay string `json:"retry_delay"`
}

func (c *HTTPRetryConfig) validate() error {
	if c.MaxRetries < 0 {
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("HTTP 최대 재시도 횟수(max_retries)는 0 이상이어야 합니다: %d", c.MaxRetries))
	}
	if _, err := time.ParseDuration(c.RetryDelay); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("HTTP 재시도 대기 시간(retry_delay) 설정이 올바르지 않습니다: '%s' (예: 1s, 500ms)", c.RetryDelay))
	}
	return nil
}

// StoreConfig 스토어 상품 수집 및 가공 동작 전반을 정의하는 설정 구조체
//
// 이 설정은 서버 기동 이후에도 관리자 API를 통해 변경될 수 있으며,
// 변경된 값은 다음 상품 조회 호출부터 즉시 반영됩니다.
type StoreConfig struct {
	// DataSource 활성화할 상품 데이터 소스 (api, csv, sitemap)
	DataSource string `json:"data_source" validate:"required,oneof=api csv sitemap"`

	Cloaking CloakingConfig  `json:"cloaking"`
	Sitemap  SitemapConfig   `json:"sitemap"`
	CSV      CSVConfig       `json:"csv"`
	API      APISourceConfig `json:"api_source"`
	Prefix   PrefixConfig    `json:"prefix"`

	// DefaultCurrency 상품 가격에 부여되는 통화 코드 (예: THB)
	DefaultCurrency string `json:"default_currency"`

	// DefaultCategory 카테고리 정보가 없는 상품에 부여되는 카테고리명
	DefaultCategory string `json:"default_category"`

	// DataDir 사이트맵 영속 캐시 파일이 저장되는 디렉토리
	DataDir string `json:"data_dir"`
}

// Validate 관리자 API를 통해 런타임에 교체되는 스토어 설정을 단독으로 검증합니다.
func (c *StoreConfig) Validate() error {
	return c.validate()
}

func (c *StoreConfig) validate() error {
	switch c.DataSource {
	case DataSourceAPI, DataSourceCSV, DataSourceSitemap:
	default:
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("데이터 소스(data_source)는 api, csv, sitemap 중 하나여야 합니다: '%s'", c.DataSource))
	}

	if err := c.Sitemap.validate(); err != nil {
		return err
	}

	if c.DataSource == DataSourceAPI && strings.TrimSpace(c.API.Endpoint) == "" {
		return apperrors.New(apperrors.InvalidInput, "데이터 소스가 api일 때는 상품 API 엔드포인트(api_source.endpoint)가 필수입니다")
	}

	return nil
}

// CloakingConfig 어필리에이트 추적 링크(클로킹) 생성에 사용되는 설정 구조체
type CloakingConfig struct {
	// Token 어필리에이트 토큰. 기본 리다이렉트 호스트와 조합되어 추적 링크를 만듭니다.
	Token string `json:"token"`

	// BaseURL 토큰이 포함된 커스텀 리다이렉트 URL. 설정되면 Token보다 우선합니다.
	BaseURL string `json:"base_url"`
}

// SitemapConfig 사이트맵 수집 파이프라인의 동작을 정의하는 설정 구조체
type SitemapConfig struct {
	// URL 수집 대상 사이트맵 XML 주소
	URL string `json:"url"`

	// MaxEntries 한 번의 수집에서 처리할 최대 상품 엔트리 수
	MaxEntries int `json:"max_entries"`

	// RefreshTimeSpec 주기적 백그라운드 갱신 스케줄 (Cron 6필드 형식, 빈 값이면 비활성화)
	RefreshTimeSpec string `json:"refresh_time_spec"`
}

func (c *SitemapConfig) validate() error {
	if c.MaxEntries <= 0 {
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("사이트맵 최대 엔트리 수(max_entries)는 1 이상이어야 합니다: %d", c.MaxEntries))
	}
	if c.RefreshTimeSpec != "" {
		if err := cronx.Validate(c.RefreshTimeSpec); err != nil {
			return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("사이트맵 갱신 스케줄(refresh_time_spec) 설정이 유효하지 않습니다: '%s'", c.RefreshTimeSpec))
		}
	}
	return nil
}

// CSVConfig CSV 수집 파이프라인의 입력 소스를 정의하는 설정 구조체
type CSVConfig struct {
	// Categories 카테고리별 CSV 매핑 (설정된 순서대로 병합됨)
	Categories []CategoryCSVConfig `json:"categories" validate:"omitempty,dive"`

	// DefaultText 카테고리 지정 없이 병합되는 기본 CSV 본문
	DefaultText string `json:"default_text"`

	// FallbackFile 병합 결과가 비어있을 때 읽어올 CSV 파일 경로 또는 URL
	FallbackFile string `json:"fallback_file"`
}

// CategoryCSVConfig 단일 카테고리에 매핑되는 CSV 본문
type CategoryCSVConfig struct {
	Category string `json:"category" validate:"required"`
	Text     string `json:"text"`
}

// APISourceConfig 원격 상품 API 데이터 소스의 접속 정보를 정의하는 설정 구조체
type APISourceConfig struct {
	Endpoint string `json:"endpoint"`
	Token    string `json:"token"`
}

// PrefixConfig 상품명 앞에 붙는 마케팅 접두어 생성 설정 구조체
type PrefixConfig struct {
	Enabled bool     `json:"enabled"`
	Words   []string `json:"words"`
}

// APIConfig 상품 조회 REST API 서버의 설정 구조체
type APIConfig struct {
	ListenPort int `json:"listen_port" validate:"min=1,max=65535"`

	TLSServer   bool   `json:"tls_server"`
	TLSCertFile string `json:"tls_cert_file"`
	TLSKeyFile  string `json:"tls_key_file"`

	CORS CORSConfig `json:"cors"`

	// AppKey 스토어 관리(갱신/업로드/설정 변경) 엔드포인트 인증 키
	AppKey string `json:"app_key"`
}

func (c *APIConfig) validate() error {
	if c.ListenPort < 1 || c.ListenPort > 65535 {
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("웹 서버 포트(listen_port)는 1에서 65535 사이의 값이어야 합니다: %d", c.ListenPort))
	}

	if c.TLSServer {
		if strings.TrimSpace(c.TLSCertFile) == "" {
			return apperrors.New(apperrors.InvalidInput, "TLS 서버 활성화 시 인증서 파일 경로(tls_cert_file)는 필수입니다")
		}
		if strings.TrimSpace(c.TLSKeyFile) == "" {
			return apperrors.New(apperrors.InvalidInput, "TLS 서버 활성화 시 키 파일 경로(tls_key_file)는 필수입니다")
		}
	}

	return c.CORS.validate()
}

// CORSConfig 웹 브라우저의 교차 출처 리소스 공유(CORS) 정책을 설정하는 구조체
type CORSConfig struct {
	AllowOrigins []string `json:"allow_origins"`
}

func (c *CORSConfig) validate() error {
	for _, origin := range c.AllowOrigins {
		if origin == "*" {
			if len(c.AllowOrigins) > 1 {
				return apperrors.New(apperrors.InvalidInput, "와일드카드(*)는 다른 도메인과 함께 사용할 수 없습니다. 모든 도메인을 허용하려면 와일드카드만 설정하세요")
			}
			continue
		}

		if err := validateCORSOrigin(origin); err != nil {
			return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("CORS Origin 형식이 올바르지 않습니다: '%s' (형식: Scheme://Host[:Port], 예: https://example.com)", origin))
		}
	}
	return nil
}

// NotifierConfig 운영자 알림 채널을 정의하는 설정 구조체
type NotifierConfig struct {
	Telegram TelegramConfig `json:"telegram"`
}

func (c *NotifierConfig) validate() error {
	return c.Telegram.validate()
}

// TelegramConfig 텔레그램 봇 토큰 및 채팅 ID 정보를 담는 설정 구조체
type TelegramConfig struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"bot_token"`
	ChatID   int64  `json:"chat_id"`
}

func (c *TelegramConfig) validate() error {
	if !c.Enabled {
		return nil
	}
	if !telegramBotTokenRegex.MatchString(c.BotToken) {
		return apperrors.New(apperrors.InvalidInput, "텔레그램 봇 토큰(bot_token) 형식이 올바르지 않습니다 (예: 123456:ABC-DEF...)")
	}
	if c.ChatID == 0 {
		return apperrors.New(apperrors.InvalidInput, "텔레그램 채팅 ID(chat_id)가 설정되지 않았습니다")
	}
	return nil
}
