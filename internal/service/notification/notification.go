// Package notification 운영자 알림 채널을 제공합니다.
//
// 상품 수집 실패, HTTP 서버 비정상 종료 등 관리자의 주의가 필요한 상황을
// 설정된 채널(현재는 텔레그램)로 전달합니다. 알림 발송 실패가 본래 작업의
// 실패로 이어져서는 안 되므로, 호출자는 반환된 에러를 로그로만 처리합니다.
package notification

import (
	applog "github.com/darkkaiser/affiliate-store-server/pkg/log"

	"github.com/darkkaiser/affiliate-store-server/internal/config"
)

// component 로깅용 컴포넌트 이름
const component = "notification"

// Sender 운영자 알림 발송 인터페이스입니다.
type Sender interface {
	// NotifyDefault 기본 채널로 알림 메시지를 발송합니다.
	NotifyDefault(message string) error

	// NotifyDefaultWithError 기본 채널로 "오류" 성격의 알림 메시지를 발송합니다.
	// 수신 측에서 일반 알림과 구분할 수 있도록 오류 표식이 추가됩니다.
	NotifyDefaultWithError(message string) error
}

// NewSenderFromConfig 설정에 따라 알림 발송기를 생성합니다.
//
// 텔레그램 알림이 비활성화되어 있으면 아무것도 하지 않는 발송기를 반환하고,
// 활성화되어 있으나 초기화에 실패하면(토큰 오류 등) 경고를 남긴 뒤
// 역시 무동작 발송기로 대체합니다. 알림 채널 문제로 서버 기동이 막히면 안 됩니다.
func NewSenderFromConfig(cfg *config.NotifierConfig) Sender {
	if cfg == nil || !cfg.Telegram.Enabled {
		return NewNoopSender()
	}

	sender, err := NewTelegramSender(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Warn("텔레그램 알림 발송기 초기화 실패: 알림 없이 서버를 시작합니다")
		return NewNoopSender()
	}

	return sender
}
