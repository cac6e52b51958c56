package notification

import (
	"strings"
	"unicode/utf8"

	apperrors "github.com/darkkaiser/affiliate-store-server/internal/pkg/errors"
	applog "github.com/darkkaiser/affiliate-store-server/pkg/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	// maxMessageBytes 텔레그램 Bot API의 단일 메시지 최대 길이
	maxMessageBytes = 4096

	// errorMarkPrefix 오류 알림임을 나타내는 접두 표식
	errorMarkPrefix = "*** 오류가 발생하였습니다. ***\n\n"
)

// telegramSender 텔레그램 봇을 통해 운영자에게 알림을 발송합니다.
type telegramSender struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

var _ Sender = (*telegramSender)(nil)

// NewTelegramSender 텔레그램 알림 발송기를 생성합니다.
// 봇 토큰 검증을 위해 텔레그램 서버와 한 차례 통신하므로 네트워크가 필요합니다.
func NewTelegramSender(botToken string, chatID int64) (Sender, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Unavailable, "텔레그램 봇 초기화가 실패하였습니다")
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"bot": bot.Self.UserName,
	}).Info("텔레그램 알림 발송기가 초기화되었습니다")

	return &telegramSender{
		bot:    bot,
		chatID: chatID,
	}, nil
}

func (s *telegramSender) NotifyDefault(message string) error {
	return s.send(message)
}

func (s *telegramSender) NotifyDefaultWithError(message string) error {
	return s.send(errorMarkPrefix + message)
}

func (s *telegramSender) send(message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return apperrors.New(apperrors.InvalidInput, "알림 메시지 본문은 비워둘 수 없습니다")
	}

	// 긴 메시지는 API 제한에 맞춰 잘라서 보냅니다.
	// UTF-8 문자 경계를 지켜 멀티바이트 문자가 깨지지 않도록 합니다.
	msg := tgbotapi.NewMessage(s.chatID, truncateUTF8(message, maxMessageBytes))
	if _, err := s.bot.Send(msg); err != nil {
		return apperrors.Wrap(err, apperrors.Unavailable, "텔레그램 메시지 전송이 실패하였습니다")
	}
	return nil
}

// truncateUTF8 문자열을 최대 바이트 수 이하로 자릅니다. 문자 중간에서 자르지 않습니다.
func truncateUTF8(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}

	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
