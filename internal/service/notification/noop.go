package notification

// noopSender 알림 채널이 설정되지 않았을 때 사용하는 무동작 발송기입니다.
type noopSender struct{}

var _ Sender = (*noopSender)(nil)

// NewNoopSender 아무 동작도 하지 않는 알림 발송기를 생성합니다.
func NewNoopSender() Sender {
	return &noopSender{}
}

func (s *noopSender) NotifyDefault(string) error          { return nil }
func (s *noopSender) NotifyDefaultWithError(string) error { return nil }
