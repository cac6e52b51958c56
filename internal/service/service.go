// Package service 서버를 구성하는 개별 서비스의 공통 계약을 정의합니다.
package service

import (
	"context"
	"sync"
)

// Service 서버의 생명주기에 참여하는 서비스 인터페이스입니다.
//
// 각 서비스는 Start 호출 시 자신의 작업을 고루틴으로 시작하고 즉시 반환합니다.
// serviceStopCtx가 취소되면 진행 중인 작업을 정리한 뒤 serviceStopWG.Done()을
// 호출하여 종료 완료를 알립니다.
type Service interface {
	Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error
}
