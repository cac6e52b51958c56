package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/darkkaiser/affiliate-store-server/internal/config"
	"github.com/darkkaiser/affiliate-store-server/internal/pkg/version"
	"github.com/darkkaiser/affiliate-store-server/internal/service"
	"github.com/darkkaiser/affiliate-store-server/internal/service/api"
	"github.com/darkkaiser/affiliate-store-server/internal/service/notification"
	"github.com/darkkaiser/affiliate-store-server/internal/service/store"
	applog "github.com/darkkaiser/affiliate-store-server/pkg/log"
	log "github.com/sirupsen/logrus"
)

const (
	banner = `
     _      __  __  ____   _                           ____
    / \    / _|/ _|/ ___| | |_   ___   _ __  ___      / ___|   ___  _ __ __   __  ___  _ __
   / _ \  | |_| |_ \___ \ | __| / _ \ | '__|/ _ \     \___ \  / _ \| '__|\ \ / / / _ \| '__|
  / ___ \ |  _|  _| ___) || |_ | (_) || |  |  __/      ___) ||  __/| |    \ V / |  __/| |
 /_/   \_\|_| |_| |____/   \__| \___/ |_|   \___|     |____/  \___||_|     \_/   \___||_|
                                                                              %s
--------------------------------------------------------------------------------------------
`
)

func main() {
	// 1. 환경설정 로드 (로그 설정에 필요하므로 가장 먼저 수행한다)
	configFile := config.DefaultFilename
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}

	appConfig, err := config.LoadWithFile(configFile)
	if err != nil {
		// 로거 초기화 전이므로 표준 에러에 출력
		fmt.Fprintf(os.Stderr, "[FATAL] 환경설정 로드 실패: %v\n", err)
		os.Exit(1)
	}

	// 2. 로그 시스템 초기화
	var logOpts applog.Options
	if appConfig.Debug {
		logOpts = applog.NewDevelopmentOptions(config.AppName)
	} else {
		logOpts = applog.NewProductionOptions(config.AppName)
	}

	appLogCloser, err := applog.Setup(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] 로그 시스템 초기화 실패. 서버 구동을 중단합니다. (Cause: %v)\n", err)
		os.Exit(1)
	}
	defer appLogCloser.Close()

	// 3. 로그 레벨 최종 확정
	applog.SetDebugMode(appConfig.Debug)

	buildInfo := version.Get()

	// 아스키아트 출력(https://ko.rakko.tools/tools/68/, 폰트:standard)
	fmt.Printf(banner, buildInfo.Version)

	// 빌드 정보 출력
	applog.WithComponentAndFields("main", log.Fields{
		"version": buildInfo.String(),
		"env":     map[bool]string{true: "development", false: "production"}[appConfig.Debug],
	}).Info("서버 초기화 시작")

	// 권장 설정값 점검 (경고성 안내이므로 서버 구동은 계속 진행한다)
	for _, warning := range appConfig.VerifyRecommendations() {
		applog.WithComponent("main").Warn(warning)
	}

	// 서비스를 생성하고 초기화한다.
	notificationSender := notification.NewSenderFromConfig(&appConfig.Notifiers)

	storeService, err := store.NewService(appConfig, notificationSender)
	if err != nil {
		applog.WithComponentAndFields("main", log.Fields{
			"error": err,
		}).Error("스토어 서비스 생성 실패")

		log.Fatal("스토어 서비스 생성 실패로 프로그램을 종료합니다")
	}

	apiService := api.NewService(appConfig, storeService, notificationSender, buildInfo)

	// Set up cancellation context and waitgroup
	serviceStopCtx, cancel := context.WithCancel(context.Background())
	serviceStopWG := &sync.WaitGroup{}

	// 서비스를 시작한다.
	services := []service.Service{storeService, apiService}
	for _, s := range services {
		serviceStopWG.Add(1)
		if err := s.Start(serviceStopCtx, serviceStopWG); err != nil {
			applog.WithComponentAndFields("main", log.Fields{
				"error": err,
			}).Error("서비스 초기화 실패")

			cancel() // 다른 서비스들도 종료
			serviceStopWG.Wait()

			log.Fatal("서비스 초기화 실패로 프로그램을 종료합니다")
		}
	}

	// Handle sigterm and await termC signal
	termC := make(chan os.Signal, 1)
	signal.Notify(termC, syscall.SIGINT, syscall.SIGTERM)

	applog.WithComponent("main").Info("서버 가동 완료")

	<-termC // Blocks here until interrupted

	// Handle shutdown
	applog.WithComponent("main").Info("Shutdown signal received")
	cancel()             // Signal cancellation to context.Context
	serviceStopWG.Wait() // Block here until are workers are done
}
