package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogDir = "logs"

	mainLogFileSuffix     = ".log"
	criticalLogFileSuffix = "-critical.log"
	verboseLogFileSuffix  = "-verbose.log"
)

var setupOnce sync.Once

// Setup 전역 로그 시스템을 초기화합니다.
//
// 로그 파일은 Options에 지정된 디렉토리 아래에 생성되며, lumberjack을 통해
// 크기/보관기간 기반으로 자동 로테이션됩니다. 반환된 io.Closer는 프로그램 종료
// 시점에 반드시 호출하여 열려있는 로그 파일을 정리하여야 합니다.
//
// Setup은 프로세스 생명주기 동안 단 한번만 수행됩니다. 두 번째 이후의 호출은
// 아무런 동작도 하지 않습니다.
func Setup(opts Options) (io.Closer, error) {
	var c io.Closer = noopCloser{}
	var setupErr error

	setupOnce.Do(func() {
		c, setupErr = setup(opts)
	})

	return c, setupErr
}

func setup(opts Options) (io.Closer, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("로그 초기화 옵션이 유효하지 않습니다: %w", err)
	}

	logDir := opts.Dir
	if logDir == "" {
		logDir = defaultLogDir
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("로그 디렉토리(%s) 생성이 실패하였습니다: %w", logDir, err)
	}

	logrus.SetLevel(opts.Level)
	logrus.SetReportCaller(opts.ReportCaller)

	// 실제 포맷팅은 hook에서 담당하므로, 기본 출력 경로는 완전히 차단합니다.
	logrus.SetOutput(io.Discard)
	logrus.SetFormatter(&silentFormatter{})

	formatter := &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableColors:   true,
	}
	if opts.ReportCaller {
		formatter.CallerPrettyfier = callerPrettyfier(opts.CallerPathPrefix)
	}

	h := &hook{
		formatter: formatter,
	}

	var closers []io.Closer

	mainWriter := newRotatingWriter(filepath.Join(logDir, opts.Name+mainLogFileSuffix), opts)
	h.mainWriter = mainWriter
	closers = append(closers, mainWriter)

	if opts.EnableCriticalLog {
		criticalWriter := newRotatingWriter(filepath.Join(logDir, opts.Name+criticalLogFileSuffix), opts)
		h.criticalWriter = criticalWriter
		closers = append(closers, criticalWriter)
	}

	if opts.EnableVerboseLog {
		verboseWriter := newRotatingWriter(filepath.Join(logDir, opts.Name+verboseLogFileSuffix), opts)
		h.verboseWriter = verboseWriter
		closers = append(closers, verboseWriter)
	}

	if opts.EnableConsoleLog {
		h.consoleWriter = os.Stdout
	}

	logrus.AddHook(h)

	logCloser := &closer{
		closers: closers,
		hook:    h,
	}

	// logrus.Exit() 경유로 종료되는 경우에도 로그 파일이 정리되도록 합니다.
	logrus.RegisterExitHandler(func() {
		_ = logCloser.Close()
	})

	return logCloser, nil
}

func newRotatingWriter(filename string, opts Options) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    opts.MaxSizeMB,
		MaxAge:     opts.MaxAge,
		MaxBackups: opts.MaxBackups,
		LocalTime:  true,
		Compress:   true,
	}
}

// callerPrettyfier 로그에 기록되는 호출자 정보에서 불필요한 경로 접두사를 제거합니다.
func callerPrettyfier(pathPrefix string) func(*runtime.Frame) (string, string) {
	return func(frame *runtime.Frame) (function string, file string) {
		funcName := frame.Function
		if pathPrefix != "" {
			if trimmed, ok := strings.CutPrefix(funcName, pathPrefix); ok {
				funcName = strings.TrimPrefix(trimmed, "/")
			}
		}
		return funcName, fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
	}
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }
