package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/darkkaiser/affiliate-store-server/pkg/concurrency"
	applog "github.com/darkkaiser/affiliate-store-server/pkg/log"
)

// component 로깅용 컴포넌트 이름
const component = "store.storage"

// defaultDataDirectory 캐시 파일을 저장할 기본 디렉토리 이름입니다.
const defaultDataDirectory = "data"

// tempFilePattern 원자적 쓰기 중 생성되는 임시 파일의 이름 패턴입니다.
const tempFilePattern = "store-cache-*.tmp"

// fileCacheStore 파일 시스템 기반의 영속 캐시 저장소 구현체입니다.
//
// [파일 구조]
//   - store-{키}-{해시}.json: 캐시 엔트리가 JSON 형식으로 저장됩니다.
//   - store-cache-*.tmp: 저장 중 생성되는 임시 파일입니다.
type fileCacheStore struct {
	baseDir string

	// locks 동일한 파일에 대한 동시 접근을 방지하기 위한 파일별 뮤텍스입니다.
	locks *concurrency.KeyedMutex
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ CacheStore = (*fileCacheStore)(nil)

// NewFileCacheStore 파일 시스템 기반의 영속 캐시 저장소를 생성합니다.
//
// dir이 빈 문자열이면 기본 디렉토리("data")를 사용하며, 상대 경로는 절대 경로로 변환됩니다.
// 초기화 과정에서 디렉토리를 생성하고, 이전 실행에서 남은 임시 파일을 백그라운드로 정리합니다.
func NewFileCacheStore(dir string) (CacheStore, error) {
	if dir == "" {
		dir = defaultDataDirectory
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, newErrDirectoryAccessFailed(err, dir)
	}

	// 초기화 시점에 디렉토리 생성과 접근 권한을 미리 확인하여 Save 시점의 에러를 조기에 발견합니다.
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, newErrDirectoryAccessFailed(err, absDir)
	}

	s := &fileCacheStore{
		baseDir: absDir,
		locks:   concurrency.NewKeyedMutex(),
	}

	// 비정상 종료로 남겨진 임시 파일을 정리합니다.
	// 서버 시작 속도에 영향을 주지 않도록 비동기로 수행합니다.
	go s.cleanupStaleTempFiles()

	return s, nil
}

// cleanupStaleTempFiles 이전 실행에서 남겨진 오래된 임시 파일을 정리합니다.
func (s *fileCacheStore) cleanupStaleTempFiles() {
	defer func() {
		if r := recover(); r != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"base_dir": s.baseDir,
				"panic":    r,
			}).Error("임시 파일 정리 중단: 백그라운드 작업 패닉 발생")
		}
	}()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"dir":   s.baseDir,
			"error": err,
		}).Warn("임시 파일 정리 중단: 디렉토리 조회 실패")
		return
	}

	// 최근 1시간 이내에 수정된 파일은 다른 고루틴이 사용 중일 수 있으므로 보호합니다.
	threshold := time.Now().Add(-1 * time.Hour)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if matched, _ := filepath.Match(tempFilePattern, name); !matched {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.ModTime().After(threshold) {
			continue
		}

		fullPath := filepath.Join(s.baseDir, name)
		if err := os.Remove(fullPath); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"file":  fullPath,
				"error": err,
			}).Warn("임시 파일 삭제 실패")
		} else {
			applog.WithComponentAndFields(component, applog.Fields{
				"file": fullPath,
			}).Info("이전 실행 잔존 임시 파일 삭제 완료")
		}
	}
}

// Load 지정된 키의 캐시 엔트리를 읽어옵니다.
//
// 쓰기 중인 파일을 읽는 것을 방지하기 위해 읽기에도 Lock을 적용하며,
// Lock 보유 시간을 최소화하기 위해 JSON 역직렬화는 Lock 외부에서 수행합니다.
func (s *fileCacheStore) Load(key string) (*Entry, error) {
	filename, err := s.resolveSafePath(key)
	if err != nil {
		return nil, err
	}

	var data []byte
	err = s.locks.WithLock(strings.ToLower(filename), func() error {
		var readErr error
		data, readErr = os.ReadFile(filename)
		if readErr != nil {
			if os.IsNotExist(readErr) {
				return ErrEntryNotFound
			}
			return newErrEntryReadFailed(readErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, newErrEntryDecodeFailed(err)
	}

	return &entry, nil
}

// Save 캐시 엔트리를 파일에 원자적으로 저장합니다.
func (s *fileCacheStore) Save(key string, entry *Entry) error {
	filename, err := s.resolveSafePath(key)
	if err != nil {
		return err
	}

	// JSON 직렬화는 Lock 획득 전에 수행합니다.
	data, err := json.MarshalIndent(entry, "", "\t")
	if err != nil {
		return newErrEntryEncodeFailed(err)
	}

	return s.locks.WithLock(strings.ToLower(filename), func() error {
		return s.writeAtomic(filename, data)
	})
}

// Clear 지정된 키의 캐시 엔트리를 삭제합니다.
func (s *fileCacheStore) Clear(key string) error {
	filename, err := s.resolveSafePath(key)
	if err != nil {
		return err
	}

	return s.locks.WithLock(strings.ToLower(filename), func() error {
		if err := os.Remove(filename); err != nil && !os.IsNotExist(err) {
			return newErrEntryWriteFailed(err)
		}
		return nil
	})
}

// resolveSafePath 캐시 키로부터 안전하게 검증된 파일 경로를 생성합니다.
//
// filepath.Rel 기반으로 최종 경로가 기본 디렉토리의 하위인지 확인하여
// Path Traversal 공격을 방어합니다.
func (s *fileCacheStore) resolveSafePath(key string) (string, error) {
	filename := generateFilename(key)

	cleanPath := filepath.Clean(filepath.Join(s.baseDir, filename))

	rel, err := filepath.Rel(s.baseDir, cleanPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		applog.WithComponentAndFields(component, applog.Fields{
			"key":      key,
			"filename": filename,
			"base_dir": s.baseDir,
			"path":     cleanPath,
		}).Error("파일 경로 생성 차단: 경로 이탈 시도 감지")

		return "", ErrPathTraversalDetected
	}

	return cleanPath, nil
}

// writeAtomic 데이터를 파일에 원자적으로 저장합니다.
//
// "임시 파일 쓰기 -> 디스크 동기화(fsync) -> 원자적 이름 변경(rename)" 순서로 수행하여
// 저장 중 프로세스가 종료되더라도 기존 캐시 파일이 손상되지 않도록 보장합니다.
func (s *fileCacheStore) writeAtomic(filename string, data []byte) error {
	dir := filepath.Dir(filename)

	// 같은 디렉토리 내에 임시 파일을 생성해야 rename이 원자적으로 동작합니다.
	tmpFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return newErrEntryWriteFailed(err)
	}
	tmpPath := tmpFile.Name()

	// Windows에서는 열린 파일을 삭제할 수 없으므로 Close가 Remove보다 먼저 실행되어야 합니다.
	defer os.Remove(tmpPath)
	defer tmpFile.Close()

	if _, err := tmpFile.Write(data); err != nil {
		return newErrEntryWriteFailed(err)
	}

	// 운영체제 버퍼 캐시에만 있는 상태에서 전원이 차단되는 것을 방지합니다.
	if err := tmpFile.Sync(); err != nil {
		return newErrEntryWriteFailed(err)
	}

	if err := tmpFile.Close(); err != nil {
		return newErrEntryWriteFailed(err)
	}

	if err := os.Rename(tmpPath, filename); err != nil {
		return newErrEntryWriteFailed(err)
	}

	// 파일명 변경 사항을 디스크에 확실히 기록하기 위해 부모 디렉토리를 fsync합니다.
	// 실패해도 치명적이지 않으므로 에러를 무시합니다.
	if dirFile, err := os.Open(dir); err == nil {
		_ = dirFile.Sync()
		dirFile.Close()
	}

	return nil
}
