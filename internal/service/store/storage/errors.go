package storage

import (
	"fmt"

	apperrors "github.com/darkkaiser/affiliate-store-server/internal/pkg/errors"
)

var (
	// ErrEntryNotFound 요청한 키에 해당하는 캐시 엔트리가 존재하지 않을 때 반환하는 에러입니다.
	ErrEntryNotFound = apperrors.New(apperrors.NotFound, "캐시 엔트리를 찾을 수 없습니다")

	// ErrPathTraversalDetected 파일 경로 생성 시 경로 이탈 시도가 감지되었을 때 반환하는 에러입니다.
	ErrPathTraversalDetected = apperrors.New(apperrors.Internal, "보안 정책 위반: 허용되지 않은 경로 접근 시도로 인해 요청이 차단되었습니다")
)

func newErrDirectoryAccessFailed(err error, dir string) error {
	return apperrors.Wrap(err, apperrors.System, fmt.Sprintf("저장소 초기화 실패: 디렉토리 접근 불가 (%s)", dir))
}

func newErrEntryReadFailed(err error) error {
	return apperrors.Wrap(err, apperrors.System, "캐시 조회 실패: 저장된 캐시 파일 읽기 처리 중 오류가 발생했습니다")
}

func newErrEntryDecodeFailed(err error) error {
	return apperrors.Wrap(err, apperrors.ParsingFailed, "캐시 조회 실패: 캐시 데이터 역직렬화(JSON Unmarshal) 중 오류가 발생했습니다")
}

func newErrEntryEncodeFailed(err error) error {
	return apperrors.Wrap(err, apperrors.Internal, "캐시 저장 실패: 캐시 데이터 직렬화(JSON Marshal) 중 오류가 발생했습니다")
}

func newErrEntryWriteFailed(err error) error {
	return apperrors.Wrap(err, apperrors.System, "캐시 저장 실패: 파일 쓰기 중 오류가 발생했습니다")
}
