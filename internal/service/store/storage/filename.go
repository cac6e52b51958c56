package storage

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
)

// filenameReplacer 파일명 생성 시 파일 시스템에서 문제를 일으킬 수 있는 특수문자를 안전한 문자로 치환합니다.
// 경로 이탈(.., /, \)과 Windows 예약 문자, 쉘에서 위험한 문자들이 대상입니다.
var filenameReplacer = strings.NewReplacer(
	"..", "--",
	"/", "-",
	"\\", "-",
	"|", "-",
	"<", "-",
	">", "-",
	":", "-",
	"\"", "-",
	"?", "-",
	"*", "-",
)

// generateFilename 캐시 키(사이트맵 URL 등)로부터 안전하고 고유한 파일명을 생성합니다.
//
// 파일 탐색기에서 식별할 수 있도록 키를 Kebab-Case로 정제한 이름과,
// 정제 과정에서의 이름 충돌을 막기 위한 원본 키의 fnv64a 해시를 결합합니다.
//
// 생성 패턴: "store-{정제된키}-{16자리해시}.json"
func generateFilename(key string) string {
	name := sanitizeName(key)
	name = truncateByBytes(name, 80)

	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(key))

	return fmt.Sprintf("store-%s-%016x.json", name, hasher.Sum64())
}

// sanitizeName 파일명으로 안전하게 사용할 수 있도록 문자열을 정제합니다.
func sanitizeName(s string) string {
	kebab := strcase.ToKebab(s)

	// Kebab 변환 후에도 남아있을 수 있는 제어 문자를 하이픈으로 치환합니다.
	kebab = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return '-'
		}
		return r
	}, kebab)

	return filenameReplacer.Replace(kebab)
}

// truncateByBytes 문자열을 UTF-8 바이트 길이 기준으로 안전하게 자릅니다.
// Rune 단위로 순회하여 문자가 중간에 잘려 깨지는 것을 방지합니다.
func truncateByBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	var totalBytes int
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		if totalBytes+size > limit {
			return s[:totalBytes]
		}
		totalBytes += size
		i += size
	}

	return s[:totalBytes]
}
