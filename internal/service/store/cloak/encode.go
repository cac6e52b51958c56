package cloak

import "strings"

// EncodeURIComponent 자바스크립트의 encodeURIComponent와 동일한 규칙으로 문자열을 퍼센트 인코딩합니다.
//
// 리다이렉트 호스트가 해당 규칙으로 디코딩을 수행하므로, Go 표준 라이브러리의
// url.QueryEscape(공백을 +로 치환, '!' 등의 문자 처리 차이)를 사용할 수 없습니다.
//
// 인코딩 제외 문자: A-Z a-z 0-9 - _ . ! ~ * ' ( )
func EncodeURIComponent(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	for _, b := range []byte(s) {
		if isUnreservedMark(b) {
			sb.WriteByte(b)
		} else {
			sb.WriteByte('%')
			sb.WriteByte(upperHex[b>>4])
			sb.WriteByte(upperHex[b&0x0f])
		}
	}

	return sb.String()
}

const upperHex = "0123456789ABCDEF"

func isUnreservedMark(b byte) bool {
	switch {
	case 'A' <= b && b <= 'Z', 'a' <= b && b <= 'z', '0' <= b && b <= '9':
		return true
	}
	switch b {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
