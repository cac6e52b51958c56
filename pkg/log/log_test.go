package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSensitiveData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"빈 문자열", "", ""},
		{"3자 이하는 전체 마스킹", "abc", "***"},
		{"짧은 토큰은 앞 4자만 노출", "abcdefgh", "abcd***"},
		{"경계값 12자", "123456789012", "1234***"},
		{"긴 토큰은 앞뒤 4자 노출", "9d8f7a6b5c4d3e2f1a0b", "9d8f***1a0b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, MaskSensitiveData(tt.input))
		})
	}
}
