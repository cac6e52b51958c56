package cronx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		spec        string
		expectError bool
	}{
		{"6필드 형식", "0 0 */6 * * *", false},
		{"매 초 실행", "* * * * * *", false},
		{"Descriptor @daily", "@daily", false},
		{"Descriptor @every", "@every 30m", false},
		{"5필드 형식은 미지원", "0 */6 * * *", true},
		{"빈 표현식", "", true},
		{"자연어는 미지원", "every day", true},
		{"범위 초과 필드", "0 0 25 * * *", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tt.spec)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
