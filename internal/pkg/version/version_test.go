package version

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	bi := Get()

	// ldflags 주입이 없는 테스트 환경에서도 런타임 정보는 채워져야 한다.
	assert.Equal(t, runtime.Version(), bi.GoVersion)
	assert.Equal(t, runtime.GOOS, bi.OS)
	assert.Equal(t, runtime.GOARCH, bi.Arch)
	assert.NotEmpty(t, bi.Version)
	assert.NotEmpty(t, bi.Commit)

	assert.Equal(t, bi.Version, Version())
}

func TestEnrichBuildInfo(t *testing.T) {
	t.Run("VCS 메타데이터로 누락된 값 보강", func(t *testing.T) {
		original := readBuildInfo
		readBuildInfo = func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "3ab9f01deadbeef"},
					{Key: "vcs.time", Value: "2026-02-01T09:00:00Z"},
					{Key: "vcs.modified", Value: "true"},
				},
			}, true
		}
		t.Cleanup(func() { readBuildInfo = original })

		bi := enrichBuildInfo(Info{})

		assert.Equal(t, unknown, bi.Version)
		assert.Equal(t, "3ab9f01deadbeef", bi.Commit)
		assert.Equal(t, "2026-02-01T09:00:00Z", bi.BuildDate)
		assert.True(t, bi.DirtyBuild)
	})

	t.Run("주입된 값은 VCS 메타데이터로 덮어쓰지 않음", func(t *testing.T) {
		original := readBuildInfo
		readBuildInfo = func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "should-not-win"},
				},
			}, true
		}
		t.Cleanup(func() { readBuildInfo = original })

		bi := enrichBuildInfo(Info{
			Version:   "v1.2.0",
			Commit:    "g3ab9f01",
			BuildDate: "2026-01-15T00:00:00Z",
		})

		assert.Equal(t, "v1.2.0", bi.Version)
		assert.Equal(t, "g3ab9f01", bi.Commit)
	})

	t.Run("디버그 메타데이터가 없으면 unknown", func(t *testing.T) {
		original := readBuildInfo
		readBuildInfo = func() (*debug.BuildInfo, bool) {
			return nil, false
		}
		t.Cleanup(func() { readBuildInfo = original })

		bi := enrichBuildInfo(Info{})

		assert.Equal(t, unknown, bi.Version)
		assert.Equal(t, unknown, bi.Commit)
	})
}

func TestInfo_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    Info
		expected string
	}{
		{
			name: "전체 정보",
			input: Info{
				Version:   "v1.2.0",
				Commit:    "3ab9f01deadbeef",
				BuildDate: "2026-01-15T00:00:00Z",
				GoVersion: "go1.24",
				OS:        "linux",
				Arch:      "amd64",
			},
			expected: "v1.2.0 (commit: 3ab9f01, date: 2026-01-15T00:00:00Z, go_version: go1.24, platform: linux/amd64)",
		},
		{
			name:     "버전만 존재",
			input:    Info{Version: "v1.0.0"},
			expected: "v1.0.0",
		},
		{
			name:     "Dirty 빌드 표시",
			input:    Info{Version: "v1.0.0", DirtyBuild: true},
			expected: "v1.0.0+dirty",
		},
		{
			name:     "빈 정보",
			input:    Info{},
			expected: unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.input.String())
		})
	}
}

func TestInfo_Serialization(t *testing.T) {
	t.Parallel()

	bi := Info{
		Version:    "v1.2.0",
		Commit:     "3ab9f01",
		BuildDate:  "2026-01-15T00:00:00Z",
		GoVersion:  "go1.24",
		OS:         "linux",
		Arch:       "amd64",
		DirtyBuild: false,
	}

	t.Run("JSON 필드명", func(t *testing.T) {
		t.Parallel()

		raw, err := json.Marshal(bi)
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, "v1.2.0", decoded["version"])
		assert.Equal(t, "3ab9f01", decoded["commit"])
		assert.Contains(t, decoded, "dirty_build")
	})

	t.Run("ToMap은 모든 필드 포함", func(t *testing.T) {
		t.Parallel()

		m := bi.ToMap()
		assert.Equal(t, "v1.2.0", m["version"])
		assert.Equal(t, "go1.24", m["go_version"])
		assert.Len(t, m, 7)
	})
}
