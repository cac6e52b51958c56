package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/darkkaiser/affiliate-store-server/internal/service/store/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) CacheStore {
	t.Helper()

	store, err := NewFileCacheStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func testEntry(fingerprint string) *Entry {
	return &Entry{
		Fingerprint: fingerprint,
		CreatedAt:   time.Now().Truncate(time.Second),
		Products: []product.Product{
			{ID: "i1", Name: "เสื้อยืด", Price: 1000, Discounted: 800, DiscountedPercentage: 20, Currency: "THB"},
			{ID: "i2", Name: "p2"},
		},
	}
}

// TestFileCacheStore_RoundTrip은 저장한 엔트리가 그대로 다시 읽히는지 검증합니다.
func TestFileCacheStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)

	saved := testEntry("https://example.com/sitemap.xml")
	require.NoError(t, store.Save("sitemap-products", saved))

	loaded, err := store.Load("sitemap-products")
	require.NoError(t, err)

	assert.Equal(t, saved.Fingerprint, loaded.Fingerprint)
	assert.True(t, saved.CreatedAt.Equal(loaded.CreatedAt))
	require.Len(t, loaded.Products, 2)
	assert.Equal(t, "เสื้อยืด", loaded.Products[0].Name)
	assert.Equal(t, 20, loaded.Products[0].DiscountedPercentage)
}

// TestFileCacheStore_LoadMissing은 없는 키 조회 시의 에러를 검증합니다.
func TestFileCacheStore_LoadMissing(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)

	_, err := store.Load("no-such-key")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

// TestFileCacheStore_Overwrite는 같은 키 재저장 시 덮어쓰기를 검증합니다.
func TestFileCacheStore_Overwrite(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)

	require.NoError(t, store.Save("k", testEntry("first")))
	require.NoError(t, store.Save("k", testEntry("second")))

	loaded, err := store.Load("k")
	require.NoError(t, err)
	assert.Equal(t, "second", loaded.Fingerprint)
}

// TestFileCacheStore_Clear는 삭제와 멱등성을 검증합니다.
func TestFileCacheStore_Clear(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)

	require.NoError(t, store.Save("k", testEntry("fp")))
	require.NoError(t, store.Clear("k"))

	_, err := store.Load("k")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	// 이미 없는 키를 다시 지워도 에러가 아니다.
	require.NoError(t, store.Clear("k"))
}

// TestFileCacheStore_NoLeftoverTempFiles는 저장 후 임시 파일이 남지 않는지 검증합니다.
func TestFileCacheStore_NoLeftoverTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewFileCacheStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save("k", testEntry("fp")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	for _, entry := range entries {
		matched, _ := filepath.Match(tempFilePattern, entry.Name())
		assert.False(t, matched, "임시 파일이 남아있음: %s", entry.Name())
	}
}

// TestFileCacheStore_KeyIsolation은 키가 달라지면 파일도 달라지는지 검증합니다.
func TestFileCacheStore_KeyIsolation(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)

	require.NoError(t, store.Save("key-a", testEntry("a")))
	require.NoError(t, store.Save("key-b", testEntry("b")))

	a, err := store.Load("key-a")
	require.NoError(t, err)
	b, err := store.Load("key-b")
	require.NoError(t, err)

	assert.Equal(t, "a", a.Fingerprint)
	assert.Equal(t, "b", b.Fingerprint)
}

// TestFileCacheStore_TraversalKeys는 경로 이탈 시도성 키의 안전 처리를 검증합니다.
// 키는 파일명으로 정제되고 해시가 붙으므로 저장과 조회가 기본 디렉토리 안에서 이루어져야 합니다.
func TestFileCacheStore_TraversalKeys(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewFileCacheStore(dir)
	require.NoError(t, err)

	keys := []string{
		"../escape",
		"..\\windows\\escape",
		"nested/../../escape",
		"https://example.com/sitemap.xml?page=1",
	}

	for _, key := range keys {
		require.NoError(t, store.Save(key, testEntry(key)), "key: %s", key)

		loaded, err := store.Load(key)
		require.NoError(t, err, "key: %s", key)
		assert.Equal(t, key, loaded.Fingerprint)
	}

	// 어떤 키로도 기본 디렉토리 밖에 파일이 생기지 않아야 한다.
	parentEntries, err := os.ReadDir(filepath.Dir(dir))
	require.NoError(t, err)
	for _, entry := range parentEntries {
		assert.NotContains(t, entry.Name(), "escape")
	}
}

// TestGenerateFilename은 파일명 생성 규칙을 검증합니다.
func TestGenerateFilename(t *testing.T) {
	t.Parallel()

	t.Run("같은 키는 같은 파일명", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, generateFilename("key-1"), generateFilename("key-1"))
	})

	t.Run("다른 키는 다른 파일명", func(t *testing.T) {
		t.Parallel()

		assert.NotEqual(t, generateFilename("key-1"), generateFilename("key-2"))
	})

	t.Run("경로 구분자 제거", func(t *testing.T) {
		t.Parallel()

		name := generateFilename("https://example.com/a/b")
		assert.NotContains(t, name, "/")
		assert.NotContains(t, name, "\\")
		assert.NotContains(t, name, "..")
	})
}
