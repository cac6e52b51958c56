package concurrency

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain 테스트 종료 후 고루틴 누수 여부를 검사합니다.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestKeyedMutex_LockUnlock(t *testing.T) {
	t.Parallel()

	km := NewKeyedMutex()

	km.Lock("category-a")
	assert.Equal(t, 1, km.Len())

	km.Unlock("category-a")
	assert.Equal(t, 0, km.Len(), "해제 후 잠금 엔트리는 맵에서 제거되어야 한다")
}

func TestKeyedMutex_SameKeySerialized(t *testing.T) {
	t.Parallel()

	km := NewKeyedMutex()

	const iterations = 200
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				km.Lock("shared")
				counter++
				km.Unlock("shared")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 8*iterations, counter)
	assert.Equal(t, 0, km.Len())
}

func TestKeyedMutex_DifferentKeysParallel(t *testing.T) {
	t.Parallel()

	km := NewKeyedMutex()

	// key-a를 잡고 있어도 key-b는 즉시 획득할 수 있어야 한다.
	km.Lock("key-a")
	defer km.Unlock("key-a")

	acquired := make(chan struct{})
	go func() {
		km.Lock("key-b")
		close(acquired)
		km.Unlock("key-b")
	}()

	select {
	case <-acquired:
	case <-time.After(3 * time.Second):
		t.Fatal("다른 키에 대한 잠금 획득이 차단되었습니다")
	}
}

func TestKeyedMutex_TryLock(t *testing.T) {
	t.Parallel()

	km := NewKeyedMutex()

	t.Run("잠겨있지 않은 키는 즉시 성공", func(t *testing.T) {
		require.True(t, km.TryLock("free"))
		km.Unlock("free")
	})

	t.Run("다른 고루틴이 잡고 있으면 대기하지 않고 실패", func(t *testing.T) {
		km.Lock("held")
		defer km.Unlock("held")

		done := make(chan bool)
		go func() {
			done <- km.TryLock("held")
		}()

		assert.False(t, <-done)
	})
}

func TestKeyedMutex_WithLock(t *testing.T) {
	t.Parallel()

	km := NewKeyedMutex()

	t.Run("fn의 에러 전달", func(t *testing.T) {
		t.Parallel()

		executed := false
		err := km.WithLock("with-lock", func() error {
			executed = true
			return nil
		})

		require.NoError(t, err)
		assert.True(t, executed)
	})

	t.Run("패닉시에도 잠금 해제", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			_ = km.WithLock("panic-key", func() error {
				panic("boom")
			})
		})

		// 잠금이 해제되었으므로 재획득이 가능해야 한다.
		require.True(t, km.TryLock("panic-key"))
		km.Unlock("panic-key")
	})
}

func TestKeyedMutex_UnlockWithoutLock(t *testing.T) {
	t.Parallel()

	km := NewKeyedMutex()

	assert.Panics(t, func() {
		km.Unlock("never-locked")
	})
}
