package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsFresh(t *testing.T) {
	stored := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	entry := Entry{Value: []byte("page"), StoredAt: stored}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "Сразу после записи", now: stored, want: true},
		{name: "Внутри окна", now: stored.Add(19 * time.Second), want: true},
		{name: "Ровно на границе окна", now: stored.Add(20 * time.Second), want: false},
		{name: "После окна", now: stored.Add(time.Minute), want: false},
		{name: "Время раньше записи", now: stored.Add(-time.Second), want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsFresh(entry, tc.now, IndexTTL))
		})
	}
}

func newTestCache(t *testing.T) *PageCache {
	c, err := NewPageCache(IndexPrefix, IndexTTL, 16)
	require.NoError(t, err)
	return c
}

func TestPageCache_Key(t *testing.T) {
	c := newTestCache(t)

	assert.Equal(t, "index_page", c.Key())
	assert.Equal(t, "index_page:2", c.Key("2"))
}

func TestPageCache_GetOrRender(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Повторный запрос внутри окна не рендерит", func(t *testing.T) {
		c := newTestCache(t)
		calls := 0
		render := func() ([]byte, error) {
			calls++
			return []byte("render"), nil
		}

		value, hit, err := c.GetOrRender("k", now, render)
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, "render", string(value))

		value, hit, err = c.GetOrRender("k", now.Add(10*time.Second), render)
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Equal(t, "render", string(value))
		assert.Equal(t, 1, calls)
	})

	t.Run("После истечения окна рендер повторяется", func(t *testing.T) {
		c := newTestCache(t)
		calls := 0
		render := func() ([]byte, error) {
			calls++
			return []byte{byte('0' + calls)}, nil
		}

		_, _, err := c.GetOrRender("k", now, render)
		require.NoError(t, err)

		value, hit, err := c.GetOrRender("k", now.Add(IndexTTL), render)
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, "2", string(value))
	})

	t.Run("Очистка сбрасывает запись", func(t *testing.T) {
		c := newTestCache(t)
		c.Set("k", []byte("old"), now)

		c.Clear()

		_, ok := c.Get("k", now)
		assert.False(t, ok)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("Ошибка рендера не кэшируется", func(t *testing.T) {
		c := newTestCache(t)
		boom := errors.New("boom")

		_, _, err := c.GetOrRender("k", now, func() ([]byte, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)

		_, ok := c.Get("k", now)
		assert.False(t, ok)
	})

	t.Run("Рендер начатый до очистки не сохраняется", func(t *testing.T) {
		c := newTestCache(t)

		value, _, err := c.GetOrRender("k", now, func() ([]byte, error) {
			c.Clear()
			return []byte("stale"), nil
		})
		require.NoError(t, err)
		assert.Equal(t, "stale", string(value))

		_, ok := c.Get("k", now)
		assert.False(t, ok)
	})

	t.Run("Запрос после очистки не получает старый рендер", func(t *testing.T) {
		c := newTestCache(t)

		started := make(chan struct{})
		release := make(chan struct{})
		first := make(chan string, 1)
		go func() {
			value, _, _ := c.GetOrRender("k", now, func() ([]byte, error) {
				close(started)
				<-release
				return []byte("before-delete"), nil
			})
			first <- string(value)
		}()

		<-started
		c.Clear()

		second := make(chan string, 1)
		go func() {
			value, _, _ := c.GetOrRender("k", now, func() ([]byte, error) {
				return []byte("after-delete"), nil
			})
			second <- string(value)
		}()

		select {
		case value := <-second:
			assert.Equal(t, "after-delete", value)
		case <-time.After(time.Second):
			t.Fatal("запрос после очистки ждал старый рендер")
		}

		close(release)
		assert.Equal(t, "before-delete", <-first)

		value, ok := c.Get("k", now)
		require.True(t, ok)
		assert.Equal(t, "after-delete", string(value))
	})
}

func TestPageCache_ConcurrentMissesShareRender(t *testing.T) {
	c := newTestCache(t)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	var calls atomic.Int32
	release := make(chan struct{})
	render := func() ([]byte, error) {
		calls.Add(1)
		<-release
		return []byte("page"), nil
	}

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value, _, err := c.GetOrRender("k", now, render)
			if err == nil {
				results[i] = string(value)
			}
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "page", r)
	}
	assert.LessOrEqual(t, calls.Load(), int32(8))

	value, hit, err := c.GetOrRender("k", now, render)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "page", string(value))
}
