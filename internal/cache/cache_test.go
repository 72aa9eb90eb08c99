package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssq-board/internal/api"
	"ssq-board/internal/lottery"
)

type viewState struct {
	Theme string `json:"theme"`
	Model string `json:"model"`
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache(10, 0)
	defer c.Close()

	require.NoError(t, c.Set("view:a", viewState{Theme: "dark", Model: "m1"}, time.Minute))

	var got viewState
	require.NoError(t, c.Get("view:a", &got))
	assert.Equal(t, viewState{Theme: "dark", Model: "m1"}, got)

	err := c.Get("view:missing", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	c := NewMemoryCache(10, 0)
	defer c.Close()

	balls := []string{"01", "02"}
	require.NoError(t, c.Set("k", balls, 0))
	balls[0] = "33"

	var got []string
	require.NoError(t, c.Get("k", &got))
	assert.Equal(t, []string{"01", "02"}, got)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(10, 0)
	defer c.Close()

	now := time.Date(2025, 10, 23, 21, 15, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set("short", 1, time.Minute))
	require.NoError(t, c.Set("forever", 2, 0))

	now = now.Add(2 * time.Minute)

	var v int
	assert.ErrorIs(t, c.Get("short", &v), ErrCacheExpired)
	assert.False(t, c.Exists("short"))
	require.NoError(t, c.Get("forever", &v))
	assert.Equal(t, 2, v)
}

func TestMemoryCacheCleanupAndEviction(t *testing.T) {
	c := NewMemoryCache(2, 0)
	defer c.Close()

	now := time.Date(2025, 10, 23, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set("a", 1, time.Second))
	now = now.Add(time.Millisecond)
	require.NoError(t, c.Set("b", 2, 0))
	now = now.Add(time.Millisecond)
	require.NoError(t, c.Set("c", 3, 0))

	// a 最旧，被淘汰
	assert.Equal(t, 2, c.Size())
	assert.False(t, c.Exists("a"))
	assert.Equal(t, []string{"b", "c"}, c.Keys(""))

	require.NoError(t, c.Set("b", 4, time.Second))
	now = now.Add(time.Hour)
	assert.Equal(t, 1, c.cleanupExpired())
	assert.Equal(t, []string{"c"}, c.Keys(""))
}

func TestManagerSnapshot(t *testing.T) {
	m := NewManager(100, time.Hour)
	defer m.Close()

	assert.Nil(t, m.Snapshot())

	first := &api.Snapshot{History: lottery.HistoryFile{Data: lottery.DrawHistory{{Period: "25123"}}}}
	assert.Nil(t, m.OnNewSnapshot(first))
	assert.Same(t, first, m.Snapshot())

	second := &api.Snapshot{}
	assert.Same(t, first, m.OnNewSnapshot(second))
	assert.Same(t, second, m.Snapshot())
}

func TestManagerViews(t *testing.T) {
	m := NewManager(100, time.Hour)
	defer m.Close()

	require.NoError(t, m.SaveView("s1", viewState{Theme: "light"}))
	assert.Error(t, m.SaveView("", viewState{}))

	var got viewState
	require.NoError(t, m.LoadView("s1", &got))
	assert.Equal(t, "light", got.Theme)
	assert.ErrorIs(t, m.LoadView("s2", &got), ErrCacheMiss)
}

func TestManagerSubscriptions(t *testing.T) {
	m := NewManager(100, time.Hour)
	defer m.Close()

	added, err := m.Subscribe(42)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = m.Subscribe(42)
	require.NoError(t, err)
	assert.False(t, added)

	_, err = m.Subscribe(7)
	require.NoError(t, err)

	assert.ElementsMatch(t, []int64{42, 7}, m.Subscribers())
	assert.True(t, m.Unsubscribe(42))
	assert.False(t, m.Unsubscribe(42))
	assert.Equal(t, []int64{7}, m.Subscribers())
	assert.Equal(t, 1, m.Stats()["subscribers"])
}

func TestSubscriptionsSurviveViewEviction(t *testing.T) {
	m := NewManager(3, time.Hour)
	defer m.Close()

	_, err := m.Subscribe(42)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, m.SaveView(fmt.Sprintf("session-%d", i), viewState{Theme: "light"}))
	}

	assert.Equal(t, []int64{42}, m.Subscribers())
	assert.Equal(t, 3, m.Stats()["views"])
	assert.Equal(t, 4, m.Stats()["items"])
}
