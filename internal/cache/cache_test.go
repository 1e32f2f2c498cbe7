package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type released struct {
	key  string
	size int64
}

func newTestCache(t *testing.T, policy Policy, budget int64) (*Budgeted[string, int], *[]released) {
	t.Helper()
	var log []released
	c, err := New[string, int](policy, budget, func(key string, _ int, size int64) {
		log = append(log, released{key: key, size: size})
	})
	require.NoError(t, err)
	return c, &log
}

func TestNew_Validation(t *testing.T) {
	_, err := New[string, int](FIFO, 0, nil)
	assert.Error(t, err)

	_, err = New[string, int]("random", 10, nil)
	assert.Error(t, err)

	c, err := New[string, int](LRU, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, LRU, c.Policy())
	assert.Equal(t, int64(10), c.Budget())
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, FIFO, p)

	p, err = ParsePolicy(" LRU ")
	require.NoError(t, err)
	assert.Equal(t, LRU, p)

	_, err = ParsePolicy("mru")
	assert.Error(t, err)
}

func TestBudgeted_AddAndGet(t *testing.T) {
	c, _ := newTestCache(t, FIFO, 100)

	c.Add("a", 1, 40)
	c.Add("b", 2, 30)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, int64(70), c.Footprint())
	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Contains("b"))

	size, ok := c.SizeOf("b")
	require.True(t, ok)
	assert.Equal(t, int64(30), size)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestBudgeted_EvictOldest_FIFO(t *testing.T) {
	c, log := newTestCache(t, FIFO, 50)

	c.Add("a", 1, 40)
	c.Add("b", 2, 30)
	// a hit must not change FIFO order
	_, _ = c.Get("a")

	require.True(t, c.OverBudget())
	key, size, ok := c.EvictOldest()
	require.True(t, ok)
	assert.Equal(t, "a", key)
	assert.Equal(t, int64(40), size)
	assert.Equal(t, int64(30), c.Footprint())
	assert.Equal(t, []released{{key: "a", size: 40}}, *log)
	assert.Equal(t, int64(1), c.Evictions())

	// under budget: nothing happens
	_, _, ok = c.EvictOldest()
	assert.False(t, ok)
	assert.Equal(t, []string{"b"}, c.Keys())
}

func TestBudgeted_EvictOldest_LRU(t *testing.T) {
	c, _ := newTestCache(t, LRU, 50)

	c.Add("a", 1, 40)
	c.Add("b", 2, 30)
	_, _ = c.Get("a")

	key, _, ok := c.EvictOldest()
	require.True(t, ok)
	assert.Equal(t, "b", key, "recently read entry survives")
}

func TestBudgeted_EvictsOneAtATime(t *testing.T) {
	c, _ := newTestCache(t, FIFO, 10)
	c.Add("a", 1, 20)
	c.Add("b", 2, 20)
	c.Add("c", 3, 20)

	key, _, ok := c.EvictOldest()
	require.True(t, ok)
	assert.Equal(t, "a", key)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"b", "c"}, c.Keys())
}

func TestBudgeted_Trim(t *testing.T) {
	c, log := newTestCache(t, FIFO, 49)
	c.Add("a", 1, 20)
	c.Add("b", 2, 20)
	c.Add("c", 3, 30)

	evicted := c.Trim("c")
	assert.Equal(t, []Eviction[string]{{Key: "a", Size: 20}, {Key: "b", Size: 20}}, evicted)
	assert.Equal(t, int64(30), c.Footprint())
	assert.Len(t, *log, 2)
	assert.Equal(t, int64(2), c.Evictions())

	assert.Empty(t, c.Trim("c"), "within budget")
}

func TestBudgeted_TrimStopsAtBudget(t *testing.T) {
	c, _ := newTestCache(t, FIFO, 50)
	c.Add("a", 1, 20)
	c.Add("b", 2, 20)
	c.Add("c", 3, 30)

	evicted := c.Trim("c")
	assert.Equal(t, []Eviction[string]{{Key: "a", Size: 20}}, evicted)
	assert.Equal(t, int64(50), c.Footprint(), "a footprint equal to the budget fits")
	assert.Equal(t, []string{"b", "c"}, c.Keys())
}

func TestBudgeted_TrimKeepsOversizedNewest(t *testing.T) {
	c, _ := newTestCache(t, FIFO, 10)
	c.Add("a", 1, 5)
	c.Add("huge", 2, 100)

	evicted := c.Trim("huge")
	require.Len(t, evicted, 1)
	assert.Equal(t, "a", evicted[0].Key)
	assert.True(t, c.Contains("huge"))
	assert.True(t, c.OverBudget())
}

func TestBudgeted_AddReplaces(t *testing.T) {
	c, log := newTestCache(t, FIFO, 100)
	c.Add("a", 1, 10)
	c.Add("a", 2, 25)

	v, _ := c.Get("a")
	assert.Equal(t, 2, v)
	assert.Equal(t, int64(25), c.Footprint())
	assert.Equal(t, []released{{key: "a", size: 10}}, *log)
}

func TestBudgeted_RemoveAndPurge(t *testing.T) {
	c, log := newTestCache(t, FIFO, 100)
	c.Add("a", 1, 10)
	c.Add("b", 2, 20)
	c.Add("c", 3, 30)

	assert.True(t, c.Remove("b"))
	assert.False(t, c.Remove("b"))
	assert.Equal(t, int64(40), c.Footprint())

	c.Purge()
	assert.Zero(t, c.Footprint())
	assert.Zero(t, c.Len())
	assert.Len(t, *log, 3)
	assert.Zero(t, c.Evictions(), "explicit removal is not a budget eviction")
}

func TestBudgeted_ConcurrentAccess(t *testing.T) {
	c, err := New[string, int](FIFO, 1<<20, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i)
			c.Add(key, i, 10)
			_, _ = c.Get(key)
			_ = c.Footprint()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, c.Len())
	assert.Equal(t, int64(500), c.Footprint())
}
