package purefn_test

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/on-the-ground/categorical_go/purefn"
	"github.com/on-the-ground/categorical_go/shared/helper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncCacher_ConcurrentSameKeyOneDurableValue(t *testing.T) {
	var evaluations atomic.Int32
	c := purefn.NewSyncCacher(func(int) float64 {
		evaluations.Add(1)
		time.Sleep(20 * time.Millisecond)
		return rand.Float64()
	}, 8, purefn.WithLogger(helper.NewTestLogger()))

	const numCallers = 64
	results := make([]float64, numCallers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(numCallers)
	for i := 0; i < numCallers; i++ {
		go func(i int) {
			defer wg.Done()
			<-start
			v, err := c.Call(42)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	close(start)
	wg.Wait()

	for _, v := range results {
		assert.Equal(t, results[0], v)
	}
	assert.Equal(t, int32(1), evaluations.Load())
	assert.Equal(t, 1, c.Len())

	v, ok := c.Load(42)
	assert.True(t, ok)
	assert.Equal(t, results[0], v)
}

func TestSyncCacher_ConcurrentDistinctKeys(t *testing.T) {
	var mu sync.Mutex
	counts := make(map[int]int)
	f := purefn.MemoizeSync(func(i int) string {
		mu.Lock()
		counts[i]++
		mu.Unlock()
		return fmt.Sprintf("value%d", i)
	}, 4)

	const numKeys, callersPerKey = 16, 8
	var wg sync.WaitGroup
	wg.Add(numKeys * callersPerKey)
	for i := 0; i < numKeys*callersPerKey; i++ {
		go func(i int) {
			defer wg.Done()
			key := i % numKeys
			assert.Equal(t, fmt.Sprintf("value%d", key), f(key))
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, counts, numKeys)
	for key, n := range counts {
		assert.Equal(t, 1, n, "key %d evaluated more than once", key)
	}
}

func TestSyncCacher_FailureIsNotCached(t *testing.T) {
	var evaluations atomic.Int32
	c := purefn.NewFallibleSyncCacher(func(s string) (int, error) {
		if evaluations.Add(1) == 1 {
			return 0, errFlaky
		}
		return len(s), nil
	}, 2)

	_, err := c.Call("abcd")
	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 0, c.Len())

	v, err := c.Call("abcd")
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	v, err = c.Call("abcd")
	require.NoError(t, err)
	assert.Equal(t, 4, v)
	assert.Equal(t, int32(2), evaluations.Load())
}

// collidingKey gives every value the same %#v form.
type collidingKey struct {
	ID int
}

func (collidingKey) GoString() string {
	return "collidingKey"
}

func TestSyncCacher_ReprCollisionKeepsKeysApart(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := purefn.NewSyncCacher(func(k collidingKey) int {
		if k.ID == 1 {
			close(started)
			<-release
		}
		return k.ID * 10
	}, 4)

	var wg sync.WaitGroup
	var first, second int
	wg.Add(2)
	go func() {
		defer wg.Done()
		first, _ = c.Call(collidingKey{ID: 1})
	}()
	<-started
	go func() {
		defer wg.Done()
		second, _ = c.Call(collidingKey{ID: 2})
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 10, first)
	assert.Equal(t, 20, second)
	assert.Equal(t, 2, c.Len())
}

func TestSyncCacher_ZeroShardsBehavesAsOne(t *testing.T) {
	count := 0
	c := purefn.NewSyncCacher(func(i int) int {
		count++
		return -i
	}, 0)

	for range 3 {
		v, err := c.Call(5)
		require.NoError(t, err)
		assert.Equal(t, -5, v)
	}
	assert.Equal(t, 1, count)
	assert.NotEmpty(t, c.ID())
}

func TestNewSyncCacher_NilComputationPanics(t *testing.T) {
	assert.Panics(t, func() { purefn.NewSyncCacher[int, int](nil, 1) })
	assert.Panics(t, func() { purefn.NewFallibleSyncCacher[int, int](nil, 1) })
}

func TestSyncCacher_SharedFailureReachesEveryCaller(t *testing.T) {
	var evaluations atomic.Int32
	var failing atomic.Bool
	failing.Store(true)
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	c := purefn.NewFallibleSyncCacher(func(s string) (int, error) {
		evaluations.Add(1)
		once.Do(func() { close(started) })
		<-release
		if failing.Load() {
			return 0, errFlaky
		}
		return len(s), nil
	}, 4)

	const numCallers = 8
	errs := make([]error, numCallers+1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[0] = c.Call("abcd")
	}()
	<-started
	wg.Add(numCallers)
	for i := 1; i <= numCallers; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Call("abcd")
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		assert.ErrorIs(t, err, errFlaky, "caller %d", i)
	}
	assert.Equal(t, 0, c.Len())
	_, ok := c.Load("abcd")
	assert.False(t, ok)

	failing.Store(false)
	before := evaluations.Load()
	v, err := c.Call("abcd")
	require.NoError(t, err)
	assert.Equal(t, 4, v)
	assert.Equal(t, before+1, evaluations.Load())
	assert.Equal(t, 1, c.Len())
}

type panicMarker struct {
	msg string
}

func recovered(fn func()) (r any) {
	defer func() { r = recover() }()
	fn()
	return
}

func TestSyncCacher_PanicPassesThroughUnchanged(t *testing.T) {
	var evaluations atomic.Int32
	c := purefn.NewSyncCacher(func(int) int {
		evaluations.Add(1)
		panic(panicMarker{msg: "boom"})
	}, 1)
	plain := purefn.NewCacher(func(int) int {
		panic(panicMarker{msg: "boom"})
	})

	want := recovered(func() { _, _ = plain.Call(1) })
	assert.Equal(t, panicMarker{msg: "boom"}, want)

	for range 2 {
		r := recovered(func() { _, _ = c.Call(1) })
		got, ok := r.(panicMarker)
		require.True(t, ok, "expected panicMarker, got %T", r)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, int32(2), evaluations.Load())
	assert.Equal(t, 0, c.Len())
}

func TestSyncCacher_SharedPanicReachesEveryCaller(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	c := purefn.NewSyncCacher(func(int) int {
		once.Do(func() { close(started) })
		<-release
		panic(panicMarker{msg: "shared"})
	}, 2)

	const numCallers = 8
	panics := make([]any, numCallers+1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		panics[0] = recovered(func() { _, _ = c.Call(3) })
	}()
	<-started
	wg.Add(numCallers)
	for i := 1; i <= numCallers; i++ {
		go func(i int) {
			defer wg.Done()
			panics[i] = recovered(func() { _, _ = c.Call(3) })
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, r := range panics {
		assert.Equal(t, panicMarker{msg: "shared"}, r, "caller %d", i)
	}
	assert.Equal(t, 0, c.Len())
}

func TestSyncCacher_NaNKeyEvaluatesOncePerCall(t *testing.T) {
	var evaluations atomic.Int32
	c := purefn.NewSyncCacher(func(float64) int {
		evaluations.Add(1)
		return 1
	}, 4)

	v, err := c.Call(math.NaN())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, int32(1), evaluations.Load())
	assert.Equal(t, 1, c.Len())
}
