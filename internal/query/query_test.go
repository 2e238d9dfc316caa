package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-admin/internal/cache"
	"github.com/magabrotheeeer/subscription-admin/internal/config"
)

func TestQuery_LoadMemoized(t *testing.T) {
	var calls atomic.Int32
	q := New("stats", func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 42, nil
	})

	assert.Equal(t, Idle, q.State().Status)

	st := q.Load(context.Background())
	require.Equal(t, Success, st.Status)
	assert.Equal(t, 42, st.Data)
	assert.True(t, st.HasData)

	st = q.Load(context.Background())
	assert.Equal(t, 42, st.Data)
	assert.Equal(t, int32(1), calls.Load())
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestQuery_LoadRefetchesAfterStaleTime(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	var calls atomic.Int32
	q := New("users", func(ctx context.Context) (int32, error) {
		return calls.Add(1), nil
	}, WithStaleTime(time.Minute), WithClock(clock.Now))
	ctx := context.Background()

	assert.Equal(t, int32(1), q.Load(ctx).Data)

	clock.Advance(59 * time.Second)
	assert.Equal(t, int32(1), q.Load(ctx).Data)
	assert.Equal(t, int32(1), calls.Load())

	clock.Advance(time.Second)
	st := q.Load(ctx)
	assert.Equal(t, Success, st.Status)
	assert.Equal(t, int32(2), st.Data)
	assert.Equal(t, clock.Now(), st.UpdatedAt)

	assert.Equal(t, int32(2), q.Load(ctx).Data)
	assert.Equal(t, int32(2), calls.Load())
}

func TestQuery_ZeroStaleTimeKeepsSuccess(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	var calls atomic.Int32
	q := New("plans", func(ctx context.Context) (int32, error) {
		return calls.Add(1), nil
	}, WithStaleTime(0), WithClock(clock.Now))

	q.Load(context.Background())
	clock.Advance(24 * time.Hour)
	assert.Equal(t, int32(1), q.Load(context.Background()).Data)
	assert.Equal(t, int32(1), calls.Load())
}

func TestQuery_RefetchAlwaysIssues(t *testing.T) {
	var calls atomic.Int32
	q := New("plans", func(ctx context.Context) (int32, error) {
		return calls.Add(1), nil
	})

	q.Load(context.Background())
	st := q.Refetch(context.Background())

	assert.Equal(t, Success, st.Status)
	assert.Equal(t, int32(2), st.Data)
	assert.Equal(t, int32(2), calls.Load())
}

func TestQuery_ErrorKeepsPreviousData(t *testing.T) {
	fail := errors.New("boom")
	var broken atomic.Bool
	q := New("profile", func(ctx context.Context) (string, error) {
		if broken.Load() {
			return "", fail
		}
		return "admin", nil
	})

	q.Load(context.Background())
	broken.Store(true)
	st := q.Refetch(context.Background())

	assert.Equal(t, Error, st.Status)
	assert.ErrorIs(t, st.Err, fail)
	assert.True(t, st.HasData)
	assert.Equal(t, "admin", st.Data)

	broken.Store(false)
	st = q.Load(context.Background())
	assert.Equal(t, Success, st.Status)
	assert.NoError(t, st.Err)
}

func TestQuery_ConcurrentLoadsDeduplicated(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	q := New("users", func(ctx context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	})

	var wg sync.WaitGroup
	results := make([]State[int], 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = q.Load(context.Background())
		}(i)
	}

	require.Eventually(t, func() bool { return q.State().Status == Loading }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, st := range results {
		assert.Equal(t, 7, st.Data)
	}
}

func TestQuery_StaleResponseDiscarded(t *testing.T) {
	slow := make(chan struct{})
	var n atomic.Int32
	q := New("notifications", func(ctx context.Context) (string, error) {
		if n.Add(1) == 1 {
			<-slow
			return "old", nil
		}
		return "new", nil
	})

	done := make(chan State[string])
	go func() { done <- q.Load(context.Background()) }()
	require.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, time.Millisecond)

	st := q.Refetch(context.Background())
	require.Equal(t, "new", st.Data)
	assert.Equal(t, Success, st.Status)

	close(slow)
	<-done

	st = q.State()
	assert.Equal(t, "new", st.Data)
	assert.Equal(t, Success, st.Status)
}

func TestQuery_AbandonedCallerStillApplies(t *testing.T) {
	release := make(chan struct{})
	q := New("stats", func(ctx context.Context) (int, error) {
		<-release
		return 1, ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	st := q.Load(ctx)
	assert.Equal(t, Loading, st.Status)

	close(release)
	require.Eventually(t, func() bool { return q.State().Status == Success }, time.Second, time.Millisecond)
	assert.Equal(t, 1, q.State().Data)
}

func TestQuery_Memo(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := cache.InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()}, "test:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	var calls atomic.Int32
	fetch := func(ctx context.Context) (int32, error) { return calls.Add(1), nil }

	first := New("stats", fetch, WithMemo(c, time.Minute))
	first.Load(context.Background())
	require.Equal(t, int32(1), calls.Load())

	second := New("stats", fetch, WithMemo(c, time.Minute))
	st := second.Load(context.Background())
	assert.Equal(t, Success, st.Status)
	assert.Equal(t, int32(1), st.Data)
	assert.Equal(t, int32(1), calls.Load())

	st = second.Refetch(context.Background())
	assert.Equal(t, int32(2), st.Data)
}

func TestQuery_MemoScopedByOwner(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := cache.InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()}, "test:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	var aliceCalls, bobCalls atomic.Int32
	alice := New("profile", func(ctx context.Context) (string, error) {
		aliceCalls.Add(1)
		return "alice", nil
	}, WithMemo(c, time.Minute), WithScope(func() string { return "alice" }))
	bob := New("profile", func(ctx context.Context) (string, error) {
		bobCalls.Add(1)
		return "bob", nil
	}, WithMemo(c, time.Minute), WithScope(func() string { return "bob" }))

	assert.Equal(t, "alice", alice.Load(ctx).Data)
	assert.Equal(t, "bob", bob.Load(ctx).Data)
	assert.Equal(t, int32(1), bobCalls.Load())
	assert.True(t, mr.Exists("test:alice:profile"))
	assert.True(t, mr.Exists("test:bob:profile"))

	anonymous := New("profile", func(ctx context.Context) (string, error) {
		return "nobody", nil
	}, WithMemo(c, time.Minute), WithScope(func() string { return "" }))
	assert.Equal(t, "nobody", anonymous.Load(ctx).Data)
	assert.False(t, mr.Exists("test::profile"))
	assert.False(t, mr.Exists("test:profile"))
	assert.Equal(t, int32(1), aliceCalls.Load())
}

func TestFamily_PerParam(t *testing.T) {
	var calls atomic.Int32
	f := NewFamily("earnings", func(ctx context.Context, year int) (int, error) {
		calls.Add(1)
		return year * 10, nil
	})

	assert.Same(t, f.Get(2024), f.Get(2024))
	assert.NotSame(t, f.Get(2024), f.Get(2023))
	assert.Equal(t, "earnings:2024", f.Get(2024).Name())

	assert.Equal(t, 20240, f.Get(2024).Load(context.Background()).Data)
	assert.Equal(t, 20230, f.Get(2023).Load(context.Background()).Data)
	f.Get(2024).Load(context.Background())
	assert.Equal(t, int32(2), calls.Load())
}

func TestQuery_ResetDiscardsInFlight(t *testing.T) {
	release := make(chan struct{})
	q := New("profile", func(ctx context.Context) (string, error) {
		<-release
		return "admin", nil
	})

	done := make(chan struct{})
	go func() {
		q.Load(context.Background())
		close(done)
	}()
	require.Eventually(t, func() bool { return q.State().Status == Loading }, time.Second, time.Millisecond)

	q.Reset(context.Background())
	close(release)
	<-done

	st := q.State()
	assert.Equal(t, Idle, st.Status)
	assert.False(t, st.HasData)
}
