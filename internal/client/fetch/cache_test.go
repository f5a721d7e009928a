package fetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/storesight/console/internal/client/apiclient"
)

func TestQuery_FreshHitSkipsLoad(t *testing.T) {
	now := time.Unix(1000, 0)
	c := New(withClock(func() time.Time { return now }), WithRetryDelay(0))

	calls := 0
	load := func(ctx context.Context) (int, error) { calls++; return calls, nil }

	v1, _ := Query(context.Background(), c, "stores", load)
	now = now.Add(10 * time.Second)
	v2, _ := Query(context.Background(), c, "stores", load)
	if v1 != 1 || v2 != 1 || calls != 1 {
		t.Fatalf("v1=%d v2=%d calls=%d", v1, v2, calls)
	}

	now = now.Add(DefaultStaleTime)
	v3, _ := Query(context.Background(), c, "stores", load)
	if v3 != 2 {
		t.Fatalf("stale entry not refetched, got %d", v3)
	}
}

func TestQuery_RetriesOnceOnServerError(t *testing.T) {
	c := New(WithRetryDelay(0))
	calls := 0
	v, err := Query(context.Background(), c, "k", func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", &apiclient.Error{Kind: apiclient.KindServer, Status: 502}
		}
		return "ok", nil
	})
	if err != nil || v != "ok" || calls != 2 {
		t.Fatalf("v=%q err=%v calls=%d", v, err, calls)
	}
}

func TestQuery_GivesUpAfterOneRetry(t *testing.T) {
	c := New(WithRetryDelay(0))
	calls := 0
	_, err := Query(context.Background(), c, "k", func(ctx context.Context) (string, error) {
		calls++
		return "", &apiclient.Error{Kind: apiclient.KindNetwork}
	})
	if err == nil || calls != 2 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
	if _, ok := c.fresh("k"); ok {
		t.Fatal("failed load was cached")
	}
}

func TestQuery_NoRetryOnPermission(t *testing.T) {
	c := New(WithRetryDelay(0))
	calls := 0
	_, err := Query(context.Background(), c, "k", func(ctx context.Context) (string, error) {
		calls++
		return "", &apiclient.Error{Kind: apiclient.KindPermission, Status: 401}
	})
	if apiclient.KindOf(err) != apiclient.KindPermission || calls != 1 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}

func TestQuery_SharesInFlightLoad(t *testing.T) {
	c := New()
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Query(context.Background(), c, "cams", func(ctx context.Context) (string, error) {
				calls.Add(1)
				<-release
				return "cams", nil
			})
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("loads = %d, want 1", calls.Load())
	}
	for _, r := range results {
		if r != "cams" {
			t.Fatalf("results = %v", results)
		}
	}
}

func TestQuery_CancelledCallerLeavesSharedLoadRunning(t *testing.T) {
	c := New()
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	load := func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		select {
		case <-release:
			return "cams", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := Query(firstCtx, c, "cams", load)
		firstErr <- err
	}()
	<-started

	type result struct {
		v   string
		err error
	}
	second := make(chan result, 1)
	go func() {
		v, err := Query(context.Background(), c, "cams", load)
		second <- result{v, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller err = %v", err)
	}
	close(release)

	got := <-second
	if got.err != nil || got.v != "cams" {
		t.Fatalf("joined caller v=%q err=%v", got.v, got.err)
	}
	if calls.Load() != 1 {
		t.Fatalf("loads = %d, want 1", calls.Load())
	}
	if _, ok := c.fresh("cams"); !ok {
		t.Fatal("shared load result not cached")
	}
}

func TestQuery_JoinedCallerWithOtherTypeGetsError(t *testing.T) {
	c := New()
	started := make(chan struct{})
	release := make(chan struct{})

	counts := make(chan int, 1)
	go func() {
		n, _ := Query(context.Background(), c, "k", func(ctx context.Context) (int, error) {
			close(started)
			<-release
			return 7, nil
		})
		counts <- n
	}()
	<-started

	names := make(chan error, 1)
	go func() {
		_, err := Query(context.Background(), c, "k", func(ctx context.Context) (string, error) {
			return "seven", nil
		})
		names <- err
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)

	if n := <-counts; n != 7 {
		t.Fatalf("int caller got %d", n)
	}
	if err := <-names; err == nil {
		t.Fatal("string caller joined an int load without error")
	}
}

func TestInvalidatePrefix(t *testing.T) {
	c := New()
	c.Set("cameras:s1", 1)
	c.Set("cameras:s2", 2)
	c.Set("stores", 3)
	c.InvalidatePrefix("cameras:")
	if _, ok := c.fresh("cameras:s1"); ok {
		t.Fatal("cameras:s1 survived")
	}
	if _, ok := c.fresh("stores"); !ok {
		t.Fatal("stores dropped")
	}
	c.Invalidate("stores")
	if _, ok := c.fresh("stores"); ok {
		t.Fatal("stores survived Invalidate")
	}
}
