package buildcache_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/buildcard/internal/domain/buildcache"
	. "github.com/smartystreets/goconvey/convey"
)

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
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestCache(t *testing.T) {
	Convey("Given a cache with a one minute TTL", t, func() {
		clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
		c := buildcache.New[string](buildcache.WithTTL(time.Minute), buildcache.WithClock(clock.Now))

		Convey("Fresh entries are returned", func() {
			c.Set("800", "build")
			v, ok := c.Get("800")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "build")
		})

		Convey("Expired entries are misses", func() {
			c.Set("800", "build")
			clock.Advance(time.Minute)
			_, ok := c.Get("800")
			So(ok, ShouldBeFalse)
			So(c.Len(), ShouldEqual, 0)
		})

		Convey("Purge removes only expired entries", func() {
			c.Set("old", "a")
			clock.Advance(40 * time.Second)
			c.Set("new", "b")
			clock.Advance(30 * time.Second)

			So(c.Purge(), ShouldEqual, 1)
			So(c.Len(), ShouldEqual, 1)
			_, ok := c.Get("new")
			So(ok, ShouldBeTrue)
		})
	})

	Convey("Given a bounded cache", t, func() {
		c := buildcache.New[int](buildcache.WithMaxSize(2))

		Convey("The oldest entry is evicted first", func() {
			c.Set("a", 1)
			c.Set("b", 2)
			c.Set("c", 3)
			So(c.Len(), ShouldEqual, 2)
			_, ok := c.Get("a")
			So(ok, ShouldBeFalse)
			v, ok := c.Get("c")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 3)
		})

		Convey("Replacing a key does not grow the cache", func() {
			c.Set("a", 1)
			c.Set("a", 2)
			So(c.Len(), ShouldEqual, 1)
			v, _ := c.Get("a")
			So(v, ShouldEqual, 2)
		})
	})
}

func TestGetOrFetch(t *testing.T) {
	Convey("Given concurrent requests for one key", t, func() {
		c := buildcache.New[string]()
		var calls atomic.Int32
		release := make(chan struct{})
		fetch := func(context.Context) (string, error) {
			calls.Add(1)
			<-release
			return "build", nil
		}

		var wg sync.WaitGroup
		results := make([]string, 10)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				v, err := c.GetOrFetch(context.Background(), "800", fetch)
				if err != nil {
					t.Errorf("fetch: %v", err)
				}
				results[i] = v
			}(i)
		}
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		Convey("Then the provider is called once and everyone gets the value", func() {
			So(calls.Load(), ShouldEqual, int32(1))
			for _, r := range results {
				So(r, ShouldEqual, "build")
			}
			v, ok := c.Get("800")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "build")
		})
	})

	Convey("Given a failing fetch", t, func() {
		c := buildcache.New[string]()
		boom := errors.New("boom")
		n := 0
		fetch := func(context.Context) (string, error) {
			n++
			return "", fmt.Errorf("attempt %d: %w", n, boom)
		}

		Convey("Errors are returned and not cached", func() {
			_, err := c.GetOrFetch(context.Background(), "800", fetch)
			So(errors.Is(err, boom), ShouldBeTrue)
			_, err = c.GetOrFetch(context.Background(), "800", fetch)
			So(errors.Is(err, boom), ShouldBeTrue)
			So(n, ShouldEqual, 2)
			So(c.Len(), ShouldEqual, 0)
		})
	})
}
