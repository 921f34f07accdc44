package gitpress

import (
	"errors"
	"strings"
	"testing"
)

func TestCacheDisabledNeverStores(t *testing.T) {
	c := NewCache(false)
	calls := 0
	compute := func() (any, error) {
		calls++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.Get("k", compute)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if v != "value" {
			t.Errorf("Get = %v, want %q", v, "value")
		}
	}
	if calls != 3 {
		t.Errorf("compute calls = %d, want 3 (no memoization when disabled)", calls)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
	if c.Initialized() {
		t.Error("disabled cache should never report initialized")
	}
}

func TestCacheEnabledMemoizes(t *testing.T) {
	c := NewCache(true)
	calls := 0
	compute := func() (any, error) {
		calls++
		return calls, nil
	}

	v1, err := c.Get("k", compute)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	v2, err := c.Get("k", compute)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("compute calls = %d, want 1", calls)
	}
	if v1 != 1 || v2 != 1 {
		t.Errorf("values = %v, %v, want 1, 1", v1, v2)
	}
	if !c.Initialized() {
		t.Error("cache should be initialized after first miss")
	}
}

func TestCacheComputeErrorNotCached(t *testing.T) {
	c := NewCache(true)
	boom := errors.New("boom")
	calls := 0

	_, err := c.Get("k", func() (any, error) { calls++; return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0 after failed compute", c.Len())
	}
	if c.Initialized() {
		t.Error("failed compute must not mark cache initialized")
	}

	v, err := c.Get("k", func() (any, error) { calls++; return "ok", nil })
	if err != nil || v != "ok" {
		t.Fatalf("Get = %v, %v", v, err)
	}
	if calls != 2 {
		t.Errorf("compute calls = %d, want 2", calls)
	}
}

func TestCacheInvalidateAll(t *testing.T) {
	c := NewCache(true)
	c.Get("a", func() (any, error) { return 1, nil })
	c.Get("b", func() (any, error) { return 2, nil })

	c.Invalidate()

	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
	if c.Initialized() {
		t.Error("initialized should reset on invalidation")
	}

	calls := 0
	c.Get("a", func() (any, error) { calls++; return 1, nil })
	if calls != 1 {
		t.Error("invalidated key should recompute")
	}
}

func TestCacheInvalidateSingleKey(t *testing.T) {
	c := NewCache(true)
	c.Get("a", func() (any, error) { return 1, nil })
	c.Get("b", func() (any, error) { return 2, nil })

	c.Invalidate("a")

	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	// Clearing one key still resets the collection-wide flag.
	if c.Initialized() {
		t.Error("initialized should reset even on single-key invalidation")
	}

	calls := 0
	c.Get("b", func() (any, error) { calls++; return 2, nil })
	if calls != 0 {
		t.Error("surviving key should still be cached")
	}
}

func TestCacheSnapshotTruncation(t *testing.T) {
	c := NewCache(true)
	long := strings.Repeat("x", 150)
	c.Get("s", func() (any, error) { return long, nil })

	snap := c.Snapshot()
	entry, ok := snap["s"]
	if !ok {
		t.Fatal("snapshot missing key")
	}
	got, ok := entry.Preview.(string)
	if !ok {
		t.Fatalf("preview type = %T, want string", entry.Preview)
	}
	if len(got) != snapshotMaxString+len("...") {
		t.Errorf("preview length = %d, want %d", len(got), snapshotMaxString+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("preview should end with ellipsis, got %q", got)
	}
	if entry.Timestamp.IsZero() {
		t.Error("snapshot entry should carry its timestamp")
	}

	// The stored value must be untouched.
	v, _ := c.Get("s", func() (any, error) { return nil, nil })
	if v != long {
		t.Error("snapshot must not mutate the stored value")
	}
}

func TestCacheSnapshotPostPreview(t *testing.T) {
	c := NewCache(true)
	posts := []Post{{Slug: "a", Raw: strings.Repeat("r", 200), Description: "short"}}
	c.Get(cacheKeyPosts, func() (any, error) { return posts, nil })

	snap := c.Snapshot()
	got, ok := snap[cacheKeyPosts].Preview.([]Post)
	if !ok {
		t.Fatalf("preview type = %T, want []Post", snap[cacheKeyPosts].Preview)
	}
	if len(got) != 1 {
		t.Fatalf("preview posts = %d, want 1", len(got))
	}
	if len(got[0].Raw) >= 200 {
		t.Error("Raw should be truncated in the preview")
	}
	if got[0].Description != "short" {
		t.Errorf("short strings must pass through, got %q", got[0].Description)
	}
	if posts[0].Raw != strings.Repeat("r", 200) {
		t.Error("stored post must not be mutated")
	}
}
