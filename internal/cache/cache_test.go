package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New(true)

	etag := c.Set("match:1", []byte(`{"id":"1"}`), time.Minute)
	if etag == "" {
		t.Fatal("empty etag")
	}

	data, gotETag, ok := c.Get("match:1")
	if !ok {
		t.Fatal("entry not found")
	}
	if string(data) != `{"id":"1"}` {
		t.Errorf("data = %s", data)
	}
	if gotETag != etag {
		t.Errorf("etag = %q, want %q", gotETag, etag)
	}
}

func TestExpiry(t *testing.T) {
	c := New(true)
	c.Set("match:1", []byte("x"), -time.Second)
	if _, _, ok := c.Get("match:1"); ok {
		t.Error("expired entry returned")
	}
}

func TestDisabledCache(t *testing.T) {
	c := New(false)
	etag := c.Set("match:1", []byte("x"), time.Minute)
	if etag == "" {
		t.Error("disabled cache should still compute etag")
	}
	if _, _, ok := c.Get("match:1"); ok {
		t.Error("disabled cache returned a value")
	}
}

func TestInvalidatePrefix(t *testing.T) {
	c := New(true)
	c.Set("match:1", []byte("a"), time.Minute)
	c.Set("match:1:heats", []byte("b"), time.Minute)
	c.Set("teams", []byte("c"), time.Minute)

	c.Invalidate("match:1")

	if _, _, ok := c.Get("match:1"); ok {
		t.Error("match:1 survived invalidation")
	}
	if _, _, ok := c.Get("match:1:heats"); ok {
		t.Error("match:1:heats survived invalidation")
	}
	if _, _, ok := c.Get("teams"); !ok {
		t.Error("unrelated key was invalidated")
	}
}

func TestETagMatch(t *testing.T) {
	etag := ComputeETag([]byte("payload"))
	if !CheckETagMatch(etag, etag) {
		t.Error("identical etag did not match")
	}
	if !CheckETagMatch("*", etag) {
		t.Error("wildcard did not match")
	}
	if CheckETagMatch("", etag) {
		t.Error("empty header matched")
	}
	if CheckETagMatch(`W/"other"`, etag) {
		t.Error("different etag matched")
	}
}
