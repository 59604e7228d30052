package ratelimiter

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllow_BurstExhaustion(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 3})

	for i := 0; i < 3; i++ {
		if !rl.Allow("client-a") {
			t.Fatalf("request %d within burst should be allowed", i+1)
		}
	}
	if rl.Allow("client-a") {
		t.Error("request beyond burst should be denied")
	}
}

func TestAllow_SourcesAreIndependent(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 1})

	if !rl.Allow("client-a") {
		t.Fatal("first request for client-a should be allowed")
	}
	if rl.Allow("client-a") {
		t.Error("second request for client-a should be denied")
	}
	if !rl.Allow("client-b") {
		t.Error("client-b has its own bucket and should be allowed")
	}
}

func TestAllow_Refills(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 10, MaxBurst: 2})

	rl.Allow("client-a")
	rl.Allow("client-a")
	if rl.Allow("client-a") {
		t.Fatal("bucket should be empty")
	}

	// 10 tokens/second: 150ms is enough for at least one whole token.
	time.Sleep(150 * time.Millisecond)

	if !rl.Allow("client-a") {
		t.Error("bucket should have refilled a token")
	}
}

func TestRemaining(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 5})

	if got := rl.Remaining("client-a"); got != 5 {
		t.Errorf("Remaining before any request = %d, want 5", got)
	}

	rl.Allow("client-a")
	rl.Allow("client-a")

	if got := rl.Remaining("client-a"); got != 3 {
		t.Errorf("Remaining after two requests = %d, want 3", got)
	}
}

func TestGetMaxBurst_DefaultsToRate(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 7})

	if got := rl.GetMaxBurst(); got != 7 {
		t.Errorf("GetMaxBurst = %d, want 7", got)
	}
}

func TestGetSourceKey(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, SourceHeaderKey: "X-Forwarded-For"})

	r := httptest.NewRequest("GET", "/api/checkWatchParty", nil)
	r.RemoteAddr = "10.0.0.1:1234"

	if got := rl.GetSourceKey(r); got != "10.0.0.1:1234" {
		t.Errorf("GetSourceKey without header = %q, want remote addr", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.5")
	if got := rl.GetSourceKey(r); got != "203.0.113.5" {
		t.Errorf("GetSourceKey with header = %q, want %q", got, "203.0.113.5")
	}
}

func TestInMemoryCache(t *testing.T) {
	c := NewInMemory()

	if _, err := c.Get("missing"); err != ErrCacheMiss {
		t.Errorf("Get on missing key error = %v, want ErrCacheMiss", err)
	}

	if err := c.SetWithExpiration("k", 42, time.Minute); err != nil {
		t.Fatalf("SetWithExpiration error = %v", err)
	}
	v, err := c.Get("k")
	if err != nil {
		t.Fatalf("Get error = %v", err)
	}
	if v != 42 {
		t.Errorf("Get = %d, want 42", v)
	}
}

func TestInMemoryCache_Expiration(t *testing.T) {
	c := NewInMemory()

	if err := c.SetWithExpiration("k", 1, 5*time.Millisecond); err != nil {
		t.Fatalf("SetWithExpiration error = %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := c.Get("k"); err != ErrCacheMiss {
		t.Errorf("Get after expiry error = %v, want ErrCacheMiss", err)
	}
}
