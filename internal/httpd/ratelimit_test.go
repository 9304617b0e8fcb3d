package httpd

import (
	"testing"
	"time"
)

func TestMemoryRateLimiterFixedWindow(t *testing.T) {
	rl := NewMemoryRateLimiter()
	defer rl.Close()

	for i := 0; i < 3; i++ {
		if d := rl.Allow("ip:1.2.3.4", 3, time.Minute); !d.allowed {
			t.Fatalf("request %d unexpectedly limited", i+1)
		}
	}
	if d := rl.Allow("ip:1.2.3.4", 3, time.Minute); d.allowed {
		t.Fatal("fourth request should be limited")
	}
	// Separate keys have separate windows.
	if d := rl.Allow("ip:5.6.7.8", 3, time.Minute); !d.allowed {
		t.Fatal("different key unexpectedly limited")
	}
}

func TestMemoryRateLimiterZeroLimitDisables(t *testing.T) {
	rl := NewMemoryRateLimiter()
	defer rl.Close()

	for i := 0; i < 100; i++ {
		if d := rl.Allow("ip:1.2.3.4", 0, time.Minute); !d.allowed {
			t.Fatal("zero limit must disable limiting")
		}
	}
}

func TestMemoryRateLimiterWindowExpiry(t *testing.T) {
	rl := &memoryRateLimiter{entries: make(map[string]rateState), stopCh: make(chan struct{})}
	defer rl.Close()

	window := 10 * time.Millisecond
	if d := rl.Allow("ip:1.2.3.4", 1, window); !d.allowed {
		t.Fatal("first request limited")
	}
	if d := rl.Allow("ip:1.2.3.4", 1, window); d.allowed {
		t.Fatal("second request should be limited")
	}
	time.Sleep(2 * window)
	if d := rl.Allow("ip:1.2.3.4", 1, window); !d.allowed {
		t.Fatal("request after window expiry should pass")
	}
}
