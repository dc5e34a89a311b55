package ratelimit

import (
	"net/http"
	"sync"
	"testing"
	"time"
)

type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCheckOTPSend_CooldownAndHourlyLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		SendCooldown:     60 * time.Second,
		SendMaxPerHour:   2,
		SendMaxIPPerHour: 20,
		Clock:            clock,
	})
	defer limiter.Close()

	identifier := "player@example.com"
	ip := "203.0.113.9"

	if result := limiter.CheckOTPSend(identifier, ip); !result.Allowed {
		t.Fatalf("first send blocked: %s", result.Reason)
	}
	limiter.RecordOTPSend(identifier, ip)

	clock.Advance(20 * time.Second)
	result := limiter.CheckOTPSend(identifier, ip)
	if result.Allowed || result.Reason != "cooldown" {
		t.Fatalf("expected cooldown, got %+v", result)
	}
	if result.RetryAfter != 40*time.Second {
		t.Fatalf("RetryAfter = %v, want 40s", result.RetryAfter)
	}

	clock.Advance(41 * time.Second)
	if result := limiter.CheckOTPSend(identifier, ip); !result.Allowed {
		t.Fatalf("send after cooldown blocked: %s", result.Reason)
	}
	limiter.RecordOTPSend(identifier, ip)

	clock.Advance(2 * time.Minute)
	result = limiter.CheckOTPSend("  PLAYER@example.com ", ip)
	if result.Allowed || result.Reason != "hourly_limit" {
		t.Fatalf("expected hourly_limit for normalized identifier, got %+v", result)
	}

	clock.Advance(time.Hour)
	if result := limiter.CheckOTPSend(identifier, ip); !result.Allowed {
		t.Fatalf("send after window blocked: %s", result.Reason)
	}
}

func TestCheckOTPSend_IPLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		SendCooldown:     time.Millisecond,
		SendMaxPerHour:   10,
		SendMaxIPPerHour: 2,
		Clock:            clock,
	})
	defer limiter.Close()

	ip := "203.0.113.10"
	for _, identifier := range []string{"a@example.com", "b@example.com"} {
		if result := limiter.CheckOTPSend(identifier, ip); !result.Allowed {
			t.Fatalf("send for %s blocked: %s", identifier, result.Reason)
		}
		limiter.RecordOTPSend(identifier, ip)
	}

	result := limiter.CheckOTPSend("c@example.com", ip)
	if result.Allowed || result.Reason != "ip_hourly_limit" {
		t.Fatalf("expected ip_hourly_limit, got %+v", result)
	}
}

func TestCheckOTPSend_CheckDoesNotConsume(t *testing.T) {
	limiter := New(&Config{SendCooldown: time.Minute, SendMaxPerHour: 1, SendMaxIPPerHour: 100, Clock: newMockClock()})
	defer limiter.Close()

	for i := 0; i < 5; i++ {
		if result := limiter.CheckOTPSend("x@example.com", "203.0.113.1"); !result.Allowed {
			t.Fatalf("check %d blocked without a recorded send", i+1)
		}
	}
}

func TestAttemptLimits(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		check   func(l *Limiter, id, ip string) LimitResult
		record  func(l *Limiter, id, ip string) bool
		reset   func(l *Limiter, id string)
		lockout time.Duration
	}{
		{
			name:    "otp verify",
			cfg:     Config{VerifyMaxAttempts: 3, VerifyLockout: 5 * time.Minute, VerifyMaxIPPerHour: 30},
			check:   (*Limiter).CheckOTPVerify,
			record:  (*Limiter).RecordOTPVerify,
			reset:   (*Limiter).ResetVerifyAttempts,
			lockout: 5 * time.Minute,
		},
		{
			name:    "password login",
			cfg:     Config{LoginMaxAttempts: 3, LoginLockout: 15 * time.Minute, LoginMaxIPPerHour: 30},
			check:   (*Limiter).CheckLogin,
			record:  (*Limiter).RecordLoginFailure,
			reset:   (*Limiter).ResetLogin,
			lockout: 15 * time.Minute,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name+" lockout", func(t *testing.T) {
			clock := newMockClock()
			cfg := tc.cfg
			cfg.Clock = clock
			limiter := New(&cfg)
			defer limiter.Close()

			id, ip := "member@example.com", "203.0.113.20"
			for i := 1; i <= 3; i++ {
				if result := tc.check(limiter, id, ip); !result.Allowed {
					t.Fatalf("attempt %d blocked: %s", i, result.Reason)
				}
				lockedOut := tc.record(limiter, id, ip)
				if lockedOut != (i == 3) {
					t.Fatalf("attempt %d lockedOut = %v", i, lockedOut)
				}
			}

			result := tc.check(limiter, id, ip)
			if result.Allowed || result.Reason != "lockout" {
				t.Fatalf("expected lockout, got %+v", result)
			}
			if result.RetryAfter != tc.lockout {
				t.Fatalf("RetryAfter = %v, want %v", result.RetryAfter, tc.lockout)
			}

			clock.Advance(tc.lockout + time.Second)
			if result := tc.check(limiter, id, ip); !result.Allowed {
				t.Fatalf("attempt after lockout blocked: %s", result.Reason)
			}
			if tc.record(limiter, id, ip) {
				t.Fatalf("first attempt after lockout should start a fresh count")
			}
		})

		t.Run(tc.name+" reset", func(t *testing.T) {
			cfg := tc.cfg
			cfg.Clock = newMockClock()
			limiter := New(&cfg)
			defer limiter.Close()

			id, ip := "reset@example.com", "203.0.113.21"
			tc.record(limiter, id, ip)
			tc.record(limiter, id, ip)
			tc.reset(limiter, id)

			for i := 1; i <= 2; i++ {
				if result := tc.check(limiter, id, ip); !result.Allowed {
					t.Fatalf("attempt %d after reset blocked: %s", i, result.Reason)
				}
				tc.record(limiter, id, ip)
			}
		})
	}
}

func TestLoginAndVerifyAreTrackedSeparately(t *testing.T) {
	limiter := New(&Config{
		VerifyMaxAttempts:  2,
		VerifyLockout:      time.Minute,
		VerifyMaxIPPerHour: 100,
		LoginMaxAttempts:   2,
		LoginLockout:       time.Minute,
		LoginMaxIPPerHour:  100,
		Clock:              newMockClock(),
	})
	defer limiter.Close()

	id, ip := "split@example.com", "203.0.113.22"
	limiter.RecordLoginFailure(id, ip)
	limiter.RecordLoginFailure(id, ip)

	if result := limiter.CheckLogin(id, ip); result.Allowed {
		t.Fatalf("expected login lockout")
	}
	if result := limiter.CheckOTPVerify(id, ip); !result.Allowed {
		t.Fatalf("verify should not share login failures: %s", result.Reason)
	}
}

func TestCheckLogin_IPLimit(t *testing.T) {
	limiter := New(&Config{LoginMaxAttempts: 100, LoginLockout: time.Minute, LoginMaxIPPerHour: 2, Clock: newMockClock()})
	defer limiter.Close()

	ip := "203.0.113.23"
	limiter.RecordLoginFailure("a@example.com", ip)
	limiter.RecordLoginFailure("b@example.com", ip)

	result := limiter.CheckLogin("c@example.com", ip)
	if result.Allowed || result.Reason != "ip_hourly_limit" {
		t.Fatalf("expected ip_hourly_limit, got %+v", result)
	}
}

func TestCleanupPrunesStaleEntries(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		SendCooldown:       time.Minute,
		SendMaxPerHour:     5,
		SendMaxIPPerHour:   5,
		VerifyMaxAttempts:  5,
		VerifyLockout:      time.Minute,
		VerifyMaxIPPerHour: 5,
		LoginMaxAttempts:   5,
		LoginLockout:       time.Minute,
		LoginMaxIPPerHour:  5,
		Clock:              clock,
	})
	defer limiter.Close()

	limiter.RecordOTPSend("a@example.com", "203.0.113.30")
	limiter.RecordLoginFailure("a@example.com", "203.0.113.30")
	clock.Advance(3 * time.Hour)
	limiter.cleanup()

	limiter.mu.RLock()
	defer limiter.mu.RUnlock()
	if len(limiter.sendByID) != 0 || len(limiter.login.byID) != 0 || len(limiter.login.byIP) != 0 {
		t.Fatalf("expected stale entries to be pruned")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		trustProxy bool
		expected   string
	}{
		{"proxy rightmost public", map[string]string{"X-Forwarded-For": "203.0.113.50, 10.0.0.1"}, "10.0.0.1:12345", true, "203.0.113.50"},
		{"proxy all private", map[string]string{"X-Forwarded-For": "192.168.1.1, 10.0.0.1"}, "10.0.0.1:12345", true, "10.0.0.1"},
		{"proxy real ip", map[string]string{"X-Real-IP": "203.0.113.51"}, "10.0.0.1:12345", true, "203.0.113.51"},
		{"untrusted ignores forwarded", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "192.168.1.100:54321", false, "192.168.1.100"},
		{"untrusted ignores real ip", map[string]string{"X-Real-IP": "203.0.113.51"}, "192.168.1.100:54321", false, "192.168.1.100"},
		{"remote addr without port", nil, "192.168.1.100", false, "192.168.1.100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r, tt.trustProxy); got != tt.expected {
				t.Fatalf("GetClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	private := []string{"10.0.0.1", "172.16.0.1", "192.168.1.1", "127.0.0.1", "::1", "fc00::1", "fe80::1", "::ffff:10.0.0.1"}
	public := []string{"203.0.113.50", "8.8.8.8", "::ffff:8.8.8.8", "2001:4860:4860::8888", "invalid", ""}

	for _, ip := range private {
		if !isPrivateIP(ip) {
			t.Fatalf("isPrivateIP(%q) = false", ip)
		}
	}
	for _, ip := range public {
		if isPrivateIP(ip) {
			t.Fatalf("isPrivateIP(%q) = true", ip)
		}
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := map[string]string{
		"john.doe@example.com": "jo***@example.com",
		"AB@EXAMPLE.COM":       "***@example.com",
		"+15551234567":         "***4567",
		"123":                  "***",
		"  Pat@Example.Com  ":  "pa***@example.com",
	}
	for input, want := range tests {
		if got := SanitizeIdentifier(input); got != want {
			t.Fatalf("SanitizeIdentifier(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestLimiterCloseDoesNotHang(t *testing.T) {
	limiter := New(nil)
	limiter.CheckLogin("test@example.com", "1.2.3.4")

	done := make(chan struct{})
	go func() {
		limiter.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close() hung")
	}
}

func TestConcurrentAccess(t *testing.T) {
	limiter := New(&Config{
		SendCooldown:       time.Millisecond,
		SendMaxPerHour:     1000,
		SendMaxIPPerHour:   1000,
		VerifyMaxAttempts:  1000,
		VerifyLockout:      time.Minute,
		VerifyMaxIPPerHour: 1000,
		LoginMaxAttempts:   1000,
		LoginLockout:       time.Minute,
		LoginMaxIPPerHour:  1000,
		Clock:              newMockClock(),
	})
	defer limiter.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if limiter.CheckOTPSend("user@example.com", "192.168.1.1").Allowed {
					limiter.RecordOTPSend("user@example.com", "192.168.1.1")
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if limiter.CheckLogin("user@example.com", "192.168.1.2").Allowed {
					limiter.RecordLoginFailure("user@example.com", "192.168.1.2")
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				limiter.ResetLogin("user@example.com")
			}
		}()
	}
	wg.Wait()
}
