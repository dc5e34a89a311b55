// Package ratelimit throttles sign-in attempts: password logins and
// one-time-code sends and verifications.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config holds rate limit configuration.
type Config struct {
	// OTP send limits
	SendCooldown     time.Duration
	SendMaxPerHour   int
	SendMaxIPPerHour int

	// OTP verify limits
	VerifyMaxAttempts  int
	VerifyLockout      time.Duration
	VerifyMaxIPPerHour int

	// Password login limits
	LoginMaxAttempts  int
	LoginLockout      time.Duration
	LoginMaxIPPerHour int

	// Clock for testing (nil uses real time)
	Clock Clock
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() *Config {
	return &Config{
		SendCooldown:       60 * time.Second,
		SendMaxPerHour:     5,
		SendMaxIPPerHour:   20,
		VerifyMaxAttempts:  5,
		VerifyLockout:      5 * time.Minute,
		VerifyMaxIPPerHour: 30,
		LoginMaxAttempts:   5,
		LoginLockout:       15 * time.Minute,
		LoginMaxIPPerHour:  50,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

type entry struct {
	count    int
	firstAt  time.Time // First request in window
	lastAt   time.Time // Most recent request (for cooldown)
	lockedAt time.Time // Zero if not locked
}

// attemptPolicy bounds failed attempts for one kind of credential check.
type attemptPolicy struct {
	maxAttempts int
	lockout     time.Duration
	maxIPPerHr  int
}

// attemptTable tracks failures per identifier and per IP.
type attemptTable struct {
	prefix string
	byID   map[string]*entry
	byIP   map[string]*entry
}

func newAttemptTable(prefix string) *attemptTable {
	return &attemptTable{
		prefix: prefix,
		byID:   make(map[string]*entry),
		byIP:   make(map[string]*entry),
	}
}

// Limiter implements multi-layer rate limiting for sign-in operations.
type Limiter struct {
	config *Config
	clock  Clock
	mu     sync.RWMutex
	// Keyed by hash of identifier or IP
	sendByID map[string]*entry
	sendByIP map[string]*entry
	verify   *attemptTable
	login    *attemptTable

	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

// New creates a new rate limiter with the given config.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:        cfg,
		clock:         clock,
		sendByID:      make(map[string]*entry),
		sendByIP:      make(map[string]*entry),
		verify:        newAttemptTable("verify"),
		login:         newAttemptTable("login"),
		cleanupCtx:    ctx,
		cleanupCancel: cancel,
	}
}

// Close stops the cleanup goroutine and releases resources.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

func (l *Limiter) verifyPolicy() attemptPolicy {
	return attemptPolicy{
		maxAttempts: l.config.VerifyMaxAttempts,
		lockout:     l.config.VerifyLockout,
		maxIPPerHr:  l.config.VerifyMaxIPPerHour,
	}
}

func (l *Limiter) loginPolicy() attemptPolicy {
	return attemptPolicy{
		maxAttempts: l.config.LoginMaxAttempts,
		lockout:     l.config.LoginLockout,
		maxIPPerHr:  l.config.LoginMaxIPPerHour,
	}
}

// CheckOTPSend checks if an OTP send request is allowed.
// Does NOT record the attempt - call RecordOTPSend after successful user validation.
func (l *Limiter) CheckOTPSend(identifier, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	idKey := l.hashKey("send:id:", normalizeIdentifier(identifier))
	ipKey := l.hashKey("send:ip:", ip)

	l.mu.RLock()
	defer l.mu.RUnlock()

	if e := l.sendByID[idKey]; e != nil {
		elapsed := now.Sub(e.lastAt)
		if elapsed < l.config.SendCooldown {
			return LimitResult{
				Allowed:    false,
				RetryAfter: l.config.SendCooldown - elapsed,
				Reason:     "cooldown",
			}
		}

		if now.Sub(e.firstAt) < time.Hour && e.count >= l.config.SendMaxPerHour {
			return LimitResult{
				Allowed:    false,
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "hourly_limit",
			}
		}
	}

	if e := l.sendByIP[ipKey]; e != nil {
		if now.Sub(e.firstAt) < time.Hour && e.count >= l.config.SendMaxIPPerHour {
			return LimitResult{
				Allowed:    false,
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "ip_hourly_limit",
			}
		}
	}

	return LimitResult{Allowed: true}
}

// RecordOTPSend records a successful OTP send. Call this AFTER user validation succeeds.
func (l *Limiter) RecordOTPSend(identifier, ip string) {
	now := l.clock.Now()
	idKey := l.hashKey("send:id:", normalizeIdentifier(identifier))
	ipKey := l.hashKey("send:ip:", ip)

	l.mu.Lock()
	defer l.mu.Unlock()

	bump(l.sendByID, idKey, now)
	bump(l.sendByIP, ipKey, now)
}

// CheckOTPVerify checks if an OTP verify attempt is allowed.
func (l *Limiter) CheckOTPVerify(identifier, ip string) LimitResult {
	return l.checkAttempt(l.verify, l.verifyPolicy(), identifier, ip)
}

// RecordOTPVerify records an OTP verify attempt and reports whether it
// started a lockout.
func (l *Limiter) RecordOTPVerify(identifier, ip string) (lockedOut bool) {
	return l.recordAttempt(l.verify, l.verifyPolicy(), identifier, ip)
}

// ResetVerifyAttempts clears verify attempt counter after successful verification.
func (l *Limiter) ResetVerifyAttempts(identifier string) {
	l.resetAttempts(l.verify, identifier)
}

// CheckLogin checks if a password login attempt is allowed.
func (l *Limiter) CheckLogin(identifier, ip string) LimitResult {
	return l.checkAttempt(l.login, l.loginPolicy(), identifier, ip)
}

// RecordLoginFailure records a failed password login and reports whether it
// started a lockout.
func (l *Limiter) RecordLoginFailure(identifier, ip string) (lockedOut bool) {
	return l.recordAttempt(l.login, l.loginPolicy(), identifier, ip)
}

// ResetLogin clears failed logins after a successful one.
func (l *Limiter) ResetLogin(identifier string) {
	l.resetAttempts(l.login, identifier)
}

func (l *Limiter) checkAttempt(table *attemptTable, policy attemptPolicy, identifier, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	idKey := l.hashKey(table.prefix+":id:", normalizeIdentifier(identifier))
	ipKey := l.hashKey(table.prefix+":ip:", ip)

	l.mu.RLock()
	defer l.mu.RUnlock()

	if e := table.byID[idKey]; e != nil {
		if !e.lockedAt.IsZero() {
			elapsed := now.Sub(e.lockedAt)
			if elapsed < policy.lockout {
				return LimitResult{
					Allowed:    false,
					RetryAfter: policy.lockout - elapsed,
					Reason:     "lockout",
				}
			}
		} else if e.count >= policy.maxAttempts {
			return LimitResult{
				Allowed:    false,
				RetryAfter: policy.lockout,
				Reason:     "max_attempts",
			}
		}
	}

	if e := table.byIP[ipKey]; e != nil {
		if now.Sub(e.firstAt) < time.Hour && e.count >= policy.maxIPPerHr {
			return LimitResult{
				Allowed:    false,
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "ip_hourly_limit",
			}
		}
	}

	return LimitResult{Allowed: true}
}

func (l *Limiter) recordAttempt(table *attemptTable, policy attemptPolicy, identifier, ip string) (lockedOut bool) {
	now := l.clock.Now()
	idKey := l.hashKey(table.prefix+":id:", normalizeIdentifier(identifier))
	ipKey := l.hashKey(table.prefix+":ip:", ip)

	l.mu.Lock()
	defer l.mu.Unlock()

	e := table.byID[idKey]
	switch {
	case e == nil:
		e = &entry{count: 1, firstAt: now, lastAt: now}
		table.byID[idKey] = e
	case !e.lockedAt.IsZero() && now.Sub(e.lockedAt) >= policy.lockout:
		e = &entry{count: 1, firstAt: now, lastAt: now}
		table.byID[idKey] = e
	default:
		e.count++
		e.lastAt = now
	}
	if e.count >= policy.maxAttempts && e.lockedAt.IsZero() {
		e.lockedAt = now
		lockedOut = true
	}

	bump(table.byIP, ipKey, now)
	return lockedOut
}

func (l *Limiter) resetAttempts(table *attemptTable, identifier string) {
	idKey := l.hashKey(table.prefix+":id:", normalizeIdentifier(identifier))
	l.mu.Lock()
	delete(table.byID, idKey)
	l.mu.Unlock()
}

// bump counts a request in an hourly window.
func bump(entries map[string]*entry, key string, now time.Time) {
	e := entries[key]
	if e == nil || now.Sub(e.firstAt) >= time.Hour {
		entries[key] = &entry{count: 1, firstAt: now, lastAt: now}
		return
	}
	e.count++
	e.lastAt = now
}

func (l *Limiter) hashKey(prefix, value string) string {
	hash := sha256.Sum256([]byte(value))
	return prefix + hex.EncodeToString(hash[:8])
}

// normalizeIdentifier lowercases the identifier to prevent case-based bypass.
func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.C:
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	pruneOlderThan(l.sendByID, now, time.Hour)
	pruneOlderThan(l.sendByIP, now, time.Hour)
	pruneOlderThan(l.verify.byID, now, l.config.VerifyLockout+time.Hour)
	pruneOlderThan(l.verify.byIP, now, time.Hour)
	pruneOlderThan(l.login.byID, now, l.config.LoginLockout+time.Hour)
	pruneOlderThan(l.login.byIP, now, time.Hour)
}

func pruneOlderThan(entries map[string]*entry, now time.Time, maxAge time.Duration) {
	for k, e := range entries {
		if now.Sub(e.lastAt) > maxAge {
			delete(entries, k)
		}
	}
}

// GetClientIP extracts the client IP from a request.
// When trustProxy is true, uses the rightmost IP from X-Forwarded-For (added by your proxy).
// When trustProxy is false, ignores X-Forwarded-For entirely (prevents spoofing).
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// Use RIGHTMOST IP - this is the one your proxy added, not user-supplied
			parts := strings.Split(xff, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				ip := strings.TrimSpace(parts[i])
				// Skip private/internal IPs to find the real client
				if ip != "" && !isPrivateIP(ip) {
					return ip
				}
			}
			// All IPs are private, use the last one
			return strings.TrimSpace(parts[len(parts)-1])
		}

		// Check X-Real-IP (set by nginx)
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	// Fall back to RemoteAddr (direct connection or untrusted proxy)
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port (e.g., Unix socket or malformed)
		// Try to parse as IP directly, otherwise return as-is
		if parsed := net.ParseIP(r.RemoteAddr); parsed != nil {
			return r.RemoteAddr
		}
		// Last resort: strip anything after last colon that looks like a port
		if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
			candidate := r.RemoteAddr[:idx]
			if net.ParseIP(candidate) != nil {
				return candidate
			}
		}
		return r.RemoteAddr
	}
	return ip
}

// privateNetworks holds parsed CIDR ranges for private/reserved IPs.
// Parsed once at package init for efficiency.
var privateNetworks []*net.IPNet

func init() {
	privateRanges := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"::1/128",
		"fc00::/7",
		"fe80::/10", // Link-local
	}
	for _, cidr := range privateRanges {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid private CIDR: " + cidr)
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// isPrivateIP checks if an IP is in a private/reserved range.
// Handles both IPv4 and IPv4-mapped IPv6 addresses (e.g., ::ffff:192.168.1.1).
func isPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}

	// Convert IPv4-mapped IPv6 to IPv4 for consistent matching
	// e.g., ::ffff:192.168.1.1 -> 192.168.1.1
	if ipv4 := ip.To4(); ipv4 != nil {
		ip = ipv4
	}

	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// SanitizeIdentifier masks an identifier for logging.
func SanitizeIdentifier(identifier string) string {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if strings.Contains(identifier, "@") {
		parts := strings.Split(identifier, "@")
		if len(parts[0]) > 2 {
			return parts[0][:2] + "***@" + parts[1]
		}
		return "***@" + parts[1]
	}
	// Phone: show last 4 digits
	if len(identifier) >= 4 {
		return "***" + identifier[len(identifier)-4:]
	}
	return "***"
}

// LogRateLimitExceeded logs a rate limit event with sanitized identifier.
func LogRateLimitExceeded(limitType, identifier, ip, reason string) {
	log.Warn().
		Str("event", "rate_limit_exceeded").
		Str("type", limitType).
		Str("identifier", SanitizeIdentifier(identifier)).
		Str("ip", ip).
		Str("reason", reason).
		Msg("Sign-in rate limit exceeded")
}
