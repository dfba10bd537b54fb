package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/config"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeBlacklist struct {
	revoked map[string]bool
	err     error
}

func (f *fakeBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], f.err
}

type fakeSessions struct {
	current map[string]string
	locked  map[string]string // userID → 锁定原因
}

type fakeLockedErr struct{ reason string }

func (e *fakeLockedErr) Error() string      { return "account locked: " + e.reason }
func (e *fakeLockedErr) LockReason() string { return e.reason }

func (f *fakeSessions) CheckSession(_ context.Context, userID, deviceID string) error {
	if f.current[userID] != deviceID {
		return errors.New("device mismatch")
	}
	if reason, ok := f.locked[userID]; ok {
		return fmt.Errorf("check session: %w", &fakeLockedErr{reason: reason})
	}
	return nil
}

type fakeLimiter struct {
	calls int
	limit int
	err   error
	keys  []string
}

func (f *fakeLimiter) CheckRateLimit(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	f.calls++
	f.keys = append(f.keys, key)
	if f.err != nil {
		return false, f.err
	}
	return f.calls <= limit, nil
}

func newManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{JWTSecret: "middleware-test-secret-32-bytes!!", AccessTokenTTL: time.Hour})
}

// protected 构造挂载 JWTAuth 的测试路由，返回处理器内观察到的上下文值
func protected(mgr *jwt.Manager, bl TokenBlacklist, sessions SessionChecker, token string) (*httptest.ResponseRecorder, map[string]any) {
	var seen map[string]any
	r := gin.New()
	r.GET("/p", JWTAuth(mgr, bl, sessions, zap.NewNop()), func(c *gin.Context) {
		seen = c.Keys
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest("GET", "/p", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, seen
}

func TestJWTAuth_Success(t *testing.T) {
	mgr := newManager()
	token, err := mgr.GenerateAccessToken("emp-1", "employee", "team-a", "dev-1")
	if err != nil {
		t.Fatal(err)
	}
	sessions := &fakeSessions{current: map[string]string{"emp-1": "dev-1"}}

	w, keys := protected(mgr, &fakeBlacklist{}, sessions, token)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if keys["user_id"] != "emp-1" || keys["team_id"] != "team-a" || keys["device_id"] != "dev-1" {
		t.Errorf("unexpected context: %v", keys)
	}
	if keys["token_jti"] == "" {
		t.Error("expected token_jti to be set")
	}
	if _, ok := keys["token_exp"].(time.Time); !ok {
		t.Error("expected token_exp to be a time.Time")
	}
}

func TestJWTAuth_MissingOrMalformedHeader(t *testing.T) {
	mgr := newManager()
	w, _ := protected(mgr, nil, nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	w, _ = protected(mgr, nil, nil, "garbage")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestJWTAuth_RevokedToken(t *testing.T) {
	mgr := newManager()
	token, _ := mgr.GenerateAccessToken("emp-1", "employee", "", "dev-1")
	claims, _ := mgr.ParseToken(token)

	bl := &fakeBlacklist{revoked: map[string]bool{claims.ID: true}}
	w, _ := protected(mgr, bl, nil, token)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for revoked token, got %d", w.Code)
	}
}

func TestJWTAuth_BlacklistErrorFailsOpen(t *testing.T) {
	mgr := newManager()
	token, _ := mgr.GenerateAccessToken("emp-1", "employee", "", "dev-1")

	w, _ := protected(mgr, &fakeBlacklist{err: errors.New("redis down")}, nil, token)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 when blacklist is unavailable, got %d", w.Code)
	}
}

func TestJWTAuth_ReplacedDevice(t *testing.T) {
	mgr := newManager()
	token, _ := mgr.GenerateAccessToken("emp-1", "employee", "", "dev-old")
	sessions := &fakeSessions{current: map[string]string{"emp-1": "dev-new"}}

	w, _ := protected(mgr, nil, sessions, token)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for replaced device, got %d", w.Code)
	}
}

func TestJWTAuth_LockedAccount(t *testing.T) {
	mgr := newManager()
	token, _ := mgr.GenerateAccessToken("emp-1", "employee", "team-a", "dev-1")
	sessions := &fakeSessions{
		current: map[string]string{"emp-1": "dev-1"},
		locked:  map[string]string{"emp-1": "Missed duty out deadline"},
	}

	reached := false
	r := gin.New()
	r.POST("/api/v1/breaks", JWTAuth(mgr, nil, sessions, zap.NewNop()), func(c *gin.Context) {
		reached = true
		c.Status(http.StatusCreated)
	})
	req := httptest.NewRequest("POST", "/api/v1/breaks", strings.NewReader(`{"reason":"lunch"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusLocked {
		t.Fatalf("expected 423 for locked account, got %d", w.Code)
	}
	if reached {
		t.Error("locked account must not reach the break handler")
	}
	var body struct {
		Code    int    `json:"code"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Code != 10007 || body.Details != "Missed duty out deadline" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestRoleAuth(t *testing.T) {
	run := func(role string) int {
		r := gin.New()
		r.GET("/a", func(c *gin.Context) {
			c.Set("role", role)
			c.Next()
		}, RoleAuth("team_leader", "admin"), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/a", nil))
		return w.Code
	}

	if code := run("team_leader"); code != http.StatusOK {
		t.Errorf("team_leader: expected 200, got %d", code)
	}
	if code := run("employee"); code != http.StatusForbidden {
		t.Errorf("employee: expected 403, got %d", code)
	}
}

func TestRateLimit(t *testing.T) {
	limiter := &fakeLimiter{}
	r := gin.New()
	r.POST("/duty-in", RateLimit(limiter, 2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/duty-in", nil))
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status sequence %v", codes)
	}
	if limiter.keys[0] != "rate_limit:192.0.2.1:/duty-in" {
		t.Errorf("unexpected key %q", limiter.keys[0])
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/duty-in", nil))
	if got := w.Header().Get("Retry-After"); got != "60" {
		t.Errorf("expected Retry-After 60, got %q", got)
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	r := gin.New()
	r.POST("/x", RateLimit(&fakeLimiter{err: errors.New("redis down")}, 1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/x", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/r", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("GET", "/r", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("expected propagated id, got %q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/r", nil))
	if len(w.Header().Get("X-Request-ID")) != 36 {
		t.Errorf("expected generated uuid, got %q", w.Header().Get("X-Request-ID"))
	}

	for _, bad := range []string{"abc 123", "id\nforged=1", strings.Repeat("a", 65)} {
		req := httptest.NewRequest("GET", "/r", nil)
		req.Header.Set("X-Request-ID", bad)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if got := w.Header().Get("X-Request-ID"); got == bad || len(got) != 36 {
			t.Errorf("unsafe id %q should be replaced, got %q", bad, got)
		}
	}
}

func TestLogger_LockedRequestsLoggedSeparately(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := gin.New()
	r.Use(RequestID(), Logger(zap.New(core)))
	r.POST("/api/v1/breaks", func(c *gin.Context) {
		c.Set("user_id", "emp-1")
		c.Status(http.StatusLocked)
	})
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/v1/breaks", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	locked := entries[0]
	if locked.Level != zap.WarnLevel || locked.Message != "账号锁定拦截" {
		t.Errorf("unexpected locked entry: %s %q", locked.Level, locked.Message)
	}
	fields := locked.ContextMap()
	if fields["user_id"] != "emp-1" || fields["request_id"] == nil {
		t.Errorf("missing context fields: %v", fields)
	}
	if entries[1].Level != zap.DebugLevel {
		t.Errorf("health probe should log at debug, got %s", entries[1].Level)
	}
}

func TestSecurityHeaders_HSTSBehindHTTPS(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/s", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/s", nil))
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Error("plain http should not get HSTS")
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Error("expected Cache-Control no-store")
	}

	req := httptest.NewRequest("GET", "/s", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Error("expected HSTS behind https proxy")
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/c", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("OPTIONS", "/c", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Error("expected allowed origin echoed")
	}
	if !strings.Contains(w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition") {
		t.Error("expected Content-Disposition exposed")
	}

	req = httptest.NewRequest("GET", "/c", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unknown origin must not be allowed")
	}
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/b", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("POST", "/b", strings.NewReader("0123456789"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}
