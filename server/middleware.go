package server

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// authConfig guards the /admin routes. With no credentials configured the
// routes are open, which is only meant for local development.
type authConfig struct {
	user, password string
	token          string
}

func newAuthConfig(user, password, token string) *authConfig {
	cfg := &authConfig{user: user, password: password, token: token}
	if !cfg.required() {
		slog.Warn("admin routes are open; set ADMIN_TOKEN or ADMIN_USERNAME and ADMIN_PASSWORD")
	}
	return cfg
}

func (c *authConfig) required() bool {
	return c.token != "" || (c.user != "" && c.password != "")
}

func secretEqual(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// authorized accepts the X-Admin-Token header or basic auth.
func (c *authConfig) authorized(r *http.Request) bool {
	if c.token != "" {
		if got := r.Header.Get("X-Admin-Token"); got != "" && secretEqual(got, c.token) {
			return true
		}
	}
	if c.user == "" || c.password == "" {
		return false
	}
	user, password, ok := r.BasicAuth()
	userOK, passwordOK := secretEqual(user, c.user), secretEqual(password, c.password)
	return ok && userOK && passwordOK
}

func adminAuth(next http.Handler, cfg *authConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !cfg.required() || cfg.authorized(r) {
			next.ServeHTTP(w, r)
			return
		}
		slog.Warn("admin request refused", slog.String("path", r.URL.Path), slog.String("ip", clientIP(r)))
		w.Header().Set("WWW-Authenticate", `Basic realm="chat-thief admin"`)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}

type rateLimiterConfig struct {
	enabled       bool
	requestsPerIP int
	window        time.Duration
}

// ipRateLimiter counts admin requests per client IP in fixed windows.
type ipRateLimiter struct {
	cfg rateLimiterConfig

	mu      sync.Mutex
	windows map[string]*ipWindow
}

type ipWindow struct {
	start time.Time
	count int
}

func newIPRateLimiter(ctx context.Context, cfg *rateLimiterConfig) *ipRateLimiter {
	l := &ipRateLimiter{cfg: *cfg, windows: make(map[string]*ipWindow)}
	if l.cfg.requestsPerIP <= 0 {
		l.cfg.requestsPerIP = 10
	}
	if l.cfg.window <= 0 {
		l.cfg.window = time.Minute
	}
	go l.sweep(ctx)
	return l
}

// sweep drops expired windows until ctx ends.
func (l *ipRateLimiter) sweep(ctx context.Context) {
	t := time.NewTicker(l.cfg.window)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			l.mu.Lock()
			for ip, w := range l.windows {
				if now.Sub(w.start) >= l.cfg.window {
					delete(l.windows, ip)
				}
			}
			l.mu.Unlock()
		}
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	if !l.cfg.enabled {
		return true
	}
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[ip]
	if !ok || now.Sub(w.start) >= l.cfg.window {
		l.windows[ip] = &ipWindow{start: now, count: 1}
		return true
	}
	if w.count >= l.cfg.requestsPerIP {
		return false
	}
	w.count++
	return true
}

func rateLimitMiddleware(next http.Handler, limiter *ipRateLimiter) http.Handler {
	retryAfter := strconv.Itoa(int(limiter.cfg.window.Seconds()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if limiter.allow(ip) {
			next.ServeHTTP(w, r)
			return
		}
		slog.Warn("admin rate limit hit", slog.String("ip", ip), slog.String("path", r.URL.Path))
		w.Header().Set("Retry-After", retryAfter)
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
	})
}

// clientIP takes the first X-Forwarded-For hop, else RemoteAddr, without port.
func clientIP(r *http.Request) string {
	ip := r.RemoteAddr
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		ip, _, _ = strings.Cut(forwarded, ",")
		ip = strings.TrimSpace(ip)
	}
	if host, _, err := net.SplitHostPort(ip); err == nil {
		return host
	}
	return strings.Trim(ip, "[]")
}

// corsConfig decides which overlay origins may call the API. Permissive mode
// answers every origin with "*".
type corsConfig struct {
	permissive bool
	origins    []string
}

func newCORSConfig(permissive bool, origins []string) *corsConfig {
	cfg := &corsConfig{permissive: permissive}
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			cfg.origins = append(cfg.origins, o)
		}
	}
	if !permissive && len(cfg.origins) == 0 {
		slog.Warn("CORS is restricted and CORS_ALLOWED_ORIGINS is empty; browsers will be refused")
	}
	return cfg
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or ""
// when it is refused. A "*.host" entry matches any subdomain of host.
func (c *corsConfig) allowOrigin(origin string) string {
	if c.permissive {
		return "*"
	}
	if origin == "" {
		return ""
	}
	for _, o := range c.origins {
		if o == origin {
			return origin
		}
		if host, ok := strings.CutPrefix(o, "*."); ok && strings.HasSuffix(origin, "."+host) {
			return origin
		}
	}
	return ""
}

func withCORSConfig(next http.Handler, cfg *corsConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if allowed := cfg.allowOrigin(r.Header.Get("Origin")); allowed != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowed)
			h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Admin-Token, X-Correlation-ID")
			if allowed != "*" {
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
