package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter mantém um token bucket por IP. Buckets parados há mais de
// duas janelas são descartados pelo cleanup.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     rate.Limit
	burst    int
	window   time.Duration
	now      func() time.Time
	log      *zap.Logger
}

// NewIPRateLimiter libera `limit` requisições por `window` para cada IP.
func NewIPRateLimiter(limit int, window time.Duration, log *zap.Logger) *IPRateLimiter {
	if log == nil {
		log = zap.NewNop()
	}
	rl := &IPRateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate.Limit(float64(limit) / window.Seconds()),
		burst:    limit,
		window:   window,
		now:      time.Now,
		log:      log,
	}

	go rl.cleanup()
	return rl
}

func (i *IPRateLimiter) Allow(ip string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	v, ok := i.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(i.rate, i.burst)}
		i.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (i *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)
		if !i.Allow(ip) {
			i.log.Warn("rate limit excedido", zap.String("ip", ip), zap.String("path", r.URL.Path))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "Muitas requisições. Tente novamente em instantes."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (i *IPRateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		i.sweep()
	}
}

// sweep remove os visitantes inativos e devolve quantos sobraram.
func (i *IPRateLimiter) sweep() int {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	for ip, v := range i.visitors {
		if now.Sub(v.lastSeen) > i.window*2 {
			delete(i.visitors, ip)
		}
	}
	return len(i.visitors)
}

// ClientIP usa só o RemoteAddr. Atrás de proxy confiável o router aplica
// chi RealIP antes, que reescreve o RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
