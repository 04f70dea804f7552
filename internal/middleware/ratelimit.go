package middleware

import (
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"india-heatmap/internal/logger"
)

// 文档注释：令牌桶限流中间件（每秒）
// 背景：预览服务的重新生成会触发远程下载与整页渲染，对入口限速避免被反复刷新拖垮。
// 约束：简化实现，不做队列排队，仅丢弃并返回 429。
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	now      func() time.Time
	mu       sync.Mutex
}

func NewTokenBucket(qps int) *TokenBucket {
	tb := &TokenBucket{capacity: qps, tokens: qps, now: time.Now}
	tb.lastSec = tb.now().Unix()
	return tb
}

func (tb *TokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := tb.now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Limit：超出速率时返回 429
func Limit(tb *TokenBucket, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tb.allow() {
			logger.L().Debug("rate_limited", "path", r.URL.Path)
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Wrap：先按来源白名单过滤（见 AllowlistFromEnv），
// RATE_LIMIT_ENABLED=true 时再按 RATE_LIMIT_QPS（默认 5）限流
func Wrap(next http.Handler) http.Handler {
	h := AllowlistFromEnv().Guard(next)
	if os.Getenv("RATE_LIMIT_ENABLED") != "true" {
		return h
	}
	qps := 5
	if s := os.Getenv("RATE_LIMIT_QPS"); s != "" {
		if n, e := strconv.Atoi(s); e == nil && n > 0 {
			qps = n
		}
	}
	return Limit(NewTokenBucket(qps), h)
}
