package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/palemoky/cheese-thief/internal/config"
)

// 空闲超过该时长的限流记录会被清理
const limiterIdleTTL = 10 * time.Minute

// keyedLimiter 按 key 维护独立的令牌桶
type keyedLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]*limiterEntry
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newKeyedLimiter(cfg config.LimitConfig) *keyedLimiter {
	return &keyedLimiter{
		limit:   rate.Limit(cfg.PerSecond),
		burst:   max(cfg.Burst, 1),
		now:     time.Now,
		entries: make(map[string]*limiterEntry),
	}
}

func (k *keyedLimiter) allow(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	e, ok := k.entries[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(k.limit, k.burst)}
		k.entries[key] = e
	}
	e.lastSeen = now
	return e.lim.AllowN(now, 1)
}

func (k *keyedLimiter) remove(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.entries, key)
}

// prune 删除空闲记录，返回删除条数
func (k *keyedLimiter) prune(idle time.Duration) int {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	n := 0
	for key, e := range k.entries {
		if now.Sub(e.lastSeen) > idle {
			delete(k.entries, key)
			n++
		}
	}
	return n
}

func (k *keyedLimiter) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

// runCleanup 定期清理空闲记录，直到 ctx 结束
func (k *keyedLimiter) runCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			k.prune(limiterIdleTTL)
		}
	}
}

// --- 连接速率限制 ---

// RateLimiter 按 IP 限制建立 WebSocket 连接的速率
type RateLimiter struct {
	*keyedLimiter
}

// NewRateLimiter 创建连接速率限制器
func NewRateLimiter(cfg config.LimitConfig) *RateLimiter {
	return &RateLimiter{keyedLimiter: newKeyedLimiter(cfg)}
}

// Allow 检查该 IP 是否允许建立新连接
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.allow(ip)
}

// --- 聊天速率限制 ---

// ChatRateLimiter 按玩家限制白天发言频率，实现 types.ChatLimiter
type ChatRateLimiter struct {
	*keyedLimiter
}

// NewChatRateLimiter 创建聊天速率限制器
func NewChatRateLimiter(cfg config.LimitConfig) *ChatRateLimiter {
	return &ChatRateLimiter{keyedLimiter: newKeyedLimiter(cfg)}
}

// AllowChat 检查玩家是否允许发言
func (cl *ChatRateLimiter) AllowChat(playerID string) bool {
	return cl.allow(playerID)
}

// RemovePlayer 玩家离开后删除记录
func (cl *ChatRateLimiter) RemovePlayer(playerID string) {
	cl.remove(playerID)
}

// --- 消息速率限制 ---

// 连接累计超速次数达到该值后断开
const maxRateStrikes = 5

// messageLimiter 单个连接的入站消息限制
type messageLimiter struct {
	lim     *rate.Limiter
	strikes int
}

func newMessageLimiter(cfg config.LimitConfig) *messageLimiter {
	return &messageLimiter{lim: rate.NewLimiter(rate.Limit(cfg.PerSecond), max(cfg.Burst, 1))}
}

// allow 返回本条消息是否放行，以及连接是否应被断开
// 只在读协程中调用
func (ml *messageLimiter) allow(now time.Time) (allowed, kick bool) {
	if ml.lim.AllowN(now, 1) {
		return true, false
	}
	ml.strikes++
	return false, ml.strikes >= maxRateStrikes
}

// --- 来源验证 ---

// OriginChecker 来源验证器，未配置任何来源时全部允许
type OriginChecker struct {
	allowed  map[string]bool
	allowAll bool
}

// NewOriginChecker 创建来源验证器
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{allowed: make(map[string]bool)}
	for _, origin := range origins {
		origin = strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
		if origin == "" {
			continue
		}
		if origin == "*" {
			oc.allowAll = true
			continue
		}
		oc.allowed[origin] = true
	}
	if len(oc.allowed) == 0 {
		oc.allowAll = true
	}
	return oc
}

// Check 检查请求来源，没有 Origin 头的非浏览器客户端直接放行
func (oc *OriginChecker) Check(r *http.Request) bool {
	if oc.allowAll {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return oc.allowed[strings.ToLower(strings.TrimRight(origin, "/"))]
}

// GetClientIP 获取客户端 IP
// 路由上挂了 middleware.RealIP，代理头已经写回 RemoteAddr
func GetClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
