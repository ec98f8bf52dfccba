package ratelimit

import (
	"sync"
	"time"
)

// エンドポイント種別ごとのレート制限ポリシー。
type Policy struct {
	Name   string
	Max    int           // ウィンドウ内の許容回数
	Window time.Duration // 固定ウィンドウ幅

	// trueなら認証済みでも常にクライアントIPでカウントする。
	// ログアウトしてもauth系の制限を回避できないようにするため。
	ByIP bool
}

// 既定ポリシー。値はroutes側で差し替え可能。
var (
	PolicyGeneral       = Policy{Name: "general", Max: 300, Window: time.Minute}
	PolicyAuth          = Policy{Name: "auth", Max: 10, Window: 15 * time.Minute, ByIP: true}
	PolicyContent       = Policy{Name: "content", Max: 30, Window: time.Hour}
	PolicyComments      = Policy{Name: "comments", Max: 60, Window: time.Hour}
	PolicySearch        = Policy{Name: "search", Max: 60, Window: time.Minute}
	PolicyPasswordReset = Policy{Name: "passwordReset", Max: 5, Window: time.Hour, ByIP: true}
	PolicyUploads       = Policy{Name: "uploads", Max: 20, Window: time.Hour}
	PolicyAdmin         = Policy{Name: "admin", Max: 120, Window: time.Minute}
)

type windowCounter struct {
	count       int
	windowStart time.Time
}

// プロセスローカルな固定ウィンドウカウンタ。
// 水平スケール時に多少数え漏れるのは設計上のトレードオフ
// （共有カウンタストアへの置き換えはコア範囲外）。
type Limiter struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
	now      func() time.Time
}

func New() *Limiter {
	return &Limiter{
		counters: make(map[string]*windowCounter),
		now:      time.Now,
	}
}

// Allowはキーのカウントを1増やし、ポリシー内ならtrueを返す。
// 超過時はウィンドウのリセットまでの残り時間を返す。
func (l *Limiter) Allow(p Policy, key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	k := p.Name + ":" + key

	c, ok := l.counters[k]
	if !ok || now.Sub(c.windowStart) >= p.Window {
		//新しいウィンドウを開始
		l.counters[k] = &windowCounter{count: 1, windowStart: now}
		return true, 0
	}

	c.count++
	if c.count > p.Max {
		retryAfter := c.windowStart.Add(p.Window).Sub(now)
		return false, retryAfter
	}

	return true, 0
}

// 古いウィンドウのカウンタを捨てる。janitorが定期的に呼ぶ。
func (l *Limiter) Prune(maxAge time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for k, c := range l.counters {
		if now.Sub(c.windowStart) >= maxAge {
			delete(l.counters, k)
			removed++
		}
	}
	return removed
}
