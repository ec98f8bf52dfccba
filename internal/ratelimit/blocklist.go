package ratelimit

import (
	"sync"
	"time"
)

// 違反を繰り返すIPへの段階的ブロックの設定。
type BlockerConfig struct {
	// この回数を超えた違反からブロックを開始する。
	Threshold int

	// 最初のブロック時間。以降は違反のたびに倍になる。
	BaseBlock time.Duration

	// ブロック時間の上限（これ以上は伸びない）。
	MaxBlock time.Duration
}

func DefaultBlockerConfig() BlockerConfig {
	return BlockerConfig{
		Threshold: 5,
		BaseBlock: time.Minute,
		MaxBlock:  24 * time.Hour,
	}
}

type violation struct {
	count        int
	lastAt       time.Time
	blockedUntil time.Time
}

// IPごとの違反記録とブロック状態。通常のカウンタとは独立に効く。
type Blocker struct {
	mu         sync.Mutex
	violations map[string]*violation
	config     BlockerConfig
	now        func() time.Time
}

func NewBlocker(cfg BlockerConfig) *Blocker {
	if cfg.Threshold <= 0 {
		cfg = DefaultBlockerConfig()
	}
	return &Blocker{
		violations: make(map[string]*violation),
		config:     cfg,
		now:        time.Now,
	}
}

// Checkはそのipが現在ブロック中かどうかを返す。
// ブロック中なら解除までの残り時間も返す。
func (b *Blocker) Check(ip string) (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	v, ok := b.violations[ip]
	if !ok {
		return false, 0
	}

	now := b.now()
	if v.blockedUntil.After(now) {
		return true, v.blockedUntil.Sub(now)
	}
	return false, 0
}

// RecordViolationは違反を1回記録する。
// しきい値を超えていたらブロック時間を計算して適用し、その長さを返す。
// ブロックに至らなければ0を返す。戻り値2つ目は累積違反回数。
func (b *Blocker) RecordViolation(ip string) (time.Duration, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()

	v, ok := b.violations[ip]
	if !ok {
		v = &violation{}
		b.violations[ip] = v
	}

	v.count++
	v.lastAt = now

	if v.count < b.config.Threshold {
		return 0, v.count
	}

	//違反が増えるたびにブロック時間を倍にする（上限あり）
	d := b.config.BaseBlock
	for i := b.config.Threshold; i < v.count; i++ {
		d *= 2
		if d >= b.config.MaxBlock {
			d = b.config.MaxBlock
			break
		}
	}
	if d > b.config.MaxBlock {
		d = b.config.MaxBlock
	}

	v.blockedUntil = now.Add(d)
	return d, v.count
}

// 古い違反記録を捨てる。最後の違反からmaxAge経過したものが対象。
// ブロック中の記録は残す。
func (b *Blocker) Prune(maxAge time.Duration) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	removed := 0
	for ip, v := range b.violations {
		if v.blockedUntil.After(now) {
			continue
		}
		if now.Sub(v.lastAt) >= maxAge {
			delete(b.violations, ip)
			removed++
		}
	}
	return removed
}
