package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(start time.Time) (*Limiter, *time.Time) {
	current := start
	l := New()
	l.now = func() time.Time { return current }
	return l, &current
}

func TestLimiter_AllowWithinWindow(t *testing.T) {
	p := Policy{Name: "test", Max: 3, Window: time.Minute}
	l, _ := newTestLimiter(time.Now())

	for i := 0; i < 3; i++ {
		ok, _ := l.Allow(p, "ip1")
		assert.True(t, ok, "request %d should pass", i+1)
	}

	//4回目で超過
	ok, retryAfter := l.Allow(p, "ip1")
	assert.False(t, ok)
	assert.Greater(t, retryAfter, time.Duration(0))
	assert.LessOrEqual(t, retryAfter, time.Minute)
}

// キーが違えばカウントは独立
func TestLimiter_KeysAreIndependent(t *testing.T) {
	p := Policy{Name: "test", Max: 1, Window: time.Minute}
	l, _ := newTestLimiter(time.Now())

	ok, _ := l.Allow(p, "ip1")
	assert.True(t, ok)
	ok, _ = l.Allow(p, "ip1")
	assert.False(t, ok)

	//別キーはまだ通る
	ok, _ = l.Allow(p, "ip2")
	assert.True(t, ok)
}

// 同じキーでもポリシーが違えばカウントは別
func TestLimiter_PoliciesAreIndependent(t *testing.T) {
	pa := Policy{Name: "a", Max: 1, Window: time.Minute}
	pb := Policy{Name: "b", Max: 1, Window: time.Minute}
	l, _ := newTestLimiter(time.Now())

	ok, _ := l.Allow(pa, "ip1")
	assert.True(t, ok)
	ok, _ = l.Allow(pa, "ip1")
	assert.False(t, ok)

	ok, _ = l.Allow(pb, "ip1")
	assert.True(t, ok)
}

func TestLimiter_WindowResets(t *testing.T) {
	p := Policy{Name: "test", Max: 1, Window: time.Minute}
	l, current := newTestLimiter(time.Now())

	ok, _ := l.Allow(p, "ip1")
	assert.True(t, ok)
	ok, _ = l.Allow(p, "ip1")
	assert.False(t, ok)

	//ウィンドウが切り替わればまた通る
	*current = current.Add(time.Minute)
	ok, _ = l.Allow(p, "ip1")
	assert.True(t, ok)
}

func TestLimiter_Prune(t *testing.T) {
	p := Policy{Name: "test", Max: 10, Window: time.Minute}
	l, current := newTestLimiter(time.Now())

	l.Allow(p, "old")
	*current = current.Add(2 * time.Hour)
	l.Allow(p, "fresh")

	removed := l.Prune(time.Hour)
	assert.Equal(t, 1, removed)

	//残ったカウンタはそのまま効いている
	for i := 0; i < 9; i++ {
		ok, _ := l.Allow(p, "fresh")
		assert.True(t, ok)
	}
	ok, _ := l.Allow(p, "fresh")
	assert.False(t, ok)
}
