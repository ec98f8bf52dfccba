package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"app/internal/domain/model"
	"app/internal/usecase"
)

// =====================
// Stub: SessionRepository（DeleteExpiredだけ失敗させる）
// =====================

type failingSessionStore struct{}

func (s *failingSessionStore) Create(_ context.Context, _ *model.Session) error { return nil }

func (s *failingSessionStore) FindActiveByTokenHash(_ context.Context, _ string, _ time.Time) (*model.Session, error) {
	return nil, nil
}

func (s *failingSessionStore) Touch(_ context.Context, _ string, _ string, _ string) error {
	return nil
}

func (s *failingSessionStore) Invalidate(_ context.Context, _ string) error { return nil }

func (s *failingSessionStore) InvalidateAllByUserID(_ context.Context, _ int64) (int64, error) {
	return 0, nil
}

func (s *failingSessionStore) DeleteExpired(_ context.Context, _ time.Time) (int64, error) {
	return 0, assert.AnError
}

func (s *failingSessionStore) CountActiveByUserID(_ context.Context, _ int64, _ time.Time) (int64, error) {
	return 0, nil
}

type spyPruner struct {
	calls int
}

func (p *spyPruner) Prune(_ time.Duration) int {
	p.calls++
	return 0
}

// DB掃除が失敗してもインメモリのPruneは両方走る
func TestSweep_PrunesEvenWhenCleanupFails(t *testing.T) {
	authUC := usecase.NewAuthUsecase(nil, &failingSessionStore{}, nil, nil, nil, &realClock{}, &uuidGenerator{})

	counters := &spyPruner{}
	blocks := &spyPruner{}

	sweep(context.Background(), authUC, counters, blocks, zap.NewNop())

	assert.Equal(t, 1, counters.calls)
	assert.Equal(t, 1, blocks.calls)
}
