package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"app/internal/auth"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/repository"
)

// =====================
// テスト用の部品
// =====================

// インメモリのイベント記録。記録されたことの確認用。
type memEventRepo struct {
	events []model.SecurityEvent
}

func (r *memEventRepo) Create(_ context.Context, event model.SecurityEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *memEventRepo) List(_ context.Context, _ repository.SecurityEventFilter) ([]model.SecurityEvent, error) {
	return r.events, nil
}

func (r *memEventRepo) has(eventType model.SecurityEventType) bool {
	for _, e := range r.events {
		if e.EventType == eventType {
			return true
		}
	}
	return false
}

// 固定のIdentity（またはエラー）を返すresolver。
type stubResolver struct {
	identity *model.Identity
	err      error
}

func (s *stubResolver) Resolve(_ context.Context, _ int64) (*model.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

func newRecorder() (*middleware.SecurityRecorder, *memEventRepo) {
	repo := &memEventRepo{}
	return middleware.NewSecurityRecorder(zap.NewNop(), repo), repo
}

func testIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func issueAccess(t *testing.T, userID int64, now time.Time) string {
	t.Helper()
	token, _, err := testIssuer().IssueAccessToken(&model.User{
		ID:     userID,
		Role:   model.RoleUser,
		Status: model.StatusActive,
	}, now)
	if err != nil {
		t.Fatalf("issue access failed: %v", err)
	}
	return token
}

// ミドルウェアを1本のハンドラとして実行し、レスポンスと
// 本処理まで到達したかどうかを返す。
func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, setup func(c echo.Context)) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/test")

	if setup != nil {
		setup(c)
	}

	reached := false
	handler := mw(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec, reached
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	return body
}

func setIdentity(role model.Role, status model.Status) func(c echo.Context) {
	return func(c echo.Context) {
		c.Set(middleware.CtxIdentityKey, &model.Identity{ID: 1, Role: role, Status: status})
	}
}
