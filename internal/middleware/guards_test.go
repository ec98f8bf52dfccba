package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/repository"
)

// =====================
// RequireRole / RequireAdmin
// =====================

func TestRequireRole_Allowed(t *testing.T) {
	rec, _ := newRecorder()
	mw := middleware.RequireRole(rec, model.RoleAdmin, model.RoleModerator)

	res, reached := runMiddleware(t, mw, setIdentity(model.RoleModerator, model.StatusActive))

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestRequireRole_Denied(t *testing.T) {
	rec, events := newRecorder()
	mw := middleware.RequireRole(rec, model.RoleAdmin)

	res, reached := runMiddleware(t, mw, setIdentity(model.RoleUser, model.StatusActive))

	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, "INSUFFICIENT_PERMISSIONS", decodeError(t, res)["code"])
	assert.True(t, events.has(model.SecurityEventPermissionDenied))
}

func TestRequireRole_NoIdentity(t *testing.T) {
	rec, _ := newRecorder()
	mw := middleware.RequireRole(rec, model.RoleAdmin)

	res, reached := runMiddleware(t, mw, nil)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "AUTH_REQUIRED", decodeError(t, res)["code"])
}

func TestRequireAdmin(t *testing.T) {
	rec, _ := newRecorder()
	mw := middleware.RequireAdmin(rec)

	res, reached := runMiddleware(t, mw, setIdentity(model.RoleAdmin, model.StatusActive))
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, res.Code)

	res, reached = runMiddleware(t, mw, setIdentity(model.RoleModerator, model.StatusActive))
	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, res.Code)
}

// =====================
// RequireOwnership
// =====================

type stubOwnerLookup struct {
	ownerID int64
	err     error
}

func (s *stubOwnerLookup) FindOwnerID(_ context.Context, _ int64) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.ownerID, nil
}

func runOwnerGuard(t *testing.T, mw echo.MiddlewareFunc, id string, identity *model.Identity) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/articles/"+id, nil)
	w := httptest.NewRecorder()
	c := e.NewContext(req, w)
	c.SetPath("/articles/:id")
	c.SetParamNames("id")
	c.SetParamValues(id)

	if identity != nil {
		c.Set(middleware.CtxIdentityKey, identity)
	}

	reached := false
	handler := mw(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return w, reached
}

func TestRequireOwnership_Owner(t *testing.T) {
	rec, _ := newRecorder()
	mw := middleware.RequireOwnership(&stubOwnerLookup{ownerID: 1}, "id", rec)

	res, reached := runOwnerGuard(t, mw, "10", &model.Identity{ID: 1, Role: model.RoleUser, Status: model.StatusActive})

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestRequireOwnership_NotOwner(t *testing.T) {
	rec, events := newRecorder()
	mw := middleware.RequireOwnership(&stubOwnerLookup{ownerID: 2}, "id", rec)

	res, reached := runOwnerGuard(t, mw, "10", &model.Identity{ID: 1, Role: model.RoleUser, Status: model.StatusActive})

	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, "NOT_RESOURCE_OWNER", decodeError(t, res)["code"])
	assert.True(t, events.has(model.SecurityEventPermissionDenied))
}

// 管理側roleは他人のリソースでも通る
func TestRequireOwnership_BypassRoles(t *testing.T) {
	rec, _ := newRecorder()
	mw := middleware.RequireOwnership(&stubOwnerLookup{ownerID: 2}, "id", rec, model.RoleAdmin, model.RoleModerator)

	for _, role := range []model.Role{model.RoleAdmin, model.RoleModerator} {
		res, reached := runOwnerGuard(t, mw, "10", &model.Identity{ID: 1, Role: role, Status: model.StatusActive})
		assert.True(t, reached, "role %s", role)
		assert.Equal(t, http.StatusOK, res.Code)
	}

	//一般ユーザーはbypassされない
	res, reached := runOwnerGuard(t, mw, "10", &model.Identity{ID: 1, Role: model.RoleUser, Status: model.StatusActive})
	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestRequireOwnership_ResourceNotFound(t *testing.T) {
	rec, _ := newRecorder()
	mw := middleware.RequireOwnership(&stubOwnerLookup{err: repository.ErrArticleNotFound}, "id", rec)

	res, reached := runOwnerGuard(t, mw, "10", &model.Identity{ID: 1, Role: model.RoleUser, Status: model.StatusActive})

	assert.False(t, reached)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, res)["code"])
}

func TestRequireOwnership_InvalidID(t *testing.T) {
	rec, _ := newRecorder()
	mw := middleware.RequireOwnership(&stubOwnerLookup{ownerID: 1}, "id", rec)

	for _, id := range []string{"abc", "0", "-1"} {
		res, reached := runOwnerGuard(t, mw, id, &model.Identity{ID: 1, Role: model.RoleUser, Status: model.StatusActive})
		assert.False(t, reached, "id %q", id)
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, res)["code"])
	}
}

func TestRequireOwnership_NoIdentity(t *testing.T) {
	rec, _ := newRecorder()
	mw := middleware.RequireOwnership(&stubOwnerLookup{ownerID: 1}, "id", rec)

	res, reached := runOwnerGuard(t, mw, "10", nil)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

// =====================
// RequireActiveStatus
// =====================

func TestRequireActiveStatus(t *testing.T) {
	rec, _ := newRecorder()
	mw := middleware.RequireActiveStatus(rec)

	//ACTIVEは通る
	res, reached := runMiddleware(t, mw, setIdentity(model.RoleUser, model.StatusActive))
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, res.Code)

	//匿名（optional-authルート）も通る
	res, reached = runMiddleware(t, mw, nil)
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, res.Code)

	//SUSPENDED/BANNEDは403
	res, reached = runMiddleware(t, mw, setIdentity(model.RoleUser, model.StatusSuspended))
	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, "ACCOUNT_SUSPENDED", decodeError(t, res)["code"])

	res, reached = runMiddleware(t, mw, setIdentity(model.RoleUser, model.StatusBanned))
	assert.False(t, reached)
	assert.Equal(t, "ACCOUNT_BANNED", decodeError(t, res)["code"])
}
