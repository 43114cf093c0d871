package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rps-backend/app/model"
	"rps-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) (*gin.Engine, *utils.TokenIssuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := utils.NewTokenIssuer("middleware-secret", time.Hour, 30*time.Minute, time.Hour)
	require.NoError(t, err)

	r := gin.New()
	g := r.Group("/x", AuthMiddleware(tokens))
	g.GET("/me", func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		require.True(t, ok)
		c.String(http.StatusOK, string(p.EffectiveRole()))
	})
	g.GET("/review", RequireRole(model.RoleProgramHead), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, tokens
}

func call(r *gin.Engine, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r, tokens := newEngine(t)
	p := model.Principal{ID: uuid.New(), PrimaryRole: model.RoleProgramHead, AvailableRoles: []model.Role{model.RoleLecturer}}

	assert.Equal(t, http.StatusUnauthorized, call(r, "/x/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "/x/me", "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "/x/me", "Bearer ").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "/x/me", "Bearer abc.def.ghi").Code)

	restore, err := tokens.IssueRestore(p.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(r, "/x/me", "Bearer "+restore.Token).Code)

	access, err := tokens.IssueAccess(p)
	require.NoError(t, err)
	w := call(r, "/x/me", "Bearer "+access.Token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(model.RoleProgramHead), w.Body.String())
}

func TestAuthMiddleware_ActiveRoleNotAvailable(t *testing.T) {
	r, tokens := newEngine(t)
	p := model.Principal{ID: uuid.New(), PrimaryRole: model.RoleLecturer, ActiveRole: model.RoleProgramHead}

	access, err := tokens.IssueAccess(p)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(r, "/x/me", "Bearer "+access.Token).Code)
}

func TestRequireRole(t *testing.T) {
	r, tokens := newEngine(t)
	kaprodi := model.Principal{ID: uuid.New(), PrimaryRole: model.RoleProgramHead, AvailableRoles: []model.Role{model.RoleLecturer}}

	tok, err := tokens.IssueAccess(kaprodi)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, call(r, "/x/review", "Bearer "+tok.Token).Code)

	// kaprodi yang sedang aktif sebagai dosen tidak lolos
	kaprodi.ActiveRole = model.RoleLecturer
	tok, err = tokens.IssueAccess(kaprodi)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, call(r, "/x/review", "Bearer "+tok.Token).Code)
}
