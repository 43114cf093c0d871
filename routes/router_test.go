package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"rps-backend/app/model"
	"rps-backend/app/notification"
	"rps-backend/app/repository/inmem"
	"rps-backend/app/service"
	"rps-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type envelope struct {
	Status       bool            `json:"status"`
	Message      string          `json:"message"`
	Code         string          `json:"code"`
	CurrentState string          `json:"currentState"`
	Data         json.RawMessage `json:"data"`
	Errors       json.RawMessage `json:"errors"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  *inmem.Store
	tokens *utils.TokenIssuer

	mk06      *model.Course
	kaprodiTI *model.User
	kaprodiSI *model.User
	lecturerA *model.User
	lecturerB *model.User
	student   *model.User
	root      *model.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	store := inmem.NewStore()
	inbox := inmem.NewInbox()
	tokens, err := utils.NewTokenIssuer("router-secret", time.Hour, 30*time.Minute, time.Hour)
	require.NoError(t, err)

	inst := &model.Institution{Code: "UNIV", Name: "Universitas"}
	require.NoError(t, store.Org().CreateInstitution(ctx, inst))
	fac := &model.Faculty{InstitutionID: inst.ID, Code: "FT", Name: "Teknik"}
	require.NoError(t, store.Org().CreateFaculty(ctx, fac))
	ti := &model.Program{FacultyID: fac.ID, Code: "TI", Name: "Informatika"}
	require.NoError(t, store.Org().CreateProgram(ctx, ti))
	si := &model.Program{FacultyID: fac.ID, Code: "SI", Name: "Sistem Informasi"}
	require.NoError(t, store.Org().CreateProgram(ctx, si))

	s := &testServer{t: t, store: store, tokens: tokens}
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	require.NoError(t, err)
	mkUser := func(name string, role model.Role, program *int64) *model.User {
		u := &model.User{
			ID: uuid.New(), Username: name, Email: name + "@kampus.ac.id", PasswordHash: string(hash),
			FullName: name, Role: string(role), ProgramID: program, IsActive: true,
		}
		require.NoError(t, store.Users().Create(ctx, u))
		return u
	}
	s.kaprodiTI = mkUser("kaprodi.ti", model.RoleProgramHead, &ti.ID)
	s.kaprodiSI = mkUser("kaprodi.si", model.RoleProgramHead, &si.ID)
	s.lecturerA = mkUser("dosen.a", model.RoleLecturer, &ti.ID)
	s.lecturerB = mkUser("dosen.b", model.RoleLecturer, &ti.ID)
	s.student = mkUser("mhs", model.RoleStudent, &ti.ID)
	s.root = mkUser("root", model.RoleSuperAdmin, nil)

	owner, err := model.NewOrgOwner(model.OwnerProgram, ti.ID)
	require.NoError(t, err)
	s.mk06 = &model.Course{Code: "MK06", Name: "Pemrograman Web", Credits: 3, OrgOwner: owner, IsActive: true}
	require.NoError(t, store.Courses().Create(ctx, s.mk06))

	logger := zap.NewNop()
	notifier := notification.NewDispatcher(logger, notification.NewInboxSink(inbox))
	s.router = NewRouter(Services{
		Auth:          service.NewAuthService(store.Users(), tokens, logger),
		Admin:         service.NewAdminService(store, logger),
		Syllabi:       service.NewSyllabusService(store, notifier, logger, nil),
		Assignments:   service.NewAssignmentService(store, notifier, logger),
		Curriculum:    service.NewCurriculumService(store, logger),
		Reports:       service.NewReportService(store.Reports()),
		Notifications: service.NewNotificationService(inbox),
	}, tokens, logger)
	return s
}

func (s *testServer) tokenFor(u *model.User) string {
	s.t.Helper()
	issued, err := s.tokens.IssueAccess(model.Principal{ID: u.ID, PrimaryRole: model.Role(u.Role), ProgramID: u.ProgramID})
	require.NoError(s.t, err)
	return issued.Token
}

func (s *testServer) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestRouter_Unauthenticated(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodGet, "/syllabi", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthenticated", env.Code)

	code, _ = s.do(http.MethodGet, "/syllabi", "bukan.token.jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	restore, err := s.tokens.IssueRestore(s.root.ID)
	require.NoError(t, err)
	code, _ = s.do(http.MethodGet, "/syllabi", restore.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, code, "restore credential bukan access credential")
}

func TestRouter_Login(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "dosen.a@kampus.ac.id", "password": "rahasia123"})
	require.Equal(t, http.StatusOK, code)
	var res service.LoginResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.NotEmpty(t, res.Credential.Token)

	code, env = s.do(http.MethodGet, "/auth/me", res.Credential.Token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "dosen.a@kampus.ac.id", "password": "salah"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthenticated", env.Code)

	code, env = s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "bukan-email"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", env.Code)
}

func TestRouter_SyllabusLifecycle(t *testing.T) {
	s := newTestServer(t)
	kaprodi, dosen := s.tokenFor(s.kaprodiTI), s.tokenFor(s.lecturerA)

	code, env := s.do(http.MethodPost, "/assignments", kaprodi, gin.H{
		"course_id": s.mk06.ID, "lecturer_id": s.lecturerA.ID, "term": "Ganjil 2025/2026",
	})
	require.Equal(t, http.StatusCreated, code, string(env.Errors))
	var assigned service.AssignResult
	require.NoError(t, json.Unmarshal(env.Data, &assigned))
	require.Len(t, assigned.Created, 1)
	assignmentID := assigned.Created[0].Assignment.ID

	// konflik tanpa force
	code, env = s.do(http.MethodPost, "/assignments", kaprodi, gin.H{
		"course_id": s.mk06.ID, "lecturer_id": s.lecturerB.ID, "semester": "Ganjil", "academic_year": "2025/2026",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "conflict", env.Code)
	var existing []model.TeachingAssignment
	require.NoError(t, json.Unmarshal(env.Errors, &existing))
	require.Len(t, existing, 1)
	assert.Equal(t, assignmentID, existing[0].ID)

	code, env = s.do(http.MethodPost, "/syllabi", dosen, gin.H{
		"course_id": s.mk06.ID, "assignment_id": assignmentID, "description": "RPS Pemrograman Web",
		"selected_cpl": []any{"1", 2},
	})
	require.Equal(t, http.StatusCreated, code, string(env.Errors))
	var syl model.Syllabus
	require.NoError(t, json.Unmarshal(env.Data, &syl))
	assert.Equal(t, model.StatusDraft, syl.Status)
	assert.Equal(t, model.SelectionList{1, 2}, syl.SelectedCPL)
	path := "/syllabi/" + syl.ID.String()

	code, env = s.do(http.MethodPut, path+"/submit", dosen, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &syl))
	assert.Equal(t, model.StatusPending, syl.Status)

	code, env = s.do(http.MethodPut, path, dosen, gin.H{"description": "ubah"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "state_error", env.Code)
	assert.Equal(t, "pending", env.CurrentState)

	code, _ = s.do(http.MethodPut, path+"/approve", s.tokenFor(s.kaprodiSI), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(http.MethodGet, path, s.tokenFor(s.student), nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(http.MethodPut, path+"/reject", kaprodi, gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", env.Code)

	code, env = s.do(http.MethodPut, path+"/approve", kaprodi, gin.H{"note": "OK"})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &syl))
	assert.Equal(t, model.StatusApproved, syl.Status)
	assert.Equal(t, s.kaprodiTI.ID, *syl.ApprovedBy)

	code, _ = s.do(http.MethodGet, path, s.tokenFor(s.student), nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = s.do(http.MethodPost, path+"/revise", dosen, nil)
	require.Equal(t, http.StatusCreated, code)
	var rev model.Syllabus
	require.NoError(t, json.Unmarshal(env.Data, &rev))
	assert.Equal(t, 2, rev.Revision)
	assert.Equal(t, model.StatusDraft, rev.Status)

	code, env = s.do(http.MethodPost, path+"/revise", dosen, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "draft", env.CurrentState)

	// notifikasi approve masuk inbox dosen
	code, env = s.do(http.MethodGet, "/notifications?unread=true", dosen, nil)
	require.Equal(t, http.StatusOK, code)
	var inbox []model.Notification
	require.NoError(t, json.Unmarshal(env.Data, &inbox))
	assert.NotEmpty(t, inbox)
}

func TestRouter_AssignPartial(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(http.MethodPost, "/assignments", s.tokenFor(s.kaprodiTI), gin.H{
		"course_id":    s.mk06.ID,
		"lecturer_ids": []uuid.UUID{s.lecturerA.ID, s.student.ID},
		"term":         "Genap 2025/2026",
	})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Status)
	var warnings []service.AssignWarning
	require.NoError(t, json.Unmarshal(env.Errors, &warnings))
	require.Len(t, warnings, 1)
	assert.Equal(t, s.student.ID, warnings[0].LecturerID)

	code, env = s.do(http.MethodPost, "/assignments", s.tokenFor(s.kaprodiTI), gin.H{
		"course_id": s.mk06.ID, "lecturer_id": s.lecturerB.ID, "semester": "Gasal", "academic_year": "2025/2026",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", env.Code)

	code, _ = s.do(http.MethodPost, "/assignments", s.tokenFor(s.kaprodiTI), gin.H{
		"course_id": s.mk06.ID, "lecturer_id": s.lecturerB.ID,
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_Impersonation(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(http.MethodPost, "/admin/impersonate/"+s.lecturerA.ID.String(), s.tokenFor(s.kaprodiTI), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := s.do(http.MethodPost, "/admin/impersonate/"+s.lecturerA.ID.String(), s.tokenFor(s.root), nil)
	require.Equal(t, http.StatusOK, code)
	var imp service.ImpersonationResult
	require.NoError(t, json.Unmarshal(env.Data, &imp))

	// credential hasil impersonation bertindak sebagai dosen A
	code, env = s.do(http.MethodGet, "/auth/me", imp.Credential.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var me service.MeResult
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, s.lecturerA.ID, me.Principal.ID)
	require.NotNil(t, me.Principal.Impersonation)
	assert.Equal(t, s.root.ID, me.Principal.Impersonation.OriginalAdminID)

	code, _ = s.do(http.MethodPost, "/admin/end-impersonation", "", gin.H{"restore_token": imp.Credential.Token})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(http.MethodPost, "/admin/end-impersonation", "", gin.H{"restore_token": imp.RestoreCredential.Token})
	require.Equal(t, http.StatusOK, code)
	var back service.LoginResult
	require.NoError(t, json.Unmarshal(env.Data, &back))
	assert.Equal(t, s.root.ID, back.Principal.ID)
	assert.Equal(t, model.RoleSuperAdmin, back.Principal.EffectiveRole())
}

func TestRouter_BadParams(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(s.lecturerA)

	code, env := s.do(http.MethodGet, "/syllabi/bukan-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", env.Code)

	code, _ = s.do(http.MethodGet, "/syllabi?status=archived", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodGet, "/syllabi?term=Ganjil", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodGet, "/syllabi/"+uuid.NewString(), token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
