package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"rps-backend/app/model"
	"rps-backend/app/repository/inmem"
	"rps-backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "rahasia123"

var ganjil = model.Term{Semester: model.SemesterGanjil, AcademicYear: "2025/2026"}

type sentNotification struct {
	UserID   uuid.UUID
	Title    string
	Severity string
}

// recordingNotifier menyimpan semua notifikasi untuk diperiksa di test.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (r *recordingNotifier) Notify(_ context.Context, userID uuid.UUID, title, _ string, severity string, _ *string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{UserID: userID, Title: title, Severity: severity})
}

func (r *recordingNotifier) to(userID uuid.UUID) []sentNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentNotification
	for _, n := range r.sent {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// fixture: satu institusi, fakultas Teknik dengan prodi TI dan SI.
type fixture struct {
	t        *testing.T
	ctx      context.Context
	store    *inmem.Store
	notifier *recordingNotifier
	tokens   *utils.TokenIssuer

	institution model.Institution
	faculty     model.Faculty
	progTI      model.Program
	progSI      model.Program

	superadmin *model.User
	admin      *model.User
	dean       *model.User
	kaprodiTI  *model.User
	kaprodiSI  *model.User
	lecturerA  *model.User
	lecturerB  *model.User
	lecturerSI *model.User
	student    *model.User

	mk06      *model.Course // milik prodi TI
	mkUmum    *model.Course // milik institusi (shared)
	mkSI      *model.Course
	syllabi   SyllabusService
	assign    AssignmentService
	auth      AuthService
	curricula CurriculumService
	admins    AdminService
	reports   ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		t:        t,
		ctx:      ctx,
		store:    inmem.NewStore(),
		notifier: &recordingNotifier{},
	}
	tokens, err := utils.NewTokenIssuer("test-secret", time.Hour, 30*time.Minute, 2*time.Hour)
	require.NoError(t, err)
	f.tokens = tokens

	org := f.store.Org()
	f.institution = model.Institution{Code: "UNIV", Name: "Universitas"}
	require.NoError(t, org.CreateInstitution(ctx, &f.institution))
	f.faculty = model.Faculty{InstitutionID: f.institution.ID, Code: "FT", Name: "Fakultas Teknik"}
	require.NoError(t, org.CreateFaculty(ctx, &f.faculty))
	f.progTI = model.Program{FacultyID: f.faculty.ID, Code: "TI", Name: "Teknik Informatika"}
	require.NoError(t, org.CreateProgram(ctx, &f.progTI))
	f.progSI = model.Program{FacultyID: f.faculty.ID, Code: "SI", Name: "Sistem Informasi"}
	require.NoError(t, org.CreateProgram(ctx, &f.progSI))

	inst, fac := f.institution.ID, f.faculty.ID
	ti, si := f.progTI.ID, f.progSI.ID
	angkatan := 2023

	f.superadmin = f.user("root", model.RoleSuperAdmin, nil, nil)
	f.admin = f.user("admin", model.RoleAdmin, nil, nil)
	f.dean = f.user("dekan", model.RoleDean, nil, func(u *model.User) { u.FacultyID = &fac; u.InstitutionID = &inst })
	f.kaprodiTI = f.user("kaprodi.ti", model.RoleProgramHead, []model.Role{model.RoleLecturer}, func(u *model.User) { u.ProgramID = &ti })
	f.kaprodiSI = f.user("kaprodi.si", model.RoleProgramHead, nil, func(u *model.User) { u.ProgramID = &si })
	f.lecturerA = f.user("dosen.a", model.RoleLecturer, nil, func(u *model.User) { u.ProgramID = &ti })
	f.lecturerB = f.user("dosen.b", model.RoleLecturer, nil, func(u *model.User) { u.ProgramID = &ti })
	f.lecturerSI = f.user("dosen.si", model.RoleLecturer, nil, func(u *model.User) { u.ProgramID = &si })
	f.student = f.user("mhs", model.RoleStudent, nil, func(u *model.User) { u.ProgramID = &ti; u.Angkatan = &angkatan })

	f.mk06 = f.course("MK06", model.OwnerProgram, ti)
	f.mkUmum = f.course("MKU01", model.OwnerInstitution, inst)
	f.mkSI = f.course("SI01", model.OwnerProgram, si)

	logger := zap.NewNop()
	f.syllabi = NewSyllabusService(f.store, f.notifier, logger, nil)
	f.assign = NewAssignmentService(f.store, f.notifier, logger)
	f.auth = NewAuthService(f.store.Users(), tokens, logger)
	f.curricula = NewCurriculumService(f.store, logger)
	f.admins = NewAdminService(f.store, logger)
	f.reports = NewReportService(f.store.Reports())
	return f
}

func (f *fixture) user(username string, role model.Role, extra []model.Role, mutate func(*model.User)) *model.User {
	f.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(f.t, err)
	u := &model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@kampus.ac.id",
		PasswordHash: string(hash),
		FullName:     username,
		Role:         string(role),
		IsActive:     true,
	}
	for _, r := range extra {
		u.UserRoles = append(u.UserRoles, model.UserRole{Role: r})
	}
	if mutate != nil {
		mutate(u)
	}
	require.NoError(f.t, f.store.Users().Create(f.ctx, u))
	return u
}

func (f *fixture) course(code string, level model.OwnerLevel, ownerID int64) *model.Course {
	f.t.Helper()
	owner, err := model.NewOrgOwner(level, ownerID)
	require.NoError(f.t, err)
	c := &model.Course{Code: code, Name: "Mata Kuliah " + code, Credits: 3, OrgOwner: owner, IsActive: true}
	require.NoError(f.t, f.store.Courses().Create(f.ctx, c))
	return c
}

// as membangun principal dari user, sama seperti saat login.
func (f *fixture) as(u *model.User) model.Principal {
	f.t.Helper()
	return model.Principal{
		ID:             u.ID,
		PrimaryRole:    model.Role(u.Role),
		InstitutionID:  u.InstitutionID,
		FacultyID:      u.FacultyID,
		ProgramID:      u.ProgramID,
		Angkatan:       u.Angkatan,
		AvailableRoles: u.AvailableRoles(),
	}
}

// assignOne menugaskan satu dosen lewat kaprodi TI.
func (f *fixture) assignOne(lecturer *model.User, course *model.Course) *model.TeachingAssignment {
	f.t.Helper()
	res, err := f.assign.Assign(f.ctx, f.as(f.kaprodiTI), AssignInput{
		CourseID:    course.ID,
		LecturerIDs: []uuid.UUID{lecturer.ID},
		Term:        ganjil,
	})
	require.NoError(f.t, err)
	require.Len(f.t, res.Created, 1)
	a := res.Created[0].Assignment
	return &a
}

// forceAssign mengganti paksa pengampu course pada term ganjil.
func (f *fixture) forceAssign(lecturer *model.User, course *model.Course) {
	f.t.Helper()
	res, err := f.assign.Assign(f.ctx, f.as(f.kaprodiTI), AssignInput{
		CourseID:    course.ID,
		LecturerIDs: []uuid.UUID{lecturer.ID},
		Term:        ganjil,
		Force:       true,
	})
	require.NoError(f.t, err)
	require.NotEmpty(f.t, res.Replaced)
}

// draftFor membuat RPS instance draft untuk dosen yang sudah ditugaskan.
func (f *fixture) draftFor(lecturer *model.User, course *model.Course) *model.Syllabus {
	f.t.Helper()
	a := f.assignOne(lecturer, course)
	syl, err := f.syllabi.Create(f.ctx, f.as(lecturer), CreateSyllabusInput{
		CourseID:     course.ID,
		AssignmentID: &a.ID,
		Content:      model.SyllabusContent{Description: "Deskripsi awal"},
	})
	require.NoError(f.t, err)
	return syl
}
