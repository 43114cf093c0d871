package service

import (
	"testing"

	"rps-backend/app/apperror"
	"rps-backend/app/model"
	"rps-backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	f := newFixture(t)

	res, err := f.auth.Login(f.ctx, "  Kaprodi.TI@kampus.ac.id ", testPassword)
	require.NoError(t, err)
	assert.Equal(t, f.kaprodiTI.ID, res.Principal.ID)
	assert.Equal(t, model.RoleProgramHead, res.Principal.PrimaryRole)
	assert.Equal(t, []model.Role{model.RoleLecturer}, res.Principal.AvailableRoles)

	claims, err := f.tokens.Parse(res.Credential.Token, utils.PurposeAccess)
	require.NoError(t, err)
	assert.Equal(t, f.progTI.ID, *claims.ProgramID)

	_, err = f.auth.Login(f.ctx, f.kaprodiTI.Email, "salah")
	requireKind(t, err, apperror.KindUnauthenticated)
	_, err = f.auth.Login(f.ctx, "tidak.ada@kampus.ac.id", testPassword)
	requireKind(t, err, apperror.KindUnauthenticated)

	f.user("nonaktif", model.RoleLecturer, nil, func(u *model.User) { u.IsActive = false })
	_, err = f.auth.Login(f.ctx, "nonaktif@kampus.ac.id", testPassword)
	requireKind(t, err, apperror.KindAuthorization)
}

func TestSwitchRole(t *testing.T) {
	f := newFixture(t)
	p := f.as(f.kaprodiTI)

	res, err := f.auth.SwitchRole(f.ctx, p, "lecturer")
	require.NoError(t, err)
	assert.Equal(t, model.RoleLecturer, res.Principal.EffectiveRole())
	assert.Equal(t, model.RoleProgramHead, res.Principal.PrimaryRole)

	claims, err := f.tokens.Parse(res.Credential.Token, utils.PurposeAccess)
	require.NoError(t, err)
	assert.Equal(t, model.RoleLecturer, claims.Principal().EffectiveRole())

	// kembali ke primary role
	res, err = f.auth.SwitchRole(f.ctx, res.Principal, "program_head")
	require.NoError(t, err)
	assert.Equal(t, model.RoleProgramHead, res.Principal.EffectiveRole())

	_, err = f.auth.SwitchRole(f.ctx, p, "dean")
	requireKind(t, err, apperror.KindAuthorization)
	_, err = f.auth.SwitchRole(f.ctx, p, "rektor")
	requireKind(t, err, apperror.KindValidation)

	// daftar role dibaca ulang dari database, bukan dari token
	forged := f.as(f.lecturerA)
	forged.AvailableRoles = []model.Role{model.RoleDean}
	_, err = f.auth.SwitchRole(f.ctx, forged, "dean")
	requireKind(t, err, apperror.KindAuthorization)
}

func TestImpersonation(t *testing.T) {
	f := newFixture(t)
	root := f.as(f.superadmin)

	res, err := f.auth.Impersonate(f.ctx, root, f.lecturerA.ID)
	require.NoError(t, err)
	assert.Equal(t, f.lecturerA.ID, res.Principal.ID)
	require.NotNil(t, res.Principal.Impersonation)
	assert.Equal(t, f.superadmin.ID, res.Principal.Impersonation.OriginalAdminID)
	assert.Equal(t, res.Credential.ExpiresAt, res.Principal.Impersonation.ExpiresAt)

	claims, err := f.tokens.Parse(res.Credential.Token, utils.PurposeAccess)
	require.NoError(t, err)
	assert.True(t, claims.Principal().IsImpersonating())
	assert.Equal(t, model.RoleLecturer, claims.Principal().EffectiveRole())

	// restore credential tidak bisa dipakai sebagai access credential
	_, err = f.tokens.Parse(res.RestoreCredential.Token, utils.PurposeAccess)
	assert.ErrorIs(t, err, utils.ErrTokenPurpose)

	// tidak bisa switch role atau impersonate bertingkat
	_, err = f.auth.SwitchRole(f.ctx, res.Principal, "lecturer")
	requireKind(t, err, apperror.KindAuthorization)
	_, err = f.auth.Impersonate(f.ctx, claims.Principal(), f.student.ID)
	requireKind(t, err, apperror.KindAuthorization)

	back, err := f.auth.EndImpersonation(f.ctx, res.RestoreCredential.Token)
	require.NoError(t, err)
	assert.Equal(t, f.superadmin.ID, back.Principal.ID)
	assert.Equal(t, model.RoleSuperAdmin, back.Principal.EffectiveRole())
	assert.Nil(t, back.Principal.Impersonation)

	_, err = f.auth.EndImpersonation(f.ctx, res.Credential.Token)
	requireKind(t, err, apperror.KindUnauthenticated)
	_, err = f.auth.EndImpersonation(f.ctx, "bukan-token")
	requireKind(t, err, apperror.KindUnauthenticated)
}

func TestImpersonation_Rules(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Impersonate(f.ctx, f.as(f.admin), f.lecturerA.ID)
	requireKind(t, err, apperror.KindAuthorization)

	other := f.user("root2", model.RoleSuperAdmin, nil, nil)
	_, err = f.auth.Impersonate(f.ctx, f.as(f.superadmin), other.ID)
	requireKind(t, err, apperror.KindAuthorization)

	inactive := f.user("pensiun", model.RoleLecturer, nil, func(u *model.User) { u.IsActive = false })
	_, err = f.auth.Impersonate(f.ctx, f.as(f.superadmin), inactive.ID)
	requireKind(t, err, apperror.KindValidation)

	_, err = f.auth.Impersonate(f.ctx, f.as(f.superadmin), f.student.ID)
	assert.NoError(t, err)
}

func TestCustomRoleResolution(t *testing.T) {
	f := newFixture(t)
	root := f.as(f.superadmin)

	_, err := f.admins.CreateCustomRole(f.ctx, root, "kaprodi_s2", model.RoleProgramHead, "prodi pascasarjana")
	require.NoError(t, err)

	ti := f.progTI.ID
	u, err := f.admins.CreateUser(f.ctx, root, CreateUserInput{
		Username: "kaprodi.s2", Email: "kaprodi.s2@kampus.ac.id", Password: testPassword,
		Role: "kaprodi_s2", ProgramID: &ti,
	})
	require.NoError(t, err)
	assert.Equal(t, "kaprodi_s2", u.Role)

	res, err := f.auth.Login(f.ctx, u.Email, testPassword)
	require.NoError(t, err)
	assert.Equal(t, model.RoleProgramHead, res.Principal.PrimaryRole)

	// nama role yang tidak terdaftar menjadi guest
	f.user("misteri", model.Role("mystery"), nil, nil)
	res, err = f.auth.Login(f.ctx, "misteri@kampus.ac.id", testPassword)
	require.NoError(t, err)
	assert.Equal(t, model.RoleGuest, res.Principal.PrimaryRole)
	assert.True(t, model.ResolveScope(res.Principal).MatchesNothing())
}

func TestMe(t *testing.T) {
	f := newFixture(t)
	me, err := f.auth.Me(f.ctx, f.as(f.lecturerA))
	require.NoError(t, err)
	assert.Equal(t, f.lecturerA.Email, me.User.Email)
}
