package inmem

import (
	"context"
	"errors"
	"testing"

	"rps-backend/app/model"
	"rps-backend/app/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRollback(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	inst := &model.Institution{Code: "UNIV", Name: "Universitas"}
	require.NoError(t, s.Org().CreateInstitution(ctx, inst))

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.Org().CreateFaculty(ctx, &model.Faculty{InstitutionID: inst.ID, Code: "FT", Name: "Teknik"}))
		// transaksi bersarang memakai transaksi yang sama
		return tx.Transaction(ctx, func(inner repository.Store) error {
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	err = s.Org().CreateFaculty(ctx, &model.Faculty{InstitutionID: inst.ID, Code: "FT", Name: "Teknik"})
	assert.NoError(t, err, "faculty FT seharusnya sudah di-rollback")
}

func TestTransactionCommit(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	inst := &model.Institution{Code: "UNIV", Name: "Universitas"}

	require.NoError(t, s.Transaction(ctx, func(tx repository.Store) error {
		return tx.Org().CreateInstitution(ctx, inst)
	}))
	got, err := s.Org().FindInstitution(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, "UNIV", got.Code)
}

func TestSyllabusLineageUnique(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	first := &model.Syllabus{CourseID: 1, AuthorID: uuid.New(), Status: model.StatusDraft}
	require.NoError(t, s.Syllabi().Create(ctx, first))
	assert.Equal(t, first.ID, first.LineageID)
	assert.Equal(t, 1, first.Revision)

	dup := &model.Syllabus{CourseID: 1, AuthorID: first.AuthorID, LineageID: first.LineageID, Revision: 1, Status: model.StatusDraft}
	assert.ErrorIs(t, s.Syllabi().Create(ctx, dup), repository.ErrDuplicate)

	next := &model.Syllabus{CourseID: 1, AuthorID: first.AuthorID, LineageID: first.LineageID, Revision: 2, Status: model.StatusDraft}
	require.NoError(t, s.Syllabi().Create(ctx, next))

	latest, err := s.Syllabi().FindLatestInLineage(ctx, first.LineageID)
	require.NoError(t, err)
	assert.Equal(t, next.ID, latest.ID)

	_, err = s.Syllabi().FindLatestInLineage(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCourseOwnerValidated(t *testing.T) {
	s := NewStore()
	err := s.Courses().Create(context.Background(), &model.Course{Code: "MK01", Name: "x", OrgOwner: model.OrgOwner{Scope: model.OwnerProgram}})
	assert.ErrorIs(t, err, model.ErrOwnerExactlyOne)
}

func TestInbox(t *testing.T) {
	ctx := context.Background()
	inbox := NewInbox()
	alice, bob := uuid.New(), uuid.New()

	n := &model.Notification{UserID: alice, Title: "RPS disetujui", Severity: model.SeveritySuccess}
	require.NoError(t, inbox.Insert(ctx, n))
	require.False(t, n.ID.IsZero())
	require.NoError(t, inbox.Insert(ctx, &model.Notification{UserID: bob, Title: "lain"}))

	items, err := inbox.ListByUser(ctx, alice, true)
	require.NoError(t, err)
	require.Len(t, items, 1)

	// milik user lain diperlakukan tidak ada
	assert.ErrorIs(t, inbox.MarkRead(ctx, bob, n.ID.Hex()), repository.ErrNotFound)
	assert.ErrorIs(t, inbox.MarkRead(ctx, alice, "bukan-hex"), repository.ErrNotFound)
	require.NoError(t, inbox.MarkRead(ctx, alice, n.ID.Hex()))

	items, err = inbox.ListByUser(ctx, alice, true)
	require.NoError(t, err)
	assert.Empty(t, items)
	items, err = inbox.ListByUser(ctx, alice, false)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
