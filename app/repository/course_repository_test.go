package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockStore(t *testing.T) (Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		DisableAutomaticPing: true,
		TranslateError:       true,
	})
	require.NoError(t, err)
	return NewStore(gdb), mock
}

func courseRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "code", "name", "is_active"}).
		AddRow(7, "MK06", "Pemrograman Web", true)
}

func TestCourseFindByIDForUpdate_LocksInsideTransaction(t *testing.T) {
	store, mock := setupMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "courses" WHERE id = \$1 .*FOR UPDATE$`).
		WillReturnRows(courseRows())
	mock.ExpectCommit()

	err := store.Transaction(ctx, func(tx Store) error {
		c, err := tx.Courses().FindByIDForUpdate(ctx, 7)
		if err != nil {
			return err
		}
		assert.Equal(t, "MK06", c.Code)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseFindByIDForUpdate_NoLockOutsideTransaction(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "courses" WHERE id = \$1 ORDER BY "courses"\."id" LIMIT [^F]+$`).
		WillReturnRows(courseRows())

	c, err := store.Courses().FindByIDForUpdate(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseFindByIDForUpdate_NotFound(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery(`FROM "courses"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.Courses().FindByIDForUpdate(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}
