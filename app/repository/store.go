package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormStore adalah implementasi Store berbasis GORM (PostgreSQL).
type gormStore struct {
	db   *gorm.DB
	inTx bool
}

// NewStore membuat Store dari koneksi gorm.
// Koneksi sebaiknya dibuka dengan TranslateError: true agar
// pelanggaran unique constraint bisa dikenali sebagai ErrDuplicate.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository { return &userRepository{db: s.db} }
func (s *gormStore) Org() OrgRepository { return &orgRepository{db: s.db} }
func (s *gormStore) Courses() CourseRepository { return &courseRepository{db: s.db, lock: s.inTx} }
func (s *gormStore) Outcomes() OutcomeRepository { return &outcomeRepository{db: s.db} }
func (s *gormStore) Assignments() AssignmentRepository { return &assignmentRepository{db: s.db, lock: s.inTx} }
func (s *gormStore) Syllabi() SyllabusRepository { return &syllabusRepository{db: s.db, lock: s.inTx} }
func (s *gormStore) Reports() ReportRepository { return &reportRepository{db: s.db} }

// Transaction membuka transaksi baru, atau memakai transaksi yang sedang berjalan.
func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx, inTx: true})
	})
}

// translate memetakan error gorm ke error repository.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return errors.Wrap(err, op)
}

// forUpdate menambahkan klausa FOR UPDATE jika sedang di dalam transaksi.
func forUpdate(db *gorm.DB, lock bool) *gorm.DB {
	if !lock {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
