// Package inmem menyediakan Store dan inbox notifikasi di memori.
// Dipakai untuk test dan untuk menjalankan server tanpa database (STORE_DRIVER=memory).
package inmem

import (
	"context"
	"sort"
	"sync"

	"rps-backend/app/model"
	"rps-backend/app/repository"

	"github.com/google/uuid"
)

type state struct {
	mu   sync.Mutex // melindungi data
	txMu sync.Mutex // menserialkan transaksi dan penulisan
	data *data
}

type data struct {
	seq          int64
	users        map[uuid.UUID]model.User
	customRoles  map[string]model.CustomRole
	institutions map[int64]model.Institution
	faculties    map[int64]model.Faculty
	programs     map[int64]model.Program
	courses      map[int64]model.Course
	outcomes     map[int64]model.CurriculumOutcome
	assignments  map[int64]model.TeachingAssignment
	syllabi      map[uuid.UUID]model.Syllabus
}

func newData() *data {
	return &data{
		users:        map[uuid.UUID]model.User{},
		customRoles:  map[string]model.CustomRole{},
		institutions: map[int64]model.Institution{},
		faculties:    map[int64]model.Faculty{},
		programs:     map[int64]model.Program{},
		courses:      map[int64]model.Course{},
		outcomes:     map[int64]model.CurriculumOutcome{},
		assignments:  map[int64]model.TeachingAssignment{},
		syllabi:      map[uuid.UUID]model.Syllabus{},
	}
}

func (d *data) clone() *data {
	c := newData()
	c.seq = d.seq
	copyMap(c.users, d.users)
	copyMap(c.customRoles, d.customRoles)
	copyMap(c.institutions, d.institutions)
	copyMap(c.faculties, d.faculties)
	copyMap(c.programs, d.programs)
	copyMap(c.courses, d.courses)
	copyMap(c.outcomes, d.outcomes)
	copyMap(c.assignments, d.assignments)
	copyMap(c.syllabi, d.syllabi)
	return c
}

func copyMap[K comparable, V any](dst, src map[K]V) {
	for k, v := range src {
		dst[k] = v
	}
}

func (d *data) nextID() int64 {
	d.seq++
	return d.seq
}

// Store adalah repository.Store di memori.
type Store struct {
	st   *state
	inTx bool
}

// NewStore membuat Store kosong.
func NewStore() *Store {
	return &Store{st: &state{data: newData()}}
}

func (s *Store) Users() repository.UserRepository { return &userRepo{s} }
func (s *Store) Org() repository.OrgRepository { return &orgRepo{s} }
func (s *Store) Courses() repository.CourseRepository { return &courseRepo{s} }
func (s *Store) Outcomes() repository.OutcomeRepository { return &outcomeRepo{s} }
func (s *Store) Assignments() repository.AssignmentRepository { return &assignmentRepo{s} }
func (s *Store) Syllabi() repository.SyllabusRepository { return &syllabusRepo{s} }
func (s *Store) Reports() repository.ReportRepository { return &reportRepo{s} }

// Transaction menjalankan fn secara serial. Jika fn gagal, seluruh
// perubahan dikembalikan ke snapshot sebelum transaksi.
func (s *Store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.st.txMu.Lock()
	defer s.st.txMu.Unlock()

	s.st.mu.Lock()
	snapshot := s.st.data.clone()
	s.st.mu.Unlock()

	if err := fn(&Store{st: s.st, inTx: true}); err != nil {
		s.st.mu.Lock()
		s.st.data = snapshot
		s.st.mu.Unlock()
		return err
	}
	return nil
}

// read menjalankan f dengan data terkunci.
func (s *Store) read(f func(d *data) error) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return f(s.st.data)
}

// write seperti read, tetapi di luar transaksi juga menunggu transaksi lain selesai.
func (s *Store) write(f func(d *data) error) error {
	if !s.inTx {
		s.st.txMu.Lock()
		defer s.st.txMu.Unlock()
	}
	return s.read(f)
}

// orgRef versi tanpa lock, dipanggil dari dalam read/write.
func (d *data) orgRef(owner model.OrgOwner) (model.OrgRef, bool) {
	ref := model.OrgRef{Level: owner.Scope}
	switch owner.Scope {
	case model.OwnerProgram:
		if owner.ProgramID == nil {
			return ref, false
		}
		p, ok := d.programs[*owner.ProgramID]
		if !ok {
			return ref, false
		}
		f, ok := d.faculties[p.FacultyID]
		if !ok {
			return ref, false
		}
		ref.ProgramID, ref.FacultyID, ref.InstitutionID = ptr(p.ID), ptr(f.ID), ptr(f.InstitutionID)
	case model.OwnerFaculty:
		if owner.FacultyID == nil {
			return ref, false
		}
		f, ok := d.faculties[*owner.FacultyID]
		if !ok {
			return ref, false
		}
		ref.FacultyID, ref.InstitutionID = ptr(f.ID), ptr(f.InstitutionID)
	case model.OwnerInstitution:
		if owner.InstitutionID == nil {
			return ref, false
		}
		if _, ok := d.institutions[*owner.InstitutionID]; !ok {
			return ref, false
		}
		ref.InstitutionID = ptr(*owner.InstitutionID)
	default:
		return ref, false
	}
	return ref, true
}

func (d *data) inScope(scope model.Scope, owner model.OrgOwner, shared bool) bool {
	ref, ok := d.orgRef(owner)
	if !ok {
		return false
	}
	if shared {
		return scope.CoversOrShared(ref)
	}
	return scope.Covers(ref)
}

func ptr[T any](v T) *T { return &v }

func sortByID[T any](items []T, id func(T) int64) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}
