package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolku_backend/internals/features/school/students/model"
)

// MemoryDirectory implementasi in-memory untuk test & seed lokal.
type MemoryDirectory struct {
	mu       sync.RWMutex
	students map[uuid.UUID]model.SchoolStudentModel
}

func NewMemoryDirectory(students ...model.SchoolStudentModel) *MemoryDirectory {
	d := &MemoryDirectory{students: map[uuid.UUID]model.SchoolStudentModel{}}
	for _, s := range students {
		d.Put(s)
	}
	return d
}

func (d *MemoryDirectory) Put(s model.SchoolStudentModel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s.SchoolStudentID == uuid.Nil {
		s.SchoolStudentID = uuid.New()
	}
	if s.SchoolStudentLifecycle == "" {
		s.SchoolStudentLifecycle = "active"
	}
	d.students[s.SchoolStudentID] = s
}

func (d *MemoryDirectory) visible(schoolID uuid.UUID, s model.SchoolStudentModel) bool {
	return s.SchoolStudentSchoolID == schoolID && s.SchoolStudentLifecycle.IsActive()
}

func (d *MemoryDirectory) GetStudent(_ context.Context, schoolID, studentID uuid.UUID) (*model.SchoolStudentModel, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.students[studentID]
	if !ok || !d.visible(schoolID, s) {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (d *MemoryDirectory) FindByUser(_ context.Context, schoolID, userID uuid.UUID) (*model.SchoolStudentModel, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, s := range d.students {
		if d.visible(schoolID, s) && s.SchoolStudentUserID != nil && *s.SchoolStudentUserID == userID {
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (d *MemoryDirectory) ListStudents(_ context.Context, schoolID uuid.UUID, f model.StudentFilter) ([]model.SchoolStudentModel, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]model.SchoolStudentModel, 0)
	for _, s := range d.students {
		if d.visible(schoolID, s) && f.Match(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SchoolStudentFullName != out[j].SchoolStudentFullName {
			return out[i].SchoolStudentFullName < out[j].SchoolStudentFullName
		}
		return out[i].SchoolStudentID.String() < out[j].SchoolStudentID.String()
	})
	return out, nil
}

func (d *MemoryDirectory) CountByClass(_ context.Context, schoolID uuid.UUID) (map[uuid.UUID]int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := map[uuid.UUID]int64{}
	for _, s := range d.students {
		if d.visible(schoolID, s) {
			out[s.SchoolStudentClassID]++
		}
	}
	return out, nil
}
