package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolku_backend/internals/constants"
	"schoolku_backend/internals/features/school/students/model"
)

// Directory lookup student per tenant. Semua method wajib school-scoped;
// student milik school lain = gorm.ErrRecordNotFound.
type Directory interface {
	GetStudent(ctx context.Context, schoolID, studentID uuid.UUID) (*model.SchoolStudentModel, error)
	FindByUser(ctx context.Context, schoolID, userID uuid.UUID) (*model.SchoolStudentModel, error)
	ListStudents(ctx context.Context, schoolID uuid.UUID, f model.StudentFilter) ([]model.SchoolStudentModel, error)
	CountByClass(ctx context.Context, schoolID uuid.UUID) (map[uuid.UUID]int64, error)
}

type gormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) Directory {
	return &gormDirectory{db: db}
}

func (d *gormDirectory) scope(ctx context.Context, schoolID uuid.UUID) *gorm.DB {
	return d.db.WithContext(ctx).
		Where("school_student_school_id = ? AND school_student_lifecycle = ? AND school_student_deleted_at IS NULL",
			schoolID, constants.LifecycleActive)
}

func (d *gormDirectory) GetStudent(ctx context.Context, schoolID, studentID uuid.UUID) (*model.SchoolStudentModel, error) {
	var s model.SchoolStudentModel
	if err := d.scope(ctx, schoolID).
		Where("school_student_id = ?", studentID).
		Take(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (d *gormDirectory) FindByUser(ctx context.Context, schoolID, userID uuid.UUID) (*model.SchoolStudentModel, error) {
	var s model.SchoolStudentModel
	if err := d.scope(ctx, schoolID).
		Where("school_student_user_id = ?", userID).
		Take(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (d *gormDirectory) ListStudents(ctx context.Context, schoolID uuid.UUID, f model.StudentFilter) ([]model.SchoolStudentModel, error) {
	q := d.scope(ctx, schoolID)
	if f.ClassID != nil {
		q = q.Where("school_student_class_id = ?", *f.ClassID)
	}
	if f.Section != "" {
		q = q.Where("school_student_section = ?", f.Section)
	}
	var rows []model.SchoolStudentModel
	if err := q.Order("school_student_full_name ASC, school_student_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *gormDirectory) CountByClass(ctx context.Context, schoolID uuid.UUID) (map[uuid.UUID]int64, error) {
	type row struct {
		ClassID uuid.UUID
		Total   int64
	}
	var rows []row
	if err := d.scope(ctx, schoolID).
		Model(&model.SchoolStudentModel{}).
		Select("school_student_class_id AS class_id, COUNT(*) AS total").
		Group("school_student_class_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		out[r.ClassID] = r.Total
	}
	return out, nil
}

// IsNotFound helper kecil supaya service tidak import gorm hanya untuk ini.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
