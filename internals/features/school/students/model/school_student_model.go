// file: internals/features/school/students/model/school_student_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolku_backend/internals/constants"
)

// SchoolStudentModel read-only di modul finance/inventory; admisi ada di service lain.
type SchoolStudentModel struct {
	SchoolStudentID       uuid.UUID `gorm:"column:school_student_id;type:uuid;default:gen_random_uuid();primaryKey" json:"school_student_id"`
	SchoolStudentSchoolID uuid.UUID `gorm:"column:school_student_school_id;type:uuid;not null;index:idx_school_students_class,priority:1" json:"school_student_school_id"`

	// akun login (student & orang tua), opsional
	SchoolStudentUserID       *uuid.UUID `gorm:"column:school_student_user_id;type:uuid;index" json:"school_student_user_id,omitempty"`
	SchoolStudentParentUserID *uuid.UUID `gorm:"column:school_student_parent_user_id;type:uuid;index" json:"school_student_parent_user_id,omitempty"`

	SchoolStudentClassID     uuid.UUID `gorm:"column:school_student_class_id;type:uuid;not null;index:idx_school_students_class,priority:2" json:"school_student_class_id"`
	SchoolStudentSection     string    `gorm:"column:school_student_section;type:varchar(20)" json:"school_student_section"`
	SchoolStudentFullName    string    `gorm:"column:school_student_full_name;type:varchar(120);not null" json:"school_student_full_name"`
	SchoolStudentAdmissionNo string    `gorm:"column:school_student_admission_no;type:varchar(50);not null" json:"school_student_admission_no"`
	SchoolStudentEmail       *string   `gorm:"column:school_student_email;type:varchar(120)" json:"school_student_email,omitempty"`

	SchoolStudentLifecycle constants.Lifecycle `gorm:"column:school_student_lifecycle;type:varchar(20);not null;default:'active'" json:"school_student_lifecycle"`

	SchoolStudentCreatedAt time.Time      `gorm:"column:school_student_created_at;type:timestamptz;not null;autoCreateTime" json:"school_student_created_at"`
	SchoolStudentUpdatedAt time.Time      `gorm:"column:school_student_updated_at;type:timestamptz;not null;autoUpdateTime" json:"school_student_updated_at"`
	SchoolStudentDeletedAt gorm.DeletedAt `gorm:"column:school_student_deleted_at;type:timestamptz;index" json:"-"`
}

func (SchoolStudentModel) TableName() string { return "school_students" }

// StudentFilter filter listing untuk laporan (class/section opsional)
type StudentFilter struct {
	ClassID *uuid.UUID
	Section string
}

func (f StudentFilter) Match(s SchoolStudentModel) bool {
	if f.ClassID != nil && s.SchoolStudentClassID != *f.ClassID {
		return false
	}
	if f.Section != "" && s.SchoolStudentSection != f.Section {
		return false
	}
	return true
}
