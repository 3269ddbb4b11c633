package students

import (
	"log"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	feeModel "schoolku_backend/internals/features/finance/fees/model"
	studentModel "schoolku_backend/internals/features/school/students/model"
)

// SchoolSeed satu sekolah demo: siswa + jenis biaya dasar.
type SchoolSeed struct {
	SchoolID uuid.UUID     `json:"school_id"`
	Students []StudentSeed `json:"students"`
	FeeTypes []FeeTypeSeed `json:"fee_types"`
}

type StudentSeed struct {
	FullName     string     `json:"full_name"`
	AdmissionNo  string     `json:"admission_no"`
	ClassID      uuid.UUID  `json:"class_id"`
	Section      string     `json:"section"`
	Email        *string    `json:"email"`
	UserID       *uuid.UUID `json:"user_id"`
	ParentUserID *uuid.UUID `json:"parent_user_id"`
}

type FeeTypeSeed struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func LoadSeedFile(path string) ([]SchoolSeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "baca file seed")
	}
	var out []SchoolSeed
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, "decode seed json")
	}
	for i, s := range out {
		if s.SchoolID == uuid.Nil {
			return nil, errors.Errorf("seed #%d: school_id wajib diisi", i)
		}
		for j, st := range s.Students {
			if strings.TrimSpace(st.FullName) == "" || strings.TrimSpace(st.AdmissionNo) == "" {
				return nil, errors.Errorf("seed #%d student #%d: full_name & admission_no wajib", i, j)
			}
		}
	}
	return out, nil
}

// ToModels memetakan seed ke model; idempotensi dicek di SeedSchools.
func (s SchoolSeed) ToModels() ([]studentModel.SchoolStudentModel, []feeModel.FeeTypeModel) {
	students := make([]studentModel.SchoolStudentModel, 0, len(s.Students))
	for _, st := range s.Students {
		students = append(students, studentModel.SchoolStudentModel{
			SchoolStudentSchoolID:     s.SchoolID,
			SchoolStudentUserID:       st.UserID,
			SchoolStudentParentUserID: st.ParentUserID,
			SchoolStudentClassID:      st.ClassID,
			SchoolStudentSection:      strings.TrimSpace(st.Section),
			SchoolStudentFullName:     strings.TrimSpace(st.FullName),
			SchoolStudentAdmissionNo:  strings.TrimSpace(st.AdmissionNo),
			SchoolStudentEmail:        st.Email,
			SchoolStudentLifecycle:    "active",
		})
	}
	feeTypes := make([]feeModel.FeeTypeModel, 0, len(s.FeeTypes))
	for _, ft := range s.FeeTypes {
		feeTypes = append(feeTypes, feeModel.FeeTypeModel{
			FeeTypeSchoolID:  s.SchoolID,
			FeeTypeName:      strings.TrimSpace(ft.Name),
			FeeTypeCode:      strings.TrimSpace(ft.Code),
			FeeTypeLifecycle: "active",
		})
	}
	return students, feeTypes
}

func SeedSchools(db *gorm.DB, seeds []SchoolSeed) {
	for _, s := range seeds {
		students, feeTypes := s.ToModels()

		for _, st := range students {
			var n int64
			db.Model(&studentModel.SchoolStudentModel{}).
				Where("school_student_school_id = ? AND school_student_admission_no = ?", st.SchoolStudentSchoolID, st.SchoolStudentAdmissionNo).
				Count(&n)
			if n > 0 {
				log.Printf("ℹ️ Siswa %s sudah ada, lewati...", st.SchoolStudentAdmissionNo)
				continue
			}
			if err := db.Create(&st).Error; err != nil {
				log.Printf("❌ Gagal insert siswa %s: %v", st.SchoolStudentAdmissionNo, err)
				continue
			}
			log.Printf("✅ Berhasil insert siswa %s (%s)", st.SchoolStudentFullName, st.SchoolStudentAdmissionNo)
		}

		for _, ft := range feeTypes {
			var n int64
			db.Model(&feeModel.FeeTypeModel{}).
				Where("fee_type_school_id = ? AND fee_type_name = ?", ft.FeeTypeSchoolID, ft.FeeTypeName).
				Count(&n)
			if n > 0 {
				continue
			}
			if err := db.Create(&ft).Error; err != nil {
				log.Printf("❌ Gagal insert fee type %s: %v", ft.FeeTypeName, err)
			}
		}
	}
}
