package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"schoolku_backend/internals/constants"
	"schoolku_backend/internals/features/school/students/model"
	"schoolku_backend/internals/features/school/students/repository"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

// ResolveMemberStudent menentukan siswa yang boleh dilihat caller di route member:
//   - student: hanya dirinya (dicari dari user_id); requested lain = 403
//   - parent : wajib kirim student_id anak yang parent_user_id-nya = caller
//   - role lain: 403
func ResolveMemberStudent(ctx context.Context, dir repository.Directory, ac helperAuth.AuthContext, requested *uuid.UUID) (*model.SchoolStudentModel, error) {
	switch {
	case ac.HasRole(constants.RoleStudent):
		st, err := dir.FindByUser(ctx, ac.SchoolID, ac.UserID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, helper.Forbidden("akun ini tidak terhubung dengan data siswa")
			}
			return nil, errors.Wrap(err, "find student by user")
		}
		if requested != nil && *requested != st.SchoolStudentID {
			return nil, helper.Forbidden("siswa hanya boleh melihat datanya sendiri")
		}
		return st, nil

	case ac.HasRole(constants.RoleParent):
		if requested == nil {
			return nil, helper.Validation("student_id wajib diisi untuk orang tua")
		}
		st, err := dir.GetStudent(ctx, ac.SchoolID, *requested)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, helper.NotFound("siswa tidak ditemukan")
			}
			return nil, errors.Wrap(err, "get student")
		}
		if st.SchoolStudentParentUserID == nil || *st.SchoolStudentParentUserID != ac.UserID {
			return nil, helper.Forbidden("bukan orang tua dari siswa ini")
		}
		return st, nil

	default:
		return nil, helper.Forbidden("role %s tidak punya akses data siswa di sini", ac.Role)
	}
}
