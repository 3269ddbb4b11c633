package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolku_backend/internals/constants"
	"schoolku_backend/internals/features/school/students/model"
	"schoolku_backend/internals/features/school/students/repository"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

func TestResolveMemberStudent(t *testing.T) {
	school := uuid.New()
	studentUser, parentUser := uuid.New(), uuid.New()
	own := model.SchoolStudentModel{
		SchoolStudentID: uuid.New(), SchoolStudentSchoolID: school, SchoolStudentClassID: uuid.New(),
		SchoolStudentUserID: &studentUser, SchoolStudentParentUserID: &parentUser, SchoolStudentFullName: "Aisyah",
	}
	other := model.SchoolStudentModel{
		SchoolStudentID: uuid.New(), SchoolStudentSchoolID: school, SchoolStudentClassID: uuid.New(), SchoolStudentFullName: "Bima",
	}
	dir := repository.NewMemoryDirectory(own, other)
	ctx := context.Background()

	t.Run("student sees self", func(t *testing.T) {
		ac := helperAuth.AuthContext{UserID: studentUser, SchoolID: school, Role: constants.RoleStudent}
		st, err := ResolveMemberStudent(ctx, dir, ac, nil)
		require.NoError(t, err)
		assert.Equal(t, own.SchoolStudentID, st.SchoolStudentID)
	})

	t.Run("student cannot see other", func(t *testing.T) {
		ac := helperAuth.AuthContext{UserID: studentUser, SchoolID: school, Role: constants.RoleStudent}
		_, err := ResolveMemberStudent(ctx, dir, ac, &other.SchoolStudentID)
		assert.True(t, helper.IsKind(err, helper.KindForbidden))
	})

	t.Run("parent sees child", func(t *testing.T) {
		ac := helperAuth.AuthContext{UserID: parentUser, SchoolID: school, Role: constants.RoleParent}
		st, err := ResolveMemberStudent(ctx, dir, ac, &own.SchoolStudentID)
		require.NoError(t, err)
		assert.Equal(t, "Aisyah", st.SchoolStudentFullName)
	})

	t.Run("parent of someone else", func(t *testing.T) {
		ac := helperAuth.AuthContext{UserID: parentUser, SchoolID: school, Role: constants.RoleParent}
		_, err := ResolveMemberStudent(ctx, dir, ac, &other.SchoolStudentID)
		assert.True(t, helper.IsKind(err, helper.KindForbidden))
	})

	t.Run("parent from another school", func(t *testing.T) {
		ac := helperAuth.AuthContext{UserID: parentUser, SchoolID: uuid.New(), Role: constants.RoleParent}
		_, err := ResolveMemberStudent(ctx, dir, ac, &own.SchoolStudentID)
		assert.True(t, helper.IsKind(err, helper.KindNotFound))
	})

	t.Run("teacher forbidden", func(t *testing.T) {
		ac := helperAuth.AuthContext{UserID: uuid.New(), SchoolID: school, Role: constants.RoleTeacher}
		_, err := ResolveMemberStudent(ctx, dir, ac, &own.SchoolStudentID)
		assert.True(t, helper.IsKind(err, helper.KindForbidden))
	})
}
