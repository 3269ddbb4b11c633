package constants

import "fmt"

const (
	RoleAdmin      = "admin"
	RoleAccountant = "accountant"
	RoleStaff      = "staff"
	RoleTeacher    = "teacher"
	RoleStudent    = "student"
	RoleParent     = "parent"
)

// Template pesan error role
const (
	ErrOnlyStaffCanAccess   = "Hanya admin, accountant, atau staff yang boleh mengakses fitur %s."
	ErrOnlyFinanceCanAccess = "Hanya admin atau accountant yang boleh mengakses fitur %s."
	ErrOnlyMembersCanAccess = "Hanya student, parent, atau staff sekolah yang boleh mengakses fitur %s."
)

func RoleErrorStaff(feature string) string {
	return fmt.Sprintf(ErrOnlyStaffCanAccess, feature)
}

func RoleErrorFinance(feature string) string {
	return fmt.Sprintf(ErrOnlyFinanceCanAccess, feature)
}

func RoleErrorMember(feature string) string {
	return fmt.Sprintf(ErrOnlyMembersCanAccess, feature)
}

// ==========================
// Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleAdmin,
		RoleAccountant,
		RoleStaff,
		RoleTeacher,
		RoleStudent,
		RoleParent,
	}

	StaffRoles = []string{
		RoleAdmin,
		RoleAccountant,
		RoleStaff,
	}

	FinanceRoles = []string{
		RoleAdmin,
		RoleAccountant,
	}

	MemberRoles = []string{
		RoleStudent,
		RoleParent,
	}
)
