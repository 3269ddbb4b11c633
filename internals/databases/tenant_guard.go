package database

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	helperAuth "schoolku_backend/internals/helpers/auth"
)

// SchoolTenantGuard menambahkan filter `<entity>_school_id = <school dari ctx>` ke
// query/row/update/delete kalau model punya kolom *_school_id dan WHERE belum memuatnya.
//
// NOTE:
// - Tidak berlaku untuk Raw/Exec. Query mentah wajib memuat school_id sendiri.
// - ctx tanpa AuthContext (webhook, job) tidak di-scope; repository tetap filter eksplisit.
type SchoolTenantGuard struct{}

func NewSchoolTenantGuard() *SchoolTenantGuard { return &SchoolTenantGuard{} }

func (p *SchoolTenantGuard) Name() string { return "school_tenant_guard" }

func (p *SchoolTenantGuard) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("school_tenant_guard:query", schoolGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("school_tenant_guard:row", schoolGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("school_tenant_guard:update", schoolGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("school_tenant_guard:delete", schoolGuardCallback); err != nil {
		return err
	}
	return nil
}

type skipTenantKey struct{}

// WithoutTenantScope dipakai jalur sistem (webhook gateway) yang memang lintas tenant.
func WithoutTenantScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipTenantKey{}, true)
}

func schoolGuardCallback(db *gorm.DB) {
	if db == nil || db.Statement == nil || db.Statement.Schema == nil {
		return
	}
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	if skip, _ := ctx.Value(skipTenantKey{}).(bool); skip {
		return
	}
	schoolID, ok := helperAuth.SchoolIDFromContext(ctx)
	if !ok {
		return
	}

	column := tenantColumn(db)
	if column == "" {
		return
	}
	if whereHasSchoolID(db.Statement.Clauses["WHERE"]) {
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: db.Statement.Table, Name: column},
				Value:  schoolID,
			},
		},
	})
}

func tenantColumn(db *gorm.DB) string {
	for _, f := range db.Statement.Schema.Fields {
		if strings.HasSuffix(strings.ToLower(f.DBName), "_school_id") {
			return f.DBName
		}
	}
	return ""
}

func whereHasSchoolID(c clause.Clause) bool {
	if c.Expression == nil {
		return false
	}
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasSchoolID(e) {
			return true
		}
	}
	return false
}

func exprHasSchoolID(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return colIsSchoolID(v.Column)
	case clause.Neq:
		return colIsSchoolID(v.Column)
	case clause.IN:
		return colIsSchoolID(v.Column)
	case clause.AndConditions:
		for _, x := range v.Exprs {
			if exprHasSchoolID(x) {
				return true
			}
		}
		return false
	case clause.OrConditions:
		// OR dengan school_id di salah satu cabang tidak cukup mengunci tenant
		return false
	case clause.Expr:
		return strings.Contains(strings.ToLower(v.SQL), "school_id")
	case clause.NamedExpr:
		return strings.Contains(strings.ToLower(v.SQL), "school_id")
	default:
		return false
	}
}

func colIsSchoolID(col any) bool {
	switch c := col.(type) {
	case string:
		return strings.HasSuffix(strings.ToLower(c), "school_id")
	case clause.Column:
		return strings.HasSuffix(strings.ToLower(c.Name), "school_id")
	default:
		return false
	}
}
