// file: internals/features/inventory/items/model/party_model.go
package model

import (
	"strings"

	"github.com/google/uuid"
)

type PartyKind string

const (
	PartyStudent  PartyKind = "student"
	PartyStaff    PartyKind = "staff"
	PartyExternal PartyKind = "external"
)

// Party penerima / pembeli barang: Student(id) | Staff(id) | External(name).
// Disimpan embedded: <prefix>kind, <prefix>id, <prefix>name.
type Party struct {
	Kind PartyKind  `gorm:"column:kind;type:varchar(20)" json:"kind,omitempty"`
	ID   *uuid.UUID `gorm:"column:id;type:uuid" json:"id,omitempty"`
	Name *string    `gorm:"column:name;type:varchar(120)" json:"name,omitempty"`
}

func StudentParty(id uuid.UUID) Party { return Party{Kind: PartyStudent, ID: &id} }

func StaffParty(id uuid.UUID) Party { return Party{Kind: PartyStaff, ID: &id} }

func ExternalParty(name string) Party {
	n := strings.TrimSpace(name)
	return Party{Kind: PartyExternal, Name: &n}
}

func (p Party) IsZero() bool { return p.Kind == "" }

// Normalize membuang field yang tidak relevan untuk kind-nya.
func (p Party) Normalize() Party {
	switch p.Kind {
	case PartyStudent, PartyStaff:
		return Party{Kind: p.Kind, ID: p.ID, Name: p.Name}
	case PartyExternal:
		if p.Name == nil {
			return Party{Kind: p.Kind}
		}
		return ExternalParty(*p.Name)
	}
	return p
}

// Valid: student/staff wajib id, external wajib nama.
func (p Party) Valid() bool {
	switch p.Kind {
	case PartyStudent, PartyStaff:
		return p.ID != nil && *p.ID != uuid.Nil
	case PartyExternal:
		return p.Name != nil && strings.TrimSpace(*p.Name) != ""
	}
	return false
}
