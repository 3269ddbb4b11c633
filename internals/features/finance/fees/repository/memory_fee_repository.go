// file: internals/features/finance/fees/repository/memory_fee_repository.go
package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"schoolku_backend/internals/databases/dbtest"
	"schoolku_backend/internals/features/finance/fees/model"
)

type feeState struct {
	types       map[uuid.UUID]model.FeeTypeModel
	groups      map[uuid.UUID]model.FeeGroupModel
	masters     map[uuid.UUID]model.FeeMasterModel
	discounts   map[uuid.UUID]model.FeeDiscountModel
	studentFees []model.StudentFeeModel
}

func (s *feeState) clone() *feeState {
	cp := &feeState{
		types:       make(map[uuid.UUID]model.FeeTypeModel, len(s.types)),
		groups:      make(map[uuid.UUID]model.FeeGroupModel, len(s.groups)),
		masters:     make(map[uuid.UUID]model.FeeMasterModel, len(s.masters)),
		discounts:   make(map[uuid.UUID]model.FeeDiscountModel, len(s.discounts)),
		studentFees: append([]model.StudentFeeModel(nil), s.studentFees...),
	}
	for k, v := range s.types {
		cp.types[k] = v
	}
	for k, v := range s.groups {
		cp.groups[k] = v
	}
	for k, v := range s.masters {
		cp.masters[k] = v
	}
	for k, v := range s.discounts {
		cp.discounts[k] = v
	}
	return cp
}

// MemoryRepository implementasi in-memory (test & seed lokal). Transaksi memakai
// salinan state yang baru dipasang saat commit, jadi rollback benar-benar membuang perubahan.
type MemoryRepository struct {
	mu     *sync.Mutex
	st     *feeState
	inTx   bool
	Faults *dbtest.FaultInjector
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		mu: &sync.Mutex{},
		st: &feeState{
			types:     map[uuid.UUID]model.FeeTypeModel{},
			groups:    map[uuid.UUID]model.FeeGroupModel{},
			masters:   map[uuid.UUID]model.FeeMasterModel{},
			discounts: map[uuid.UUID]model.FeeDiscountModel{},
		},
		Faults: &dbtest.FaultInjector{},
		now:    time.Now,
	}
}

func (m *MemoryRepository) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *MemoryRepository) WithinTx(ctx context.Context, fn func(Repository) error) error {
	if m.inTx {
		return fn(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &MemoryRepository{mu: m.mu, st: m.st.clone(), inTx: true, Faults: m.Faults, now: m.now}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.st = tx.st
	return nil
}

func (m *MemoryRepository) LockStudent(context.Context, uuid.UUID, uuid.UUID) error {
	return m.Faults.Check("LockStudent")
}

/* ---------- fee types ---------- */

func (m *MemoryRepository) CreateFeeType(_ context.Context, v *model.FeeTypeModel) error {
	defer m.lock()()
	for _, t := range m.st.types {
		if t.FeeTypeSchoolID == v.FeeTypeSchoolID && strings.EqualFold(t.FeeTypeName, v.FeeTypeName) {
			return gorm.ErrDuplicatedKey
		}
	}
	if v.FeeTypeID == uuid.Nil {
		v.FeeTypeID = uuid.New()
	}
	v.FeeTypeCreatedAt, v.FeeTypeUpdatedAt = m.now(), m.now()
	m.st.types[v.FeeTypeID] = *v
	return nil
}

func (m *MemoryRepository) GetFeeType(_ context.Context, schoolID, id uuid.UUID) (*model.FeeTypeModel, error) {
	defer m.lock()()
	t, ok := m.st.types[id]
	if !ok || t.FeeTypeSchoolID != schoolID || !t.FeeTypeLifecycle.IsActive() {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (m *MemoryRepository) ListFeeTypes(_ context.Context, schoolID uuid.UUID) ([]model.FeeTypeModel, error) {
	defer m.lock()()
	out := make([]model.FeeTypeModel, 0)
	for _, t := range m.st.types {
		if t.FeeTypeSchoolID == schoolID && t.FeeTypeLifecycle.IsActive() {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FeeTypeName < out[j].FeeTypeName })
	return out, nil
}

/* ---------- fee groups ---------- */

func (m *MemoryRepository) CreateFeeGroup(_ context.Context, v *model.FeeGroupModel) error {
	defer m.lock()()
	for _, g := range m.st.groups {
		if g.FeeGroupSchoolID == v.FeeGroupSchoolID && strings.EqualFold(g.FeeGroupName, v.FeeGroupName) {
			return gorm.ErrDuplicatedKey
		}
	}
	if v.FeeGroupID == uuid.Nil {
		v.FeeGroupID = uuid.New()
	}
	v.FeeGroupCreatedAt, v.FeeGroupUpdatedAt = m.now(), m.now()
	m.st.groups[v.FeeGroupID] = *v
	return nil
}

func (m *MemoryRepository) GetFeeGroup(_ context.Context, schoolID, id uuid.UUID) (*model.FeeGroupModel, error) {
	defer m.lock()()
	g, ok := m.st.groups[id]
	if !ok || g.FeeGroupSchoolID != schoolID || !g.FeeGroupLifecycle.IsActive() {
		return nil, gorm.ErrRecordNotFound
	}
	return &g, nil
}

func (m *MemoryRepository) ListFeeGroups(_ context.Context, schoolID uuid.UUID) ([]model.FeeGroupModel, error) {
	defer m.lock()()
	out := make([]model.FeeGroupModel, 0)
	for _, g := range m.st.groups {
		if g.FeeGroupSchoolID == schoolID && g.FeeGroupLifecycle.IsActive() {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FeeGroupName < out[j].FeeGroupName })
	return out, nil
}

/* ---------- fee masters ---------- */

func (m *MemoryRepository) CreateFeeMaster(_ context.Context, v *model.FeeMasterModel) error {
	defer m.lock()()
	if v.FeeMasterID == uuid.Nil {
		v.FeeMasterID = uuid.New()
	}
	v.FeeMasterCreatedAt, v.FeeMasterUpdatedAt = m.now(), m.now()
	m.st.masters[v.FeeMasterID] = *v
	return nil
}

func (m *MemoryRepository) ListFeeMasters(_ context.Context, schoolID uuid.UUID, f FeeMasterFilter) ([]model.FeeMasterModel, error) {
	defer m.lock()()
	classes := make(map[uuid.UUID]bool, len(f.ClassIDs))
	for _, id := range f.ClassIDs {
		classes[id] = true
	}
	out := make([]model.FeeMasterModel, 0)
	for _, fm := range m.st.masters {
		if fm.FeeMasterSchoolID != schoolID || !fm.FeeMasterLifecycle.IsActive() {
			continue
		}
		if len(classes) > 0 && !classes[fm.FeeMasterClassID] {
			continue
		}
		if f.FeeTypeID != nil && fm.FeeMasterFeeTypeID != *f.FeeTypeID {
			continue
		}
		out = append(out, fm)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.FeeMasterDueDate != nil && b.FeeMasterDueDate == nil:
			return true
		case a.FeeMasterDueDate == nil && b.FeeMasterDueDate != nil:
			return false
		case a.FeeMasterDueDate != nil && !a.FeeMasterDueDate.Equal(*b.FeeMasterDueDate):
			return a.FeeMasterDueDate.Before(*b.FeeMasterDueDate)
		}
		if a.FeeMasterFeeTypeName != b.FeeMasterFeeTypeName {
			return a.FeeMasterFeeTypeName < b.FeeMasterFeeTypeName
		}
		return a.FeeMasterID.String() < b.FeeMasterID.String()
	})
	return out, nil
}

/* ---------- discounts ---------- */

func (m *MemoryRepository) CreateDiscount(_ context.Context, v *model.FeeDiscountModel) error {
	defer m.lock()()
	for _, d := range m.st.discounts {
		if d.FeeDiscountSchoolID == v.FeeDiscountSchoolID && d.FeeDiscountCode == v.FeeDiscountCode {
			return gorm.ErrDuplicatedKey
		}
	}
	if v.FeeDiscountID == uuid.Nil {
		v.FeeDiscountID = uuid.New()
	}
	v.FeeDiscountCreatedAt, v.FeeDiscountUpdatedAt = m.now(), m.now()
	m.st.discounts[v.FeeDiscountID] = *v
	return nil
}

func (m *MemoryRepository) ListDiscounts(_ context.Context, schoolID uuid.UUID) ([]model.FeeDiscountModel, error) {
	defer m.lock()()
	out := make([]model.FeeDiscountModel, 0)
	for _, d := range m.st.discounts {
		if d.FeeDiscountSchoolID == schoolID && d.FeeDiscountLifecycle.IsActive() {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FeeDiscountCode < out[j].FeeDiscountCode })
	return out, nil
}

func (m *MemoryRepository) GetDiscountByCode(_ context.Context, schoolID uuid.UUID, code string) (*model.FeeDiscountModel, error) {
	defer m.lock()()
	for _, d := range m.st.discounts {
		if d.FeeDiscountSchoolID == schoolID && d.FeeDiscountCode == code && d.FeeDiscountLifecycle.IsActive() {
			return &d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

/* ---------- student fees ---------- */

func (m *MemoryRepository) CreateStudentFee(_ context.Context, v *model.StudentFeeModel) error {
	defer m.lock()()
	if err := m.Faults.Check("CreateStudentFee"); err != nil {
		return err
	}
	for _, sf := range m.st.studentFees {
		if sf.StudentFeeSchoolID == v.StudentFeeSchoolID &&
			sf.StudentFeeTransactionID == v.StudentFeeTransactionID &&
			sf.StudentFeeFeeMasterID == v.StudentFeeFeeMasterID {
			return gorm.ErrDuplicatedKey
		}
	}
	if v.StudentFeeID == uuid.Nil {
		v.StudentFeeID = uuid.New()
	}
	v.StudentFeeCreatedAt = m.now()
	m.st.studentFees = append(m.st.studentFees, *v)
	return nil
}

func (m *MemoryRepository) ListStudentFees(_ context.Context, schoolID uuid.UUID, studentIDs []uuid.UUID) ([]model.StudentFeeModel, error) {
	defer m.lock()()
	want := make(map[uuid.UUID]bool, len(studentIDs))
	for _, id := range studentIDs {
		want[id] = true
	}
	out := make([]model.StudentFeeModel, 0)
	for _, sf := range m.st.studentFees {
		if sf.StudentFeeSchoolID == schoolID && want[sf.StudentFeeStudentID] {
			out = append(out, sf)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StudentFeePaidDate.Before(out[j].StudentFeePaidDate) })
	return out, nil
}

func (m *MemoryRepository) ListStudentFeesByTransaction(_ context.Context, schoolID uuid.UUID, transactionID string) ([]model.StudentFeeModel, error) {
	defer m.lock()()
	out := make([]model.StudentFeeModel, 0)
	for _, sf := range m.st.studentFees {
		if sf.StudentFeeSchoolID == schoolID && sf.StudentFeeTransactionID == transactionID {
			out = append(out, sf)
		}
	}
	return out, nil
}

func (m *MemoryRepository) SumCollections(_ context.Context, schoolID uuid.UUID, from, until *time.Time, groupBy CollectionGroupBy) ([]CollectionGroupRow, error) {
	defer m.lock()()
	groups := map[string]*CollectionGroupRow{}
	for _, sf := range m.st.studentFees {
		if sf.StudentFeeSchoolID != schoolID || sf.StudentFeeStatus != model.StudentFeePaid {
			continue
		}
		if from != nil && sf.StudentFeePaidDate.Before(*from) {
			continue
		}
		if until != nil && !sf.StudentFeePaidDate.Before(*until) {
			continue
		}
		key := ""
		switch groupBy {
		case GroupByFeeType:
			key = sf.StudentFeeFeeTypeName
		case GroupByPaymentMode:
			key = sf.StudentFeePaymentMode
		case GroupByDay:
			key = sf.StudentFeePaidDate.UTC().Format("2006-01-02")
		}
		g, ok := groups[key]
		if !ok {
			g = &CollectionGroupRow{Key: key, Paid: decimal.Zero, Discount: decimal.Zero, Fine: decimal.Zero}
			groups[key] = g
		}
		g.Count++
		g.Paid = g.Paid.Add(sf.StudentFeePaidAmount)
		g.Discount = g.Discount.Add(sf.StudentFeeDiscountAmount)
		g.Fine = g.Fine.Add(sf.StudentFeeFineAmount)
	}
	out := make([]CollectionGroupRow, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// SetClock untuk test yang butuh created_at deterministik.
func (m *MemoryRepository) SetClock(now func() time.Time) {
	m.now = now
}
