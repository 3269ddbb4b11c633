// file: internals/features/procurement/work_orders/repository/memory_work_order_repository.go
package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"schoolku_backend/internals/constants"
	"schoolku_backend/internals/databases/dbtest"
	"schoolku_backend/internals/features/procurement/work_orders/model"
)

type woState struct {
	orders   map[uuid.UUID]model.WorkOrderModel
	payments map[uuid.UUID]model.WorkOrderPaymentModel
}

func (s *woState) clone() *woState {
	cp := &woState{
		orders:   make(map[uuid.UUID]model.WorkOrderModel, len(s.orders)),
		payments: make(map[uuid.UUID]model.WorkOrderPaymentModel, len(s.payments)),
	}
	for k, v := range s.orders {
		cp.orders[k] = v
	}
	for k, v := range s.payments {
		cp.payments[k] = v
	}
	return cp
}

type MemoryRepository struct {
	mu     *sync.Mutex
	st     *woState
	inTx   bool
	Faults *dbtest.FaultInjector
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		mu: &sync.Mutex{},
		st: &woState{
			orders:   map[uuid.UUID]model.WorkOrderModel{},
			payments: map[uuid.UUID]model.WorkOrderPaymentModel{},
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

func (m *MemoryRepository) CreateWorkOrder(_ context.Context, wo *model.WorkOrderModel) error {
	defer m.lock()()
	if wo.WorkOrderID == uuid.Nil {
		wo.WorkOrderID = uuid.New()
	}
	if wo.WorkOrderLifecycle == "" {
		wo.WorkOrderLifecycle = constants.LifecycleActive
	}
	wo.WorkOrderCreatedAt, wo.WorkOrderUpdatedAt = m.now(), m.now()
	m.st.orders[wo.WorkOrderID] = *wo
	return nil
}

func (m *MemoryRepository) get(schoolID, id uuid.UUID) (*model.WorkOrderModel, error) {
	wo, ok := m.st.orders[id]
	if !ok || wo.WorkOrderSchoolID != schoolID || wo.WorkOrderLifecycle == constants.LifecycleDeleted {
		return nil, gorm.ErrRecordNotFound
	}
	return &wo, nil
}

func (m *MemoryRepository) GetWorkOrder(_ context.Context, schoolID, id uuid.UUID) (*model.WorkOrderModel, error) {
	defer m.lock()()
	return m.get(schoolID, id)
}

func (m *MemoryRepository) LockWorkOrder(_ context.Context, schoolID, id uuid.UUID) (*model.WorkOrderModel, error) {
	defer m.lock()()
	if err := m.Faults.Check("LockWorkOrder"); err != nil {
		return nil, err
	}
	return m.get(schoolID, id)
}

func (m *MemoryRepository) SaveDerived(_ context.Context, wo *model.WorkOrderModel) error {
	defer m.lock()()
	if err := m.Faults.Check("SaveDerived"); err != nil {
		return err
	}
	cur, err := m.get(wo.WorkOrderSchoolID, wo.WorkOrderID)
	if err != nil {
		return err
	}
	cur.WorkOrderAdvancePaid = wo.WorkOrderAdvancePaid
	cur.WorkOrderBalanceAmount = wo.WorkOrderBalanceAmount
	cur.WorkOrderPaymentStatus = wo.WorkOrderPaymentStatus
	cur.WorkOrderUpdatedAt = m.now()
	m.st.orders[wo.WorkOrderID] = *cur
	return nil
}

func (m *MemoryRepository) ListWorkOrders(_ context.Context, schoolID uuid.UUID, status model.PaymentStatus, offset, limit int) ([]model.WorkOrderModel, int64, error) {
	defer m.lock()()
	rows := make([]model.WorkOrderModel, 0)
	for _, wo := range m.st.orders {
		if wo.WorkOrderSchoolID != schoolID || wo.WorkOrderLifecycle == constants.LifecycleDeleted {
			continue
		}
		if status != "" && wo.WorkOrderPaymentStatus != status {
			continue
		}
		rows = append(rows, wo)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.WorkOrderCreatedAt.Equal(b.WorkOrderCreatedAt) {
			return a.WorkOrderCreatedAt.After(b.WorkOrderCreatedAt)
		}
		return a.WorkOrderID.String() < b.WorkOrderID.String()
	})
	total := int64(len(rows))
	if offset >= len(rows) {
		return []model.WorkOrderModel{}, total, nil
	}
	rows = rows[offset:]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, total, nil
}

func (m *MemoryRepository) OpenBalance(_ context.Context, schoolID uuid.UUID) (OpenBalanceRow, error) {
	defer m.lock()()
	out := OpenBalanceRow{Balance: decimal.Zero}
	for _, wo := range m.st.orders {
		if wo.WorkOrderSchoolID != schoolID || wo.WorkOrderLifecycle == constants.LifecycleDeleted {
			continue
		}
		if wo.WorkOrderPaymentStatus == model.PaymentPaid {
			continue
		}
		out.Count++
		out.Balance = out.Balance.Add(wo.WorkOrderBalanceAmount)
	}
	return out, nil
}

func (m *MemoryRepository) CreatePayment(_ context.Context, p *model.WorkOrderPaymentModel) error {
	defer m.lock()()
	if err := m.Faults.Check("CreatePayment"); err != nil {
		return err
	}
	if p.WorkOrderPaymentID == uuid.Nil {
		p.WorkOrderPaymentID = uuid.New()
	}
	p.WorkOrderPaymentCreatedAt = m.now()
	m.st.payments[p.WorkOrderPaymentID] = *p
	return nil
}

func (m *MemoryRepository) DeletePayment(_ context.Context, schoolID, workOrderID, paymentID uuid.UUID) error {
	defer m.lock()()
	p, ok := m.st.payments[paymentID]
	if !ok || p.WorkOrderPaymentSchoolID != schoolID || p.WorkOrderPaymentWorkOrderID != workOrderID || p.WorkOrderPaymentDeletedAt.Valid {
		return gorm.ErrRecordNotFound
	}
	p.WorkOrderPaymentDeletedAt = gorm.DeletedAt{Time: m.now(), Valid: true}
	m.st.payments[paymentID] = p
	return nil
}

func (m *MemoryRepository) ListPayments(_ context.Context, schoolID, workOrderID uuid.UUID) ([]model.WorkOrderPaymentModel, error) {
	defer m.lock()()
	rows := make([]model.WorkOrderPaymentModel, 0)
	for _, p := range m.st.payments {
		if p.WorkOrderPaymentSchoolID == schoolID && p.WorkOrderPaymentWorkOrderID == workOrderID && !p.WorkOrderPaymentDeletedAt.Valid {
			rows = append(rows, p)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].WorkOrderPaymentPaidAt.Equal(rows[j].WorkOrderPaymentPaidAt) {
			return rows[i].WorkOrderPaymentPaidAt.Before(rows[j].WorkOrderPaymentPaidAt)
		}
		return rows[i].WorkOrderPaymentCreatedAt.Before(rows[j].WorkOrderPaymentCreatedAt)
	})
	return rows, nil
}

// SetClock untuk test.
func (m *MemoryRepository) SetClock(now func() time.Time) {
	m.now = now
}
