// file: internals/features/inventory/items/repository/memory_item_repository.go
package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolku_backend/internals/constants"
	"schoolku_backend/internals/databases/dbtest"
	"schoolku_backend/internals/features/inventory/items/dto"
	"schoolku_backend/internals/features/inventory/items/model"
)

var errNegativeQuantity = errors.New("violates check constraint: item_quantity >= 0")

type itemState struct {
	items  map[uuid.UUID]model.ItemModel
	stocks map[uuid.UUID]model.ItemStockModel
	txs    []model.ItemTransactionModel
	issues []model.ItemIssueModel
	sales  []model.ItemSaleModel
	nextNo int64
}

func (s *itemState) clone() *itemState {
	cp := &itemState{
		items:  make(map[uuid.UUID]model.ItemModel, len(s.items)),
		stocks: make(map[uuid.UUID]model.ItemStockModel, len(s.stocks)),
		txs:    append([]model.ItemTransactionModel(nil), s.txs...),
		issues: append([]model.ItemIssueModel(nil), s.issues...),
		sales:  append([]model.ItemSaleModel(nil), s.sales...),
		nextNo: s.nextNo,
	}
	for k, v := range s.items {
		cp.items[k] = v
	}
	for k, v := range s.stocks {
		cp.stocks[k] = v
	}
	return cp
}

// MemoryRepository implementasi in-memory untuk test; transaksi copy-on-commit.
type MemoryRepository struct {
	mu     *sync.Mutex
	st     *itemState
	inTx   bool
	Faults *dbtest.FaultInjector
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		mu: &sync.Mutex{},
		st: &itemState{
			items:  map[uuid.UUID]model.ItemModel{},
			stocks: map[uuid.UUID]model.ItemStockModel{},
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

func (m *MemoryRepository) CreateItem(_ context.Context, it *model.ItemModel) error {
	defer m.lock()()
	for _, x := range m.st.items {
		if x.ItemSchoolID == it.ItemSchoolID && strings.EqualFold(x.ItemName, it.ItemName) {
			return gorm.ErrDuplicatedKey
		}
	}
	if it.ItemID == uuid.Nil {
		it.ItemID = uuid.New()
	}
	if it.ItemLifecycle == "" {
		it.ItemLifecycle = constants.LifecycleActive
	}
	it.ItemCreatedAt, it.ItemUpdatedAt = m.now(), m.now()
	m.st.items[it.ItemID] = *it
	return nil
}

func (m *MemoryRepository) getItem(schoolID, itemID uuid.UUID) (*model.ItemModel, error) {
	it, ok := m.st.items[itemID]
	if !ok || it.ItemSchoolID != schoolID || it.ItemLifecycle == constants.LifecycleDeleted {
		return nil, gorm.ErrRecordNotFound
	}
	return &it, nil
}

func (m *MemoryRepository) GetItem(_ context.Context, schoolID, itemID uuid.UUID) (*model.ItemModel, error) {
	defer m.lock()()
	return m.getItem(schoolID, itemID)
}

func matchItem(it model.ItemModel, schoolID uuid.UUID, f dto.ItemFilter) bool {
	if it.ItemSchoolID != schoolID || it.ItemLifecycle != constants.LifecycleActive {
		return false
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		code := ""
		if it.ItemCode != nil {
			code = strings.ToLower(*it.ItemCode)
		}
		if !strings.Contains(strings.ToLower(it.ItemName), s) && !strings.Contains(code, s) {
			return false
		}
	}
	if c := strings.TrimSpace(f.Category); c != "" && (it.ItemCategory == nil || *it.ItemCategory != c) {
		return false
	}
	if f.LowStockOnly && !it.IsLowStock() {
		return false
	}
	return true
}

func (m *MemoryRepository) ListItems(_ context.Context, schoolID uuid.UUID, f dto.ItemFilter, offset, limit int) ([]model.ItemModel, int64, error) {
	defer m.lock()()
	rows := make([]model.ItemModel, 0)
	for _, it := range m.st.items {
		if matchItem(it, schoolID, f) {
			rows = append(rows, it)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ItemName != rows[j].ItemName {
			return rows[i].ItemName < rows[j].ItemName
		}
		return rows[i].ItemID.String() < rows[j].ItemID.String()
	})
	total := int64(len(rows))
	if offset >= len(rows) {
		return []model.ItemModel{}, total, nil
	}
	rows = rows[offset:]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, total, nil
}

func (m *MemoryRepository) LockItems(_ context.Context, schoolID uuid.UUID, ids []uuid.UUID) ([]model.ItemModel, error) {
	defer m.lock()()
	if err := m.Faults.Check("LockItems"); err != nil {
		return nil, err
	}
	out := make([]model.ItemModel, 0, len(ids))
	for _, id := range SortedIDs(ids) {
		it, err := m.getItem(schoolID, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, nil
}

func (m *MemoryRepository) SaveItemStock(_ context.Context, it *model.ItemModel) error {
	defer m.lock()()
	if err := m.Faults.Check("SaveItemStock"); err != nil {
		return err
	}
	cur, ok := m.st.items[it.ItemID]
	if !ok || cur.ItemSchoolID != it.ItemSchoolID {
		return gorm.ErrRecordNotFound
	}
	// CHECK (item_quantity >= 0)
	if it.ItemQuantity < 0 {
		return errNegativeQuantity
	}
	cur.ItemQuantity = it.ItemQuantity
	cur.ItemPurchasePrice = it.ItemPurchasePrice
	cur.ItemUpdatedAt = m.now()
	m.st.items[it.ItemID] = cur
	return nil
}

func (m *MemoryRepository) CountLowStock(_ context.Context, schoolID uuid.UUID) (int64, error) {
	defer m.lock()()
	var n int64
	for _, it := range m.st.items {
		if matchItem(it, schoolID, dto.ItemFilter{LowStockOnly: true}) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepository) CreateStock(_ context.Context, s *model.ItemStockModel) error {
	defer m.lock()()
	if s.ItemStockID == uuid.Nil {
		s.ItemStockID = uuid.New()
	}
	s.ItemStockCreatedAt = m.now()
	m.st.stocks[s.ItemStockID] = *s
	return nil
}

func (m *MemoryRepository) LockStock(_ context.Context, schoolID, stockID uuid.UUID) (*model.ItemStockModel, error) {
	defer m.lock()()
	s, ok := m.st.stocks[stockID]
	if !ok || s.ItemStockSchoolID != schoolID || s.ItemStockDeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (m *MemoryRepository) SoftDeleteStock(_ context.Context, s *model.ItemStockModel) error {
	defer m.lock()()
	cur, ok := m.st.stocks[s.ItemStockID]
	if !ok || cur.ItemStockSchoolID != s.ItemStockSchoolID || cur.ItemStockDeletedAt.Valid {
		return gorm.ErrRecordNotFound
	}
	cur.ItemStockDeletedAt = gorm.DeletedAt{Time: m.now(), Valid: true}
	m.st.stocks[s.ItemStockID] = cur
	return nil
}

func (m *MemoryRepository) CreateTransaction(_ context.Context, t *model.ItemTransactionModel) error {
	defer m.lock()()
	if err := m.Faults.Check("CreateTransaction"); err != nil {
		return err
	}
	if t.ItemTransactionID == uuid.Nil {
		t.ItemTransactionID = uuid.New()
	}
	m.st.nextNo++
	t.ItemTransactionNo = m.st.nextNo
	m.st.txs = append(m.st.txs, *t)
	return nil
}

func matchTx(t model.ItemTransactionModel, schoolID uuid.UUID, f dto.TransactionFilter) bool {
	if t.ItemTransactionSchoolID != schoolID {
		return false
	}
	if f.ItemID != nil && t.ItemTransactionItemID != *f.ItemID {
		return false
	}
	if f.Kind != "" && t.ItemTransactionKind != f.Kind {
		return false
	}
	if f.From != nil && t.ItemTransactionDate.Before(*f.From) {
		return false
	}
	if f.Until != nil && !t.ItemTransactionDate.Before(*f.Until) {
		return false
	}
	return true
}

func (m *MemoryRepository) ListTransactions(_ context.Context, schoolID uuid.UUID, f dto.TransactionFilter, offset, limit int) ([]model.ItemTransactionModel, int64, error) {
	defer m.lock()()
	rows := make([]model.ItemTransactionModel, 0)
	for _, t := range m.st.txs {
		if matchTx(t, schoolID, f) {
			rows = append(rows, t)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.ItemTransactionDate.Equal(b.ItemTransactionDate) {
			return a.ItemTransactionDate.After(b.ItemTransactionDate)
		}
		return a.ItemTransactionNo > b.ItemTransactionNo
	})
	total := int64(len(rows))
	if offset >= len(rows) {
		return []model.ItemTransactionModel{}, total, nil
	}
	rows = rows[offset:]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, total, nil
}

func (m *MemoryRepository) LedgerSum(_ context.Context, schoolID, itemID uuid.UUID) (int64, int64, error) {
	defer m.lock()()
	var sum, count int64
	for _, t := range m.st.txs {
		if t.ItemTransactionSchoolID == schoolID && t.ItemTransactionItemID == itemID {
			sum += t.ItemTransactionDelta
			count++
		}
	}
	return sum, count, nil
}

func (m *MemoryRepository) CreateIssue(_ context.Context, is *model.ItemIssueModel) error {
	defer m.lock()()
	if is.ItemIssueID == uuid.Nil {
		is.ItemIssueID = uuid.New()
	}
	for i := range is.Lines {
		if is.Lines[i].ItemIssueLineID == uuid.Nil {
			is.Lines[i].ItemIssueLineID = uuid.New()
		}
		is.Lines[i].ItemIssueLineIssueID = is.ItemIssueID
	}
	is.ItemIssueCreatedAt = m.now()
	m.st.issues = append(m.st.issues, *is)
	return nil
}

func (m *MemoryRepository) CreateSale(_ context.Context, s *model.ItemSaleModel) error {
	defer m.lock()()
	if s.ItemSaleID == uuid.Nil {
		s.ItemSaleID = uuid.New()
	}
	for i := range s.Lines {
		if s.Lines[i].ItemSaleLineID == uuid.Nil {
			s.Lines[i].ItemSaleLineID = uuid.New()
		}
		s.Lines[i].ItemSaleLineSaleID = s.ItemSaleID
	}
	s.ItemSaleCreatedAt = m.now()
	m.st.sales = append(m.st.sales, *s)
	return nil
}

// SetClock untuk test.
func (m *MemoryRepository) SetClock(now func() time.Time) {
	m.now = now
}

// Counts jumlah issue, sale, dan transaksi yang tersimpan (untuk assert rollback di test).
func (m *MemoryRepository) Counts() (issues, sales, txs int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.st.issues), len(m.st.sales), len(m.st.txs)
}
