// file: internals/features/finance/wallets/repository/memory_wallet_repository.go
package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"schoolku_backend/internals/databases/dbtest"
	"schoolku_backend/internals/features/finance/wallets/dto"
	"schoolku_backend/internals/features/finance/wallets/model"
)

type walletState struct {
	wallets   map[uuid.UUID]model.WalletModel // key: wallet_id
	txs       []model.WalletTransactionModel
	recharges map[string]model.WalletRechargeModel // key: order_id
	nextNo    int64
}

func (s *walletState) clone() *walletState {
	cp := &walletState{
		wallets:   make(map[uuid.UUID]model.WalletModel, len(s.wallets)),
		txs:       append([]model.WalletTransactionModel(nil), s.txs...),
		recharges: make(map[string]model.WalletRechargeModel, len(s.recharges)),
		nextNo:    s.nextNo,
	}
	for k, v := range s.wallets {
		cp.wallets[k] = v
	}
	for k, v := range s.recharges {
		cp.recharges[k] = v
	}
	return cp
}

// MemoryRepository implementasi in-memory; transaksi = salinan state yang dipasang saat commit.
type MemoryRepository struct {
	mu     *sync.Mutex
	st     *walletState
	inTx   bool
	Faults *dbtest.FaultInjector
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		mu: &sync.Mutex{},
		st: &walletState{
			wallets:   map[uuid.UUID]model.WalletModel{},
			recharges: map[string]model.WalletRechargeModel{},
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

func (m *MemoryRepository) findWallet(schoolID, studentID uuid.UUID) (*model.WalletModel, error) {
	for _, w := range m.st.wallets {
		if w.WalletSchoolID == schoolID && w.WalletStudentID == studentID {
			return &w, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MemoryRepository) GetWallet(_ context.Context, schoolID, studentID uuid.UUID) (*model.WalletModel, error) {
	defer m.lock()()
	return m.findWallet(schoolID, studentID)
}

func (m *MemoryRepository) LockWallet(_ context.Context, schoolID, studentID uuid.UUID) (*model.WalletModel, error) {
	defer m.lock()()
	if err := m.Faults.Check("LockWallet"); err != nil {
		return nil, err
	}
	return m.findWallet(schoolID, studentID)
}

func (m *MemoryRepository) CreateWallet(_ context.Context, w *model.WalletModel) error {
	defer m.lock()()
	if _, err := m.findWallet(w.WalletSchoolID, w.WalletStudentID); err == nil {
		return gorm.ErrDuplicatedKey
	}
	if w.WalletID == uuid.Nil {
		w.WalletID = uuid.New()
	}
	if w.WalletStatus == "" {
		w.WalletStatus = model.WalletActive
	}
	w.WalletCreatedAt, w.WalletUpdatedAt = m.now(), m.now()
	m.st.wallets[w.WalletID] = *w
	return nil
}

func (m *MemoryRepository) SaveWallet(_ context.Context, w *model.WalletModel) error {
	defer m.lock()()
	cur, ok := m.st.wallets[w.WalletID]
	if !ok || cur.WalletSchoolID != w.WalletSchoolID {
		return gorm.ErrRecordNotFound
	}
	w.WalletUpdatedAt = m.now()
	m.st.wallets[w.WalletID] = *w
	return nil
}

func (m *MemoryRepository) WalletTotals(_ context.Context, schoolID uuid.UUID) (Totals, error) {
	defer m.lock()()
	t := Totals{Balance: decimal.Zero}
	for _, w := range m.st.wallets {
		if w.WalletSchoolID != schoolID {
			continue
		}
		t.Wallets++
		if w.IsActive() {
			t.Active++
		}
		t.Balance = t.Balance.Add(w.WalletBalance)
	}
	return t, nil
}

func (m *MemoryRepository) CreateTransaction(_ context.Context, t *model.WalletTransactionModel) error {
	defer m.lock()()
	if err := m.Faults.Check("CreateTransaction"); err != nil {
		return err
	}
	for _, x := range m.st.txs {
		if x.WalletTransactionSchoolID == t.WalletTransactionSchoolID && x.WalletTransactionCode == t.WalletTransactionCode {
			return gorm.ErrDuplicatedKey
		}
		if x.WalletTransactionWalletID == t.WalletTransactionWalletID && x.WalletTransactionSeq == t.WalletTransactionSeq {
			return gorm.ErrDuplicatedKey
		}
	}
	if t.WalletTransactionID == uuid.Nil {
		t.WalletTransactionID = uuid.New()
	}
	m.st.nextNo++
	t.WalletTransactionNo = m.st.nextNo
	t.WalletTransactionCreatedAt = m.now()
	m.st.txs = append(m.st.txs, *t)
	return nil
}

func matchTx(t model.WalletTransactionModel, schoolID uuid.UUID, f dto.TransactionFilter) bool {
	if t.WalletTransactionSchoolID != schoolID {
		return false
	}
	if f.StudentID != nil && t.WalletTransactionStudentID != *f.StudentID {
		return false
	}
	if f.Type != "" && t.WalletTransactionType != f.Type {
		return false
	}
	if f.Category != "" && t.WalletTransactionCategory != f.Category {
		return false
	}
	if f.From != nil && t.WalletTransactionDate.Before(*f.From) {
		return false
	}
	if f.Until != nil && !t.WalletTransactionDate.Before(*f.Until) {
		return false
	}
	return true
}

func (m *MemoryRepository) ListTransactions(_ context.Context, schoolID uuid.UUID, f dto.TransactionFilter, offset, limit int) ([]model.WalletTransactionModel, int64, error) {
	defer m.lock()()
	rows := make([]model.WalletTransactionModel, 0)
	for _, t := range m.st.txs {
		if matchTx(t, schoolID, f) {
			rows = append(rows, t)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.WalletTransactionDate.Equal(b.WalletTransactionDate) {
			return a.WalletTransactionDate.After(b.WalletTransactionDate)
		}
		return a.WalletTransactionNo > b.WalletTransactionNo
	})
	total := int64(len(rows))
	if offset >= len(rows) {
		return []model.WalletTransactionModel{}, total, nil
	}
	rows = rows[offset:]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, total, nil
}

func (m *MemoryRepository) AllTransactions(_ context.Context, schoolID, walletID uuid.UUID) ([]model.WalletTransactionModel, error) {
	defer m.lock()()
	rows := make([]model.WalletTransactionModel, 0)
	for _, t := range m.st.txs {
		if t.WalletTransactionSchoolID == schoolID && t.WalletTransactionWalletID == walletID {
			rows = append(rows, t)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].WalletTransactionSeq < rows[j].WalletTransactionSeq })
	return rows, nil
}

func (m *MemoryRepository) CategorySummary(_ context.Context, schoolID uuid.UUID, from, until *time.Time) ([]CategoryRow, error) {
	defer m.lock()()
	f := dto.TransactionFilter{From: from, Until: until}
	groups := map[[2]string]*CategoryRow{}
	for _, t := range m.st.txs {
		if !matchTx(t, schoolID, f) {
			continue
		}
		key := [2]string{string(t.WalletTransactionType), t.WalletTransactionCategory}
		g, ok := groups[key]
		if !ok {
			g = &CategoryRow{Type: t.WalletTransactionType, Category: t.WalletTransactionCategory, Amount: decimal.Zero}
			groups[key] = g
		}
		g.Count++
		g.Amount = g.Amount.Add(t.WalletTransactionAmount)
	}
	out := make([]CategoryRow, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (m *MemoryRepository) CreateRecharge(_ context.Context, r *model.WalletRechargeModel) error {
	defer m.lock()()
	if _, ok := m.st.recharges[r.WalletRechargeOrderID]; ok {
		return gorm.ErrDuplicatedKey
	}
	if r.WalletRechargeID == uuid.Nil {
		r.WalletRechargeID = uuid.New()
	}
	r.WalletRechargeCreatedAt, r.WalletRechargeUpdatedAt = m.now(), m.now()
	m.st.recharges[r.WalletRechargeOrderID] = *r
	return nil
}

func (m *MemoryRepository) SaveRecharge(_ context.Context, r *model.WalletRechargeModel) error {
	defer m.lock()()
	if _, ok := m.st.recharges[r.WalletRechargeOrderID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.WalletRechargeUpdatedAt = m.now()
	m.st.recharges[r.WalletRechargeOrderID] = *r
	return nil
}

func (m *MemoryRepository) LockRechargeByOrderID(_ context.Context, orderID string) (*model.WalletRechargeModel, error) {
	defer m.lock()()
	r, ok := m.st.recharges[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (m *MemoryRepository) ListRecharges(_ context.Context, schoolID, studentID uuid.UUID, limit int) ([]model.WalletRechargeModel, error) {
	defer m.lock()()
	out := make([]model.WalletRechargeModel, 0)
	for _, r := range m.st.recharges {
		if r.WalletRechargeSchoolID == schoolID && r.WalletRechargeStudentID == studentID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WalletRechargeCreatedAt.After(out[j].WalletRechargeCreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SetClock untuk test.
func (m *MemoryRepository) SetClock(now func() time.Time) {
	m.now = now
}

// CorruptBalance hanya untuk test verifikasi: ubah saldo tanpa transaksi.
func (m *MemoryRepository) CorruptBalance(walletID uuid.UUID, balance decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := m.st.wallets[walletID]
	w.WalletBalance = balance
	m.st.wallets[walletID] = w
}
