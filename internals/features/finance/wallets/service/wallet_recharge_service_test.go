package service

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolku_backend/internals/features/finance/wallets/dto"
	"schoolku_backend/internals/features/finance/wallets/model"
	helper "schoolku_backend/internals/helpers"
)

const testServerKey = "SB-Mid-server-test"

type fakeGateway struct {
	orders []SnapOrder
	err    error
}

func (g *fakeGateway) CreateSnap(_ context.Context, o SnapOrder) (string, string, error) {
	if g.err != nil {
		return "", "", g.err
	}
	g.orders = append(g.orders, o)
	return "snap-" + o.OrderID, "https://app.sandbox.midtrans.com/snap/v2/vtweb/" + o.OrderID, nil
}

func (g *fakeGateway) ServerKey() string { return testServerKey }

func signedNotif(orderID, status, gross string) dto.MidtransNotification {
	n := dto.MidtransNotification{
		OrderID:           orderID,
		StatusCode:        "200",
		GrossAmount:       gross,
		TransactionStatus: status,
		TransactionID:     "mt-" + orderID,
		PaymentType:       "bank_transfer",
	}
	n.SignatureKey = Signature(n.OrderID, n.StatusCode, n.GrossAmount, testServerKey)
	return n
}

func newRechargeFixture(t *testing.T) (*walletFixture, *RechargeService, *fakeGateway) {
	f := newWalletFixture(t)
	gw := &fakeGateway{}
	return f, NewRechargeService(f.svc, gw), gw
}

func TestRecharge_SettlementCreditsOnce(t *testing.T) {
	f, rs, gw := newRechargeFixture(t)

	rc, err := rs.CreateRecharge(f.ctx, f.ac, f.studentID, dto.CreateRechargeRequest{Amount: amt("25000")})
	require.NoError(t, err)
	assert.Equal(t, model.RechargePending, rc.Status)
	assert.Regexp(t, `^WRC-\d+-[0-9A-F]{8}$`, rc.OrderID)
	require.Len(t, gw.orders, 1)
	assert.Equal(t, int64(25000), gw.orders[0].Amount)
	assert.Equal(t, "budi@example.com", gw.orders[0].Customer.Email)

	n := signedNotif(rc.OrderID, "settlement", "25000.00")
	first, err := rs.HandleNotification(f.ctx, n)
	require.NoError(t, err)
	assert.Equal(t, model.RechargePaid, first.RechargeStatus)
	assert.False(t, first.AlreadyApplied)
	require.NotNil(t, first.WalletTxCode)

	second, err := rs.HandleNotification(f.ctx, n)
	require.NoError(t, err)
	assert.True(t, second.AlreadyApplied)
	assert.Equal(t, *first.WalletTxCode, *second.WalletTxCode)

	w, err := f.svc.GetOrCreateWallet(f.ctx, f.ac, f.studentID)
	require.NoError(t, err)
	assert.True(t, w.WalletBalance.Equal(amt("25000")))
	assert.Equal(t, int64(1), w.WalletTransactionCount)

	rows, _, err := f.svc.ListTransactions(f.ctx, f.ac, dto.TransactionFilter{StudentID: &f.studentID}, helper.Paging{Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, dto.RechargeCategory, rows[0].WalletTransactionCategory)
	assert.Equal(t, rc.OrderID, *rows[0].WalletTransactionReference)
}

func TestRecharge_BadSignatureRejected(t *testing.T) {
	f, rs, _ := newRechargeFixture(t)
	rc, err := rs.CreateRecharge(f.ctx, f.ac, f.studentID, dto.CreateRechargeRequest{Amount: amt("10000")})
	require.NoError(t, err)

	n := signedNotif(rc.OrderID, "settlement", "10000.00")
	n.SignatureKey = "deadbeef"
	_, err = rs.HandleNotification(f.ctx, n)
	assert.True(t, helper.IsKind(err, helper.KindUnauthorized))

	w, err := f.svc.GetOrCreateWallet(f.ctx, f.ac, f.studentID)
	require.NoError(t, err)
	assert.True(t, w.WalletBalance.IsZero())
}

func TestRecharge_StatusMapping(t *testing.T) {
	cases := []struct {
		status, fraud string
		want          model.RechargeStatus
		final         bool
	}{
		{"settlement", "", model.RechargePaid, true},
		{"capture", "accept", model.RechargePaid, true},
		{"capture", "challenge", "", false},
		{"capture", "deny", model.RechargeFailed, true},
		{"deny", "", model.RechargeFailed, true},
		{"cancel", "", model.RechargeFailed, true},
		{"expire", "", model.RechargeExpired, true},
		{"pending", "", "", false},
	}
	for _, tc := range cases {
		got, final := mapNotification(dto.MidtransNotification{TransactionStatus: tc.status, FraudStatus: tc.fraud})
		assert.Equal(t, tc.want, got, tc.status+"/"+tc.fraud)
		assert.Equal(t, tc.final, final, tc.status+"/"+tc.fraud)
	}
}

func TestRecharge_ExpireThenSettlementIgnored(t *testing.T) {
	f, rs, _ := newRechargeFixture(t)
	rc, err := rs.CreateRecharge(f.ctx, f.ac, f.studentID, dto.CreateRechargeRequest{Amount: amt("5000")})
	require.NoError(t, err)

	res, err := rs.HandleNotification(f.ctx, signedNotif(rc.OrderID, "expire", "5000.00"))
	require.NoError(t, err)
	assert.Equal(t, model.RechargeExpired, res.RechargeStatus)

	res, err = rs.HandleNotification(f.ctx, signedNotif(rc.OrderID, "settlement", "5000.00"))
	require.NoError(t, err)
	assert.True(t, res.AlreadyApplied)

	w, err := f.svc.GetOrCreateWallet(f.ctx, f.ac, f.studentID)
	require.NoError(t, err)
	assert.True(t, w.WalletBalance.IsZero())
}

func TestRecharge_AmountMismatchFails(t *testing.T) {
	f, rs, _ := newRechargeFixture(t)
	rc, err := rs.CreateRecharge(f.ctx, f.ac, f.studentID, dto.CreateRechargeRequest{Amount: amt("5000")})
	require.NoError(t, err)

	res, err := rs.HandleNotification(f.ctx, signedNotif(rc.OrderID, "settlement", "1.00"))
	require.NoError(t, err)
	assert.Equal(t, model.RechargeFailed, res.RechargeStatus)

	w, err := f.svc.GetOrCreateWallet(f.ctx, f.ac, f.studentID)
	require.NoError(t, err)
	assert.True(t, w.WalletBalance.IsZero())
}

func TestRecharge_BlockedWalletMarksFailed(t *testing.T) {
	f, rs, _ := newRechargeFixture(t)
	rc, err := rs.CreateRecharge(f.ctx, f.ac, f.studentID, dto.CreateRechargeRequest{Amount: amt("5000")})
	require.NoError(t, err)
	_, err = f.svc.SetStatus(f.ctx, f.ac, f.studentID, model.WalletBlocked)
	require.NoError(t, err)

	res, err := rs.HandleNotification(f.ctx, signedNotif(rc.OrderID, "settlement", "5000.00"))
	require.NoError(t, err)
	assert.Equal(t, model.RechargeFailed, res.RechargeStatus)

	rows, err := rs.ListRecharges(f.ctx, f.ac, f.studentID, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].WalletRechargeFailureReason)
}

func TestRecharge_CreateValidation(t *testing.T) {
	f, rs, gw := newRechargeFixture(t)

	_, err := rs.CreateRecharge(f.ctx, f.ac, f.studentID, dto.CreateRechargeRequest{Amount: amt("0")})
	assert.True(t, errors.Is(err, helper.ErrInvalidAmount))
	_, err = rs.CreateRecharge(f.ctx, f.ac, f.studentID, dto.CreateRechargeRequest{Amount: amt("10.5")})
	assert.True(t, errors.Is(err, helper.ErrInvalidAmount))

	gw.err = errors.New("gateway down")
	_, err = rs.CreateRecharge(f.ctx, f.ac, f.studentID, dto.CreateRechargeRequest{Amount: amt("1000")})
	assert.True(t, helper.IsKind(err, helper.KindInternal))

	rows, err := rs.ListRecharges(f.ctx, f.ac, f.studentID, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)

	unconfigured := NewRechargeService(f.svc, nil)
	_, err = unconfigured.CreateRecharge(f.ctx, f.ac, f.studentID, dto.CreateRechargeRequest{Amount: amt("1000")})
	assert.True(t, helper.IsKind(err, helper.KindValidation))
}

func TestVerifySignature(t *testing.T) {
	sig := Signature("WRC-1", "200", "1000.00", "key")
	assert.Len(t, sig, 128)
	assert.True(t, VerifySignature("WRC-1", "200", "1000.00", "key", sig))
	assert.False(t, VerifySignature("WRC-1", "200", "1000.00", "other", sig))
	assert.False(t, VerifySignature("WRC-1", "200", "1000.00", "", sig))
	assert.False(t, VerifySignature("WRC-1", "200", "1000.00", "key", ""))
}
