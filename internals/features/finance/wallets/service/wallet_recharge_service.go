// file: internals/features/finance/wallets/service/wallet_recharge_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"schoolku_backend/internals/configs"
	"schoolku_backend/internals/features/finance/wallets/dto"
	"schoolku_backend/internals/features/finance/wallets/model"
	"schoolku_backend/internals/features/finance/wallets/repository"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

// RechargeService top-up wallet lewat Midtrans Snap. Kredit ke wallet hanya
// terjadi dari webhook, sekali per order_id.
type RechargeService struct {
	wallets *Service
	gateway SnapGateway
}

func NewRechargeService(wallets *Service, gateway SnapGateway) *RechargeService {
	return &RechargeService{wallets: wallets, gateway: gateway}
}

func NewRechargeOrderID(millis int64) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("WRC-%d-%s", millis, strings.ToUpper(hex[:8]))
}

func (s *RechargeService) CreateRecharge(ctx context.Context, ac helperAuth.AuthContext, studentID uuid.UUID, req dto.CreateRechargeRequest) (*dto.RechargeResponse, error) {
	if s.gateway == nil {
		return nil, helper.Validation("recharge online belum dikonfigurasi")
	}
	amount := req.Amount.Round(0)
	if !amount.IsPositive() || !amount.Equal(req.Amount) {
		return nil, helper.ErrInvalidAmount.WithMessage("amount harus bilangan bulat rupiah lebih dari 0")
	}

	w, err := s.wallets.GetOrCreateWallet(ctx, ac, studentID)
	if err != nil {
		return nil, err
	}
	if !w.IsActive() {
		return nil, helper.ErrWalletNotActive.WithMessage("wallet berstatus %s", w.WalletStatus)
	}
	st, err := s.wallets.students.GetStudent(ctx, ac.SchoolID, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "get student")
	}

	rc := &model.WalletRechargeModel{
		WalletRechargeSchoolID:    ac.SchoolID,
		WalletRechargeStudentID:   studentID,
		WalletRechargeWalletID:    w.WalletID,
		WalletRechargeOrderID:     NewRechargeOrderID(s.wallets.now().UnixMilli()),
		WalletRechargeAmount:      amount,
		WalletRechargeStatus:      model.RechargePending,
		WalletRechargeRequestedBy: ac.ActorID(),
	}

	cust := CustomerInput{FirstName: st.SchoolStudentFullName}
	if st.SchoolStudentEmail != nil {
		cust.Email = *st.SchoolStudentEmail
	}
	token, redirectURL, err := s.gateway.CreateSnap(ctx, SnapOrder{
		OrderID:  rc.WalletRechargeOrderID,
		Amount:   amount.IntPart(),
		ItemName: "Top up wallet " + st.SchoolStudentFullName,
		Customer: cust,
	})
	if err != nil {
		configs.LogError(s.wallets.log, "wallets", "CreateRecharge", "snap", rc.WalletRechargeOrderID, err)
		return nil, helper.Internal(errors.Wrap(err, "create snap transaction"))
	}
	rc.WalletRechargeSnapToken = &token
	rc.WalletRechargeRedirectURL = &redirectURL

	if err := s.wallets.repo.CreateRecharge(ctx, rc); err != nil {
		return nil, errors.Wrap(err, "create recharge")
	}
	return &dto.RechargeResponse{
		RechargeID:  rc.WalletRechargeID,
		OrderID:     rc.WalletRechargeOrderID,
		Amount:      amount,
		Status:      rc.WalletRechargeStatus,
		SnapToken:   token,
		RedirectURL: redirectURL,
	}, nil
}

func (s *RechargeService) ListRecharges(ctx context.Context, ac helperAuth.AuthContext, studentID uuid.UUID, limit int) ([]model.WalletRechargeModel, error) {
	rows, err := s.wallets.repo.ListRecharges(ctx, ac.SchoolID, studentID, limit)
	return rows, errors.Wrap(err, "list recharges")
}

// mapNotification status Midtrans → status recharge. ok=false: belum final, abaikan.
func mapNotification(n dto.MidtransNotification) (model.RechargeStatus, bool) {
	ts := strings.ToLower(n.TransactionStatus)
	fraud := strings.ToLower(n.FraudStatus)
	switch ts {
	case "settlement":
		return model.RechargePaid, true
	case "capture":
		// kartu kredit: accept → paid, challenge → tunggu notifikasi berikutnya
		if fraud == "accept" || fraud == "" {
			return model.RechargePaid, true
		}
		if fraud == "challenge" {
			return "", false
		}
		return model.RechargeFailed, true
	case "deny", "cancel", "failure":
		return model.RechargeFailed, true
	case "expire":
		return model.RechargeExpired, true
	}
	return "", false
}

// HandleNotification memproses webhook Midtrans. Baris recharge dikunci; hanya recharge
// pending yang dikredit, jadi notifikasi ganda tidak mengkredit dua kali.
func (s *RechargeService) HandleNotification(ctx context.Context, n dto.MidtransNotification) (*dto.WebhookResult, error) {
	serverKey := ""
	if s.gateway != nil {
		serverKey = s.gateway.ServerKey()
	}
	if !VerifySignature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey, n.SignatureKey) {
		return nil, helper.Unauthorized("invalid signature")
	}

	payload, _ := sonic.Marshal(n)
	res := &dto.WebhookResult{OrderID: n.OrderID, TransactionStatus: n.TransactionStatus}

	err := s.wallets.repo.WithinTx(ctx, func(r repository.Repository) error {
		rc, err := r.LockRechargeByOrderID(ctx, n.OrderID)
		if err != nil {
			if repository.IsNotFound(err) {
				return helper.NotFound("recharge %s tidak ditemukan", n.OrderID)
			}
			return errors.Wrap(err, "lock recharge")
		}
		res.RechargeStatus = rc.WalletRechargeStatus
		res.WalletTxCode = rc.WalletRechargeWalletTxCode

		if rc.WalletRechargeStatus != model.RechargePending {
			res.AlreadyApplied = true
			return nil
		}
		target, final := mapNotification(n)
		if !final {
			return nil
		}

		rc.WalletRechargeLastPayload = datatypes.JSON(payload)
		if n.TransactionID != "" {
			ref := n.TransactionID
			rc.WalletRechargeGatewayTransactionID = &ref
		}
		if n.PaymentType != "" {
			pt := n.PaymentType
			rc.WalletRechargePaymentType = &pt
		}

		if target == model.RechargePaid {
			if gross, perr := decimal.NewFromString(n.GrossAmount); perr != nil || !gross.Equal(rc.WalletRechargeAmount) {
				target = model.RechargeFailed
				reason := fmt.Sprintf("gross_amount %s tidak sama dengan %s", n.GrossAmount, rc.WalletRechargeAmount.StringFixed(2))
				rc.WalletRechargeFailureReason = &reason
				configs.LogWarn(s.wallets.log, "wallets", "HandleNotification", "amount mismatch", n.OrderID, reason)
			}
		}

		if target == model.RechargePaid {
			w, err := r.LockWallet(ctx, rc.WalletRechargeSchoolID, rc.WalletRechargeStudentID)
			if err != nil {
				return errors.Wrap(err, "lock wallet")
			}
			ref := rc.WalletRechargeOrderID
			out, err := s.wallets.applyLocked(ctx, r, w, model.TxCredit, dto.MutationRequest{
				Amount:    rc.WalletRechargeAmount,
				Category:  dto.RechargeCategory,
				Reference: &ref,
			}, rc.WalletRechargeRequestedBy)
			switch {
			case err == nil:
				code := out.Transaction.WalletTransactionCode
				now := s.wallets.now()
				rc.WalletRechargeWalletTxCode = &code
				rc.WalletRechargePaidAt = &now
			case helper.IsKind(err, helper.KindValidation):
				// dana sudah diterima gateway tapi wallet menolak (mis. diblokir): refund manual
				target = model.RechargeFailed
				reason := err.Error()
				rc.WalletRechargeFailureReason = &reason
				configs.LogWarn(s.wallets.log, "wallets", "HandleNotification", "credit rejected", n.OrderID, reason)
			default:
				return err
			}
		}

		rc.WalletRechargeStatus = target
		if err := r.SaveRecharge(ctx, rc); err != nil {
			return errors.Wrap(err, "save recharge")
		}
		res.RechargeStatus = rc.WalletRechargeStatus
		res.WalletTxCode = rc.WalletRechargeWalletTxCode
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
