// file: internals/features/finance/wallets/service/midtrans.go
package service

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"schoolku_backend/internals/configs"
)

/* =========================================================
   Snap gateway
========================================================= */

type CustomerInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

type SnapOrder struct {
	OrderID  string
	Amount   int64
	ItemName string
	Customer CustomerInput
}

// SnapGateway dipisah supaya test tidak perlu memanggil Midtrans.
type SnapGateway interface {
	CreateSnap(ctx context.Context, order SnapOrder) (token, redirectURL string, err error)
	ServerKey() string
}

type midtransGateway struct {
	client    snap.Client
	serverKey string
}

// NewMidtransGateway useProduction=true untuk Production, false untuk Sandbox.
func NewMidtransGateway(serverKey string, useProduction bool) SnapGateway {
	g := &midtransGateway{serverKey: serverKey}
	if useProduction {
		g.client.New(serverKey, midtrans.Production)
	} else {
		g.client.New(serverKey, midtrans.Sandbox)
	}
	return g
}

// NewMidtransFromConfig nil kalau MIDTRANS_SERVER_KEY kosong (recharge online nonaktif).
func NewMidtransFromConfig() SnapGateway {
	key := strings.TrimSpace(configs.Conf.GetString("MIDTRANS_SERVER_KEY"))
	if key == "" {
		return nil
	}
	return NewMidtransGateway(key, configs.Conf.GetBool("MIDTRANS_USE_PROD"))
}

func (g *midtransGateway) ServerKey() string { return g.serverKey }

func (g *midtransGateway) CreateSnap(ctx context.Context, o SnapOrder) (string, string, error) {
	if o.Amount <= 0 {
		return "", "", errors.New("invalid gross amount")
	}
	if o.OrderID == "" {
		return "", "", errors.New("order_id is required")
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  o.OrderID,
			GrossAmt: o.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: o.Customer.FirstName,
			LName: o.Customer.LastName,
			Email: o.Customer.Email,
			Phone: o.Customer.Phone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:       o.OrderID,
				Price:    o.Amount,
				Qty:      1,
				Name:     truncate(defaultString(o.ItemName, "Top up wallet"), 50),
				Category: "WALLET",
			},
		},
	}

	type result struct {
		token, url string
		err        error
	}
	done := make(chan result, 1)
	go func() {
		resp, merr := g.client.CreateTransaction(req)
		if merr != nil {
			done <- result{err: errors.Wrap(merr, "midtrans create transaction")}
			return
		}
		done <- result{token: resp.Token, url: resp.RedirectURL}
	}()

	select {
	case <-ctx.Done():
		return "", "", ctx.Err()
	case r := <-done:
		return r.token, r.url, r.err
	}
}

/* =========================================================
   Signature
========================================================= */

// Signature SHA512(order_id + status_code + gross_amount + server_key), hex lowercase.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	h := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(h[:])
}

func VerifySignature(orderID, statusCode, grossAmount, serverKey, signature string) bool {
	want := strings.ToLower(strings.TrimSpace(signature))
	return want != "" && serverKey != "" && Signature(orderID, statusCode, grossAmount, serverKey) == want
}

/* =========================================================
   Utils
========================================================= */

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}

func defaultString(s string, def string) string {
	if s == "" {
		return def
	}
	return s
}
