package controller_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolku_backend/internals/constants"
	"schoolku_backend/internals/features/finance/wallets/repository"
	walletRoute "schoolku_backend/internals/features/finance/wallets/route"
	"schoolku_backend/internals/features/finance/wallets/service"
	studentModel "schoolku_backend/internals/features/school/students/model"
	studentRepo "schoolku_backend/internals/features/school/students/repository"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

type stubGateway struct{}

func (stubGateway) CreateSnap(_ context.Context, o service.SnapOrder) (string, string, error) {
	return "tok", "https://example.test/" + o.OrderID, nil
}
func (stubGateway) ServerKey() string { return "server-key" }

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"error_code"`
	Data      json.RawMessage `json:"data"`
}

func setupApp(t *testing.T) (*fiber.App, uuid.UUID, uuid.UUID, uuid.UUID) {
	t.Helper()
	schoolID, studentID, userID := uuid.New(), uuid.New(), uuid.New()
	students := studentRepo.NewMemoryDirectory(studentModel.SchoolStudentModel{
		SchoolStudentID:          studentID,
		SchoolStudentSchoolID:    schoolID,
		SchoolStudentUserID:      &userID,
		SchoolStudentClassID:     uuid.New(),
		SchoolStudentFullName:    "Budi",
		SchoolStudentAdmissionNo: "ADM-1",
	})
	repo := repository.NewMemoryRepository()
	svc := service.NewService(repo, students, service.WithClock(func() time.Time { return time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC) }))
	recharges := service.NewRechargeService(svc, stubGateway{})

	app := fiber.New(fiber.Config{ErrorHandler: helper.ErrorHandler})
	// auth palsu: role dari header supaya satu app bisa menguji staff & student
	auth := func(c *fiber.Ctx) error {
		role := c.Get("X-Test-Role", constants.RoleAdmin)
		uid := uuid.New()
		if role == constants.RoleStudent {
			uid = userID
		}
		helperAuth.SetAuthContext(c, helperAuth.AuthContext{UserID: uid, SchoolID: schoolID, Role: role})
		return c.Next()
	}
	walletRoute.WalletAdminRoutes(app.Group("/api/a/:school_id", auth), svc, recharges, students)
	walletRoute.WalletUserRoutes(app.Group("/api/u/:school_id", auth), svc, recharges, students)
	walletRoute.WalletWebhookRoutes(app.Group("/api/webhooks"), recharges)
	return app, schoolID, studentID, userID
}

func do(t *testing.T, app *fiber.App, method, path, role, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func TestWalletRoutes_CreditDebit(t *testing.T) {
	app, schoolID, studentID, _ := setupApp(t)
	base := "/api/a/" + schoolID.String() + "/wallets/" + studentID.String()

	code, env := do(t, app, fiber.MethodPost, base+"/credit", "", `{"amount": 500, "category": "deposit"}`)
	require.Equal(t, fiber.StatusCreated, code, env.Message)

	code, _ = do(t, app, fiber.MethodPost, base+"/debit", constants.RoleStaff, `{"amount": "200"}`)
	require.Equal(t, fiber.StatusCreated, code)

	code, env = do(t, app, fiber.MethodPost, base+"/debit", constants.RoleStaff, `{"amount": 400}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "INSUFFICIENT_BALANCE", env.ErrorCode)

	code, env = do(t, app, fiber.MethodPost, base+"/credit", constants.RoleStaff, `{"amount": 10}`)
	assert.Equal(t, fiber.StatusForbidden, code)

	code, env = do(t, app, fiber.MethodGet, base, "", "")
	require.Equal(t, fiber.StatusOK, code)
	var w struct {
		Balance string `json:"wallet_balance"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &w))
	assert.Equal(t, "300", w.Balance)
}

func TestWalletRoutes_StudentSeesOwnWallet(t *testing.T) {
	app, schoolID, _, _ := setupApp(t)

	code, env := do(t, app, fiber.MethodGet, "/api/u/"+schoolID.String()+"/wallets/me", constants.RoleStudent, "")
	require.Equal(t, fiber.StatusOK, code, env.Message)

	code, _ = do(t, app, fiber.MethodGet, "/api/u/"+schoolID.String()+"/wallets/me?student_id="+uuid.NewString(), constants.RoleStudent, "")
	assert.Equal(t, fiber.StatusForbidden, code)
}

func TestWalletRoutes_WebhookBadSignature(t *testing.T) {
	app, _, _, _ := setupApp(t)
	body := `{"order_id":"WRC-1","status_code":"200","gross_amount":"1000.00","transaction_status":"settlement","signature_key":"nope"}`
	code, _ := do(t, app, fiber.MethodPost, "/api/webhooks/midtrans", "", body)
	assert.Equal(t, fiber.StatusUnauthorized, code)

	sig := service.Signature("WRC-unknown", "200", "1000.00", "server-key")
	body = `{"order_id":"WRC-unknown","status_code":"200","gross_amount":"1000.00","transaction_status":"settlement","signature_key":"` + sig + `"}`
	req := httptest.NewRequest(fiber.MethodPost, "/api/webhooks/midtrans", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
