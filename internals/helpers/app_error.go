// file: internals/helpers/app_error.go
package helper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolku_backend/internals/configs"
)

/* ===============================
   Error taxonomy
=================================*/

type ErrorKind string

const (
	KindValidation   ErrorKind = "VALIDATION_ERROR"
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindConflict     ErrorKind = "CONFLICT"
	KindForbidden    ErrorKind = "FORBIDDEN"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindInternal     ErrorKind = "INTERNAL_ERROR"
)

// AppError dibawa dari service ke controller. Message aman untuk client,
// Err (kalau ada) hanya untuk log.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is: dua AppError dianggap sama kalau Code-nya sama, jadi errors.Is(err, ErrInsufficientBalance)
// tetap jalan walau message sudah diganti.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || t.Code == "" {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindForbidden:
		return fiber.StatusForbidden
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// WithMessage membuat salinan dengan pesan baru (Code & Kind tetap).
func (e *AppError) WithMessage(format string, args ...any) *AppError {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

func newAppError(kind ErrorKind, format string, args ...any) *AppError {
	return &AppError{Kind: kind, Code: string(kind), Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *AppError {
	return newAppError(KindValidation, format, args...)
}

func NotFound(format string, args ...any) *AppError {
	return newAppError(KindNotFound, format, args...)
}

func Conflict(format string, args ...any) *AppError {
	return newAppError(KindConflict, format, args...)
}

func Forbidden(format string, args ...any) *AppError {
	return newAppError(KindForbidden, format, args...)
}

func Unauthorized(format string, args ...any) *AppError {
	return newAppError(KindUnauthorized, format, args...)
}

// Internal membungkus error tak terduga; pesan ke client selalu generik.
func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Code: string(KindInternal), Message: "internal server error", Err: err}
}

func IsKind(err error, kind ErrorKind) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Kind == kind
}

/* ===============================
   Ledger domain errors
=================================*/

var (
	ErrInvalidAmount       = &AppError{Kind: KindValidation, Code: "INVALID_AMOUNT", Message: "amount harus lebih dari 0"}
	ErrInsufficientBalance = &AppError{Kind: KindValidation, Code: "INSUFFICIENT_BALANCE", Message: "saldo wallet tidak cukup"}
	ErrInsufficientStock   = &AppError{Kind: KindValidation, Code: "INSUFFICIENT_STOCK", Message: "stok tidak cukup"}
	ErrWalletNotActive     = &AppError{Kind: KindValidation, Code: "WALLET_NOT_ACTIVE", Message: "wallet tidak aktif"}
)

/* ===============================
   Translate ke response
=================================*/

// JsonFromError dipakai semua controller; tidak ada error yang lolos tanpa diterjemahkan.
func JsonFromError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make(map[string][]string, len(ve))
		for _, fe := range ve {
			name := strings.ToLower(fe.Field())
			fields[name] = append(fields[name], fe.Tag())
		}
		return JsonValidationError(c, fields)
	}

	var ae *AppError
	if errors.As(err, &ae) {
		if ae.Kind == KindInternal || ae.Status() >= 500 {
			logRequestError(c, err)
			return jsonErrorWithCode(c, fiber.StatusInternalServerError, "internal server error", string(KindInternal))
		}
		return jsonErrorWithCode(c, ae.Status(), ae.Message, ae.Code)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= 500 {
			logRequestError(c, err)
			return JsonError(c, fe.Code, "internal server error")
		}
		return JsonError(c, fe.Code, fe.Message)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return JsonError(c, fiber.StatusNotFound, "data tidak ditemukan")
	}

	logRequestError(c, err)
	return JsonError(c, fiber.StatusInternalServerError, "internal server error")
}

// ErrorHandler dipasang di fiber.Config supaya error yang di-return middleware juga pakai envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return JsonFromError(c, err)
}

func logRequestError(c *fiber.Ctx, err error) {
	reqID, _ := c.Locals("reqid").(string)
	configs.LogError(configs.GetLogger(), "http", c.Method()+" "+c.Path(), reqID, nil, err)
}
