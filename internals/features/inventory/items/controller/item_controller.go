// file: internals/features/inventory/items/controller/item_controller.go
package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"schoolku_backend/internals/features/inventory/items/dto"
	"schoolku_backend/internals/features/inventory/items/model"
	"schoolku_backend/internals/features/inventory/items/service"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

type ItemController struct {
	Svc       *service.Service
	Validator *validator.Validate
}

func NewItemController(svc *service.Service) *ItemController {
	return &ItemController{Svc: svc, Validator: validator.New()}
}

func (h *ItemController) parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return helper.Validation("invalid json: %s", err.Error())
	}
	return h.Validator.Struct(out)
}

/* =======================================================================
   Items
======================================================================= */

// POST /inventory/items
func (h *ItemController) CreateItem(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.CreateItemRequest
	if err := h.parseBody(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}
	it, err := h.Svc.CreateItem(c.UserContext(), ac, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "item berhasil dibuat", it)
}

// GET /inventory/items?search=&category=&low_stock=true
func (h *ItemController) ListItems(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	p := helper.ResolvePaging(c, helper.DefaultPerPage, helper.MaxPerPage)
	f := dto.ItemFilter{
		Search:       c.Query("search"),
		Category:     c.Query("category"),
		LowStockOnly: c.QueryBool("low_stock", false),
	}
	rows, total, err := h.Svc.ListItems(c.UserContext(), ac, f, p)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "ok", rows, p.Pagination(total))
}

// GET /inventory/items/:item_id
func (h *ItemController) GetItem(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	itemID, err := helper.ParseUUIDParam(c, "item_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	it, err := h.Svc.GetItem(c.UserContext(), ac, itemID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", it)
}

// GET /inventory/items/:item_id/verify
func (h *ItemController) VerifyItem(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	itemID, err := helper.ParseUUIDParam(c, "item_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := h.Svc.VerifyItem(c.UserContext(), ac, itemID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

// GET /inventory/low-stock
func (h *ItemController) LowStock(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	p := helper.ResolvePaging(c, helper.DefaultPerPage, helper.MaxPerPage)
	rows, total, err := h.Svc.LowStock(c.UserContext(), ac, p)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "ok", rows, p.Pagination(total))
}

/* =======================================================================
   Stock
======================================================================= */

// POST /inventory/items/:item_id/stocks
func (h *ItemController) AddStock(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	itemID, err := helper.ParseUUIDParam(c, "item_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.AddStockRequest
	if err := h.parseBody(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := h.Svc.AddStock(c.UserContext(), ac, itemID, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "stok berhasil ditambahkan", out)
}

// POST /inventory/items/:item_id/adjust
func (h *ItemController) Adjust(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	itemID, err := helper.ParseUUIDParam(c, "item_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.AdjustRequest
	if err := h.parseBody(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := h.Svc.StockInOut(c.UserContext(), ac, itemID, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "stok berhasil disesuaikan", out)
}

// DELETE /inventory/stocks/:stock_id
func (h *ItemController) DeleteStock(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	stockID, err := helper.ParseUUIDParam(c, "stock_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := h.Svc.DeleteStockEntry(c.UserContext(), ac, stockID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonDeleted(c, "entry stok dibatalkan", out)
}

/* =======================================================================
   Issue / Sale
======================================================================= */

// POST /inventory/issues
func (h *ItemController) Issue(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.IssueRequest
	if err := h.parseBody(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := h.Svc.IssueItems(c.UserContext(), ac, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "barang berhasil dibagikan", out)
}

// POST /inventory/sales
func (h *ItemController) Sell(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.SaleRequest
	if err := h.parseBody(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := h.Svc.SellItems(c.UserContext(), ac, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "penjualan berhasil", out)
}

/* =======================================================================
   Ledger
======================================================================= */

// GET /inventory/transactions?item_id=&kind=&startDate=&endDate=
func (h *ItemController) ListTransactions(c *fiber.Ctx) error {
	ac, err := helperAuth.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	itemID, err := helper.ParseOptionalUUIDQuery(c, "item_id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	dr, err := helper.ParseDateRange(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	f := dto.TransactionFilter{
		ItemID: itemID,
		Kind:   model.TransactionKind(strings.ToLower(strings.TrimSpace(c.Query("kind")))),
		From:   dr.From,
		Until:  dr.Until,
	}
	p := helper.ResolvePaging(c, helper.DefaultPerPage, helper.MaxPerPage)
	rows, total, err := h.Svc.ListTransactions(c.UserContext(), ac, f, p)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "ok", rows, p.Pagination(total))
}
