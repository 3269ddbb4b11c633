// file: internals/features/inventory/items/model/item_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"schoolku_backend/internals/constants"
)

/* =========================================================
   ITEM (barang: seragam, buku, ATK, ...)
========================================================= */

// ItemModel item_quantity selalu == Σ delta item_transactions dan tidak pernah negatif.
type ItemModel struct {
	ItemID       uuid.UUID `gorm:"column:item_id;type:uuid;default:gen_random_uuid();primaryKey" json:"item_id"`
	ItemSchoolID uuid.UUID `gorm:"column:item_school_id;type:uuid;not null;uniqueIndex:uq_items_school_name,priority:1" json:"item_school_id"`

	ItemName     string  `gorm:"column:item_name;type:varchar(120);not null;uniqueIndex:uq_items_school_name,priority:2" json:"item_name"`
	ItemCode     *string `gorm:"column:item_code;type:varchar(40)" json:"item_code,omitempty"`
	ItemUnit     string  `gorm:"column:item_unit;type:varchar(20);not null;default:'pcs'" json:"item_unit"`
	ItemCategory *string `gorm:"column:item_category;type:varchar(60)" json:"item_category,omitempty"`

	ItemQuantity     int64 `gorm:"column:item_quantity;not null;default:0;check:item_quantity >= 0" json:"item_quantity"`
	ItemReorderLevel int64 `gorm:"column:item_reorder_level;not null;default:0" json:"item_reorder_level"`

	// harga beli terakhir (riwayat per entry ada di item_stocks)
	ItemPurchasePrice decimal.Decimal `gorm:"column:item_purchase_price;type:numeric(14,2);not null;default:0" json:"item_purchase_price"`
	ItemSalePrice     decimal.Decimal `gorm:"column:item_sale_price;type:numeric(14,2);not null;default:0" json:"item_sale_price"`

	ItemLifecycle constants.Lifecycle `gorm:"column:item_lifecycle;type:varchar(20);not null;default:'active'" json:"item_lifecycle"`

	ItemCreatedAt time.Time `gorm:"column:item_created_at;type:timestamptz;not null;autoCreateTime" json:"item_created_at"`
	ItemUpdatedAt time.Time `gorm:"column:item_updated_at;type:timestamptz;not null;autoUpdateTime" json:"item_updated_at"`
}

func (ItemModel) TableName() string { return "items" }

func (m ItemModel) IsLowStock() bool { return m.ItemQuantity <= m.ItemReorderLevel }

/* =========================================================
   ITEM STOCK (entry pembelian; soft delete = dibatalkan)
========================================================= */

type ItemStockModel struct {
	ItemStockID       uuid.UUID `gorm:"column:item_stock_id;type:uuid;default:gen_random_uuid();primaryKey" json:"item_stock_id"`
	ItemStockSchoolID uuid.UUID `gorm:"column:item_stock_school_id;type:uuid;not null;index:idx_item_stocks_item,priority:1" json:"item_stock_school_id"`
	ItemStockItemID   uuid.UUID `gorm:"column:item_stock_item_id;type:uuid;not null;index:idx_item_stocks_item,priority:2" json:"item_stock_item_id"`

	ItemStockQuantity      int64           `gorm:"column:item_stock_quantity;not null" json:"item_stock_quantity"`
	ItemStockPurchasePrice decimal.Decimal `gorm:"column:item_stock_purchase_price;type:numeric(14,2);not null;default:0" json:"item_stock_purchase_price"`
	ItemStockSupplier      *string         `gorm:"column:item_stock_supplier;type:varchar(120)" json:"item_stock_supplier,omitempty"`
	ItemStockNote          *string         `gorm:"column:item_stock_note;type:text" json:"item_stock_note,omitempty"`
	ItemStockDate          time.Time       `gorm:"column:item_stock_date;type:timestamptz;not null" json:"item_stock_date"`
	ItemStockCreatedBy     *uuid.UUID      `gorm:"column:item_stock_created_by;type:uuid" json:"item_stock_created_by,omitempty"`

	ItemStockCreatedAt time.Time      `gorm:"column:item_stock_created_at;type:timestamptz;not null;autoCreateTime" json:"item_stock_created_at"`
	ItemStockDeletedAt gorm.DeletedAt `gorm:"column:item_stock_deleted_at;type:timestamptz;index" json:"-"`
}

func (ItemStockModel) TableName() string { return "item_stocks" }
