package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product es un artículo del catálogo de una Company. StockUOMID apunta a la unidad de inventario.
type Product struct {
	ID          string
	CompanyID   string
	Name        string
	Description string
	SKU         string
	Barcode     *string
	StockUOMID  string
	BasePrice   decimal.Decimal
	ImageURL    string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}
