package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	CompanyID   string          `json:"company_id" validate:"omitempty,uuid"` // vacío = company del token
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Description string          `json:"description"`
	SKU         string          `json:"sku" validate:"required,min=1,max=100"`
	Barcode     *string         `json:"barcode"`
	StockUOMID  string          `json:"stock_uom_id" validate:"required,uuid"`
	BasePrice   decimal.Decimal `json:"base_price"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
}

// UpdateProductRequest campos opcionales.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	SKU         *string          `json:"sku" validate:"omitempty,min=1,max=100"`
	Barcode     *string          `json:"barcode"`
	StockUOMID  *string          `json:"stock_uom_id" validate:"omitempty,uuid"`
	BasePrice   *decimal.Decimal `json:"base_price"`
	ImageURL    *string          `json:"image_url"`
	IsActive    *bool            `json:"is_active"`
}

// ProductListQuery filtros del listado de productos.
type ProductListQuery struct {
	CompanyID string `query:"company_id"`
	IsActive  *bool  `query:"is_active"`
	Search    string `query:"q"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	CompanyID   string          `json:"company_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	SKU         string          `json:"sku"`
	Barcode     *string         `json:"barcode"`
	StockUOMID  string          `json:"stock_uom_id"`
	BasePrice   decimal.Decimal `json:"base_price"`
	ImageURL    string          `json:"image_url"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
