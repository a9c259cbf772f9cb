package dto

import "time"

// CreateUOMRequest entrada para crear una unidad de medida.
type CreateUOMRequest struct {
	CompanyID string `json:"company_id" validate:"omitempty,uuid"` // vacío = company del token
	Name      string `json:"name" validate:"required,min=1,max=100"`
	Symbol    string `json:"symbol" validate:"required,min=1,max=20"`
}

// UpdateUOMRequest campos opcionales.
type UpdateUOMRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Symbol   *string `json:"symbol" validate:"omitempty,min=1,max=20"`
	IsActive *bool   `json:"is_active"`
}

// UOMResponse salida de una unidad de medida.
type UOMResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	Symbol    string    `json:"symbol"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UOMListResponse lista paginada de unidades.
type UOMListResponse struct {
	Items []UOMResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}
