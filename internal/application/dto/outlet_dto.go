package dto

import "time"

// CreateOutletRequest entrada para crear un punto de venta.
type CreateOutletRequest struct {
	CompanyID   string `json:"company_id" validate:"required,uuid"`
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email" validate:"omitempty,email"`
}

// UpdateOutletRequest campos opcionales.
type UpdateOutletRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address     *string `json:"address"`
	PhoneNumber *string `json:"phone_number"`
	Email       *string `json:"email" validate:"omitempty,email"`
	IsActive    *bool   `json:"is_active"`
}

// OutletResponse salida de un punto de venta.
type OutletResponse struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	PhoneNumber string    `json:"phone_number"`
	Email       string    `json:"email"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OutletListResponse lista paginada de puntos de venta.
type OutletListResponse struct {
	Items []OutletResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
