package dto

import (
	"time"

	"github.com/windi9/dwc-pos/internal/domain/entity"
)

// CreateUserRequest alta administrativa de una cuenta (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Username      string   `json:"username" validate:"required,min=3,max=50"`
	Email         string   `json:"email" validate:"required,email"`
	Password      string   `json:"password" validate:"required,min=8,max=72"`
	FullName      string   `json:"full_name" validate:"omitempty,max=200"`
	PhoneNumber   string   `json:"phone_number" validate:"omitempty,max=30"`
	CompanyID     *string  `json:"company_id" validate:"omitempty,uuid"`
	OutletID      *string  `json:"outlet_id" validate:"omitempty,uuid"`
	Pin           *string  `json:"pin" validate:"omitempty,len=6,numeric"`
	Roles         []string `json:"roles"`
	EmailVerified bool     `json:"email_verified"`
}

// UpdateUserRequest campos opcionales; Password se vuelve a hashear si viene.
type UpdateUserRequest struct {
	Username    *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Password    *string `json:"password" validate:"omitempty,min=8,max=72"`
	FullName    *string `json:"full_name"`
	PhoneNumber *string `json:"phone_number"`
	CompanyID   *string `json:"company_id" validate:"omitempty,uuid"`
	OutletID    *string `json:"outlet_id" validate:"omitempty,uuid"`
	IsActive    *bool   `json:"is_active"`
}

// UserListQuery filtros del listado de usuarios.
type UserListQuery struct {
	CompanyID string `query:"company_id"`
	IsActive  *bool  `query:"is_active"`
	Role      string `query:"role"`
}

// UserResponse salida de un usuario (sin hashes).
type UserResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	PhoneNumber   string    `json:"phone_number"`
	CompanyID     *string   `json:"company_id"`
	OutletID      *string   `json:"outlet_id"`
	IsActive      bool      `json:"is_active"`
	EmailVerified bool      `json:"email_verified"`
	HasPin        bool      `json:"has_pin"`
	Roles         []string  `json:"roles,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserListResponse lista paginada de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// ToUserResponse mapea la entidad a su salida pública.
func ToUserResponse(u *entity.User, roles []entity.Role) *UserResponse {
	if u == nil {
		return nil
	}
	out := &UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		PhoneNumber:   u.PhoneNumber,
		CompanyID:     u.CompanyID,
		OutletID:      u.OutletID,
		IsActive:      u.IsActive,
		EmailVerified: u.EmailVerified,
		HasPin:        u.PinHash != nil,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
	for _, r := range roles {
		out.Roles = append(out.Roles, string(r.Name))
	}
	return out
}
