package entity

import "time"

// Outlet es un punto de venta físico de una Company.
type Outlet struct {
	ID          string
	CompanyID   string
	Name        string
	Address     string
	PhoneNumber string
	Email       string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}
