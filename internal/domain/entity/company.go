package entity

import "time"

// Company es el tenant raíz: dueña de outlets, usuarios, unidades de medida y productos.
type Company struct {
	ID          string
	Name        string
	Address     string
	PhoneNumber string
	Email       string
	LogoURL     string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time // soft delete
}

// Usable indica si la empresa puede recibir nuevos recursos.
func (c *Company) Usable() bool {
	return c != nil && c.IsActive && c.DeletedAt == nil
}
