package entity

import "time"

// UnitOfMeasure unidad de medida del catálogo (ej. "Kilogramo" / "kg"), por tenant.
type UnitOfMeasure struct {
	ID        string
	CompanyID string
	Name      string
	Symbol    string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Usable indica si la unidad puede asignarse a productos.
func (u *UnitOfMeasure) Usable() bool {
	return u != nil && u.IsActive && u.DeletedAt == nil
}
