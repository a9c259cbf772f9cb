package entity

import (
	"fmt"

	"github.com/windi9/dwc-pos/internal/domain"
)

// RoleName es el conjunto cerrado de roles del sistema.
type RoleName string

const (
	RoleSuperadmin RoleName = "Superadmin"
	RoleAdmin      RoleName = "Admin"
	RoleEmployee   RoleName = "Employee"
	RoleCustomer   RoleName = "Customer"
)

// DefaultRole se asigna a toda cuenta creada por auto-registro.
const DefaultRole = RoleEmployee

// Valid indica si el rol pertenece al conjunto conocido.
func (r RoleName) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleEmployee, RoleCustomer:
		return true
	}
	return false
}

// AllRoles devuelve los roles conocidos en orden de privilegio descendente.
func AllRoles() []RoleName {
	return []RoleName{RoleSuperadmin, RoleAdmin, RoleEmployee, RoleCustomer}
}

// ParseRoleName convierte un string externo en RoleName.
func ParseRoleName(s string) (RoleName, error) {
	r := RoleName(s)
	if !r.Valid() {
		return "", fmt.Errorf("rol desconocido %q: %w", s, domain.ErrInvalidInput)
	}
	return r, nil
}

// Role agrupa permisos; es global (no pertenece a un tenant).
type Role struct {
	ID          string
	Name        RoleName
	Description string
	IsActive    bool
}

// Capability identifica un permiso verificable por el guard de autorización.
type Capability string

const (
	CapCreateUser      Capability = "create_user"
	CapReadUser        Capability = "read_user"
	CapUpdateUser      Capability = "update_user"
	CapDeleteUser      Capability = "delete_user"
	CapCreateProduct   Capability = "create_product"
	CapReadProduct     Capability = "read_product"
	CapUpdateProduct   Capability = "update_product"
	CapDeleteProduct   Capability = "delete_product"
	CapProcessSale     Capability = "process_sale"
	CapViewSalesReport Capability = "view_sales_report"
	CapCreateCompany   Capability = "create_company"
	CapReadCompany     Capability = "read_company"
	CapUpdateCompany   Capability = "update_company"
	CapDeleteCompany   Capability = "delete_company"
	CapCreateOutlet    Capability = "create_outlet"
	CapReadOutlet      Capability = "read_outlet"
	CapUpdateOutlet    Capability = "update_outlet"
	CapDeleteOutlet    Capability = "delete_outlet"
	CapCreateUOM       Capability = "create_uom"
	CapReadUOM         Capability = "read_uom"
	CapUpdateUOM       Capability = "update_uom"
	CapDeleteUOM       Capability = "delete_uom"
	CapManageRoles     Capability = "manage_roles"
)

// Valid indica si la capacidad pertenece al conjunto conocido.
func (c Capability) Valid() bool {
	switch c {
	case CapCreateUser, CapReadUser, CapUpdateUser, CapDeleteUser,
		CapCreateProduct, CapReadProduct, CapUpdateProduct, CapDeleteProduct,
		CapProcessSale, CapViewSalesReport,
		CapCreateCompany, CapReadCompany, CapUpdateCompany, CapDeleteCompany,
		CapCreateOutlet, CapReadOutlet, CapUpdateOutlet, CapDeleteOutlet,
		CapCreateUOM, CapReadUOM, CapUpdateUOM, CapDeleteUOM,
		CapManageRoles:
		return true
	}
	return false
}

// ParseCapability convierte un string externo en Capability.
func ParseCapability(s string) (Capability, error) {
	c := Capability(s)
	if !c.Valid() {
		return "", fmt.Errorf("permiso desconocido %q: %w", s, domain.ErrInvalidInput)
	}
	return c, nil
}

// Permission es un derecho nombrado, asignable a roles.
type Permission struct {
	ID          string
	Name        Capability
	Description string
}
