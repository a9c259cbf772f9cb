package entity

import "time"

// User es la cuenta de acceso al back office y a las terminales POS.
// CompanyID y OutletID son opcionales: un Superadmin puede no pertenecer a ningún tenant.
type User struct {
	ID            string
	Username      string
	Email         string
	PasswordHash  string  // bcrypt, nunca texto plano
	PinHash       *string // bcrypt del PIN de 6 dígitos; nil si nunca se configuró
	FullName      string
	PhoneNumber   string
	CompanyID     *string
	OutletID      *string
	IsActive      bool
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// CanSignIn indica si la cuenta existe lógicamente y está activa.
func (u *User) CanSignIn() bool {
	return u != nil && u.IsActive && u.DeletedAt == nil
}

// CompanyRef devuelve el company_id o "" si la cuenta es global.
func (u *User) CompanyRef() string {
	if u == nil || u.CompanyID == nil {
		return ""
	}
	return *u.CompanyID
}

// OutletRef devuelve el outlet_id o "".
func (u *User) OutletRef() string {
	if u == nil || u.OutletID == nil {
		return ""
	}
	return *u.OutletID
}
