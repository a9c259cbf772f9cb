// Package access modela la identidad autenticada y las reglas de aislamiento entre tenants.
package access

import (
	"github.com/windi9/dwc-pos/internal/domain"
	"github.com/windi9/dwc-pos/internal/domain/entity"
)

// Channel canal por el que se emitió el token.
type Channel string

const (
	ChannelBackOffice Channel = "backoffice"
	ChannelPOS        Channel = "pos"
)

// Principal es la cuenta autenticada de una petición, con su estado de superadmin ya resuelto.
type Principal struct {
	User       *entity.User
	Channel    Channel
	Superadmin bool
}

// UserID devuelve el id de la cuenta o "".
func (p *Principal) UserID() string {
	if p == nil || p.User == nil {
		return ""
	}
	return p.User.ID
}

// CompanyID devuelve el tenant de la cuenta o "" si es global.
func (p *Principal) CompanyID() string {
	if p == nil {
		return ""
	}
	return p.User.CompanyRef()
}

// CanAccessCompany indica si el principal puede operar sobre recursos del tenant companyID.
// Un superadmin es global; el resto solo accede a su propia company.
func (p *Principal) CanAccessCompany(companyID string) bool {
	if p == nil || p.User == nil {
		return false
	}
	if p.Superadmin {
		return true
	}
	own := p.User.CompanyRef()
	return own != "" && companyID != "" && own == companyID
}

// EnsureCompany devuelve domain.ErrForbidden si el recurso pertenece a otro tenant.
func (p *Principal) EnsureCompany(companyID string) error {
	if !p.CanAccessCompany(companyID) {
		return domain.ErrForbidden
	}
	return nil
}

// ScopeCompany resuelve el tenant efectivo de un listado.
// Un superadmin puede pedir cualquier company (o todas con ""); el resto queda fijado a la suya.
func (p *Principal) ScopeCompany(requested string) (string, error) {
	if p == nil || p.User == nil {
		return "", domain.ErrUnauthorized
	}
	if p.Superadmin {
		return requested, nil
	}
	own := p.User.CompanyRef()
	if own == "" {
		return "", domain.ErrForbidden
	}
	if requested != "" && requested != own {
		return "", domain.ErrForbidden
	}
	return own, nil
}
