package repository

import (
	"context"

	"github.com/windi9/dwc-pos/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Las búsquedas ignoran cuentas con soft delete; Create/Update devuelven domain.ErrConflict
// ante violaciones de unicidad de username o email.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// FindByLogin busca por username o email (lo que envíe el cliente).
	FindByLogin(ctx context.Context, usernameOrEmail string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	MarkEmailVerified(ctx context.Context, id string) error
	List(ctx context.Context, filter UserFilter, limit, offset int) ([]*entity.User, int, error)
	SoftDelete(ctx context.Context, id string) error
}

// UserFilter filtros de listado de usuarios.
type UserFilter struct {
	CompanyID string
	IsActive  *bool
	Role      entity.RoleName
}
