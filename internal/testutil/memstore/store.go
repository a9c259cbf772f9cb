// Package memstore implementa los puertos de repositorio en memoria para los tests de
// casos de uso y de la capa HTTP. Reproduce las restricciones de unicidad de PostgreSQL
// (devuelve domain.ErrConflict) y el rollback de TxRunner.
package memstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/windi9/dwc-pos/internal/domain"
	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/domain/repository"
)

type pair [2]string

// Store estado compartido por todos los repositorios en memoria.
type Store struct {
	mu sync.Mutex

	users     map[string]*entity.User
	companies map[string]*entity.Company
	outlets   map[string]*entity.Outlet
	uoms      map[string]*entity.UnitOfMeasure
	products  map[string]*entity.Product
	roles     map[string]*entity.Role
	perms     map[string]*entity.Permission
	userRoles map[pair]struct{}
	rolePerms map[pair]struct{}
	tokens    map[string]*entity.VerificationToken

	// StaleLookups hace que GetByUsername/GetByEmail no vean ninguna cuenta, como dos
	// peticiones concurrentes que pasan el pre-check antes de que la otra inserte.
	StaleLookups bool
	// FailAssign fuerza un error en AssignToUser (para probar el rollback).
	FailAssign error
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		users:     map[string]*entity.User{},
		companies: map[string]*entity.Company{},
		outlets:   map[string]*entity.Outlet{},
		uoms:      map[string]*entity.UnitOfMeasure{},
		products:  map[string]*entity.Product{},
		roles:     map[string]*entity.Role{},
		perms:     map[string]*entity.Permission{},
		userRoles: map[pair]struct{}{},
		rolePerms: map[pair]struct{}{},
		tokens:    map[string]*entity.VerificationToken{},
	}
}

// Users, Roles, ... devuelven los adaptadores de cada puerto.
func (s *Store) Users() *UserRepo                 { return &UserRepo{s: s} }
func (s *Store) Roles() *RoleRepo                 { return &RoleRepo{s: s} }
func (s *Store) Verifications() *VerificationRepo { return &VerificationRepo{s: s} }
func (s *Store) Companies() *CompanyRepo          { return &CompanyRepo{s: s} }
func (s *Store) Outlets() *OutletRepo             { return &OutletRepo{s: s} }
func (s *Store) UOMs() *UOMRepo                   { return &UOMRepo{s: s} }
func (s *Store) Products() *ProductRepo           { return &ProductRepo{s: s} }

// TxRunner ejecuta fn y restaura el estado previo si devuelve error.
type TxRunner struct{ s *Store }

// TxRunner devuelve un runner transaccional sobre el store.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

// RunAccountTx ver postgres.TxRunner.RunAccountTx.
func (t *TxRunner) RunAccountTx(ctx context.Context, fn func(
	users repository.UserRepository,
	roles repository.RoleRepository,
	verifications repository.VerificationRepository,
) error) error {
	snap := t.s.snapshot()
	if err := fn(t.s.Users(), t.s.Roles(), t.s.Verifications()); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	users     map[string]*entity.User
	userRoles map[pair]struct{}
	roles     map[string]*entity.Role
	tokens    map[string]*entity.VerificationToken
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		users:     map[string]*entity.User{},
		userRoles: map[pair]struct{}{},
		roles:     map[string]*entity.Role{},
		tokens:    map[string]*entity.VerificationToken{},
	}
	for k, v := range s.users {
		c := *v
		snap.users[k] = &c
	}
	for k := range s.userRoles {
		snap.userRoles[k] = struct{}{}
	}
	for k, v := range s.roles {
		c := *v
		snap.roles[k] = &c
	}
	for k, v := range s.tokens {
		c := *v
		snap.tokens[k] = &c
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.userRoles = snap.userRoles
	s.roles = snap.roles
	s.tokens = snap.tokens
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// ── Users ────────────────────────────────────────────────────────────────────

// UserRepo implementa repository.UserRepository.
type UserRepo struct{ s *Store }

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) conflict(u *entity.User) bool {
	for _, other := range r.s.users {
		if other.ID == u.ID || other.DeletedAt != nil {
			continue
		}
		if strings.EqualFold(other.Username, u.Username) || strings.EqualFold(other.Email, u.Email) {
			return true
		}
	}
	return false
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; ok || r.conflict(u) {
		return domain.ErrConflict
	}
	c := *u
	r.s.users[u.ID] = &c
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *UserRepo) find(match func(*entity.User) bool) *entity.User {
	for _, u := range r.s.users {
		if u.DeletedAt == nil && match(u) {
			c := *u
			return &c
		}
	}
	return nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.StaleLookups {
		return nil, nil
	}
	return r.find(func(u *entity.User) bool { return strings.EqualFold(u.Username, username) }), nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.StaleLookups {
		return nil, nil
	}
	return r.find(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (r *UserRepo) FindByLogin(_ context.Context, login string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.find(func(u *entity.User) bool {
		return strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login)
	}), nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.conflict(u) {
		return domain.ErrConflict
	}
	c := *u
	r.s.users[u.ID] = &c
	return nil
}

func (r *UserRepo) MarkEmailVerified(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.EmailVerified = true
	return nil
}

func (r *UserRepo) List(_ context.Context, f repository.UserFilter, limit, offset int) ([]*entity.User, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.User
	for _, u := range r.s.users {
		if u.DeletedAt != nil && (f.IsActive == nil || *f.IsActive) {
			continue
		}
		if f.CompanyID != "" && u.CompanyRef() != f.CompanyID {
			continue
		}
		if f.IsActive != nil && u.IsActive != *f.IsActive {
			continue
		}
		if f.Role != "" && !r.s.userHasRoleLocked(u.ID, f.Role) {
			continue
		}
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return page(out, limit, offset), len(out), nil
}

func (r *UserRepo) SoftDelete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.DeletedAt != nil {
		return domain.ErrNotFound
	}
	now := time.Now()
	u.IsActive = false
	u.DeletedAt = &now
	return nil
}

// ── Roles ────────────────────────────────────────────────────────────────────

// RoleRepo implementa repository.RoleRepository.
type RoleRepo struct{ s *Store }

var _ repository.RoleRepository = (*RoleRepo)(nil)

func (s *Store) roleByNameLocked(name entity.RoleName) *entity.Role {
	for _, r := range s.roles {
		if r.Name == name {
			return r
		}
	}
	return nil
}

func (s *Store) permByNameLocked(name entity.Capability) *entity.Permission {
	for _, p := range s.perms {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (s *Store) userHasRoleLocked(userID string, name entity.RoleName) bool {
	r := s.roleByNameLocked(name)
	if r == nil || !r.IsActive {
		return false
	}
	_, ok := s.userRoles[pair{userID, r.ID}]
	return ok
}

func (r *RoleRepo) EnsureRole(_ context.Context, name entity.RoleName, description string) (*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing := r.s.roleByNameLocked(name); existing != nil {
		c := *existing
		return &c, nil
	}
	role := &entity.Role{ID: uuid.NewString(), Name: name, Description: description, IsActive: true}
	r.s.roles[role.ID] = role
	c := *role
	return &c, nil
}

// SetRoleActive permite desactivar un rol en los tests.
func (r *RoleRepo) SetRoleActive(name entity.RoleName, active bool) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if role := r.s.roleByNameLocked(name); role != nil {
		role.IsActive = active
	}
}

func (r *RoleRepo) GetByName(_ context.Context, name entity.RoleName) (*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if role := r.s.roleByNameLocked(name); role != nil {
		c := *role
		return &c, nil
	}
	return nil, nil
}

func (r *RoleRepo) List(_ context.Context) ([]entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		out = append(out, *role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *RoleRepo) EnsurePermission(_ context.Context, name entity.Capability, description string) (*entity.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing := r.s.permByNameLocked(name); existing != nil {
		c := *existing
		return &c, nil
	}
	p := &entity.Permission{ID: uuid.NewString(), Name: name, Description: description}
	r.s.perms[p.ID] = p
	c := *p
	return &c, nil
}

func (r *RoleRepo) ListPermissions(_ context.Context) ([]entity.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.Permission, 0, len(r.s.perms))
	for _, p := range r.s.perms {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *RoleRepo) ListPermissionsByRole(_ context.Context, name entity.RoleName) ([]entity.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role := r.s.roleByNameLocked(name)
	if role == nil {
		return nil, nil
	}
	var out []entity.Permission
	for k := range r.s.rolePerms {
		if k[0] == role.ID {
			out = append(out, *r.s.perms[k[1]])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *RoleRepo) ListByUser(_ context.Context, userID string) ([]entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Role
	for k := range r.s.userRoles {
		if k[0] != userID {
			continue
		}
		if role := r.s.roles[k[1]]; role != nil && role.IsActive {
			out = append(out, *role)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *RoleRepo) ListPermissionsByUser(_ context.Context, userID string) ([]entity.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[string]bool{}
	var out []entity.Permission
	for ur := range r.s.userRoles {
		role := r.s.roles[ur[1]]
		if ur[0] != userID || role == nil || !role.IsActive {
			continue
		}
		for rp := range r.s.rolePerms {
			if rp[0] == role.ID && !seen[rp[1]] {
				seen[rp[1]] = true
				out = append(out, *r.s.perms[rp[1]])
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *RoleRepo) UserHasRole(_ context.Context, userID string, name entity.RoleName) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.userHasRoleLocked(userID, name), nil
}

func (r *RoleRepo) UserHasPermission(ctx context.Context, userID string, capability entity.Capability) (bool, error) {
	perms, err := r.ListPermissionsByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if p.Name == capability {
			return true, nil
		}
	}
	return false, nil
}

func (r *RoleRepo) AssignToUser(_ context.Context, userID, roleID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailAssign != nil {
		return r.s.FailAssign
	}
	if _, ok := r.s.roles[roleID]; !ok {
		return domain.ErrNotFound
	}
	r.s.userRoles[pair{userID, roleID}] = struct{}{}
	return nil
}

func (r *RoleRepo) RemoveFromUser(_ context.Context, userID, roleID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.userRoles, pair{userID, roleID})
	return nil
}

func (r *RoleRepo) GrantPermission(_ context.Context, roleID, permissionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.rolePerms[pair{roleID, permissionID}] = struct{}{}
	return nil
}

func (r *RoleRepo) RevokePermission(_ context.Context, roleID, permissionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.rolePerms, pair{roleID, permissionID})
	return nil
}

// ── Verifications ────────────────────────────────────────────────────────────

// VerificationRepo implementa repository.VerificationRepository.
type VerificationRepo struct{ s *Store }

var _ repository.VerificationRepository = (*VerificationRepo)(nil)

func (r *VerificationRepo) Save(_ context.Context, t *entity.VerificationToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.tokens {
		if other.Purpose == t.Purpose && other.TokenHash == t.TokenHash && other.ConsumedAt == nil {
			return domain.ErrConflict
		}
	}
	c := *t
	r.s.tokens[t.ID] = &c
	return nil
}

func (r *VerificationRepo) Consume(_ context.Context, purpose entity.VerificationPurpose, hash string, now time.Time) (*entity.VerificationToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tokens {
		if t.Purpose != purpose || t.TokenHash != hash || t.ConsumedAt != nil || t.Expired(now) {
			continue
		}
		consumed := now
		t.ConsumedAt = &consumed
		c := *t
		return &c, nil
	}
	return nil, nil
}

func (r *VerificationRepo) DeletePending(_ context.Context, userID string, purpose entity.VerificationPurpose) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, t := range r.s.tokens {
		if t.UserID == userID && t.Purpose == purpose && t.ConsumedAt == nil {
			delete(r.s.tokens, id)
		}
	}
	return nil
}

func (r *VerificationRepo) RecordFailedAttempt(_ context.Context, userID string, purpose entity.VerificationPurpose) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, t := range r.s.tokens {
		if t.UserID == userID && t.Purpose == purpose && t.ConsumedAt == nil {
			t.Attempts++
			n = max(n, t.Attempts)
		}
	}
	return n, nil
}

// Pending devuelve los tokens pendientes de un usuario (inspección en tests).
func (r *VerificationRepo) Pending(userID string, purpose entity.VerificationPurpose) []entity.VerificationToken {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.VerificationToken
	for _, t := range r.s.tokens {
		if t.UserID == userID && t.Purpose == purpose && t.ConsumedAt == nil {
			out = append(out, *t)
		}
	}
	return out
}

// ErrInjected error genérico para simular fallos de infraestructura.
var ErrInjected = errors.New("memstore: fallo inyectado")
