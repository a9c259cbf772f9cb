// Package seed carga el catálogo de roles y permisos y crea el Superadmin inicial.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/windi9/dwc-pos/internal/domain/entity"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// allCapabilities en grants concede todos los permisos del catálogo.
const allCapabilities = "*"

// Catalog roles, permisos y concesiones a aplicar.
type Catalog struct {
	Permissions []PermissionSpec `yaml:"permissions"`
	Roles       []RoleSpec       `yaml:"roles"`
}

type PermissionSpec struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type RoleSpec struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Grants      []string `yaml:"grants"`
}

// DefaultCatalog devuelve el catálogo embebido.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog decodifica y valida un catálogo YAML: roles y permisos deben pertenecer al conjunto conocido
// y cada concesión debe referirse a un permiso declarado.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("seed: catálogo inválido: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	declared := make(map[string]bool, len(c.Permissions))
	for _, p := range c.Permissions {
		if _, err := entity.ParseCapability(p.Name); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if declared[p.Name] {
			return fmt.Errorf("seed: permiso %q duplicado", p.Name)
		}
		declared[p.Name] = true
	}
	seen := make(map[string]bool, len(c.Roles))
	for _, r := range c.Roles {
		if _, err := entity.ParseRoleName(r.Name); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if seen[r.Name] {
			return fmt.Errorf("seed: rol %q duplicado", r.Name)
		}
		seen[r.Name] = true
		for _, g := range r.Grants {
			if g != allCapabilities && !declared[g] {
				return fmt.Errorf("seed: el rol %s concede %q, que no está declarado", r.Name, g)
			}
		}
	}
	return nil
}

// GrantsOf expande "*" y devuelve las capacidades del rol en el orden del catálogo.
func (c *Catalog) GrantsOf(r RoleSpec) []entity.Capability {
	for _, g := range r.Grants {
		if g == allCapabilities {
			out := make([]entity.Capability, 0, len(c.Permissions))
			for _, p := range c.Permissions {
				out = append(out, entity.Capability(p.Name))
			}
			return out
		}
	}
	out := make([]entity.Capability, 0, len(r.Grants))
	for _, g := range r.Grants {
		out = append(out, entity.Capability(g))
	}
	return out
}
