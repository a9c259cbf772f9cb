package main

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestLoadCatalog_PorDefectoUsaElEmbebido(t *testing.T) {
	c := qt.New(t)

	cat, err := loadCatalog("")
	c.Assert(err, qt.IsNil)
	c.Assert(cat.Roles, qt.Not(qt.HasLen), 0)
	c.Assert(cat.Permissions, qt.Not(qt.HasLen), 0)
}

func TestLoadCatalog_DesdeArchivo(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	err := os.WriteFile(path, []byte(`
permissions:
  - name: read_product
    description: Ver productos
roles:
  - name: Superadmin
    grants: ["*"]
  - name: Admin
    grants: [read_product]
  - name: Employee
    grants: [read_product]
  - name: Customer
    grants: []
`), 0o600)
	c.Assert(err, qt.IsNil)

	cat, err := loadCatalog(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cat.Permissions, qt.HasLen, 1)
}

func TestLoadCatalog_ArchivoInexistente(t *testing.T) {
	c := qt.New(t)

	_, err := loadCatalog(filepath.Join(t.TempDir(), "no-existe.yaml"))
	c.Assert(err, qt.ErrorMatches, `leer catálogo: .*`)
}
