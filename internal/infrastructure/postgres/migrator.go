package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/windi9/dwc-pos/pkg/logger"
)

// Migration par up/down identificado por una versión numérica (prefijo NNNN del archivo).
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// MigrationRecord fila de schema_migrations.
type MigrationRecord struct {
	Version   int
	Name      string
	AppliedAt time.Time
}

// MigrationStatus resumen para el comando `migrate status`.
type MigrationStatus struct {
	Applied []MigrationRecord
	Pending []Migration
}

// Migrator aplica las migraciones embebidas; cada una corre en su propia transacción.
type Migrator struct {
	pool       *pgxpool.Pool
	migrations []Migration
	log        *logger.Logger
}

// NewMigrator carga y valida las migraciones de fsys.
func NewMigrator(pool *pgxpool.Pool, fsys fs.FS, log *logger.Logger) (*Migrator, error) {
	ms, err := LoadMigrations(fsys)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Migrator{pool: pool, migrations: ms, log: log.Named("migrator")}, nil
}

// LoadMigrations lee NNNN_nombre.up.sql / .down.sql de la raíz de fsys, ordenadas por versión.
// Una versión sin su par up y down es un error.
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	byVersion := make(map[int]*Migration)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		version, name, up, ok := parseMigrationFilename(e.Name())
		if !ok {
			continue
		}
		body, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		m, exists := byVersion[version]
		if !exists {
			m = &Migration{Version: version, Name: name}
			byVersion[version] = m
		} else if m.Name != name {
			return nil, fmt.Errorf("migración %04d con nombres distintos: %q y %q", version, m.Name, name)
		}
		if up {
			m.UpSQL = string(body)
		} else {
			m.DownSQL = string(body)
		}
	}

	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if strings.TrimSpace(m.UpSQL) == "" || strings.TrimSpace(m.DownSQL) == "" {
			return nil, fmt.Errorf("migración %04d_%s incompleta: se requieren up y down", m.Version, m.Name)
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// parseMigrationFilename "0002_catalog.up.sql" -> (2, "catalog", true, true).
func parseMigrationFilename(filename string) (version int, name string, up bool, ok bool) {
	base, found := strings.CutSuffix(filename, ".sql")
	if !found {
		return 0, "", false, false
	}
	switch {
	case strings.HasSuffix(base, ".up"):
		up = true
		base = strings.TrimSuffix(base, ".up")
	case strings.HasSuffix(base, ".down"):
		base = strings.TrimSuffix(base, ".down")
	default:
		return 0, "", false, false
	}
	prefix, name, found := strings.Cut(base, "_")
	if !found || name == "" {
		return 0, "", false, false
	}
	version, err := strconv.Atoi(prefix)
	if err != nil || version <= 0 {
		return 0, "", false, false
	}
	return version, name, up, true
}

// Migrations devuelve las migraciones conocidas en orden.
func (m *Migrator) Migrations() []Migration {
	return m.migrations
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) ([]MigrationRecord, error) {
	rows, err := m.pool.Query(ctx, `SELECT version, name, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("query schema_migrations: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (MigrationRecord, error) {
		var r MigrationRecord
		err := row.Scan(&r.Version, &r.Name, &r.AppliedAt)
		return r, err
	})
}

// Up aplica todas las migraciones pendientes. Si la N falla, las anteriores quedan confirmadas.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.ensureTable(ctx); err != nil {
		return 0, err
	}
	status, err := m.Status(ctx)
	if err != nil {
		return 0, err
	}
	for i, mig := range status.Pending {
		if err := m.run(ctx, mig, mig.UpSQL, true); err != nil {
			return i, fmt.Errorf("migración %04d_%s: %w", mig.Version, mig.Name, err)
		}
		m.log.Info().Int("version", mig.Version).Str("name", mig.Name).Msg("migración aplicada")
	}
	return len(status.Pending), nil
}

// Down revierte la última migración aplicada. Devuelve false si no había ninguna.
func (m *Migrator) Down(ctx context.Context) (bool, error) {
	if err := m.ensureTable(ctx); err != nil {
		return false, err
	}
	applied, err := m.applied(ctx)
	if err != nil {
		return false, err
	}
	if len(applied) == 0 {
		return false, nil
	}
	last := applied[len(applied)-1]
	var mig *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == last.Version {
			mig = &m.migrations[i]
			break
		}
	}
	if mig == nil {
		return false, fmt.Errorf("migración %04d no encontrada en el binario", last.Version)
	}
	if err := m.run(ctx, *mig, mig.DownSQL, false); err != nil {
		return false, fmt.Errorf("revertir %04d_%s: %w", mig.Version, mig.Name, err)
	}
	m.log.Info().Int("version", mig.Version).Str("name", mig.Name).Msg("migración revertida")
	return true, nil
}

// Status lista aplicadas y pendientes.
func (m *Migrator) Status(ctx context.Context) (*MigrationStatus, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	return &MigrationStatus{Applied: applied, Pending: pendingMigrations(m.migrations, applied)}, nil
}

func pendingMigrations(all []Migration, applied []MigrationRecord) []Migration {
	done := make(map[int]bool, len(applied))
	for _, r := range applied {
		done[r.Version] = true
	}
	var pending []Migration
	for _, mig := range all {
		if !done[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending
}

func (m *Migrator) run(ctx context.Context, mig Migration, sql string, up bool) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, sql); err != nil {
		return err
	}
	if up {
		_, err = tx.Exec(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, mig.Version, mig.Name)
	} else {
		_, err = tx.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1`, mig.Version)
	}
	if err != nil {
		return fmt.Errorf("schema_migrations: %w", err)
	}
	return tx.Commit(ctx)
}
