package main

import (
	"fmt"

	"github.com/go-extras/go-kit/must"
	"github.com/spf13/cobra"

	"github.com/windi9/dwc-pos/internal/infrastructure/postgres"
	"github.com/windi9/dwc-pos/internal/infrastructure/postgres/migrations"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplicar, revertir o consultar migraciones del esquema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Aplicar todas las migraciones pendientes",
			Args:  cobra.NoArgs,
			RunE:  migrateUp,
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revertir la última migración aplicada",
			Args:  cobra.NoArgs,
			RunE:  migrateDown,
		},
		&cobra.Command{
			Use:   "status",
			Short: "Listar migraciones aplicadas y pendientes",
			Args:  cobra.NoArgs,
			RunE:  migrateStatus,
		},
	)
	return cmd
}

func openMigrator(cmd *cobra.Command) (*env, *postgres.Migrator, error) {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	// Las migraciones van embebidas en el binario: si no cargan es un error de compilación.
	m := must.Must(postgres.NewMigrator(e.pool, migrations.FS, e.log))
	return e, m, nil
}

func migrateUp(cmd *cobra.Command, _ []string) error {
	e, m, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	n, err := m.Up(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d migraciones aplicadas\n", n)
	return nil
}

func migrateDown(cmd *cobra.Command, _ []string) error {
	e, m, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	reverted, err := m.Down(cmd.Context())
	if err != nil {
		return err
	}
	if !reverted {
		fmt.Fprintln(cmd.OutOrStdout(), "no hay migraciones aplicadas")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "última migración revertida")
	return nil
}

func migrateStatus(cmd *cobra.Command, _ []string) error {
	e, m, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	st, err := m.Status(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, r := range st.Applied {
		fmt.Fprintf(out, "[x] %04d_%s  %s\n", r.Version, r.Name, r.AppliedAt.Format("2006-01-02 15:04:05"))
	}
	for _, p := range st.Pending {
		fmt.Fprintf(out, "[ ] %04d_%s\n", p.Version, p.Name)
	}
	fmt.Fprintf(out, "%d aplicadas, %d pendientes\n", len(st.Applied), len(st.Pending))
	return nil
}
