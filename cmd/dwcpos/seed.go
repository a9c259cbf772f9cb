package main

import (
	"fmt"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/windi9/dwc-pos/internal/application/auth"
	"github.com/windi9/dwc-pos/internal/infrastructure/postgres"
	"github.com/windi9/dwc-pos/internal/infrastructure/seed"
)

const catalogFlag = "catalog"

var seedFlags = map[string]cobraflags.Flag{
	catalogFlag: &cobraflags.StringFlag{
		Name:  catalogFlag,
		Value: "",
		Usage: "Catálogo YAML de roles y permisos (por defecto el embebido)",
	},
}

func newSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Sembrar roles, permisos y el Superadmin inicial",
		Long: `Asegura roles, permisos y concesiones del catálogo de forma idempotente.

Si SEED_SUPERADMIN_EMAIL y SEED_SUPERADMIN_PASSWORD están definidos y todavía no existe
ninguna cuenta Superadmin, la crea con el email ya verificado.`,
		Args: cobra.NoArgs,
		RunE: runSeed,
	}
	cobraflags.RegisterMap(cmd, seedFlags)
	return cmd
}

func loadCatalog(path string) (*seed.Catalog, error) {
	if path == "" {
		return seed.DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer catálogo: %w", err)
	}
	return seed.ParseCatalog(data)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cat, err := loadCatalog(seedFlags[catalogFlag].GetString())
	if err != nil {
		return err
	}
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	seeder := seed.NewSeeder(
		postgres.NewUserRepository(e.pool),
		postgres.NewRoleRepository(e.pool),
		postgres.NewTxRunner(e.pool),
		auth.NewCredentialStore(e.cfg.Security.BcryptCost),
		nil,
		e.log,
	)
	rep, err := seeder.Run(cmd.Context(), cat, seed.Superadmin{
		Username: e.cfg.Seed.SuperadminUsername,
		Email:    e.cfg.Seed.SuperadminEmail,
		Password: e.cfg.Seed.SuperadminPassword,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "roles: %d, permisos: %d, concesiones: %d\n", rep.Roles, rep.Permissions, rep.Grants)
	if rep.SuperadminCreated {
		fmt.Fprintf(out, "superadmin creado: %s\n", rep.SuperadminID)
	}
	return nil
}
