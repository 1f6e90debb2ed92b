// Package main is the entrypoint for the interface registry.
package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"

	masterminds "github.com/Masterminds/semver/v3"

	"github.com/chainmint/interface-registry/internal/config"
	"github.com/chainmint/interface-registry/internal/server"
	"github.com/chainmint/interface-registry/pkg/artifact"
	"github.com/chainmint/interface-registry/pkg/db"
	"github.com/chainmint/interface-registry/pkg/registry"
)

const usage = `Usage: ifregistry [command]

Commands:
  serve                 (default) Start the interface registry (NATS, HTTP, registry API).
  migrate up            Run database migrations only.
  migrate down          Roll back last migration (migrations are forward-only).
  migrate status        Show current migration status.
  ensure-db [name]      Create database if missing (default name: ifregistry_test). Uses DATABASE_URL host/user.
  clear                 Truncate all registry tables; schema is preserved.
  load <artifact.json>  Register contract interfaces from compiled artifact files.

Environment: DATABASE_URL (required), MIGRATION_PATH, COMMS_URL, REGISTRY_HTTP_ADDR.
`

func main() {
	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 && args[0] != "" {
		cmd = args[0]
	}

	switch cmd {
	case "migrate":
		if len(args) < 2 {
			log.Fatalf("ifregistry migrate: require subcommand (up, down, status)")
		}
		if err := runMigrate(args[1]); err != nil {
			log.Fatalf("ifregistry migrate %s: %v", args[1], err)
		}
		return
	case "ensure-db":
		dbName := "ifregistry_test"
		if len(args) > 1 {
			dbName = args[1]
		}
		if err := runEnsureDB(dbName); err != nil {
			log.Fatalf("ifregistry ensure-db: %v", err)
		}
		return
	case "clear":
		if err := runClear(); err != nil {
			log.Fatalf("ifregistry clear: %v", err)
		}
		return
	case "load":
		if len(args) < 2 {
			log.Fatalf("ifregistry load: require at least one artifact file")
		}
		if err := runLoad(args[1:]); err != nil {
			log.Fatalf("ifregistry load: %v", err)
		}
		return
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	case "", "serve":
		// fall through to server
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q.\n%s", cmd, usage)
		os.Exit(1)
	}

	if err := server.Run(); err != nil {
		log.Fatalf("ifregistry: fatal error: %v", err)
	}
}

func runMigrate(sub string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForDB(); err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	switch sub {
	case "up":
		migrationSQL, err := db.LoadMigrationFiles(cfg.MigrationPath)
		if err != nil {
			return fmt.Errorf("load migrations: %w", err)
		}
		return db.RunMigrations(ctx, pool, migrationSQL)
	case "down":
		return db.MigrationDown(ctx, pool, cfg.MigrationPath)
	case "status":
		return db.MigrationStatus(ctx, pool, cfg.MigrationPath)
	default:
		return fmt.Errorf("unknown migrate subcommand %q (up, down, status)", sub)
	}
}

func runEnsureDB(dbName string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	u, err := url.Parse(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	// Replace path with target database name; query (e.g. sslmode) is kept on u.RawQuery.
	u.Path = "/" + dbName
	if err := db.EnsureDatabase(context.Background(), u.String()); err != nil {
		return err
	}
	fmt.Printf("Database %q is ready.\n", dbName)
	return nil
}

func runClear() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForDB(); err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	return db.ClearRegistry(ctx, pool)
}

// runLoad registers the interfaces of one or more compiled contract artifacts.
// Each artifact becomes one interface version; the version's major is set as
// the active default for the configured environment.
func runLoad(paths []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForDB(); err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	regConfig := registry.DefaultConfig()
	regConfig.DefaultEnv = cfg.DefaultEnv
	reg := registry.NewRegistry(registry.NewRegistryParams{
		Repo:   db.NewRepository(pool),
		Config: regConfig,
	})

	for _, path := range paths {
		a, err := artifact.Load(path)
		if err != nil {
			return err
		}
		input, err := artifactToRegisterInput(a)
		if err != nil {
			return fmt.Errorf("artifact %s: %w", path, err)
		}
		out, err := reg.Register(ctx, input, "artifact-loader")
		if err != nil {
			return fmt.Errorf("register %s: %w", path, err)
		}
		fmt.Printf("%s %s@%s (%d functions) on %s\n", out.Action, out.Contract, out.Version, out.Functions, out.Subject)
	}
	return nil
}

func artifactToRegisterInput(a *artifact.Artifact) (*registry.RegisterInput, error) {
	version, err := masterminds.NewVersion(a.Version)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", a.Version, err)
	}

	// Validate the ABI up front so a broken artifact fails before any writes.
	if _, err := a.Interface(); err != nil {
		return nil, err
	}

	var functions []registry.FunctionDefinition
	for _, e := range a.ABI {
		if e.Type != "function" {
			continue
		}
		def := registry.FunctionDefinition{
			Name:            e.Name,
			StateMutability: e.StateMutability,
		}
		for _, p := range e.Inputs {
			def.Inputs = append(def.Inputs, registry.ParamInfo{Name: p.Name, Type: p.Type})
		}
		for _, p := range e.Outputs {
			def.Outputs = append(def.Outputs, registry.ParamInfo{Name: p.Name, Type: p.Type})
		}
		functions = append(functions, def)
	}

	return &registry.RegisterInput{
		App:         a.App,
		Name:        a.ContractName,
		Description: a.Description,
		Version: registry.VersionInput{
			Major:      int(version.Major()),
			Minor:      int(version.Minor()),
			Patch:      int(version.Patch()),
			Prerelease: version.Prerelease(),
		},
		Functions:    functions,
		SetAsDefault: true,
	}, nil
}
