// Command portalctl is the provisioning tool for the tenant portal. It
// issues and invalidates single-use account setup tokens; the token value
// printed by "issue" is delivered to the tenant out of band.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/fairmanage/tenantportal/internal/flagx"
	"github.com/fairmanage/tenantportal/internal/logging"
	"github.com/fairmanage/tenantportal/internal/server/config"
	"github.com/fairmanage/tenantportal/internal/server/repositories/repomanager"
	"github.com/fairmanage/tenantportal/internal/server/services"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context) error {
	cfg := config.LoadConfig()

	args := flagx.FilterArgs(os.Args[1:], []string{"-op", "-login"})

	fs := flag.NewFlagSet("portalctl", flag.ContinueOnError)
	op := fs.String("op", "issue", "operation: issue or invalidate")
	login := fs.String("login", "", "account login")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *login == "" {
		return fmt.Errorf("-login is required")
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := repomanager.Open(cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	account, err := rm.Accounts(db).GetByLogin(ctx, *login)
	if err != nil {
		return fmt.Errorf("account lookup error: %w", err)
	}

	tokens := services.NewTokenService(db, rm, logger, cfg)

	switch *op {
	case "issue":
		token, err := tokens.Issue(ctx, account.ID)
		if err != nil {
			return fmt.Errorf("issue error: %w", err)
		}
		fmt.Printf("token: %s\n", token.Value)
		if token.ExpiresAt != nil {
			fmt.Printf("expires: %s\n", token.ExpiresAt.UTC().Format(time.RFC3339))
		}
	case "invalidate":
		if err := tokens.Invalidate(ctx, account.ID); err != nil {
			return fmt.Errorf("invalidate error: %w", err)
		}
		fmt.Println("token invalidated")
	default:
		return fmt.Errorf("unknown operation %q", *op)
	}

	return nil
}
