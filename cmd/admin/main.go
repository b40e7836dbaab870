// Command admin is the Speedway Protocol operations CLI.
//
// Usage:
//
//	speedway-admin migrate
//	speedway-admin seed teams
//	speedway-admin official import
//	speedway-admin official revalidate
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Jakkmalm/speedway-protocol/internal/config"
	"github.com/Jakkmalm/speedway-protocol/internal/db"
	"github.com/Jakkmalm/speedway-protocol/internal/live"
	"github.com/Jakkmalm/speedway-protocol/internal/official"
	"github.com/Jakkmalm/speedway-protocol/internal/seed"
	"github.com/Jakkmalm/speedway-protocol/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "speedway-admin",
		Short: "Speedway Protocol operations CLI",
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(seedCmd())
	root.AddCommand(officialCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// migrate command
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			start := time.Now()
			if err := db.Migrate(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("Migrations applied", "duration", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// seed command
// --------------------------------------------------------------------------

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed reference data",
	}
	cmd.AddCommand(seedTeamsCmd())
	return cmd
}

func seedTeamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "teams",
		Short: "Seed Elitserien teams and placeholder rosters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				st := store.New(pool)
				start := time.Now()
				result := seed.SeedTeams(ctx, st, logger)
				logger.Info("Team seed finished",
					"duration", time.Since(start).Round(time.Second),
					"summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("seed error", "error", e)
				}
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// official command
// --------------------------------------------------------------------------

func officialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "official",
		Short: "Import and apply official results",
	}
	cmd.AddCommand(officialImportCmd())
	cmd.AddCommand(officialRevalidateCmd())
	return cmd
}

func officialImportCmd() *cobra.Command {
	var headful bool
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Scrape official matches and store them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				st := store.New(pool)
				headless := cfg.ScrapeHeadless && !headful
				scraper := official.NewScraper(cfg.FlashscoreURL, cfg.ScrapeTimeout, headless, logger)
				svemo := official.NewSvemoClient(cfg.SvemoBaseURL, cfg.SvemoAPIKey, 30, logger)
				importer := official.NewImporter(scraper, svemo, st, logger)

				start := time.Now()
				result, err := importer.ImportMatches(ctx)
				if err != nil {
					return err
				}
				logger.Info("Official import finished",
					"duration", time.Since(start).Round(time.Second),
					"summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("import error", "error", e)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&headful, "headful", false, "Run the browser with a visible window")
	return cmd
}

func officialRevalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revalidate",
		Short: "Re-check all pending user protocols against stored official results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				st := store.New(pool)
				hub := live.NewHub(logger)
				go hub.Run()
				validator := official.NewValidator(st, hub, logger)

				pending, err := st.PendingUserMatches(ctx)
				if err != nil {
					return fmt.Errorf("list pending protocols: %w", err)
				}
				var applied int
				for _, um := range pending {
					ok, err := validator.RevalidateUserMatch(ctx, um.ID)
					if err != nil {
						logger.Error("revalidate error", "user_match_id", um.ID, "error", err)
						continue
					}
					if ok {
						applied++
					}
				}
				logger.Info("Revalidation sweep finished", "pending", len(pending), "applied", applied)
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runWithDB handles config loading, DB connection, and context cancellation.
func runWithDB(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}
