// btctl - operator CLI for the backtest results store
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"backtest-results-api/internal/app"
	"backtest-results-api/internal/catalog"
	"backtest-results-api/internal/ingest"
	"backtest-results-api/internal/reporting"
)

var (
	postgresDSN   string
	clickhouseDSN string
	useMemory     bool
	catalogPath   string
	seedDir       string

	logger = log.New(os.Stderr, "[btctl] ", log.LstdFlags|log.Lshortfile)
)

func main() {
	if err := app.LoadEnv(); err != nil {
		logger.Fatalf("Failed to load environment: %v", err)
	}

	rootCmd := &cobra.Command{
		Use:   "btctl",
		Short: "Manage backtest results",
		Long: `btctl migrates the result databases, imports backtest CSV exports
and renders summary reports across every catalogued strategy and period.`,
		SilenceUsage: true,
	}

	// Flags (env vars as defaults)
	rootCmd.PersistentFlags().StringVar(&postgresDSN, "postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&clickhouseDSN, "clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional)")
	rootCmd.PersistentFlags().BoolVar(&useMemory, "use-memory", app.EnvBool("USE_MEMORY", false), "Use in-memory storage (with --seed-dir)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", os.Getenv("CATALOG_PATH"), "Strategy catalog YAML (built-in catalog if empty)")
	rootCmd.PersistentFlags().StringVar(&seedDir, "seed-dir", os.Getenv("SEED_DIR"), "Import CSV exports from this directory before running")

	// Subcommands
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(catalogCmd())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env opens catalog and stores, seeding from --seed-dir when set.
type env struct {
	catalog *catalog.Catalog
	stores  *app.Stores
	cleanup func()
}

func openEnv(ctx context.Context, migrate bool) (*env, error) {
	cat, err := app.LoadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}

	stores, cleanup, err := app.OpenStores(ctx, app.StoreConfig{
		PostgresDSN:   postgresDSN,
		ClickhouseDSN: clickhouseDSN,
		UseMemory:     useMemory,
		Migrate:       migrate,
	}, logger)
	if err != nil {
		return nil, err
	}

	e := &env{catalog: cat, stores: stores, cleanup: cleanup}
	if seedDir != "" {
		if _, err := e.importDir(ctx, seedDir, ingest.DefaultPattern); err != nil {
			cleanup()
			return nil, err
		}
	}
	return e, nil
}

func (e *env) importDir(ctx context.Context, dir, pattern string) (ingest.ImportResult, error) {
	importer := ingest.NewImporter(e.stores.Trades, e.stores.Markets, e.catalog, logger)
	result, err := importer.ImportDir(ctx, dir, pattern)
	logger.Printf("Imported %d files (%d rows), skipped %d, failed %d",
		result.Files, result.Rows, result.Skipped, result.Failed)
	return result, err
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if useMemory {
				return fmt.Errorf("migrate needs --postgres-dsn, not --use-memory")
			}
			e, err := openEnv(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer e.cleanup()
			fmt.Printf("Migrations applied (%s)\n", e.stores.Backend)
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	var pattern string

	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Import <strategy>_<period>_{trades,data}.csv exports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.cleanup()

			result, err := e.importDir(cmd.Context(), args[0], pattern)
			if err != nil {
				return err
			}
			fmt.Printf("%d files, %d rows imported, %d skipped\n", result.Files, result.Rows, result.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", ingest.DefaultPattern, "Glob below <dir> (supports **)")
	return cmd
}

func reportCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the cross-series summary report",
		Long: `Computes the headline metrics of every strategy × period series.
Without --output-dir the Markdown report is written to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.cleanup()

			report, err := reporting.NewService(e.stores.Trades, e.stores.Markets, e.catalog).Summary(cmd.Context())
			if err != nil {
				return fmt.Errorf("generate summary: %w", err)
			}

			md := reporting.RenderMarkdown(report)
			if outputDir == "" {
				fmt.Print(md)
				return nil
			}

			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			mdPath := filepath.Join(outputDir, "BACKTEST_SUMMARY.md")
			if err := os.WriteFile(mdPath, []byte(md), 0644); err != nil {
				return fmt.Errorf("write %s: %w", mdPath, err)
			}
			csvPath := filepath.Join(outputDir, "backtest_summary.csv")
			if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(report.Rows)), 0644); err != nil {
				return fmt.Errorf("write %s: %w", csvPath, err)
			}
			fmt.Printf("Wrote %s and %s\n", mdPath, csvPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for BACKTEST_SUMMARY.md and backtest_summary.csv")
	return cmd
}

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Validate and print the strategy catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := app.LoadCatalog(catalogPath)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cat)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	}
}
