package main

import (
	"database/sql"
	"fmt"
	"io"
	"market-dash-service/internal/adapters/repositories"
	"market-dash-service/internal/api"
	"market-dash-service/internal/config"
	"market-dash-service/internal/domain"
	"market-dash-service/internal/platform/db"
	"market-dash-service/internal/platform/obs"
	"market-dash-service/internal/ports"
	"market-dash-service/internal/services"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    config.Config
	conn   *sql.DB
	store  *repositories.Store
	logger *zap.Logger

	envFile string
)

func execute(args []string) error {
	root := newRootCmd()
	root.SetArgs(args)

	// Runs even when a subcommand fails; cobra skips post-run hooks then.
	defer closeResources()
	return root.Execute()
}

func closeResources() {
	if conn != nil {
		_ = conn.Close()
	}
	if logger != nil {
		_ = logger.Sync()
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dbtool",
		Short:        "Schema, seed and export tasks for the marketplace database",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && envFile != ".env" {
				return fmt.Errorf("load %s: %w", envFile, err)
			}

			var err error
			if cfg, err = config.Load(); err != nil {
				return err
			}
			if logger, err = obs.NewLogger(cfg.LogLevel); err != nil {
				return err
			}
			zap.ReplaceGlobals(logger)

			var dialect db.Dialect
			conn, dialect, err = db.Open(cmd.Context(), cfg.DatabaseDriver, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			store = repositories.NewStore(conn, dialect)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file to load before reading the environment")

	root.AddCommand(migrateCmd(), seedCmd(), exportCmd())
	return root
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and indexes if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Info("initializing database schema", zap.String("driver", cfg.DatabaseDriver))
			if err := repositories.InitSchema(cmd.Context(), conn, store.Dialect); err != nil {
				return err
			}
			logger.Info("schema ready")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var file string
	var migrate bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a fixture file into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = cfg.SeedPath
			}
			if migrate {
				if err := repositories.InitSchema(cmd.Context(), conn, store.Dialect); err != nil {
					return err
				}
			}
			logger.Info("seeding database", zap.String("file", file))
			if err := repositories.SeedFromFile(cmd.Context(), store, file); err != nil {
				return err
			}
			logger.Info("seeding complete")
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "fixture file (default $SEED_PATH)")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "create the schema first")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export data as CSV",
	}
	cmd.AddCommand(exportOrdersCmd())
	return cmd
}

func exportOrdersCmd() *cobra.Command {
	var (
		out      string
		status   string
		from, to string
		shopIDs  []int64
	)

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Write orders as CSV to a file or stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := ports.OrderFilter{Status: domain.OrderStatus(status), ShopIDs: shopIDs}

			var err error
			if f.From, err = parseDay(from); err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			if f.To, err = parseDay(to); err != nil {
				return fmt.Errorf("--to: %w", err)
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("export orders: %w", err)
				}
				defer file.Close()
				w = file
			}

			reports := api.NewServices(store, nil, 0).Reports
			admin := services.Actor{Role: domain.RoleAdmin}
			n, err := reports.ExportOrdersCSV(cmd.Context(), admin, f, w)
			if err != nil {
				return err
			}
			logger.Info("orders exported", zap.Int("rows", n), zap.String("out", out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&status, "status", "", "only orders in this status")
	cmd.Flags().StringVar(&from, "from", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "day after the last to include (YYYY-MM-DD)")
	cmd.Flags().Int64SliceVar(&shopIDs, "shop", nil, "limit to these shop ids")
	return cmd
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}
