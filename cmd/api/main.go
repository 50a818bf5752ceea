package main

import (
	"context"
	"fmt"
	"os"

	"srp-backend/internal/config"
	"srp-backend/internal/infrastructure/db"
	"srp-backend/internal/infrastructure/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const programName = "srp"

type ctxKey struct{}

// app is what every subcommand starts from.
type app struct {
	cfg *config.Config
	log *zap.Logger
}

func fromContext(ctx context.Context) *app {
	a, _ := ctx.Value(ctxKey{}).(*app)
	return a
}

func (a *app) openDB() (*gorm.DB, error) {
	gdb, err := db.OpenGorm(a.cfg.MySQLDSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	return gdb, nil
}

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Ship replacement program backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		log, err := logger.New(cfg.LogLevel, cfg.LogDevelopment)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		cmd.SetContext(context.WithValue(cmd.Context(), ctxKey{}, &app{cfg: cfg, log: log.With(zap.String("component", programName))}))
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if a := fromContext(cmd.Context()); a != nil {
			_ = a.log.Sync()
		}
	}

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(migrateCommand())
	rootCmd.AddCommand(userCommand())
	rootCmd.AddCommand(groupCommand())
	rootCmd.AddCommand(nameCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(1)
	}
}
