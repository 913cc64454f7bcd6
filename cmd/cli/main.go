package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/atmledger/internal/bootstrap"
	"github.com/iho/atmledger/internal/domain"
	"github.com/iho/atmledger/internal/generator"
	"github.com/iho/atmledger/internal/infrastructure/config"
	"github.com/iho/atmledger/internal/infrastructure/logger"
	"github.com/iho/atmledger/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "atmledger",
		Short:         "ATM ledger tool",
		Long:          `Ingests ATM transaction sources concurrently and reports final account balances.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(generateCmd(), runCmd(), migrateCmd())
	return rootCmd
}

// setup loads configuration and builds a logger writing to the command's
// error stream.
func setup(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
	return cfg, log, nil
}

func generateCmd() *cobra.Command {
	var (
		target string
		dir    string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic ATM transaction sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			if target == "" {
				target = cfg.SourceKind
			}
			if dir == "" {
				dir = cfg.DataDir
			}

			ctx := cmd.Context()
			dst, err := bootstrap.OpenSink(ctx, cfg, target, dir, log)
			if err != nil {
				return err
			}
			defer dst.Close()

			if target == config.SourceKindFile && !force {
				created, err := generator.EnsureDataFiles(ctx, dir, bootstrap.GeneratorConfig(cfg), dst.Sink, log)
				if err != nil {
					return err
				}
				if !created {
					fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, use --force to regenerate\n", dir)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Generated %d sources in %s\n", cfg.GenSources, dir)
				return nil
			}

			names, err := bootstrap.Generate(ctx, cfg, dst, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d sources (%s)\n", len(names), target)
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Where to write sources: file, redis or postgres (default SOURCE_KIND)")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory for file sources (default DATA_DIR)")
	cmd.Flags().BoolVar(&force, "force", false, "Regenerate file sources even if the directory exists")

	return cmd
}

func runCmd() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Ingest every source and print the final balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			src, err := bootstrap.OpenSources(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer src.Close()

			if err := bootstrap.PrepareSources(ctx, cfg, src, log); err != nil {
				return err
			}

			publisher := bootstrap.NewPublisher(cfg, log)
			defer publisher.Close()

			stop := logger.StartTimer(log, "run")
			result, err := bootstrap.NewRunUseCase(cfg, src, nil, publisher, log).Run(ctx)
			if err != nil {
				return err
			}
			stop()

			out := cmd.OutOrStdout()
			printBalances(out, result.Balances())
			printTotals(out, result)

			if !verify {
				return nil
			}

			report := usecase.NewReconciliationUseCase().Reconcile(result, generator.ExpectedBalances())
			printReconciliation(out, report)
			return report.Err()
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "Compare the balances against the expected balances of the default data set")

	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the source_lines schema",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			return bootstrap.NewMigrator(cfg, log).Up()
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			return bootstrap.NewMigrator(cfg, log).Down()
		},
	}

	cmd.AddCommand(upCmd, downCmd)
	return cmd
}

func printBalances(w io.Writer, balances []domain.AccountBalance) {
	for _, b := range balances {
		fmt.Fprintf(w, "%02d: balance = %s (%s)\n", b.AccountID, b.Balance, b.Balance.Display(usecase.DefaultCurrency))
	}
}

func printTotals(w io.Writer, result *usecase.RunResult) {
	t := result.Totals
	fmt.Fprintf(w, "Sources processed    = %d\n", len(result.Sources))
	fmt.Fprintf(w, "Transactions applied = %d\n", t.Applied())
	fmt.Fprintf(w, "Lines skipped        = %d\n", t.Ignored+t.Malformed)
	fmt.Fprintf(w, "Amounts rejected     = %d\n", t.Failed)
}

func printReconciliation(w io.Writer, report *usecase.ReconciliationReport) {
	for _, d := range report.Discrepancies {
		fmt.Fprintf(w, "Account %02d: expected %s, got %s\n", d.AccountID, d.ExpectedBalance, d.RecordedBalance)
	}
	if report.Consistent() {
		fmt.Fprintf(w, "All %d balances match\n", report.TotalAccounts)
		return
	}
	fmt.Fprintf(w, "%d of %d balances wrong\n", len(report.Discrepancies), report.TotalAccounts)
}
