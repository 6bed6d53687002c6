package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Freeeeeet/cooking_school/internal/app"
	"github.com/Freeeeeet/cooking_school/internal/config"
	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/service"
)

// cli holds what every command needs once PersistentPreRunE has run.
type cli struct {
	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:          "cooking-school",
		Short:        "Cooking school booking service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	rootCmd.AddCommand(c.serveCmd())
	rootCmd.AddCommand(c.migrateCmd())
	rootCmd.AddCommand(c.setRoleCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func (c *cli) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := app.NewLogger(cfg.IsProduction())
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = logger
	return nil
}

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the schedule sweeper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c.logger.Info("Starting cooking school",
				zap.String("environment", c.cfg.Environment),
				zap.String("storage", c.cfg.Storage),
				zap.String("addr", c.cfg.HTTPAddr),
			)

			a, err := app.New(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Run(ctx)
		},
	}
}

func (c *cli) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	run := func(fn func(ctx context.Context, mg *app.Migrator) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := app.Connect(ctx, c.cfg.DBDSN, c.logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			mg, err := app.NewMigrator(pool, c.logger)
			if err != nil {
				return err
			}
			defer mg.Close()

			return fn(ctx, mg)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, mg *app.Migrator) error {
			return mg.Up(ctx)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, mg *app.Migrator) error {
			return mg.Status(ctx)
		}),
	})
	return cmd
}

func (c *cli) setRoleCmd() *cobra.Command {
	var email, role string

	cmd := &cobra.Command{
		Use:   "set-role",
		Short: "Change the role of an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := model.ParseRole(role)
			if err != nil {
				return err
			}

			a, err := app.New(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			account, err := a.Services.Auth.SetRole(cmd.Context(), service.Operator, email, parsed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", account.Email, account.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&role, "role", "", "USER, STAFF, ADMIN or DEV")
	if err := cmd.MarkFlagRequired("email"); err != nil {
		log.Fatal(err)
	}
	if err := cmd.MarkFlagRequired("role"); err != nil {
		log.Fatal(err)
	}
	return cmd
}
