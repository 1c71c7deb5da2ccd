package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"order-app/internal/config"
	"order-app/internal/export"
	"order-app/internal/model"
	"order-app/internal/session"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if de, ok := model.IsDomainError(err); ok {
			fmt.Fprintln(os.Stderr, de.Message)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "orderapp",
		Short:         "Order APP: pick products, save orders and pay for them",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSession(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	root.AddCommand(newInitCmd(), newRunCmd(), newReportCmd())
	return root
}

func newInitCmd() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the stores, admin accounts and the initial catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withApplication(ctx, func(ctx context.Context, app *application) error {
				if err := app.initialize(ctx, reset); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Stores initialised.")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "empty every store before initialising")
	return cmd
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the interactive menu (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSession(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func newReportCmd() *cobra.Command {
	var email, password string
	var top int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print order totals and the most popular products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
				admin, err := app.accounts.Login(ctx, email, password)
				if err != nil {
					return err
				}

				brutto, err := app.reports.Brutto(ctx, admin)
				if err != nil {
					return err
				}
				paid, err := app.reports.Paid(ctx, admin)
				if err != nil {
					return err
				}
				popular, err := app.reports.PopularItems(ctx, admin, top)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Brutto of all orders: %.2f EUR\n", brutto)
				fmt.Fprintf(out, "Brutto money paid: %.2f EUR\n", paid)
				fmt.Fprintln(out, "Most popular products:")
				for i, p := range popular {
					fmt.Fprintf(out, "%d. %s | sold: %d pieces\n", i+1, p.Item.Name, p.Quantity)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", os.Getenv("ORDERAPP_ADMIN_EMAIL"), "admin email")
	cmd.Flags().StringVar(&password, "password", os.Getenv("ORDERAPP_ADMIN_PASSWORD"), "admin password")
	cmd.Flags().IntVar(&top, "top", 3, "number of popular products to list")
	return cmd
}

// withApplication loads configuration, wires the application and runs fn.
func withApplication(ctx context.Context, fn func(ctx context.Context, app *application) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)

	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.close()

	// The memory backend starts empty on every run.
	if cfg.Storage.Backend == "memory" {
		if err := app.initialize(ctx, false); err != nil {
			return err
		}
	}

	return fn(ctx, app)
}

func runSession(ctx context.Context, in io.Reader, out io.Writer) error {
	return withApplication(ctx, func(ctx context.Context, app *application) error {
		if _, err := app.catalog.List(ctx); err != nil {
			return err
		}

		console := session.NewConsole(in, out)
		router := session.NewRouter()
		handlers := session.NewHandlers(
			console,
			app.catalog,
			app.orders,
			app.accounts,
			app.reports,
			export.NewXLSXWriter(app.cfg.Export.Dir, app.logger),
			app.pricer,
			app.logger,
		)
		handlers.Register(router)

		app.logger.Info().Str("backend", app.cfg.Storage.Backend).Msg("starting Order APP session")
		return session.NewApp(console, router, app.accounts, app.logger).Run(ctx)
	})
}
