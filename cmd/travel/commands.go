package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	httpserver "github.com/Skotchmaster/travel_app/internal/transport/http"
	"github.com/Skotchmaster/travel_app/migrations"
	"github.com/Skotchmaster/travel_app/pkg/db"
)

func newServeCommand() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, l, ctx, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			a, err := newApp(ctx, cfg, l)
			if err != nil {
				return err
			}
			defer a.Close()

			if !skipMigrate {
				if err := migrate(ctx, cfg, a.store); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
			}

			e := echo.New()
			e.HideBanner = true
			e.Server.ReadTimeout = 10 * time.Second
			e.Server.WriteTimeout = 15 * time.Second
			e.Server.ReadHeaderTimeout = 3 * time.Second
			httpserver.Register(e, a.deps)

			errCh := make(chan error, 1)
			go func() {
				l.Info("http server listening", "addr", cfg.Addr)
				if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			l.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := e.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			l.Info("shutdown complete")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not apply schema migrations on start")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, ctx, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			gdb, store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close(gdb)
			return migrate(ctx, cfg, store)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest postgres migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, ctx, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			if db.IsSQLite(cfg.DatabaseURL) {
				return errors.New("down migrations are only supported on postgres")
			}
			m, err := migrations.Open(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer m.Close()
			return m.Down(ctx)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the applied postgres schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, ctx, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			if db.IsSQLite(cfg.DatabaseURL) {
				return errors.New("schema versions are only tracked on postgres")
			}
			m, err := migrations.Open(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer m.Close()
			v, err := m.Version(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	})
	return cmd
}

func newPurgeTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-tokens",
		Short: "Delete refresh tokens that are both revoked and expired",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, l, ctx, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			a, err := newApp(ctx, cfg, l)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.deps.Auth.PurgeExpired(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d refresh tokens\n", n)
			return nil
		},
	}
}
