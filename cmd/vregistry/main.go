// @title                       vregistry API
// @version                     1.0
// @description                 Реестр проверок пользователей и транспортных средств
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vregistry/internal/app"
	"vregistry/internal/config"
	"vregistry/internal/logger"
	"vregistry/internal/migrations"
	"vregistry/internal/services"
)

var (
	configPath string
	downSteps  int

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "vregistry",
	Short:         "Реестр проверок пользователей и транспорта",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadRuntime читает конфиг и поднимает логгер для команд, которым нужна БД.
func loadRuntime(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	l, err := logger.New(c.Log.Level, c.Log.JSON)
	if err != nil {
		return err
	}
	cfg, log = c, l
	return nil
}

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Запустить HTTP API",
	PreRunE: loadRuntime,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer func() { _ = log.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Run(ctx)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Управление схемой БД",
}

var migrateUpCmd = &cobra.Command{
	Use:     "up",
	Short:   "Применить все миграции",
	PreRunE: loadRuntime,
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrations.Up(cfg.Database.DSN, log)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:     "down",
	Short:   "Откатить миграции",
	PreRunE: loadRuntime,
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrations.Down(cfg.Database.DSN, downSteps, log)
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Вывести bcrypt-хеш для users.password_hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := services.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to YAML config")
	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 1, "Number of migrations to roll back (0 = all)")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd, hashPasswordCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
