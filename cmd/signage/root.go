package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"kiosk-signage/internal/catalog"
	"kiosk-signage/internal/platform/config"
	"kiosk-signage/internal/platform/logger"
)

// commandContext carries flags shared by every subcommand.
type commandContext struct {
	configPath string
	envFile    string
	cfg        *config.Config
}

func (c *commandContext) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	// a missing .env is normal; system env and defaults still apply
	_ = config.Load(c.envFile)
	cfg, err := config.Resolve(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(cfg.Server.LogLevel, cfg.Server.LogFormat)
}

// newProvider builds the catalog provider described by cfg.
func (c *commandContext) newProvider(cfg *config.Config, log *slog.Logger) (*catalog.Provider, error) {
	strategy, err := catalog.ParseStrategy(cfg.Media.RecentStrategy)
	if err != nil {
		return nil, err
	}
	return catalog.NewProvider(catalog.DirSource{Dir: cfg.Media.Dir()}, catalog.Options{
		ImageExtensions: cfg.Media.ImageExtensions,
		VideoExtensions: cfg.Media.VideoExtensions,
		Strategy:        strategy,
	}, log), nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "signage",
		Short:         "Kiosk digital signage server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "", "TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&ctx.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
