package cmd

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shaun/contentsync/internal/api"
	"github.com/shaun/contentsync/internal/config"
	"github.com/shaun/contentsync/internal/logging"
)

type serveOptions struct {
	configPath string
	envFile    string
	addr       string
}

var serveOpts serveOptions

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sync endpoint",
	Long: `Serve /api/sync (and /sync) backed by the repository named in the
configuration. Settings come from the config file, then the .env file, then
the environment.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := logging.New()
		h, cfg, err := buildServer(serveOpts, log)
		if err != nil {
			return err
		}
		return listen(cmd.Context(), cfg.Addr, h, log)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveOpts.configPath, "config", "c", "", "path to a YAML config file")
	serveCmd.Flags().StringVar(&serveOpts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	serveCmd.Flags().StringVar(&serveOpts.addr, "addr", "", "listen address (overrides ADDR/PORT)")
}

func buildServer(opts serveOptions, log *slog.Logger) (http.Handler, config.Config, error) {
	if opts.envFile != "" {
		// A missing .env is normal in deployed environments.
		_ = godotenv.Load(opts.envFile)
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	if missing := cfg.Missing(); len(missing) > 0 {
		log.Warn("configuration incomplete; requests will fail until set", "missing", missing)
	}
	log.Info("syncing repository", "owner", cfg.Owner, "repo", cfg.Repo, "api", cfg.APIURL)

	return api.NewRouter(api.NewHandler(cfg, log), cfg.AllowOrigin, log), cfg, nil
}
