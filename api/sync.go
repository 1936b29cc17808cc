package handler

import (
	"net/http"

	"github.com/shaun/contentsync/internal/api"
	"github.com/shaun/contentsync/internal/config"
	"github.com/shaun/contentsync/internal/logging"
)

var defaultHandler http.Handler

func init() {
	cfg := config.FromEnv()
	log := logging.New()
	defaultHandler = api.NewRouter(api.NewHandler(cfg, log), cfg.AllowOrigin, log)
}

// Handler is the entry point for Vercel's Go runtime, served at /api/sync.
func Handler(w http.ResponseWriter, r *http.Request) {
	defaultHandler.ServeHTTP(w, r)
}
