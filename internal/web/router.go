package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/lifeboard/internal/services/effects"
	"github.com/mcoot/lifeboard/internal/services/game"
	"github.com/mcoot/lifeboard/internal/services/lobby"
	"github.com/mcoot/lifeboard/internal/storage"
	"github.com/mcoot/lifeboard/internal/web/handler"
	"github.com/mcoot/lifeboard/internal/web/middleware"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger          *slog.Logger
	LobbyController *lobby.Controller
	Store           storage.Store
	Policy          *effects.Policy
	// NewGameController returns a fresh sync controller for each board action
	NewGameController func() *game.Controller
	StaticDir         string // Path to static files directory
}

// Register mounts the web routes on r
func Register(r *mux.Router, cfg RouterConfig) {
	logger := cfg.Logger.With(slog.String("component", "web"))

	homeHandler := handler.NewHomeHandler(cfg.LobbyController, logger)
	gameHandler := handler.NewGameHandler(cfg.Store, cfg.Policy, cfg.NewGameController, logger)

	web := r.NewRoute().Subrouter()
	web.Use(middleware.Recovery(cfg.Logger))
	web.Use(middleware.Logging(cfg.Logger))
	web.Use(middleware.Flash())

	// Static files
	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		web.PathPrefix("/static/").Handler(staticHandler)
	}

	web.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	web.HandleFunc("/games", homeHandler.Create).Methods(http.MethodPost)
	web.HandleFunc("/games/{id}/join", homeHandler.Join).Methods(http.MethodPost)

	// Board routes require the game's password when it has one
	board := web.PathPrefix("/games/{id}").Subrouter()
	board.Use(middleware.JoinGate(cfg.LobbyController, logger))
	board.HandleFunc("", gameHandler.View).Methods(http.MethodGet)
	board.HandleFunc("/events", gameHandler.Events).Methods(http.MethodGet)
	board.HandleFunc("/reset", gameHandler.Reset).Methods(http.MethodPost)
	board.HandleFunc("/players", gameHandler.AddPlayer).Methods(http.MethodPost)
	board.HandleFunc("/players/{player}/life", gameHandler.AdjustLife).Methods(http.MethodPost)
	board.HandleFunc("/players/{player}/effects/{effect}", gameHandler.Effect).Methods(http.MethodPost)
	board.HandleFunc("/players/{player}/damage", gameHandler.CommanderDamage).Methods(http.MethodPost)
	board.HandleFunc("/players/{player}/color", gameHandler.SetColor).Methods(http.MethodPost)
	board.HandleFunc("/players/{player}/rename", gameHandler.Rename).Methods(http.MethodPost)
	board.HandleFunc("/players/{player}/remove", gameHandler.RemovePlayer).Methods(http.MethodPost)
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	Register(r, cfg)
	return r
}
