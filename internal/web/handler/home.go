package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/lifeboard/internal/api/apierr"
	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/services/lobby"
	"github.com/mcoot/lifeboard/internal/web/middleware"
	"github.com/mcoot/lifeboard/internal/web/templates/layout"
	"github.com/mcoot/lifeboard/internal/web/templates/pages"
)

// HomeHandler handles the game list and the create/join flows
type HomeHandler struct {
	lobbyController *lobby.Controller
	logger          *slog.Logger
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(lobbyController *lobby.Controller, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{
		lobbyController: lobbyController,
		logger:          logger,
	}
}

func gameURL(id model.GameID) string {
	return "/games/" + url.PathEscape(string(id))
}

// Home renders the game list
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	games, err := h.lobbyController.ListGames(r.Context())
	if err != nil {
		h.logger.Error("failed to list games", slog.String("error", err.Error()))
		http.Error(w, apierr.MessageOf(err), apierr.StatusOf(err))
		return
	}

	data := pages.HomeData{
		PageData: layout.PageData{
			Title: "Games",
			Flash: middleware.GetFlash(r.Context()),
		},
		Games: games,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.Home(data).Render(r.Context(), w); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Create handles the new game form
func (h *HomeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, "error", "Invalid form data")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	password := r.FormValue("password")
	game, err := h.lobbyController.CreateGame(r.Context(), lobby.CreateOptions{
		ID:       model.GameID(r.FormValue("id")),
		Name:     r.FormValue("name"),
		Password: password,
	})
	if err != nil {
		middleware.SetFlash(w, "error", apierr.MessageOf(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	middleware.SetJoined(w, game.ID, password)
	http.Redirect(w, r, gameURL(game.ID), http.StatusSeeOther)
}

// Join checks the submitted password, seats the named player and remembers the
// password for the game's pages
func (h *HomeHandler) Join(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, "error", "Invalid form data")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	id := model.GameID(mux.Vars(r)["id"])
	password := r.FormValue("password")
	name := strings.TrimSpace(r.FormValue("player_name"))
	joined, err := h.lobbyController.JoinGame(r.Context(), id, lobby.JoinOptions{
		Password:   password,
		PlayerName: name,
	})
	if err != nil {
		middleware.SetFlash(w, "error", apierr.MessageOf(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	middleware.SetJoined(w, id, password)
	if name != "" && joined.Player == nil {
		middleware.SetFlash(w, "info", "The game is full, joined as a spectator")
	}
	http.Redirect(w, r, gameURL(id), http.StatusSeeOther)
}
