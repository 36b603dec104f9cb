package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/mcoot/lifeboard/internal/api/request"
	"github.com/mcoot/lifeboard/internal/api/response"
	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/realtime"
	"github.com/mcoot/lifeboard/internal/services/lobby"
	"github.com/mcoot/lifeboard/internal/storage"
	"github.com/mcoot/lifeboard/internal/storage/document"
)

// GameHandler exposes the shared document store over HTTP
type GameHandler struct {
	lobbyController *lobby.Controller
	store           storage.Store
	logger          *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(lobbyController *lobby.Controller, store storage.Store, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		lobbyController: lobbyController,
		store:           store,
		logger:          logger.With(slog.String("component", "api-games")),
	}
}

func gameIDFromRequest(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["id"])
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.lobbyController.ListGames(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameList{Games: games})
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.fail(w, r, invalidRequest("Invalid request body"))
		return
	}

	game, err := h.lobbyController.CreateGame(r.Context(), lobby.CreateOptions{
		ID:       model.GameID(req.ID),
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Created(w, "/api/v1/games/"+url.PathEscape(string(game.ID)), game)
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	game, err := h.lobbyController.GetGame(r.Context(), gameIDFromRequest(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, game)
}

// Delete handles DELETE /api/v1/games/{id}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.lobbyController.DeleteGame(r.Context(), gameIDFromRequest(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	response.NoContent(w)
}

// Join handles POST /api/v1/games/{id}/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.fail(w, r, invalidRequest("Invalid request body"))
		return
	}

	joined, err := h.lobbyController.JoinGame(r.Context(), gameIDFromRequest(r), lobby.JoinOptions{
		Password:   req.Password,
		PlayerName: req.PlayerName,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := response.GameJoined{Game: joined.Game}
	if joined.Player != nil {
		resp.PlayerID = string(joined.Player.ID)
	}
	response.JSON(w, http.StatusOK, resp)
}

// Patch handles PATCH /api/v1/games/{id}: one atomic multi-path update
func (h *GameHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var req request.PatchGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, invalidRequest("Invalid request body"))
		return
	}
	if len(req.Set) == 0 && len(req.Delete) == 0 {
		h.fail(w, r, invalidRequest("No updates given"))
		return
	}

	updates := make(storage.Updates, len(req.Set)+len(req.Delete))
	for path, value := range req.Set {
		updates.Set(path, value)
	}
	for _, path := range req.Delete {
		if _, dup := updates[path]; dup {
			h.fail(w, r, invalidRequest("Path both set and deleted: "+path))
			return
		}
		updates.Remove(path)
	}

	if err := h.store.ApplyPathUpdates(r.Context(), gameIDFromRequest(r), updates); err != nil {
		h.fail(w, r, err)
		return
	}
	response.NoContent(w)
}

// Events handles GET /api/v1/games/{id}/events, streaming every snapshot as SSE
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := gameIDFromRequest(r)
	client := realtime.NewClient(r.RemoteAddr)

	sub, err := h.store.Subscribe(r.Context(), id, func(g *model.Game) {
		data, err := document.Encode(g)
		if err != nil {
			h.logger.Error("failed to encode snapshot", slog.String("game_id", string(id)), slog.String("error", err.Error()))
			return
		}
		client.Offer(realtime.FormatMessage(realtime.EventSnapshot, string(data)))
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer sub.Unsubscribe()

	h.logger.Debug("event stream opened", slog.String("game_id", string(id)), slog.String("client", client.ID()))
	realtime.ServeSSE(w, r, client, sub.Done())
	h.logger.Debug("event stream closed", slog.String("game_id", string(id)), slog.String("client", client.ID()))
}
