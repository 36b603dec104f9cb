package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/lifeboard/internal/api/apierr"
	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/realtime"
	"github.com/mcoot/lifeboard/internal/services/effects"
	"github.com/mcoot/lifeboard/internal/services/game"
	"github.com/mcoot/lifeboard/internal/storage"
	"github.com/mcoot/lifeboard/internal/web/middleware"
	"github.com/mcoot/lifeboard/internal/web/templates/components"
	"github.com/mcoot/lifeboard/internal/web/templates/layout"
	"github.com/mcoot/lifeboard/internal/web/templates/pages"
)

// submitTimeout bounds one form action, subscription included
const submitTimeout = 10 * time.Second

// GameHandler handles the board page, its event stream and the board actions
type GameHandler struct {
	store         storage.Store
	policy        *effects.Policy
	newController func() *game.Controller
	logger        *slog.Logger
}

// NewGameHandler creates a new GameHandler. newController supplies a fresh sync
// controller for each action.
func NewGameHandler(store storage.Store, policy *effects.Policy, newController func() *game.Controller, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		store:         store,
		policy:        policy,
		newController: newController,
		logger:        logger,
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func playerFromRequest(r *http.Request) model.PlayerID {
	return model.PlayerID(mux.Vars(r)["player"])
}

func formInt(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(r.FormValue(name))
	return n, err == nil
}

// View renders the board page
func (h *GameHandler) View(w http.ResponseWriter, r *http.Request) {
	g := middleware.GetGame(r.Context())

	title := g.Name
	if title == "" {
		title = string(g.ID)
	}
	data := pages.GameData{
		PageData: layout.PageData{
			Title: title,
			Flash: middleware.GetFlash(r.Context()),
		},
		Board: components.NewBoardData(g, h.policy),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.Game(data).Render(r.Context(), w); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Events streams a rendered board fragment for every snapshot
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetGame(r.Context()).ID
	client := realtime.NewClient(r.RemoteAddr)

	sub, err := h.store.Subscribe(r.Context(), id, func(g *model.Game) {
		html, err := components.Render(r.Context(), components.Board(components.NewBoardData(g, h.policy)))
		if err != nil {
			h.logger.Error("failed to render board",
				slog.String("game_id", string(id)),
				slog.String("error", err.Error()),
			)
			return
		}
		client.Offer(realtime.FormatMessage(components.BoardID, html))
	})
	if err != nil {
		http.Error(w, apierr.MessageOf(err), apierr.StatusOf(err))
		return
	}
	defer sub.Unsubscribe()

	realtime.ServeSSE(w, r, client, sub.Done())
}

// submit sends one intent through a short-lived sync controller and answers the form
func (h *GameHandler) submit(w http.ResponseWriter, r *http.Request, intent model.Intent) {
	id := middleware.GetGame(r.Context()).ID

	ctx, cancel := context.WithTimeout(r.Context(), submitTimeout)
	defer cancel()

	err := h.apply(ctx, id, intent)
	if err != nil {
		h.logger.Info("board action rejected",
			slog.String("game_id", string(id)),
			slog.String("intent", model.DescribeIntent(intent)),
			slog.String("error", err.Error()),
		)
	}

	if isHTMX(r) {
		if err != nil {
			http.Error(w, apierr.MessageOf(err), apierr.StatusOf(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		middleware.SetFlash(w, "error", apierr.MessageOf(err))
	}
	http.Redirect(w, r, gameURL(id), http.StatusSeeOther)
}

func (h *GameHandler) apply(ctx context.Context, id model.GameID, intent model.Intent) error {
	ctrl := h.newController()
	defer ctrl.Unsubscribe()

	if err := ctrl.Subscribe(ctx, id); err != nil {
		return err
	}
	if err := ctrl.WaitReady(ctx); err != nil {
		return err
	}
	return ctrl.Submit(ctx, intent)
}

func (h *GameHandler) badForm(w http.ResponseWriter, r *http.Request, message string) {
	if isHTMX(r) {
		http.Error(w, message, http.StatusBadRequest)
		return
	}
	middleware.SetFlash(w, "error", message)
	http.Redirect(w, r, gameURL(middleware.GetGame(r.Context()).ID), http.StatusSeeOther)
}

// AdjustLife handles the life zones
func (h *GameHandler) AdjustLife(w http.ResponseWriter, r *http.Request) {
	delta, ok := formInt(r, "delta")
	if !ok {
		h.badForm(w, r, "Invalid life change")
		return
	}
	h.submit(w, r, model.AdjustLife{Player: playerFromRequest(r), Delta: delta})
}

// Effect toggles a flag or adjusts a counter
func (h *GameHandler) Effect(w http.ResponseWriter, r *http.Request) {
	player := playerFromRequest(r)
	effect := mux.Vars(r)["effect"]

	if r.FormValue("toggle") != "" {
		h.submit(w, r, model.ToggleEffect{Player: player, Effect: effect})
		return
	}
	delta, ok := formInt(r, "delta")
	if !ok {
		h.badForm(w, r, "Invalid effect change")
		return
	}
	h.submit(w, r, model.AdjustEffect{Player: player, Effect: effect, Delta: delta})
}

// CommanderDamage adjusts damage dealt to the player by the form's source
func (h *GameHandler) CommanderDamage(w http.ResponseWriter, r *http.Request) {
	delta, ok := formInt(r, "delta")
	if !ok {
		h.badForm(w, r, "Invalid damage change")
		return
	}
	h.submit(w, r, model.AdjustCommanderDamage{
		Source: model.PlayerID(r.FormValue("source")),
		Target: playerFromRequest(r),
		Delta:  delta,
	})
}

// SetColor assigns a palette color, or clears it when empty
func (h *GameHandler) SetColor(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, model.SetColor{Player: playerFromRequest(r), Color: model.Color(r.FormValue("color"))})
}

// Rename changes a player's name
func (h *GameHandler) Rename(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, model.RenamePlayer{Player: playerFromRequest(r), Name: r.FormValue("name")})
}

// RemovePlayer removes a player from the board
func (h *GameHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, model.RemovePlayer{Player: playerFromRequest(r)})
}

// AddPlayer adds a player; a full game is left unchanged
func (h *GameHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, model.AddPlayer{Name: r.FormValue("name")})
}

// Reset restores every player's counters
func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, model.ResetGame{})
}
