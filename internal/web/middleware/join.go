package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/services/lobby"
)

type contextKey string

const (
	gameContextKey   contextKey = "game"
	joinCookiePrefix            = "join_"
)

// GetGame retrieves the joined game from the request context.
// Returns nil outside JoinGate.
func GetGame(ctx context.Context) *model.Game {
	game, _ := ctx.Value(gameContextKey).(*model.Game)
	return game
}

func joinCookieName(id model.GameID) string {
	return joinCookiePrefix + url.QueryEscape(string(id))
}

// SetJoined remembers the secret the browser joined id with
func SetJoined(w http.ResponseWriter, id model.GameID, password string) {
	http.SetCookie(w, &http.Cookie{
		Name:     joinCookieName(id),
		Value:    url.QueryEscape(password),
		Path:     "/games/" + url.PathEscape(string(id)),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func joinedPassword(r *http.Request, id model.GameID) string {
	cookie, err := r.Cookie(joinCookieName(id))
	if err != nil {
		return ""
	}
	password, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return password
}

// JoinGate admits requests for /games/{id} only when the browser holds the game's
// secret. Open games admit everyone. The game is placed in the request context.
func JoinGate(lobbyController *lobby.Controller, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := model.GameID(mux.Vars(r)["id"])

			joined, err := lobbyController.JoinGame(r.Context(), id, lobby.JoinOptions{Password: joinedPassword(r, id)})
			switch {
			case errors.Is(err, model.ErrGameNotFound):
				SetFlash(w, "error", "Game not found")
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			case errors.Is(err, model.ErrPasswordMismatch):
				SetFlash(w, "error", "Enter the game password to join")
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			case err != nil:
				logger.Error("join check failed",
					slog.String("game_id", string(id)),
					slog.String("error", err.Error()),
				)
				http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
				return
			}

			ctx := context.WithValue(r.Context(), gameContextKey, joined.Game)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
