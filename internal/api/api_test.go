package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/lifeboard/internal/api"
	"github.com/mcoot/lifeboard/internal/api/apierr"
	"github.com/mcoot/lifeboard/internal/api/response"
	"github.com/mcoot/lifeboard/internal/factory"
	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/realtime"
	"github.com/mcoot/lifeboard/internal/storage/document"
	"github.com/mcoot/lifeboard/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Logger:          testutil.NopLogger(),
		LobbyController: app.LobbyController,
		Store:           app.Storage,
		Pinger:          app.Storage,
		StorageType:     factory.StorageTypeMemory,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) createGame(t *testing.T, id, password string) {
	t.Helper()
	body := map[string]string{"id": id, "name": "Friday", "password": password}
	rr := ts.request(http.MethodPost, "/api/v1/games", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func (ts *testServer) getGame(t *testing.T, id string) *model.Game {
	t.Helper()
	rr := ts.request(http.MethodGet, "/api/v1/games/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	return document.Decode(model.GameID(id), rr.Body.Bytes())
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var health response.Health
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "memory", health.Storage)
}

func TestCreateAndGetGame(t *testing.T) {
	ts := newTestServer(t)
	ts.createGame(t, "friday", "")

	game := ts.getGame(t, "friday")
	assert.Equal(t, "Friday", game.Name)
	assert.Empty(t, game.Players)
	assert.Equal(t, testutil.BaseTime, game.CreatedAt)
}

func TestCreateGameAssignsID(t *testing.T) {
	ts := newTestServer(t)
	ts.app.MockRandom.QueueUUID("generated")

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]string{"name": "Friday"})
	require.Equal(t, http.StatusCreated, rr.Code)

	var game model.Game
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &game))
	assert.Equal(t, model.GameID("generated"), game.ID)
	assert.Equal(t, "/api/v1/games/generated", rr.Header().Get("Location"))
}

func TestCreateGameErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.createGame(t, "friday", "")

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]string{"id": "friday"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeGameExists, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/games", map[string]string{"id": "bad/id"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidIntent, errorCode(t, rr))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/games", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, errorCode(t, rec))
}

func TestGetGameNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/games/nonexistent", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeGameNotFound, errorCode(t, rr))
}

func TestListGames(t *testing.T) {
	ts := newTestServer(t)
	ts.createGame(t, "one", "")
	ts.createGame(t, "two", "")

	rr := ts.request(http.MethodGet, "/api/v1/games", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var list response.GameList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list.Games, 2)
}

func TestDeleteGame(t *testing.T) {
	ts := newTestServer(t)
	ts.createGame(t, "friday", "")

	rr := ts.request(http.MethodDelete, "/api/v1/games/friday", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodDelete, "/api/v1/games/friday", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestJoinGame(t *testing.T) {
	ts := newTestServer(t)
	ts.createGame(t, "locked", "hunter2")
	ts.createGame(t, "open", "")

	rr := ts.request(http.MethodPost, "/api/v1/games/locked/join", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodePasswordMismatch, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/games/locked/join", map[string]string{"password": "hunter2"})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/games/open/join", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/games/missing/join", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestJoinGameWithPlayerName(t *testing.T) {
	ts := newTestServer(t)
	ts.createGame(t, "friday", "")
	ts.app.MockRandom.QueueUUID("kaya")

	rr := ts.request(http.MethodPost, "/api/v1/games/friday/join", map[string]string{"playerName": "Kaya"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp response.GameJoined
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "kaya", resp.PlayerID)
	require.NotNil(t, resp.Game)
	assert.Equal(t, 1, resp.Game.PlayerCount())

	g := ts.getGame(t, "friday")
	require.NotNil(t, g.GetPlayer("kaya"))
	assert.Equal(t, "Kaya", g.GetPlayer("kaya").Name)
}

func TestJoinFullGameTakesNoSeat(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.app.Storage.CreateGame(context.Background(), testutil.NewGame("full", "a", "b", "c", "d", "e", "f", "g", "h"))
	require.NoError(t, err)
	before := ts.getGame(t, "full")

	rr := ts.request(http.MethodPost, "/api/v1/games/full/join", map[string]string{"playerName": "Ninth"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp response.GameJoined
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.PlayerID)

	after := ts.getGame(t, "full")
	assert.Equal(t, model.MaxPlayers, after.PlayerCount())
	assert.Equal(t, before.Revision, after.Revision)
}

func TestPatchGame(t *testing.T) {
	ts := newTestServer(t)
	ts.createGame(t, "friday", "")

	player := testutil.NewPlayer("p1", 0)
	rr := ts.request(http.MethodPatch, "/api/v1/games/friday", map[string]any{
		"set": map[string]any{"players.p1": player},
	})
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodPatch, "/api/v1/games/friday", map[string]any{
		"set": map[string]any{
			"players.p1.life":           35,
			"players.p1.effects.poison": 2,
		},
		"delete": []string{"players.p1.color"},
	})
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	game := ts.getGame(t, "friday")
	require.Contains(t, game.Players, model.PlayerID("p1"))
	assert.Equal(t, 35, game.Players["p1"].Life)
	assert.Equal(t, 2, game.Players["p1"].Effects.Counter("poison"))
	assert.Empty(t, game.Players["p1"].Color)
	assert.Equal(t, int64(2), game.Revision)
}

func TestPatchGameErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.createGame(t, "friday", "")

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{
			name:   "empty",
			body:   map[string]any{},
			status: http.StatusBadRequest,
			code:   apierr.CodeInvalidRequest,
		},
		{
			name: "set and delete",
			body: map[string]any{
				"set":    map[string]any{"name": "x"},
				"delete": []string{"name"},
			},
			status: http.StatusBadRequest,
			code:   apierr.CodeInvalidRequest,
		},
		{
			name:   "reserved path",
			body:   map[string]any{"set": map[string]any{"revision": 7}},
			status: http.StatusBadRequest,
			code:   apierr.CodeInvalidPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPatch, "/api/v1/games/friday", tt.body)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.code, errorCode(t, rr))
		})
	}

	rr := ts.request(http.MethodPatch, "/api/v1/games/missing", map[string]any{"set": map[string]any{"name": "x"}})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEventsStreamsSnapshots(t *testing.T) {
	ts := newTestServer(t)
	ts.createGame(t, "friday", "")

	server := httptest.NewServer(ts.handler)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/games/friday/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	revisions := make(chan int64, 8)
	go func() {
		_ = realtime.ReadEvents(resp.Body, func(event, data string) {
			if event == realtime.EventSnapshot {
				revisions <- document.Decode("friday", []byte(data)).Revision
			}
		})
		close(revisions)
	}()

	assert.Equal(t, int64(0), <-revisions)

	rr := ts.request(http.MethodPatch, "/api/v1/games/friday", map[string]any{"set": map[string]any{"name": "Saturday"}})
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, int64(1), <-revisions)

	// Deleting the game closes the stream
	rr = ts.request(http.MethodDelete, "/api/v1/games/friday", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	for range revisions {
	}
}

func TestEventsMissingGame(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/games/missing/events", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeGameNotFound, errorCode(t, rr))
}
