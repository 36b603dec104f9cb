package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/lifeboard/internal/api"
	"github.com/mcoot/lifeboard/internal/cli"
	"github.com/mcoot/lifeboard/internal/factory"
	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/storage"
	"github.com/mcoot/lifeboard/internal/testutil"
	"github.com/mcoot/lifeboard/internal/web"
)

// syncBuffer is a bytes.Buffer safe for a command writing while the test reads
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// cliRunner runs the CLI in-process against a server.
// Commands share package state, so runs must not overlap.
type cliRunner struct {
	serverURL string
	joinFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()
	return &cliRunner{
		serverURL: serverURL,
		joinFile:  filepath.Join(t.TempDir(), "joined.json"),
	}
}

func (r *cliRunner) runTo(stdout *syncBuffer, args ...string) error {
	cmd := cli.NewRootCmd()
	cmd.SetOut(stdout)
	cmd.SetErr(&syncBuffer{})
	cmd.SetArgs(append([]string{
		"--server", r.serverURL,
		"--join-file", r.joinFile,
		"--output", "json",
		"--timeout", "5s",
	}, args...))
	return cmd.ExecuteContext(context.Background())
}

func (r *cliRunner) run(args ...string) (string, error) {
	var stdout syncBuffer
	err := r.runTo(&stdout, args...)
	return stdout.String(), err
}

// runGame runs a command that prints a game and decodes it
func (r *cliRunner) runGame(t *testing.T, args ...string) *model.Game {
	t.Helper()
	output, err := r.run(args...)
	require.NoError(t, err, "command %v failed: %s", args, output)

	var g model.Game
	require.NoError(t, json.Unmarshal([]byte(output), &g), "output: %s", output)
	return &g
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	app      *factory.App
	url      string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	logger := testutil.NopLogger()
	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)

	router := mux.NewRouter()
	api.Register(router, api.RouterConfig{
		Logger:          logger,
		LobbyController: app.LobbyController,
		Store:           app.Storage,
		Pinger:          app.Storage,
		StorageType:     app.StorageType,
	})
	web.Register(router, web.RouterConfig{
		Logger:            logger,
		LobbyController:   app.LobbyController,
		Store:             app.Storage,
		Policy:            app.Policy,
		NewGameController: app.NewGameController,
	})

	serverCfg := api.DefaultServerConfig()
	serverCfg.Host = "127.0.0.1"
	serverCfg.Port = port
	serverCfg.ShutdownTimeout = 5 * time.Second
	server := api.NewServer(router, serverCfg, logger)

	go func() {
		if err := server.Start(); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + server.Addr()
	waitForServer(t, serverURL+"/api/v1/health")

	ts := &testServer{
		app: app,
		url: serverURL,
		shutdown: func() {
			_ = server.Shutdown(context.Background())
			_ = app.Close()
		},
	}
	t.Cleanup(ts.shutdown)
	return ts
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("server at %s did not become ready", url)
}

func playerByName(t *testing.T, g *model.Game, name string) *model.Player {
	t.Helper()
	for _, p := range g.Players {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("no player named %q in %v", name, g.Players)
	return nil
}

func TestCLIHealth(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(t, ts.url)

	output, err := runner.run("health")
	require.NoError(t, err)

	var health map[string]string
	require.NoError(t, json.Unmarshal([]byte(output), &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "memory", health["storage"])
}

func TestCLIHealthUnreachable(t *testing.T) {
	runner := newCLIRunner(t, "http://127.0.0.1:1")

	_, err := runner.run("health")
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
}

func TestCLIGameLifecycle(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(t, ts.url)

	created := runner.runGame(t, "games", "create", "--id", "friday", "--name", "Friday")
	assert.Equal(t, model.GameID("friday"), created.ID)
	assert.Empty(t, created.Players)

	output, err := runner.run("games", "list")
	require.NoError(t, err)
	var games []*model.Game
	require.NoError(t, json.Unmarshal([]byte(output), &games))
	require.Len(t, games, 1)
	assert.Equal(t, "Friday", games[0].Name)

	g := runner.runGame(t, "player", "add", "friday", "--name", "Alice")
	g = runner.runGame(t, "player", "add", "friday", "--name", "Bob")
	require.Len(t, g.Players, 2)
	alice := playerByName(t, g, "Alice")
	bob := playerByName(t, g, "Bob")
	assert.Equal(t, model.ColorRed, alice.Color)
	assert.Equal(t, model.ColorOrange, bob.Color)

	g = runner.runGame(t, "life", "friday", string(alice.ID), "--delta", "-5")
	assert.Equal(t, 35, g.Players[alice.ID].Life)

	g = runner.runGame(t, "effect", "adjust", "friday", string(alice.ID), "poison", "--delta", "3")
	assert.Equal(t, 3, g.Players[alice.ID].Effects.Counter("poison"))

	g = runner.runGame(t, "effect", "toggle", "friday", string(bob.ID), "monarch")
	assert.True(t, g.Players[bob.ID].Effects.Flag("monarch"))

	g = runner.runGame(t, "damage", "friday", string(alice.ID), string(bob.ID), "--delta", "6")
	assert.Equal(t, 6, g.Players[bob.ID].CommanderDamage[alice.ID])
	assert.Equal(t, 0, g.Players[alice.ID].CommanderDamage[bob.ID])

	g = runner.runGame(t, "player", "color", "friday", string(bob.ID), "teal")
	assert.Equal(t, model.ColorTeal, g.Players[bob.ID].Color)

	g = runner.runGame(t, "player", "rename", "friday", string(bob.ID), "Bobby", "Tables")
	assert.Equal(t, "Bobby Tables", g.Players[bob.ID].Name)

	g = runner.runGame(t, "reset", "friday")
	assert.Equal(t, 40, g.Players[alice.ID].Life)
	assert.Equal(t, 0, g.Players[alice.ID].Effects.Counter("poison"))
	assert.False(t, g.Players[bob.ID].Effects.Flag("monarch"))
	assert.Equal(t, "Bobby Tables", g.Players[bob.ID].Name)

	g = runner.runGame(t, "player", "remove", "friday", string(bob.ID))
	assert.NotContains(t, g.Players, bob.ID)

	_, err = runner.run("games", "delete", "friday")
	require.NoError(t, err)

	_, err = runner.run("games", "show", "friday")
	assert.ErrorIs(t, err, model.ErrGameNotFound)
}

func TestCLIRejectedIntents(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(t, ts.url)

	runner.runGame(t, "games", "create", "--id", "friday")
	g := runner.runGame(t, "player", "add", "friday")
	g = runner.runGame(t, "player", "add", "friday")
	players := g.OrderedPlayers()
	require.Len(t, players, 2)

	_, err := runner.run("player", "color", "friday", string(players[1].ID), "red")
	assert.ErrorIs(t, err, model.ErrColorTaken)

	_, err = runner.run("effect", "adjust", "friday", string(players[0].ID), "monarch", "--delta", "1")
	assert.ErrorIs(t, err, model.ErrEffectKind)

	_, err = runner.run("effect", "toggle", "friday", string(players[0].ID), "hexproof")
	assert.ErrorIs(t, err, model.ErrUnknownEffect)

	_, err = runner.run("damage", "friday", string(players[0].ID), string(players[0].ID), "--delta", "1")
	assert.ErrorIs(t, err, model.ErrInvalidIntent)

	_, err = runner.run("life", "friday", "ghost", "--delta", "1")
	assert.ErrorIs(t, err, model.ErrPlayerNotFound)
}

func TestCLIAddPlayerToFullGameIsIgnored(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(t, ts.url)

	runner.runGame(t, "games", "create", "--id", "friday")
	for i := 0; i < model.MaxPlayers; i++ {
		runner.runGame(t, "player", "add", "friday")
	}

	g := runner.runGame(t, "player", "add", "friday", "--name", "Late")
	assert.Len(t, g.Players, model.MaxPlayers)

	colors := make(map[model.Color]bool)
	for _, p := range g.Players {
		colors[p.Color] = true
	}
	assert.Len(t, colors, model.MaxPlayers)
}

func TestCLIPress(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(t, ts.url)

	runner.runGame(t, "games", "create", "--id", "friday")
	g := runner.runGame(t, "player", "add", "friday")
	id := string(g.OrderedPlayers()[0].ID)

	g = runner.runGame(t, "press", "friday", id, "life-down")
	assert.Equal(t, 39, g.Players[model.PlayerID(id)].Life)

	g = runner.runGame(t, "press", "friday", id, "poison-up", "--hold")
	assert.Equal(t, 10, g.Players[model.PlayerID(id)].Effects.Counter("poison"))

	_, err := runner.run("press", "friday", id, "elbow")
	assert.Error(t, err)
}

func TestCLIPasswordJoin(t *testing.T) {
	ts := startTestServer(t)
	owner := newCLIRunner(t, ts.url)
	guest := newCLIRunner(t, ts.url)

	// The creator is joined automatically
	owner.runGame(t, "games", "create", "--id", "locked", "--password", "hunter2")
	owner.runGame(t, "player", "add", "locked")

	_, err := guest.run("player", "add", "locked")
	assert.ErrorIs(t, err, model.ErrPasswordMismatch)

	_, err = guest.run("join", "locked", "--password", "wrong")
	assert.ErrorIs(t, err, model.ErrPasswordMismatch)

	g := guest.runGame(t, "join", "locked", "--password", "hunter2")
	assert.Len(t, g.Players, 1)

	g = guest.runGame(t, "join", "locked", "--password", "hunter2", "--name", "Guest")
	require.Len(t, g.Players, 2)
	assert.Equal(t, "Guest", g.OrderedPlayers()[1].Name)

	g = guest.runGame(t, "player", "add", "locked")
	assert.Len(t, g.Players, 3)
}

func TestCLIWatch(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(t, ts.url)

	runner.runGame(t, "games", "create", "--id", "friday")
	g := runner.runGame(t, "player", "add", "friday")
	id := g.OrderedPlayers()[0].ID

	var stdout syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- runner.runTo(&stdout, "watch", "friday", "--count", "2")
	}()

	// First board arrives on subscribe
	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), `"revision"`)
	}, 5*time.Second, 20*time.Millisecond)

	// Change the game directly on the server while the CLI watches
	err := ts.app.Storage.ApplyPathUpdates(context.Background(), "friday",
		storage.Updates{}.Set(storage.JoinPath("players", string(id), "life"), 21))
	require.NoError(t, err)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not exit")
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)

	var last model.Game
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &last))
	assert.Equal(t, 21, last.Players[id].Life)
}

func TestCLIWatchEndsWhenGameDeleted(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(t, ts.url)

	runner.runGame(t, "games", "create", "--id", "friday")

	var stdout syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- runner.runTo(&stdout, "watch", "friday")
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), `"revision"`)
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, ts.app.Storage.DeleteGame(context.Background(), "friday"))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not exit")
	}
	assert.Contains(t, stdout.String(), "was deleted")
}
