package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/lifeboard/internal/testutil"
)

func newRouter(t *testing.T, h http.HandlerFunc) (*mux.Router, *testutil.LogBuffer) {
	t.Helper()
	logger, logs := testutil.CaptureLogger()
	r := mux.NewRouter()
	r.Use(Recovery(logger, PlainPanicHandler))
	r.Use(Logging(logger))
	r.HandleFunc("/games/{id}/players/{player}", h)
	r.HandleFunc("/plain", h)
	return r, logs
}

func TestLoggingRecordsRoute(t *testing.T) {
	r, logs := newRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/games/friday/players/p1", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
	out := logs.String()
	assert.Contains(t, out, `"msg":"http request"`)
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"size":15`)
	assert.Contains(t, out, `"game_id":"friday"`)
	assert.Contains(t, out, `"player_id":"p1"`)
}

func TestLoggingWithoutRouteVars(t *testing.T) {
	r, logs := newRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/plain", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, logs.String(), `"status":200`)
	assert.NotContains(t, logs.String(), "game_id")
}

func TestLoggingEventStream(t *testing.T) {
	r, logs := newRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event: snapshot\ndata: {}\n\n"))
		w.(http.Flusher).Flush()
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/games/friday/players/p1", nil))

	assert.True(t, rr.Flushed)
	assert.Contains(t, logs.String(), `"msg":"event stream closed"`)
}

func TestRecoveryWritesError(t *testing.T) {
	r, logs := newRouter(t, func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/games/friday/players/p1", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	out := logs.String()
	assert.Contains(t, out, `"msg":"panic recovered"`)
	assert.Contains(t, out, `"response_started":false`)
	assert.Contains(t, out, `"game_id":"friday"`)
}

func TestRecoveryKeepsStartedResponse(t *testing.T) {
	r, logs := newRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		panic("late")
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/plain", nil))

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Empty(t, rr.Body.String())
	assert.Contains(t, logs.String(), `"response_started":true`)
}

func TestRecoveryPassesAbortThrough(t *testing.T) {
	r, _ := newRouter(t, func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	})

	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plain", nil))
	})
}
