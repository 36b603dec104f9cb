package factory

import (
	"io"
	"log/slog"

	"github.com/mcoot/lifeboard/internal/dependencies/mocks"
	"github.com/mcoot/lifeboard/internal/services/gesture"
	"github.com/mcoot/lifeboard/internal/storage/memory"
	"github.com/mcoot/lifeboard/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	mockClock := mocks.NewMockClock(testutil.BaseTime)
	mockRandom := mocks.NewMockRandom()
	store := memory.New(mockRandom, logger)

	app := newWithDependencies(store, mockClock, mockRandom, gesture.DefaultConfig(), logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
