package factory

import (
	"github.com/mcoot/turntimer/internal/dependencies/mocks"
	"github.com/mcoot/turntimer/internal/events"
	"github.com/mcoot/turntimer/internal/model"
	"github.com/mcoot/turntimer/internal/storage/memory"
	"github.com/mcoot/turntimer/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Events     *mocks.RecordingPublisher
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp(sinks ...events.Publisher) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(testutil.Epoch)
	mockRandom := mocks.NewMockRandom()
	recorder := mocks.NewRecordingPublisher()

	app := newWithDependencies(store, mockClock, mockRandom, model.DefaultGraceDelay, testutil.NopLogger(),
		append([]events.Publisher{recorder}, sinks...)...)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Events:     recorder,
	}
}
