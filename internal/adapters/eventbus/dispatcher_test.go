package eventbus

import (
	"TopicBus/internal/core/ports"
	"TopicBus/internal/metrics"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

// MockHandler is a mock subscriber handler
type MockHandler struct {
	mock.Mock
}

var _ ports.Handler = (*MockHandler)(nil)

func (m *MockHandler) Handle(ctx context.Context, event ports.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// --- Tests ---

func TestDispatcher_Dispatch_FanOut(t *testing.T) {
	nopLogger := zerolog.Nop()
	r := NewRegistry(0, 0)
	d := NewDispatcher(r, nil, &nopLogger)

	sports := ports.Event{Topic: "Sports", Payload: 42, SourceID: "ESPN"}

	bob := new(MockHandler)
	bob.On("Handle", mock.Anything, sports).Return(nil).Once()
	charlie := new(MockHandler)
	charlie.On("Handle", mock.Anything, sports).Return(nil).Once()
	alice := new(MockHandler)

	_, err := r.Register("Bob", "Sports", bob)
	require.NoError(t, err)
	_, err = r.Register("Alice", "Politics", alice)
	require.NoError(t, err)
	_, err = r.Register("Charlie", "Politics", charlie)
	require.NoError(t, err)
	_, err = r.Register("Charlie", "Sports", charlie)
	require.NoError(t, err)

	require.NoError(t, d.Dispatch(context.Background(), sports))

	bob.AssertExpectations(t)
	charlie.AssertExpectations(t)
	charlie.AssertNumberOfCalls(t, "Handle", 1)
	alice.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestDispatcher_Dispatch_RegistrationOrder(t *testing.T) {
	nopLogger := zerolog.Nop()
	r := NewRegistry(0, 0)
	d := NewDispatcher(r, nil, &nopLogger)

	var order []string
	record := func(id string) ports.Handler {
		return ports.EventHandler(func(ctx context.Context, e ports.Event) error {
			order = append(order, id)
			return nil
		})
	}
	for _, id := range []string{"C", "A", "B"} {
		_, err := r.Register(id, "T", record(id))
		require.NoError(t, err)
	}

	require.NoError(t, d.Dispatch(context.Background(), ports.Event{Topic: "T", SourceID: "src"}))
	assert.Equal(t, []string{"C", "A", "B"}, order)
}

func TestDispatcher_Dispatch_NoListeners(t *testing.T) {
	nopLogger := zerolog.Nop()
	r := NewRegistry(0, 0)
	d := NewDispatcher(r, nil, &nopLogger)

	other := new(MockHandler)
	_, err := r.Register("A", "Other", other)
	require.NoError(t, err)

	assert.NoError(t, d.Dispatch(context.Background(), ports.Event{Topic: "Nobody", SourceID: "src"}))
	other.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestDispatcher_Dispatch_ContinuesAfterFailure(t *testing.T) {
	nopLogger := zerolog.Nop()
	m := metrics.New(prometheus.NewRegistry())
	r := NewRegistry(0, 0)
	d := NewDispatcher(r, m, &nopLogger)

	event := ports.Event{Topic: "T", Payload: "x", SourceID: "src"}
	boom := errors.New("boom")

	failing := new(MockHandler)
	failing.On("Handle", mock.Anything, event).Return(boom).Once()
	after := new(MockHandler)
	after.On("Handle", mock.Anything, event).Return(nil).Once()

	_, err := r.Register("failing", "T", failing)
	require.NoError(t, err)
	_, err = r.Register("after", "T", after)
	require.NoError(t, err)

	err = d.Dispatch(context.Background(), event)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var herr *ports.HandlerError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "failing", herr.SubscriberID)
	assert.Equal(t, "T", herr.Topic)

	failing.AssertExpectations(t)
	after.AssertExpectations(t)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Deliveries.WithLabelValues("T")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HandlerFailures.WithLabelValues("T")))
}

func TestDispatcher_Dispatch_JoinsAllFailures(t *testing.T) {
	nopLogger := zerolog.Nop()
	r := NewRegistry(0, 0)
	d := NewDispatcher(r, nil, &nopLogger)

	errA := errors.New("a failed")
	errB := errors.New("b failed")
	_, err := r.Register("A", "T", ports.EventHandler(func(ctx context.Context, e ports.Event) error { return errA }))
	require.NoError(t, err)
	_, err = r.Register("B", "T", ports.EventHandler(func(ctx context.Context, e ports.Event) error { return errB }))
	require.NoError(t, err)

	err = d.Dispatch(context.Background(), ports.Event{Topic: "T", SourceID: "src"})
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestDispatcher_Dispatch_PanicPropagates(t *testing.T) {
	nopLogger := zerolog.Nop()
	r := NewRegistry(0, 0)
	d := NewDispatcher(r, nil, &nopLogger)

	_, err := r.Register("A", "T", ports.EventHandler(func(ctx context.Context, e ports.Event) error {
		panic("handler bug")
	}))
	require.NoError(t, err)

	assert.PanicsWithValue(t, "handler bug", func() {
		_ = d.Dispatch(context.Background(), ports.Event{Topic: "T", SourceID: "src"})
	})
}
