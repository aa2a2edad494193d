package drive

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"

	"github.com/TuteMthCD/nightstand/internal/color"
	"github.com/TuteMthCD/nightstand/internal/command"
	"github.com/TuteMthCD/nightstand/internal/pixelbus"
	"github.com/TuteMthCD/nightstand/internal/ws2812"
)

// fakeTransmitter records transmitted pulse trains.
type fakeTransmitter struct {
	mu     sync.Mutex
	trains [][]ws2812.Pulse
	err    error
}

func (f *fakeTransmitter) CounterClock() physic.Frequency { return 80 * physic.MegaHertz }

func (f *fakeTransmitter) Transmit(pulses []ws2812.Pulse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	train := make([]ws2812.Pulse, len(pulses))
	copy(train, pulses)
	f.trains = append(f.trains, train)
	return nil
}

func (f *fakeTransmitter) Close() error { return nil }

func (f *fakeTransmitter) sent() [][]ws2812.Pulse {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.trains
}

func startLoop(t *testing.T, bus *pixelbus.Bus, tx ws2812.Transmitter, pixels int) <-chan error {
	t.Helper()
	l, err := New(bus, tx, pixels, time.Millisecond)
	require.NoError(t, err)
	l.sleep = func(time.Duration) {}

	errCh := make(chan error, 1)
	go func() { errCh <- l.Run() }()
	return errCh
}

func waitTrains(t *testing.T, f *fakeTransmitter, n int) [][]ws2812.Pulse {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if trains := f.sent(); len(trains) >= n {
			return trains
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("transmitter saw %d trains, want %d", len(f.sent()), n)
	return nil
}

func TestRunTransmitsCommand(t *testing.T) {
	bus := pixelbus.New()
	tx := &fakeTransmitter{}
	errCh := startLoop(t, bus, tx, 3)

	require.NoError(t, bus.Send(command.Command{color.New(255, 0, 0)}))
	trains := waitTrains(t, tx, 1)

	// one red pixel padded to the 3-pixel strip
	assert.Len(t, trains[0], ws2812.EncodedLen(3))

	timings, err := ws2812.NewTimings(tx.CounterClock())
	require.NoError(t, err)
	want := ws2812.Encode(timings, []color.RGB{
		color.New(255, 0, 0), {}, {},
	})
	assert.Equal(t, want, trains[0])

	bus.Close()
	requireRunEnds(t, errCh)
}

func TestEmptyCommandGoesBlack(t *testing.T) {
	bus := pixelbus.New()
	tx := &fakeTransmitter{}
	errCh := startLoop(t, bus, tx, 4)

	require.NoError(t, bus.Send(command.Command{}))
	trains := waitTrains(t, tx, 1)

	timings, err := ws2812.NewTimings(tx.CounterClock())
	require.NoError(t, err)
	want := ws2812.Encode(timings, make([]color.RGB, 4))
	assert.Equal(t, want, trains[0])

	bus.Close()
	requireRunEnds(t, errCh)
}

func TestRunEndsWhenBusCloses(t *testing.T) {
	bus := pixelbus.New()
	tx := &fakeTransmitter{}
	errCh := startLoop(t, bus, tx, 2)

	bus.Close()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, pixelbus.ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not end after bus close")
	}
}

func TestRunSurfacesTransmitError(t *testing.T) {
	bus := pixelbus.New()
	boom := errors.New("peripheral gone")
	tx := &fakeTransmitter{err: boom}
	errCh := startLoop(t, bus, tx, 2)

	require.NoError(t, bus.Send(command.Command{color.New(1, 1, 1)}))

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, boom)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not surface the transmit error")
	}
}

func TestNewRejectsBadClock(t *testing.T) {
	bus := pixelbus.New()
	_, err := New(bus, slowClockTransmitter{}, 2, 0)
	require.Error(t, err)
	var te *ws2812.TimingError
	assert.ErrorAs(t, err, &te)
}

type slowClockTransmitter struct{}

func (slowClockTransmitter) CounterClock() physic.Frequency { return physic.Hertz }
func (slowClockTransmitter) Transmit([]ws2812.Pulse) error  { return nil }
func (slowClockTransmitter) Close() error                   { return nil }

func requireRunEnds(t *testing.T, errCh <-chan error) {
	t.Helper()
	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not end")
	}
}
