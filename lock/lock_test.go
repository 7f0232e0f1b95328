package lock

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocker struct {
	name      string
	available bool
	err       error
	calls     atomic.Int32
	block     chan struct{}
}

func (f *fakeLocker) Name() string    { return f.name }
func (f *fakeLocker) Available() bool { return f.available }
func (f *fakeLocker) Lock(ctx context.Context) error {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

func TestDispatcherSelect(t *testing.T) {
	t.Parallel()

	priv := &fakeLocker{name: "priv", available: true}
	fb := &fakeLocker{name: "fallback", available: true}

	t.Run("privileged first", func(t *testing.T) {
		t.Parallel()
		d := &Dispatcher{Privileged: priv, Fallback: fb}
		l, err := d.Select()
		require.NoError(t, err)
		assert.Equal(t, "priv", l.Name())
	})

	t.Run("fallback when privilege missing", func(t *testing.T) {
		t.Parallel()
		d := &Dispatcher{Privileged: &fakeLocker{name: "priv"}, Fallback: fb}
		l, err := d.Select()
		require.NoError(t, err)
		assert.Equal(t, "fallback", l.Name())
	})

	t.Run("nothing available", func(t *testing.T) {
		t.Parallel()
		d := &Dispatcher{Fallback: &fakeLocker{name: "fallback"}}
		_, err := d.Select()
		assert.ErrorIs(t, err, ErrNoLocker)
		assert.ErrorIs(t, d.Lock(context.Background()), ErrNoLocker)
	})
}

func TestDispatcherLockPropagatesError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	priv := &fakeLocker{name: "priv", available: true, err: boom}
	d := &Dispatcher{Privileged: priv}

	assert.ErrorIs(t, d.Lock(context.Background()), boom)
	assert.EqualValues(t, 1, priv.calls.Load())
}

func TestDispatcherDropsWhileBusy(t *testing.T) {
	t.Parallel()
	priv := &fakeLocker{name: "priv", available: true, block: make(chan struct{})}
	d := &Dispatcher{Privileged: priv}

	require.True(t, d.Dispatch(context.Background()))
	assert.Eventually(t, func() bool { return priv.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, d.Busy())
	assert.False(t, d.Dispatch(context.Background()))

	close(priv.block)
	assert.Eventually(t, func() bool { return !d.Busy() }, time.Second, 5*time.Millisecond)
	assert.True(t, d.Dispatch(context.Background()))
	assert.Eventually(t, func() bool { return priv.calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestTerminalLocker(t *testing.T) {
	t.Parallel()

	t.Run("unlocks on phrase", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		tl := &TerminalLocker{In: strings.NewReader("let me in\n  open sesame \n"), Out: &out, Phrase: "open sesame"}
		require.True(t, tl.Available())
		require.NoError(t, tl.Lock(context.Background()))
		assert.Contains(t, out.String(), "LOCKED")
		assert.True(t, strings.HasSuffix(out.String(), showCur+altOff))
	})

	t.Run("default phrase", func(t *testing.T) {
		t.Parallel()
		tl := &TerminalLocker{In: strings.NewReader("unlock\n"), Out: io.Discard}
		assert.NoError(t, tl.Lock(context.Background()))
	})

	t.Run("input ends", func(t *testing.T) {
		t.Parallel()
		tl := &TerminalLocker{In: strings.NewReader("nope\n"), Out: io.Discard}
		assert.ErrorIs(t, tl.Lock(context.Background()), io.ErrUnexpectedEOF)
	})

	t.Run("context cancelled", func(t *testing.T) {
		t.Parallel()
		r, w := io.Pipe()
		defer w.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		tl := &TerminalLocker{In: r, Out: io.Discard}
		assert.ErrorIs(t, tl.Lock(ctx), context.DeadlineExceeded)
	})

	t.Run("needs a terminal", func(t *testing.T) {
		t.Parallel()
		assert.False(t, (&TerminalLocker{}).Available())
	})
}

func TestCommandLocker(t *testing.T) {
	t.Parallel()

	assert.False(t, (&CommandLocker{}).Available())
	assert.False(t, (&CommandLocker{Argv: []string{"definitely-not-a-locker-binary"}}).Available())

	ok := &CommandLocker{Argv: []string{"true"}}
	if !ok.Available() {
		t.Skip("true not on PATH")
	}
	assert.Equal(t, "true", ok.Name())
	assert.NoError(t, ok.Lock(context.Background()))

	bad := &CommandLocker{Argv: []string{"false"}}
	assert.Error(t, bad.Lock(context.Background()))
	assert.ErrorIs(t, (&CommandLocker{}).Lock(context.Background()), ErrNoLocker)
}
