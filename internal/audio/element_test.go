package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestElementStartsSilent: a fresh element has volume 0 until told otherwise.
func TestElementStartsSilent(t *testing.T) {
	e := newPlaybackElement(&nullSink{}, newSilentSeeker(1024), testFormat(), 0)
	assert.Zero(t, e.Volume())
}

// TestElementVolumeClamped writes are clamped to [0, 1].
func TestElementVolumeClamped(t *testing.T) {
	e := newPlaybackElement(&nullSink{}, newSilentSeeker(1024), testFormat(), 0)

	e.SetVolume(0.7)
	assert.Equal(t, 0.7, e.Volume())

	e.SetVolume(1.5)
	assert.Equal(t, 1.0, e.Volume())

	e.SetVolume(-0.5)
	assert.Equal(t, 0.0, e.Volume())
}

// TestElementPanClamped writes are clamped to [-1, +1].
func TestElementPanClamped(t *testing.T) {
	e := newPlaybackElement(&nullSink{}, newSilentSeeker(1024), testFormat(), 2.0)
	assert.Equal(t, 1.0, e.Pan())

	e.SetPan(-3.0)
	assert.Equal(t, -1.0, e.Pan())

	e.SetPan(0.5)
	assert.Equal(t, 0.5, e.Pan())
}

// TestElementPlayStop: playing registers the chain with the sink once and
// toggles the pause control.
func TestElementPlayStop(t *testing.T) {
	sink := &nullSink{}
	e := newPlaybackElement(sink, newSilentSeeker(1024), testFormat(), 0)

	e.Play()
	require.Len(t, sink.played, 1)
	assert.False(t, e.ctrl.Paused)

	e.Stop()
	assert.True(t, e.ctrl.Paused)

	// Resuming must not register a second chain.
	e.Play()
	assert.Len(t, sink.played, 1)
	assert.False(t, e.ctrl.Paused)
}

// TestElementSetRateIsNoOp: rate writes are accepted and ignored.
func TestElementSetRateIsNoOp(t *testing.T) {
	e := newPlaybackElement(&nullSink{}, newSilentSeeker(1024), testFormat(), 0)
	e.SetVolume(0.4)

	e.SetRate(1.2)
	assert.Equal(t, 0.4, e.Volume())
	assert.False(t, e.closed)
}

// TestElementCloseIdempotent releases the source exactly once.
func TestElementCloseIdempotent(t *testing.T) {
	src := newSilentSeeker(1024)
	e := newPlaybackElement(&nullSink{}, src, testFormat(), 0)

	e.Close()
	assert.True(t, src.closed)
	assert.True(t, e.closed)

	e.Close()
	e.Play() // closed elements stay stopped
	assert.True(t, e.ctrl.Paused)
}

// TestDecodeFileUnsupported rejects unknown extensions.
func TestDecodeFileUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sound.txt")
	require.NoError(t, os.WriteFile(path, []byte("not audio"), 0o644))

	_, _, err := decodeFile(path)
	assert.ErrorContains(t, err, "unsupported audio format")
}
