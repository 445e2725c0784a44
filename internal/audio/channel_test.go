package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"charm/internal/pack"
)

// newTestChannel assembles a channel around in-memory silent sources.
func newTestChannel(mode pack.SoundMode, slideInterval int, fluctuation, withSecondary bool) *AudioChannel {
	sink := &nullSink{}
	primary := newPlaybackElement(sink, newSilentSeeker(int(engineSampleRate)), testFormat(), 0)
	var secondary *PlaybackElement
	if withSecondary {
		secondary = newPlaybackElement(sink, newSilentSeeker(int(engineSampleRate)), testFormat(), 0)
	}

	return &AudioChannel{
		mode:                 mode,
		primary:              primary,
		secondary:            secondary,
		transitionSpeed:      transitionSpeed(slideInterval),
		frequencyFluctuation: fluctuation,
		masterVolume:         1.0,
	}
}

// TestChannelVolumeModeTracksMetric: with the fastest slide the volume
// reaches the target in one update.
func TestChannelVolumeModeTracksMetric(t *testing.T) {
	ch := newTestChannel(pack.SoundModeVolume, 1, false, false)

	ch.Update(1.0)
	assert.InDelta(t, 1.0, ch.primary.Volume(), 1e-9)

	ch.Update(0.25)
	assert.InDelta(t, 0.25, ch.primary.Volume(), 1e-9)
}

// TestChannelVolumeConvergence: a held target is approached within ten
// ticks even at slower slides.
func TestChannelVolumeConvergence(t *testing.T) {
	ch := newTestChannel(pack.SoundModeVolume, 2, false, false)

	for i := 0; i < 10; i++ {
		ch.Update(1.0)
	}
	assert.GreaterOrEqual(t, ch.primary.Volume(), 0.99)

	for i := 0; i < 10; i++ {
		ch.Update(0.0)
	}
	assert.LessOrEqual(t, ch.primary.Volume(), 0.01)
}

// TestChannelFadeCrossfade: metric 0 plays the idle sound at full volume;
// metric 1 hands over to the active sound.
func TestChannelFadeCrossfade(t *testing.T) {
	ch := newTestChannel(pack.SoundModeFade, 1, false, true)

	ch.Update(0.0)
	assert.InDelta(t, 1.0, ch.primary.Volume(), 1e-9)
	assert.InDelta(t, 0.0, ch.secondary.Volume(), 1e-9)

	for i := 0; i < 10; i++ {
		ch.Update(1.0)
	}
	assert.LessOrEqual(t, ch.primary.Volume(), 0.01)
	assert.GreaterOrEqual(t, ch.secondary.Volume(), 0.99)
}

// TestChannelFadeRespectsMasterVolume scales both sides of the crossfade.
func TestChannelFadeRespectsMasterVolume(t *testing.T) {
	ch := newTestChannel(pack.SoundModeFade, 1, false, true)
	ch.SetMasterVolume(0.5)

	ch.Update(1.0)
	assert.InDelta(t, 0.0, ch.primary.Volume(), 1e-9)
	assert.InDelta(t, 0.5, ch.secondary.Volume(), 1e-9)
}

// TestChannelDisabledWritesNothing: a disabled channel never touches its
// elements.
func TestChannelDisabledWritesNothing(t *testing.T) {
	ch := newTestChannel(pack.SoundModeDisabled, 1, false, false)

	ch.Update(1.0)
	ch.Update(1.0)
	assert.Zero(t, ch.primary.Volume())
}

// TestChannelClampsTarget: out-of-range targets are clamped before
// smoothing.
func TestChannelClampsTarget(t *testing.T) {
	ch := newTestChannel(pack.SoundModeVolume, 1, false, false)

	ch.Update(5.0)
	assert.InDelta(t, 1.0, ch.primary.Volume(), 1e-9)

	ch.Update(-3.0)
	assert.InDelta(t, 0.0, ch.primary.Volume(), 1e-9)
}

// TestChannelReset: reset rewinds the smoother so a restart ramps from
// silence.
func TestChannelReset(t *testing.T) {
	ch := newTestChannel(pack.SoundModeVolume, 1, false, false)

	ch.Update(1.0)
	require.InDelta(t, 1.0, ch.currentValue, 1e-9)

	ch.Reset()
	assert.Zero(t, ch.currentValue)
}

// TestChannelSmootherMonotoneApproach: for any slide interval and held
// target, the error shrinks geometrically and never overshoots.
func TestChannelSmootherMonotoneApproach(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		slide := rapid.IntRange(1, 100).Draw(t, "slide")
		target := rapid.Float64Range(0, 1).Draw(t, "target")

		ch := newTestChannel(pack.SoundModeVolume, slide, false, false)

		prevErr := math.Abs(target - ch.currentValue)
		for k := 0; k < 50; k++ {
			ch.Update(target)
			err := math.Abs(target - ch.currentValue)
			if err > prevErr+1e-12 {
				t.Fatalf("error grew at step %d: %v -> %v", k, prevErr, err)
			}
			prevErr = err
		}
	})
}

// TestChannelIsEnabled requires a mode and a primary sound.
func TestChannelIsEnabled(t *testing.T) {
	assert.True(t, newTestChannel(pack.SoundModeVolume, 1, false, false).IsEnabled())
	assert.False(t, newTestChannel(pack.SoundModeDisabled, 1, false, false).IsEnabled())

	empty := &AudioChannel{mode: pack.SoundModeVolume, transitionSpeed: 1, masterVolume: 1}
	assert.False(t, empty.IsEnabled())
	empty.Update(1.0) // must not panic without elements
}
