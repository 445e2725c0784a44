package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// engineSampleRate is the rate the whole graph runs at; sources at other
// rates are resampled on decode.
const engineSampleRate beep.SampleRate = 44100

// decodeFile opens an audio file and picks the decoder from its extension.
func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg":
		return vorbis.Decode(f)
	case ".wav":
		return wav.Decode(f)
	case ".flac":
		return flac.Decode(f)
	case ".mp3":
		return mp3.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("unsupported audio format: %s", path)
	}
}

// PlaybackElement is one looping source with volume and pan controls:
// decode → loop → resample → gain → pan → pause control. Volume starts at 0
// so a freshly loaded channel is silent until the first metric update.
type PlaybackElement struct {
	sink   Sink
	source beep.StreamSeekCloser

	gain    *effects.Gain
	panNode *effects.Pan
	ctrl    *beep.Ctrl

	volume  float64
	pan     float64
	started bool
	closed  bool
}

// NewPlaybackElement builds an element for the given audio file. pan is
// clamped to [-1, +1].
func NewPlaybackElement(sink Sink, path string, pan float64) (*PlaybackElement, error) {
	source, format, err := decodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("playback element %s: %w", path, err)
	}
	return newPlaybackElement(sink, source, format, pan), nil
}

// newPlaybackElement assembles the chain around an already-decoded source.
func newPlaybackElement(sink Sink, source beep.StreamSeekCloser, format beep.Format, pan float64) *PlaybackElement {
	// Loop seeks back to zero on end of stream, so playback is seamless.
	var stream beep.Streamer = beep.Loop(-1, source)
	if format.SampleRate != 0 && format.SampleRate != engineSampleRate {
		stream = beep.Resample(4, format.SampleRate, engineSampleRate, stream)
	}

	gain := &effects.Gain{Streamer: stream, Gain: -1.0} // linear volume 0
	panNode := &effects.Pan{Streamer: gain, Pan: clampRange(pan, -1, 1)}
	ctrl := &beep.Ctrl{Streamer: panNode, Paused: true}

	return &PlaybackElement{
		sink:    sink,
		source:  source,
		gain:    gain,
		panNode: panNode,
		ctrl:    ctrl,
		pan:     clampRange(pan, -1, 1),
	}
}

// Play starts (or resumes) playback.
func (e *PlaybackElement) Play() {
	if e.closed {
		return
	}
	if !e.started {
		e.sink.Play(e.ctrl)
		e.started = true
	}
	e.sink.Lock()
	e.ctrl.Paused = false
	e.sink.Unlock()
}

// Stop pauses playback; the element keeps its position and settings.
func (e *PlaybackElement) Stop() {
	if e.closed {
		return
	}
	e.sink.Lock()
	e.ctrl.Paused = true
	e.sink.Unlock()
}

// SetVolume sets the linear volume, clamped to [0, 1].
func (e *PlaybackElement) SetVolume(volume float64) {
	v := clampRange(volume, 0, 1)
	e.sink.Lock()
	e.gain.Gain = v - 1.0
	e.sink.Unlock()
	e.volume = v
}

// Volume returns the last volume written.
func (e *PlaybackElement) Volume() float64 {
	return e.volume
}

// SetPan sets the stereo position, clamped to [-1, +1].
func (e *PlaybackElement) SetPan(pan float64) {
	p := clampRange(pan, -1, 1)
	e.sink.Lock()
	e.panNode.Pan = p
	e.sink.Unlock()
	e.pan = p
}

// Pan returns the last pan written.
func (e *PlaybackElement) Pan() float64 {
	return e.pan
}

// SetRate is accepted and ignored. Rate-seeking a looped decoder produces
// audible artifacts; pitch changes are PitchNode's job.
func (e *PlaybackElement) SetRate(rate float64) {
	_ = rate
}

// Close stops the element and releases the decoder. Idempotent.
func (e *PlaybackElement) Close() {
	if e.closed {
		return
	}
	e.Stop()
	e.closed = true
	if e.source != nil {
		e.source.Close()
	}
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
