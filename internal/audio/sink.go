package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Sink is where assembled channel graphs play. The engine only needs to
// start the output, hand over streamers, clear them, and serialize property
// writes against the output goroutine; abstracting that keeps the graph
// logic testable without opening an audio device.
type Sink interface {
	// Start opens the output at the given sample rate. Safe to call more
	// than once; only the first call initializes the device.
	Start(sampleRate beep.SampleRate) error
	// Play adds a streamer to the output mix.
	Play(s beep.Streamer)
	// Clear drops every playing streamer.
	Clear()
	// Lock/Unlock guard property writes on streamers the output is pulling.
	Lock()
	Unlock()
}

var (
	speakerOnce    sync.Once
	speakerInitErr error
)

// SpeakerSink plays through the process-wide beep speaker. The speaker owns
// the device and its output goroutine; initialization happens exactly once
// per process no matter how many engines are constructed.
type SpeakerSink struct{}

// NewSpeakerSink returns the speaker-backed sink.
func NewSpeakerSink() *SpeakerSink {
	return &SpeakerSink{}
}

// Start initializes the speaker with a 100 ms buffer on first call.
func (s *SpeakerSink) Start(sampleRate beep.SampleRate) error {
	speakerOnce.Do(func() {
		speakerInitErr = speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	})
	return speakerInitErr
}

// Play adds a streamer to the speaker mix.
func (s *SpeakerSink) Play(streamer beep.Streamer) {
	speaker.Play(streamer)
}

// Clear drops all playing streamers.
func (s *SpeakerSink) Clear() {
	speaker.Clear()
}

// Lock pauses the speaker's pull loop for a property write.
func (s *SpeakerSink) Lock() {
	speaker.Lock()
}

// Unlock resumes the speaker's pull loop.
func (s *SpeakerSink) Unlock() {
	speaker.Unlock()
}
