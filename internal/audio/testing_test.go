package audio

import (
	"sync"

	"github.com/gopxl/beep"
)

// nullSink satisfies Sink without opening an audio device. The graphs under
// test are assembled and inspected; nothing pulls them unless a test does.
type nullSink struct {
	mu      sync.Mutex
	started bool
	played  []beep.Streamer
}

func (s *nullSink) Start(beep.SampleRate) error {
	s.started = true
	return nil
}

func (s *nullSink) Play(streamer beep.Streamer) {
	s.played = append(s.played, streamer)
}

func (s *nullSink) Clear() {
	s.played = nil
}

func (s *nullSink) Lock()   { s.mu.Lock() }
func (s *nullSink) Unlock() { s.mu.Unlock() }

// silentSeeker is an in-memory silent source implementing
// beep.StreamSeekCloser, standing in for a decoded file.
type silentSeeker struct {
	length int
	pos    int
	closed bool
}

func newSilentSeeker(length int) *silentSeeker {
	return &silentSeeker{length: length}
}

func (s *silentSeeker) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= s.length {
		return 0, false
	}
	n := len(samples)
	if remaining := s.length - s.pos; n > remaining {
		n = remaining
	}
	for i := 0; i < n; i++ {
		samples[i] = [2]float64{}
	}
	s.pos += n
	return n, true
}

func (s *silentSeeker) Err() error { return nil }

func (s *silentSeeker) Len() int { return s.length }

func (s *silentSeeker) Position() int { return s.pos }

func (s *silentSeeker) Seek(p int) error {
	s.pos = p
	return nil
}

func (s *silentSeeker) Close() error {
	s.closed = true
	return nil
}

// countingSource emits an endless ramp (0, 1, 2, ...) in both channels, so
// tests can check alignment across tee branches.
type countingSource struct {
	next float64
}

func (c *countingSource) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i][0] = c.next
		samples[i][1] = c.next
		c.next++
	}
	return len(samples), true
}

func (c *countingSource) Err() error { return nil }

func testFormat() beep.Format {
	return beep.Format{SampleRate: engineSampleRate, NumChannels: 2, Precision: 2}
}
