package audio

import (
	"fmt"
	"math"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// coreBranch is one core's slice of the per-core graph.
type coreBranch struct {
	pitch   *PitchNode
	gain    *effects.Gain
	panNode *effects.Pan
}

// PerCoreCpuPlayer plays one source through N panned, pitched branches, one
// per CPU core, summed into a single output. A single decoded source feeds
// every branch through a lockstep tee, so the branches can never drift out
// of alignment — core 0 hard left and core N-1 hard right always carry the
// same instant of the loop.
type PerCoreCpuPlayer struct {
	sink   Sink
	source beep.StreamSeekCloser
	ctrl   *beep.Ctrl

	branches     []coreBranch
	panPositions []float64
	branchVols   []float64

	currentValues        []float64
	transitionSpeed      float64
	masterVolume         float64
	frequencyFluctuation bool

	started bool
	closed  bool
}

// NewPerCoreCpuPlayer builds the per-core graph for the given source file.
func NewPerCoreCpuPlayer(sink Sink, path string, numCores int, slideInterval int, frequencyFluctuation bool) (*PerCoreCpuPlayer, error) {
	source, format, err := decodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("per-core player %s: %w", path, err)
	}
	return newPerCoreCpuPlayer(sink, source, format, numCores, slideInterval, frequencyFluctuation), nil
}

func newPerCoreCpuPlayer(sink Sink, source beep.StreamSeekCloser, format beep.Format, numCores int, slideInterval int, frequencyFluctuation bool) *PerCoreCpuPlayer {
	if numCores < 1 {
		numCores = 1
	}

	var stream beep.Streamer = beep.Loop(-1, source)
	if format.SampleRate != 0 && format.SampleRate != engineSampleRate {
		stream = beep.Resample(4, format.SampleRate, engineSampleRate, stream)
	}

	fanout := newTee(stream, numCores)
	mix := &beep.Mixer{}

	branches := make([]coreBranch, 0, numCores)
	panPositions := make([]float64, 0, numCores)

	for i := 0; i < numCores; i++ {
		pan := 0.0
		if numCores > 1 {
			pan = -1.0 + 2.0*float64(i)/float64(numCores-1)
		}

		pitch := NewPitchNode(engineSampleRate, fanout.branch())
		gain := &effects.Gain{Streamer: pitch, Gain: -1.0}
		panNode := &effects.Pan{Streamer: gain, Pan: pan}
		mix.Add(panNode)

		branches = append(branches, coreBranch{pitch: pitch, gain: gain, panNode: panNode})
		panPositions = append(panPositions, pan)
	}

	return &PerCoreCpuPlayer{
		sink:                 sink,
		source:               source,
		ctrl:                 &beep.Ctrl{Streamer: mix, Paused: true},
		branches:             branches,
		panPositions:         panPositions,
		branchVols:           make([]float64, numCores),
		currentValues:        make([]float64, numCores),
		transitionSpeed:      transitionSpeed(slideInterval),
		masterVolume:         1.0,
		frequencyFluctuation: frequencyFluctuation,
	}
}

// Play starts (or resumes) the graph.
func (p *PerCoreCpuPlayer) Play() {
	if p.closed {
		return
	}
	if !p.started {
		p.sink.Play(p.ctrl)
		p.started = true
	}
	p.sink.Lock()
	p.ctrl.Paused = false
	p.sink.Unlock()
}

// Stop pauses the graph.
func (p *PerCoreCpuPlayer) Stop() {
	if p.closed {
		return
	}
	p.sink.Lock()
	p.ctrl.Paused = true
	p.sink.Unlock()
}

// UpdateCore feeds one core's metric target in [0, 1]: smooth, then write
// the branch volume (normalized by √N so total loudness stays roughly flat
// across machines) and, when enabled, the branch pitch.
func (p *PerCoreCpuPlayer) UpdateCore(coreIndex int, targetValue float64) {
	if coreIndex < 0 || coreIndex >= len(p.branches) {
		return
	}

	target := clampRange(targetValue, 0, 1)
	p.currentValues[coreIndex] += (target - p.currentValues[coreIndex]) * p.transitionSpeed

	volume := clampRange(
		p.currentValues[coreIndex]*p.masterVolume/math.Sqrt(float64(len(p.branches))),
		0, 1,
	)

	p.sink.Lock()
	p.branches[coreIndex].gain.Gain = volume - 1.0
	p.sink.Unlock()
	p.branchVols[coreIndex] = volume

	if p.frequencyFluctuation {
		p.branches[coreIndex].pitch.SetPitch(0.8 + p.currentValues[coreIndex]*0.4)
	}
}

// SetMasterVolume sets the master multiplier, clamped to [0, 1].
func (p *PerCoreCpuPlayer) SetMasterVolume(volume float64) {
	p.masterVolume = clampRange(volume, 0, 1)
}

// Reset clears the smoothing state and the branch pitch shifters.
func (p *PerCoreCpuPlayer) Reset() {
	for i := range p.currentValues {
		p.currentValues[i] = 0
	}
	for i := range p.branches {
		p.branches[i].pitch.Reset()
	}
}

// CoreCount returns the number of branches.
func (p *PerCoreCpuPlayer) CoreCount() int {
	return len(p.branches)
}

// BranchPan returns the pan position assigned to a core's branch.
func (p *PerCoreCpuPlayer) BranchPan(coreIndex int) float64 {
	return p.panPositions[coreIndex]
}

// BranchVolume returns the last volume written to a core's branch.
func (p *PerCoreCpuPlayer) BranchVolume(coreIndex int) float64 {
	return p.branchVols[coreIndex]
}

// Close stops the graph and releases the decoder. Idempotent.
func (p *PerCoreCpuPlayer) Close() {
	if p.closed {
		return
	}
	p.Stop()
	p.closed = true
	if p.source != nil {
		p.source.Close()
	}
}
