package audio

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"charm/internal/monitor"
	"charm/internal/pack"
)

// ErrNoPackLoaded is returned by Play before any pack has been loaded.
var ErrNoPackLoaded = errors.New("no sound pack loaded")

type engineState int

const (
	stateUnloaded engineState = iota
	stateLoaded
	statePlaying
	stateStopped
)

// Engine coordinates playback from system metrics. It owns the mixer, the
// currently loaded pack and the per-metric enable flags. The engine is not
// safe for concurrent use; the application drives it from one goroutine.
type Engine struct {
	sink  Sink
	mixer *Mixer

	currentPack *pack.SoundPack
	state       engineState

	cpuEnabled  bool
	ramEnabled  bool
	diskEnabled bool
	useAverages bool
}

// NewEngine starts the audio output and returns an engine with every metric
// enabled. A sink start failure is fatal to the caller: without an output
// there is nothing to sonify.
func NewEngine(sink Sink) (*Engine, error) {
	if err := sink.Start(engineSampleRate); err != nil {
		return nil, fmt.Errorf("audio sink: %w", err)
	}

	return &Engine{
		sink:        sink,
		mixer:       NewMixer(),
		cpuEnabled:  true,
		ramEnabled:  true,
		diskEnabled: true,
		useAverages: true,
	}, nil
}

// LoadPack stops playback, clears the mixer and builds channels for the
// given pack. Channels whose sounds are missing are simply omitted.
func (e *Engine) LoadPack(p *pack.SoundPack, numCores int) error {
	e.Stop()
	e.clearMixer()

	cfg := p.Config
	e.useAverages = cfg.UseAverages

	// CPU playback: averaged mode is one centered channel; per-core mode
	// spreads a single shared source across one branch per core.
	if p.CPUSounds.HasSounds() {
		if cfg.UseAverages {
			ch, err := NewAudioChannel(e.sink, cfg.CPUMode, p.CPUSounds.Primary, p.CPUSounds.Secondary, cfg.SlideInterval, cfg.FrequencyFluctuation, 0.0)
			if err != nil {
				e.clearMixer()
				return fmt.Errorf("cpu channel: %w", err)
			}
			e.mixer.CPUChannel = ch
		} else {
			player, err := NewPerCoreCpuPlayer(e.sink, p.CPUSounds.Primary, numCores, cfg.SlideInterval, cfg.FrequencyFluctuation)
			if err != nil {
				e.clearMixer()
				return fmt.Errorf("per-core cpu player: %w", err)
			}
			e.mixer.CPUPerCore = player
		}
	}

	if p.RAMSounds.HasSounds() {
		ch, err := NewAudioChannel(e.sink, cfg.RAMMode, p.RAMSounds.Primary, p.RAMSounds.Secondary, cfg.SlideInterval, cfg.FrequencyFluctuation, 0.0)
		if err != nil {
			e.clearMixer()
			return fmt.Errorf("ram channel: %w", err)
		}
		e.mixer.RAMChannel = ch
	}

	if p.DiskSounds.HasSounds() {
		ch, err := NewAudioChannel(e.sink, cfg.DiskMode, p.DiskSounds.Primary, p.DiskSounds.Secondary, cfg.SlideInterval, cfg.FrequencyFluctuation, 0.0)
		if err != nil {
			e.clearMixer()
			return fmt.Errorf("disk channel: %w", err)
		}
		e.mixer.DiskChannel = ch
	}

	// Channels are constructed with a master multiplier of 1.0; reapply the
	// user's master.
	e.mixer.SetMasterVolume(e.mixer.MasterVolume())

	e.currentPack = p
	e.state = stateLoaded
	log.Info("loaded sound pack", "name", p.Name, "cores", numCores, "averages", cfg.UseAverages)
	return nil
}

// Play starts all populated channels. Fails when no pack is loaded.
func (e *Engine) Play() error {
	if e.currentPack == nil {
		return ErrNoPackLoaded
	}
	e.mixer.PlayAll()
	e.state = statePlaying
	return nil
}

// Stop pauses all channels and resets their smoothing state so the next
// Play ramps up from silence. Idempotent.
func (e *Engine) Stop() {
	e.mixer.StopAll()
	e.mixer.ResetAll()
	if e.state == statePlaying {
		e.state = stateStopped
	}
}

// Update applies one metrics snapshot. Channel order is CPU, RAM, disk.
// Disabled metrics are driven toward zero so their sounds fade out instead
// of snapping off.
func (e *Engine) Update(metrics monitor.SystemMetrics) {
	if e.mixer.CPUChannel != nil {
		if e.cpuEnabled {
			e.mixer.CPUChannel.Update(metrics.CPUAverage.Get())
		} else {
			e.mixer.CPUChannel.Update(0.0)
		}
	}
	if e.mixer.CPUPerCore != nil {
		for i := 0; i < e.mixer.CPUPerCore.CoreCount(); i++ {
			value := 0.0
			if e.cpuEnabled && i < len(metrics.CPUCores) {
				value = metrics.CPUCores[i].Get()
			}
			e.mixer.CPUPerCore.UpdateCore(i, value)
		}
	}

	if e.mixer.RAMChannel != nil {
		if e.ramEnabled {
			e.mixer.RAMChannel.Update(metrics.Memory.Get())
		} else {
			e.mixer.RAMChannel.Update(0.0)
		}
	}

	if e.mixer.DiskChannel != nil {
		if e.diskEnabled {
			e.mixer.DiskChannel.Update(metrics.Disk.Get())
		} else {
			e.mixer.DiskChannel.Update(0.0)
		}
	}
}

// SetMasterVolume sets the master multiplier on every channel.
func (e *Engine) SetMasterVolume(volume float64) {
	e.mixer.SetMasterVolume(volume)
}

// SetCPUEnabled toggles the CPU metric feed.
func (e *Engine) SetCPUEnabled(enabled bool) {
	e.cpuEnabled = enabled
}

// SetRAMEnabled toggles the memory metric feed.
func (e *Engine) SetRAMEnabled(enabled bool) {
	e.ramEnabled = enabled
}

// SetDiskEnabled toggles the disk metric feed.
func (e *Engine) SetDiskEnabled(enabled bool) {
	e.diskEnabled = enabled
}

// CurrentPack returns the loaded pack, nil before the first load.
func (e *Engine) CurrentPack() *pack.SoundPack {
	return e.currentPack
}

// Mixer exposes the mixer for inspection.
func (e *Engine) Mixer() *Mixer {
	return e.mixer
}

// Close stops playback and releases every channel and the sink's streamers.
func (e *Engine) Close() {
	e.Stop()
	e.clearMixer()
	e.currentPack = nil
	e.state = stateUnloaded
}

// clearMixer releases all channels and drops their streamers from the sink.
func (e *Engine) clearMixer() {
	e.mixer.Clear()
	e.sink.Clear()
}
