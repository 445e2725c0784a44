// Package pack models sound packs: a directory of looped audio clips plus a
// prefs.ini describing how each metric channel should play them.
package pack

import "strings"

// SoundMode selects how a channel turns its metric into sound. Persisted as
// the integers 0/1/2 in prefs.ini.
type SoundMode int

const (
	// SoundModeDisabled turns the channel off.
	SoundModeDisabled SoundMode = 0
	// SoundModeVolume plays a single sound whose loudness tracks the metric.
	SoundModeVolume SoundMode = 1
	// SoundModeFade crossfades an idle (_A) and an active (_B) sound.
	SoundModeFade SoundMode = 2
)

// SoundModeFromInt maps a prefs.ini integer to a mode. Anything outside
// 0..2 means volume mode.
func SoundModeFromInt(value int) SoundMode {
	switch value {
	case 0:
		return SoundModeDisabled
	case 2:
		return SoundModeFade
	default:
		return SoundModeVolume
	}
}

// String returns a short human label for listings.
func (m SoundMode) String() string {
	switch m {
	case SoundModeDisabled:
		return "disabled"
	case SoundModeFade:
		return "fade"
	default:
		return "volume"
	}
}

// Config holds a pack's prefs.ini settings. Immutable after load.
type Config struct {
	// UseAverages selects one averaged CPU channel instead of per-core.
	UseAverages bool
	CPUMode     SoundMode
	RAMMode     SoundMode
	DiskMode    SoundMode
	// SlideInterval is the inverse transition rate: larger means slower
	// smoothing. Always at least 1.
	SlideInterval int
	// FrequencyFluctuation enables metric-driven pitch modulation.
	FrequencyFluctuation bool
}

// DefaultConfig returns the settings used for missing or malformed keys.
func DefaultConfig() Config {
	return Config{
		UseAverages:          false,
		CPUMode:              SoundModeVolume,
		RAMMode:              SoundModeVolume,
		DiskMode:             SoundModeVolume,
		SlideInterval:        20,
		FrequencyFluctuation: false,
	}
}

// ChannelSounds holds the resolved file paths for one channel. Primary is
// the sound in volume mode and the idle sound in fade mode; Secondary is the
// active sound in fade mode. An empty Primary means the channel has no
// sounds and is omitted from the engine.
type ChannelSounds struct {
	Primary   string
	Secondary string
}

// HasSounds reports whether the channel resolved at least a primary sound.
func (c ChannelSounds) HasSounds() bool {
	return c.Primary != ""
}

// SoundPack is a loaded pack: directory, name, config and per-channel
// resolved sound files. Immutable after load.
type SoundPack struct {
	Directory string
	Name      string
	Config    Config

	CPUSounds  ChannelSounds
	RAMSounds  ChannelSounds
	DiskSounds ChannelSounds
}

// Description renders a one-line summary for pack listings, e.g.
// "Per-core CPU | Monitors: CPU, RAM, Disk".
func (p *SoundPack) Description() string {
	var parts []string

	if p.Config.UseAverages {
		parts = append(parts, "Averaged CPU")
	} else {
		parts = append(parts, "Per-core CPU")
	}

	var monitors []string
	for _, ch := range []struct {
		name string
		mode SoundMode
	}{
		{"CPU", p.Config.CPUMode},
		{"RAM", p.Config.RAMMode},
		{"Disk", p.Config.DiskMode},
	} {
		if ch.mode != SoundModeDisabled {
			monitors = append(monitors, ch.name)
		}
	}
	if len(monitors) > 0 {
		parts = append(parts, "Monitors: "+strings.Join(monitors, ", "))
	}

	return strings.Join(parts, " | ")
}
