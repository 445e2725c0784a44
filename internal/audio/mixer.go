package audio

// Mixer owns the per-metric playback. CPU playback is either a single
// averaged channel or the per-core player, never both.
type Mixer struct {
	CPUChannel  *AudioChannel
	CPUPerCore  *PerCoreCpuPlayer
	RAMChannel  *AudioChannel
	DiskChannel *AudioChannel

	masterVolume float64
}

// NewMixer returns an empty mixer at full master volume.
func NewMixer() *Mixer {
	return &Mixer{masterVolume: 1.0}
}

// PlayAll starts every populated channel.
func (m *Mixer) PlayAll() {
	if m.CPUChannel != nil {
		m.CPUChannel.Play()
	}
	if m.CPUPerCore != nil {
		m.CPUPerCore.Play()
	}
	if m.RAMChannel != nil {
		m.RAMChannel.Play()
	}
	if m.DiskChannel != nil {
		m.DiskChannel.Play()
	}
}

// StopAll pauses every populated channel.
func (m *Mixer) StopAll() {
	if m.CPUChannel != nil {
		m.CPUChannel.Stop()
	}
	if m.CPUPerCore != nil {
		m.CPUPerCore.Stop()
	}
	if m.RAMChannel != nil {
		m.RAMChannel.Stop()
	}
	if m.DiskChannel != nil {
		m.DiskChannel.Stop()
	}
}

// ResetAll clears smoothing state so a restart ramps from silence.
func (m *Mixer) ResetAll() {
	if m.CPUChannel != nil {
		m.CPUChannel.Reset()
	}
	if m.CPUPerCore != nil {
		m.CPUPerCore.Reset()
	}
	if m.RAMChannel != nil {
		m.RAMChannel.Reset()
	}
	if m.DiskChannel != nil {
		m.DiskChannel.Reset()
	}
}

// SetMasterVolume propagates the master multiplier to every channel.
func (m *Mixer) SetMasterVolume(volume float64) {
	m.masterVolume = clampRange(volume, 0, 1)
	if m.CPUChannel != nil {
		m.CPUChannel.SetMasterVolume(m.masterVolume)
	}
	if m.CPUPerCore != nil {
		m.CPUPerCore.SetMasterVolume(m.masterVolume)
	}
	if m.RAMChannel != nil {
		m.RAMChannel.SetMasterVolume(m.masterVolume)
	}
	if m.DiskChannel != nil {
		m.DiskChannel.SetMasterVolume(m.masterVolume)
	}
}

// MasterVolume returns the current master multiplier.
func (m *Mixer) MasterVolume() float64 {
	return m.masterVolume
}

// Clear stops and releases every channel, leaving the mixer empty.
func (m *Mixer) Clear() {
	m.StopAll()
	if m.CPUChannel != nil {
		m.CPUChannel.Close()
		m.CPUChannel = nil
	}
	if m.CPUPerCore != nil {
		m.CPUPerCore.Close()
		m.CPUPerCore = nil
	}
	if m.RAMChannel != nil {
		m.RAMChannel.Close()
		m.RAMChannel = nil
	}
	if m.DiskChannel != nil {
		m.DiskChannel.Close()
		m.DiskChannel = nil
	}
}
