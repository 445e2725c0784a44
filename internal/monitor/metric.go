// Package monitor samples host telemetry (per-core CPU, memory, disk I/O)
// and exposes it as normalized snapshots for the audio engine.
package monitor

// MetricValue is a normalized scalar in [0, 1]. Construction clamps, so a
// MetricValue can be handed around without re-validation.
type MetricValue struct {
	v float64
}

// NewMetricValue clamps value into [0, 1]. NaN becomes 0.
func NewMetricValue(value float64) MetricValue {
	return MetricValue{v: clamp01(value)}
}

// Get returns the normalized value.
func (m MetricValue) Get() float64 {
	return m.v
}

// SystemMetrics is one snapshot of host telemetry. Snapshots are value types
// produced fresh on every refresh; nothing is shared across ticks.
type SystemMetrics struct {
	// CPUCores holds per-core utilization, index = core number.
	CPUCores []MetricValue
	// CPUAverage is the arithmetic mean across all cores.
	CPUAverage MetricValue
	// Memory is used/total.
	Memory MetricValue
	// Disk is normalized disk activity.
	Disk MetricValue
}

func clamp01(v float64) float64 {
	if !(v >= 0) { // also catches NaN
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
