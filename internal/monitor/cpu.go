package monitor

import (
	"github.com/prometheus/procfs"
)

// CPUSampler derives per-core utilization from /proc/stat counter deltas.
// The core count is fixed at the first (baseline) sample; cores that appear
// later are ignored so snapshot shapes stay stable for the engine.
type CPUSampler struct {
	fs    procfs.FS
	prev  map[int64]procfs.CPUStat
	cores int
	usage []float64
}

// NewCPUSampler creates a sampler over the given proc mount point and takes
// the baseline sample. The first Refresh after construction yields real
// deltas; until then all cores read as idle.
func NewCPUSampler(mountPoint string) (*CPUSampler, error) {
	fs, err := procfs.NewFS(mountPoint)
	if err != nil {
		return nil, err
	}

	s := &CPUSampler{fs: fs}
	if stat, err := fs.Stat(); err == nil {
		s.prev = stat.CPU
		s.cores = len(stat.CPU)
	}
	s.usage = make([]float64, s.cores)
	return s, nil
}

// Refresh re-reads /proc/stat and recomputes per-core utilization from the
// busy/total tick deltas since the previous call.
func (s *CPUSampler) Refresh() {
	stat, err := s.fs.Stat()
	if err != nil {
		return
	}

	for core := int64(0); core < int64(s.cores); core++ {
		cur, ok := stat.CPU[core]
		if !ok {
			s.usage[core] = 0
			continue
		}
		prev := s.prev[core]

		busy := cpuBusy(cur) - cpuBusy(prev)
		total := cpuTotal(cur) - cpuTotal(prev)
		if total > 0 && busy > 0 {
			s.usage[core] = clamp01(busy / total)
		} else {
			s.usage[core] = 0
		}
	}

	s.prev = stat.CPU
}

// PerCoreUsage returns one MetricValue per core.
func (s *CPUSampler) PerCoreUsage() []MetricValue {
	out := make([]MetricValue, s.cores)
	for i, u := range s.usage {
		out[i] = NewMetricValue(u)
	}
	return out
}

// AverageUsage returns the mean utilization across cores, 0 with no cores.
func (s *CPUSampler) AverageUsage() MetricValue {
	if s.cores == 0 {
		return NewMetricValue(0)
	}
	var total float64
	for _, u := range s.usage {
		total += u
	}
	return NewMetricValue(total / float64(s.cores))
}

// CoreCount returns the number of cores seen at the baseline sample.
func (s *CPUSampler) CoreCount() int {
	return s.cores
}

func cpuBusy(c procfs.CPUStat) float64 {
	return c.User + c.Nice + c.System + c.IRQ + c.SoftIRQ + c.Steal
}

func cpuTotal(c procfs.CPUStat) float64 {
	return cpuBusy(c) + c.Idle + c.Iowait
}
