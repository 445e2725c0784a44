package monitor

import (
	"github.com/prometheus/procfs"
)

// MemorySampler reads memory pressure from /proc/meminfo.
type MemorySampler struct {
	fs    procfs.FS
	used  uint64
	total uint64
}

// NewMemorySampler creates a sampler over the given proc mount point.
func NewMemorySampler(mountPoint string) (*MemorySampler, error) {
	fs, err := procfs.NewFS(mountPoint)
	if err != nil {
		return nil, err
	}
	s := &MemorySampler{fs: fs}
	s.Refresh()
	return s, nil
}

// Refresh re-reads meminfo. Used memory counts everything the kernel cannot
// hand out right now, i.e. MemTotal - MemAvailable.
func (s *MemorySampler) Refresh() {
	info, err := s.fs.Meminfo()
	if err != nil {
		s.used, s.total = 0, 0
		return
	}

	var total, avail uint64
	if info.MemTotal != nil {
		total = *info.MemTotal
	}
	switch {
	case info.MemAvailable != nil:
		avail = *info.MemAvailable
	case info.MemFree != nil:
		avail = *info.MemFree
	}

	s.total = total
	if avail > total {
		s.used = 0
	} else {
		s.used = total - avail
	}
}

// Usage returns used/total as a MetricValue, 0 when total is unknown.
func (s *MemorySampler) Usage() MetricValue {
	if s.total == 0 {
		return NewMetricValue(0)
	}
	return NewMetricValue(float64(s.used) / float64(s.total))
}
