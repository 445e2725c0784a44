package monitor

import "github.com/prometheus/procfs"

// SystemMonitor bundles the CPU, memory and disk samplers and produces one
// SystemMetrics snapshot per refresh.
type SystemMonitor struct {
	cpu    *CPUSampler
	memory *MemorySampler
	disk   *DiskSampler
}

// NewSystemMonitor creates a monitor over the live /proc and /sys mounts.
func NewSystemMonitor() (*SystemMonitor, error) {
	return newSystemMonitor(procfs.DefaultMountPoint, "/sys")
}

// NewSystemMonitorAt creates a monitor over an arbitrary proc mount point.
// Tests point this at synthetic trees; the same directory stands in for the
// sys mount, which the samplers never read.
func NewSystemMonitorAt(mountPoint string) (*SystemMonitor, error) {
	return newSystemMonitor(mountPoint, mountPoint)
}

func newSystemMonitor(procMountPoint, sysMountPoint string) (*SystemMonitor, error) {
	cpu, err := NewCPUSampler(procMountPoint)
	if err != nil {
		return nil, err
	}
	memory, err := NewMemorySampler(procMountPoint)
	if err != nil {
		return nil, err
	}
	disk, err := NewDiskSampler(procMountPoint, sysMountPoint)
	if err != nil {
		return nil, err
	}
	return &SystemMonitor{cpu: cpu, memory: memory, disk: disk}, nil
}

// Refresh samples all sources and returns a fresh snapshot.
func (m *SystemMonitor) Refresh() SystemMetrics {
	m.cpu.Refresh()
	m.memory.Refresh()
	m.disk.Refresh()

	return SystemMetrics{
		CPUCores:   m.cpu.PerCoreUsage(),
		CPUAverage: m.cpu.AverageUsage(),
		Memory:     m.memory.Usage(),
		Disk:       m.disk.Activity(),
	}
}

// CoreCount returns the number of CPU cores, fixed after the first sample.
func (m *SystemMonitor) CoreCount() int {
	return m.cpu.CoreCount()
}
