package monitor

import (
	"strings"
	"time"
	"unicode"

	"github.com/prometheus/procfs/blockdevice"
)

// minMaxActivity is the floor for the adaptive normalization ceiling, in
// sectors/second. Keeps near-idle systems from amplifying noise to full scale.
const minMaxActivity = 1000.0

// maxActivityDecay is applied once per refresh whenever no new peak is seen.
const maxActivityDecay = 0.999

// DiskSampler tracks block-device throughput from /proc/diskstats. Only whole
// physical devices contribute; partitions, loop devices, ram disks and
// device-mapper nodes are filtered out so activity is not double counted.
//
// Normalization is adaptive: the ceiling grows instantly to any new peak and
// decays slowly back toward a fixed floor, so quiet and busy machines both
// produce a usable dynamic range.
type DiskSampler struct {
	fs            blockdevice.FS
	lastReadSecs  uint64
	lastWriteSecs uint64
	lastTime      time.Time
	activityLevel float64
	maxActivity   float64

	now func() time.Time
}

// NewDiskSampler creates a sampler over the given proc and sys mount points
// and takes the baseline counter sample. Only the proc side is read; the sys
// mount is required by the filesystem handle.
func NewDiskSampler(procMountPoint, sysMountPoint string) (*DiskSampler, error) {
	fs, err := blockdevice.NewFS(procMountPoint, sysMountPoint)
	if err != nil {
		return nil, err
	}

	s := &DiskSampler{
		fs:          fs,
		maxActivity: minMaxActivity,
		now:         time.Now,
	}
	s.lastReadSecs, s.lastWriteSecs = s.readTotals()
	s.lastTime = s.now()
	return s, nil
}

// Refresh recomputes activity from the counter deltas since the last call.
func (s *DiskSampler) Refresh() {
	readSecs, writeSecs := s.readTotals()
	now := s.now()
	elapsed := now.Sub(s.lastTime).Seconds()

	if elapsed > 0 {
		readDelta := saturatingSub(readSecs, s.lastReadSecs)
		writeDelta := saturatingSub(writeSecs, s.lastWriteSecs)

		// Sectors per second across all physical devices.
		s.activityLevel = float64(readDelta+writeDelta) / elapsed

		if s.activityLevel > s.maxActivity {
			s.maxActivity = s.activityLevel
		} else {
			s.maxActivity = s.maxActivity * maxActivityDecay
			if s.maxActivity < minMaxActivity {
				s.maxActivity = minMaxActivity
			}
		}
	}

	s.lastReadSecs = readSecs
	s.lastWriteSecs = writeSecs
	s.lastTime = now
}

// Activity returns normalized disk activity.
func (s *DiskSampler) Activity() MetricValue {
	return NewMetricValue(s.activityLevel / s.maxActivity)
}

// readTotals sums sectors read and written over all physical devices. Any
// read or parse failure yields zero totals; disk sonification degrades to
// silence rather than erroring.
func (s *DiskSampler) readTotals() (read, write uint64) {
	stats, err := s.fs.ProcDiskstats()
	if err != nil {
		return 0, 0
	}

	for _, d := range stats {
		if !isPhysicalDevice(d.DeviceName) {
			continue
		}
		read += d.ReadSectors
		write += d.WriteSectors
	}
	return read, write
}

// isPhysicalDevice reports whether a diskstats device name is a whole
// physical device. Loop devices, ram disks and device-mapper nodes never
// count. nvme and mmcblk namespaces count unless a p<digit> partition suffix
// is present (nvme0n1p1, mmcblk0p2). Everything else (sda, hda, vda, xvda
// style) counts only when the name ends in a letter, which excludes numbered
// partitions like sda1.
func isPhysicalDevice(name string) bool {
	if name == "" {
		return false
	}
	for _, prefix := range []string{"loop", "ram", "dm-"} {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}

	if strings.HasPrefix(name, "nvme") || strings.HasPrefix(name, "mmcblk") {
		for i := 0; i+1 < len(name); i++ {
			if name[i] == 'p' && name[i+1] >= '0' && name[i+1] <= '9' {
				return false
			}
		}
		return true
	}

	last := rune(name[len(name)-1])
	return unicode.IsLetter(last)
}

func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
