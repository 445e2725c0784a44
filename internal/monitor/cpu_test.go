package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cpuTicks is one core's /proc/stat counters (user, system, idle), in
// clock ticks.
type cpuTicks struct {
	user, system, idle uint64
}

func writeStat(t *testing.T, procDir string, cores []cpuTicks) {
	t.Helper()

	var totalUser, totalSystem, totalIdle uint64
	for _, c := range cores {
		totalUser += c.user
		totalSystem += c.system
		totalIdle += c.idle
	}

	content := fmt.Sprintf("cpu  %d 0 %d %d 0 0 0 0 0 0\n", totalUser, totalSystem, totalIdle)
	for i, c := range cores {
		content += fmt.Sprintf("cpu%d %d 0 %d %d 0 0 0 0 0 0\n", i, c.user, c.system, c.idle)
	}
	content += "intr 0 0\nctxt 0\nbtime 1000000\nprocesses 1\nprocs_running 1\nprocs_blocked 0\nsoftirq 0 0 0 0 0 0 0 0 0 0 0\n"

	require.NoError(t, os.WriteFile(filepath.Join(procDir, "stat"), []byte(content), 0o644))
}

// TestCPUSamplerDeltas checks utilization from busy/total tick deltas.
func TestCPUSamplerDeltas(t *testing.T) {
	procDir := t.TempDir()
	writeStat(t, procDir, []cpuTicks{
		{user: 100, system: 100, idle: 800},
		{user: 100, system: 100, idle: 800},
	})

	s, err := NewCPUSampler(procDir)
	require.NoError(t, err)
	require.Equal(t, 2, s.CoreCount())

	// Core 0 spends half its ticks busy, core 1 stays idle.
	writeStat(t, procDir, []cpuTicks{
		{user: 150, system: 150, idle: 900},
		{user: 100, system: 100, idle: 1000},
	})
	s.Refresh()

	usage := s.PerCoreUsage()
	require.Len(t, usage, 2)
	assert.InDelta(t, 0.5, usage[0].Get(), 1e-9)
	assert.InDelta(t, 0.0, usage[1].Get(), 1e-9)
	assert.InDelta(t, 0.25, s.AverageUsage().Get(), 1e-9)
}

// TestCPUSamplerNoElapsedTicks: with no tick movement all cores read idle.
func TestCPUSamplerNoElapsedTicks(t *testing.T) {
	procDir := t.TempDir()
	cores := []cpuTicks{{user: 100, system: 0, idle: 900}}
	writeStat(t, procDir, cores)

	s, err := NewCPUSampler(procDir)
	require.NoError(t, err)

	s.Refresh()
	assert.Zero(t, s.PerCoreUsage()[0].Get())
	assert.Zero(t, s.AverageUsage().Get())
}

// TestCPUSamplerCoreCountFixed: cores appearing after the baseline sample
// are ignored.
func TestCPUSamplerCoreCountFixed(t *testing.T) {
	procDir := t.TempDir()
	writeStat(t, procDir, []cpuTicks{{user: 0, system: 0, idle: 100}})

	s, err := NewCPUSampler(procDir)
	require.NoError(t, err)
	require.Equal(t, 1, s.CoreCount())

	writeStat(t, procDir, []cpuTicks{
		{user: 100, system: 0, idle: 100},
		{user: 100, system: 0, idle: 100},
	})
	s.Refresh()

	assert.Equal(t, 1, s.CoreCount())
	assert.Len(t, s.PerCoreUsage(), 1)
}

// TestCPUSamplerAverageNoCores: an empty baseline yields a zero average.
func TestCPUSamplerAverageNoCores(t *testing.T) {
	procDir := t.TempDir()

	s, err := NewCPUSampler(procDir)
	require.NoError(t, err)

	assert.Zero(t, s.CoreCount())
	assert.Zero(t, s.AverageUsage().Get())
	assert.Empty(t, s.PerCoreUsage())
}
