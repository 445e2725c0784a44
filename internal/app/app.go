// Package app wires the metrics sampler to the audio engine: it owns the
// available packs, runs the periodic refresh loop, and exposes the control
// surface a tray or CLI drives.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"charm/internal/config"
	"charm/internal/monitor"
	"charm/internal/pack"
)

// Engine is the slice of the audio engine the app drives.
type Engine interface {
	LoadPack(p *pack.SoundPack, numCores int) error
	Play() error
	Stop()
	Update(metrics monitor.SystemMetrics)
	SetMasterVolume(volume float64)
	SetCPUEnabled(enabled bool)
	SetRAMEnabled(enabled bool)
	SetDiskEnabled(enabled bool)
	Close()
}

// Monitor is the slice of the system monitor the app drives.
type Monitor interface {
	Refresh() monitor.SystemMetrics
	CoreCount() int
}

// App holds all application state. Everything runs on the goroutine inside
// Run: ticks fire there, and every control-surface call is funneled there
// through a command channel, so engine and monitor are never touched
// concurrently.
type App struct {
	packsDir string
	packs    []*pack.SoundPack

	engine Engine
	mon    Monitor

	refresh  time.Duration
	ticker   *time.Ticker
	commands chan func()

	quit     chan struct{}
	quitOnce sync.Once
}

// New scans the packs directory and returns an app ready to run.
func New(engine Engine, mon Monitor, packsDir string, refreshMS int) (*App, error) {
	a := &App{
		packsDir: packsDir,
		engine:   engine,
		mon:      mon,
		refresh:  time.Duration(config.NormalizeRefreshMS(refreshMS)) * time.Millisecond,
		commands: make(chan func(), 16),
		quit:     make(chan struct{}),
	}
	if err := a.ReloadPacks(); err != nil {
		return nil, err
	}
	return a, nil
}

// Packs returns the packs found by the last scan.
func (a *App) Packs() []*pack.SoundPack {
	return a.packs
}

// ReloadPacks rescans the packs directory.
func (a *App) ReloadPacks() error {
	packs, err := pack.NewLoader(a.packsDir).ScanPacks()
	if err != nil {
		return err
	}
	a.packs = packs
	return nil
}

// FindPack looks a pack up by name, case-insensitively.
func (a *App) FindPack(name string) (*pack.SoundPack, bool) {
	for _, p := range a.packs {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return nil, false
}

// StartWithPack loads the named pack and starts playback. Called before Run,
// or on the loop goroutine through ChangePack.
func (a *App) StartWithPack(name string) error {
	p, ok := a.FindPack(name)
	if !ok {
		return fmt.Errorf("unknown sound pack %q", name)
	}
	if err := a.engine.LoadPack(p, a.mon.CoreCount()); err != nil {
		return err
	}
	return a.engine.Play()
}

// Run drives the refresh loop until the context is cancelled or Quit is
// called. On exit the engine is stopped.
func (a *App) Run(ctx context.Context) {
	a.ticker = time.NewTicker(a.refresh)
	defer a.ticker.Stop()
	defer a.engine.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.quit:
			return
		case cmd := <-a.commands:
			cmd()
		case <-a.ticker.C:
			a.tick()
		}
	}
}

// tick refreshes the samplers and feeds the snapshot to the engine.
func (a *App) tick() {
	metrics := a.mon.Refresh()
	a.engine.Update(metrics)
}

// Quit ends Run. Safe to call more than once and from any goroutine.
func (a *App) Quit() {
	a.quitOnce.Do(func() { close(a.quit) })
}

// SetRefreshRate switches the tick period. Only the accepted rates are
// allowed.
func (a *App) SetRefreshRate(ms int) error {
	if !config.ValidRefreshMS(ms) {
		return fmt.Errorf("invalid refresh rate %dms (accepted: 100, 250, 500, 1000)", ms)
	}
	a.do(func() {
		a.refresh = time.Duration(ms) * time.Millisecond
		if a.ticker != nil {
			a.ticker.Reset(a.refresh)
		}
	})
	return nil
}

// SetMasterVolume forwards the master volume to the engine.
func (a *App) SetMasterVolume(volume float64) {
	a.do(func() { a.engine.SetMasterVolume(volume) })
}

// SetCPUEnabled toggles CPU sonification.
func (a *App) SetCPUEnabled(enabled bool) {
	a.do(func() { a.engine.SetCPUEnabled(enabled) })
}

// SetRAMEnabled toggles memory sonification.
func (a *App) SetRAMEnabled(enabled bool) {
	a.do(func() { a.engine.SetRAMEnabled(enabled) })
}

// SetDiskEnabled toggles disk sonification.
func (a *App) SetDiskEnabled(enabled bool) {
	a.do(func() { a.engine.SetDiskEnabled(enabled) })
}

// ChangePack rescans the packs directory and switches to the named pack.
func (a *App) ChangePack(name string) {
	a.do(func() {
		if err := a.ReloadPacks(); err != nil {
			log.Error("reloading packs", "err", err)
			return
		}
		if err := a.StartWithPack(name); err != nil {
			log.Error("changing pack", "name", name, "err", err)
		}
	})
}

// do runs fn on the loop goroutine. After Quit, commands are discarded.
func (a *App) do(fn func()) {
	select {
	case a.commands <- fn:
	case <-a.quit:
	}
}
