// charm sonifies live host telemetry: it samples per-core CPU utilization,
// memory pressure and disk I/O, and drives an ambient soundscape whose
// volumes and pitches track the load.
//
// USAGE:
//
//	charm [flags] [PACK_NAME]
//
// With a pack name charm runs headless until Ctrl-C. Without one it lists
// the available packs and exits.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"charm/internal/app"
	"charm/internal/audio"
	"charm/internal/config"
	"charm/internal/monitor"
	"charm/internal/pack"
)

func main() {
	// Environment first: flags and config read it.
	if err := godotenv.Load(".env"); err == nil {
		log.Debug("loaded environment from .env")
	}

	cfg := config.Load()

	packsDir := pflag.String("packs-dir", "", "Sound pack directory (default: search ./packs, user data dir, /usr/share)")
	refreshMS := pflag.Int("refresh", cfg.RefreshMS, "Metric refresh period in ms (100, 250, 500 or 1000)")
	volume := pflag.Float64("volume", cfg.MasterVolume, "Master volume, 0.0 to 1.0")
	list := pflag.Bool("list", false, "List available sound packs and exit")
	help := pflag.BoolP("help", "h", false, "Display help text")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [PACK_NAME]\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Plays an ambient soundscape that tracks CPU, memory and disk load.\n")
		fmt.Fprintf(os.Stderr, "PACK_NAME selects a sound pack (case-insensitive); without it the\n")
		fmt.Fprintf(os.Stderr, "available packs are listed.\n")
		fmt.Fprintf(os.Stderr, "\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	dir := *packsDir
	if dir == "" {
		dir = cfg.PacksDir
	}
	if dir == "" {
		dir = findPacksDirectory()
	}
	log.Info("looking for sound packs", "dir", dir)

	if !config.ValidRefreshMS(*refreshMS) {
		log.Warn("invalid refresh rate, using default", "requested", *refreshMS, "default", config.DefaultRefreshMS)
		*refreshMS = config.DefaultRefreshMS
	}

	mon, err := monitor.NewSystemMonitor()
	if err != nil {
		log.Fatal("system monitor", "err", err)
	}

	engine, err := audio.NewEngine(audio.NewSpeakerSink())
	if err != nil {
		log.Fatal("audio engine", "err", err)
	}
	defer engine.Close()

	application, err := app.New(engine, mon, dir, *refreshMS)
	if err != nil {
		log.Fatal("startup", "err", err)
	}
	engine.SetMasterVolume(*volume)

	packName := pflag.Arg(0)
	if *list || packName == "" {
		printPacks(application.Packs())
		return
	}

	if err := application.StartWithPack(packName); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start with pack %q. Available packs:\n", packName)
		for _, p := range application.Packs() {
			fmt.Fprintf(os.Stderr, "  - %s (%s)\n", p.Name, p.Description())
		}
		os.Exit(1)
	}

	log.Info("monitoring", "pack", packName, "refresh_ms", *refreshMS, "cores", mon.CoreCount())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application.Run(ctx)
	log.Info("shutting down")
}

// printPacks lists the discovered packs on stdout.
func printPacks(packs []*pack.SoundPack) {
	if len(packs) == 0 {
		fmt.Println("No sound packs found.")
		return
	}
	fmt.Println("Available sound packs:")
	for _, p := range packs {
		fmt.Printf("  %-16s %s\n", p.Name, p.Description())
	}
}

// findPacksDirectory picks the packs directory: ./packs when present, then
// the per-user data directory (created on demand), then the system share
// directory.
func findPacksDirectory() string {
	local := "packs"
	if dirExists(local) {
		return local
	}

	if dataHome := xdgDataHome(); dataHome != "" {
		userPacks := filepath.Join(dataHome, "charm-linux", "packs")
		if dirExists(userPacks) {
			return userPacks
		}
		if err := os.MkdirAll(userPacks, 0o755); err == nil {
			return userPacks
		}
	}

	systemPacks := "/usr/share/charm-linux/packs"
	if dirExists(systemPacks) {
		return systemPacks
	}

	return local
}

func xdgDataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share")
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
