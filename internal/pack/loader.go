package pack

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/ini.v1"
)

// soundExtensions are tried in order when resolving channel sound files.
var soundExtensions = []string{"ogg", "wav", "flac", "mp3"}

// Loader discovers and loads sound packs from a directory.
type Loader struct {
	packsDir string
}

// NewLoader creates a loader over the given packs directory.
func NewLoader(packsDir string) *Loader {
	return &Loader{packsDir: packsDir}
}

// ScanPacks loads every pack subdirectory. Broken packs are logged and
// skipped; a missing packs directory just yields no packs.
func (l *Loader) ScanPacks() ([]*SoundPack, error) {
	entries, err := os.ReadDir(l.packsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan packs: %w", err)
	}

	var packs []*SoundPack
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(l.packsDir, entry.Name())
		p, err := l.LoadPack(dir)
		if err != nil {
			log.Warn("skipping sound pack", "dir", dir, "err", err)
			continue
		}
		packs = append(packs, p)
	}
	return packs, nil
}

// LoadPack loads one pack directory: parse prefs.ini, then resolve each
// channel's sound files from its mode. Missing or malformed keys fall back
// to defaults; a missing file or [soundpack] section fails the pack.
func (l *Loader) LoadPack(packDir string) (*SoundPack, error) {
	configPath := filepath.Join(packDir, "prefs.ini")
	file, err := ini.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", configPath, err)
	}

	section, err := file.GetSection("soundpack")
	if err != nil {
		return nil, fmt.Errorf("%s: missing [soundpack] section", configPath)
	}

	defaults := DefaultConfig()
	cfg := Config{
		UseAverages:          section.Key("UseAverages").MustInt(0) != 0,
		CPUMode:              SoundModeFromInt(section.Key("CPUSoundMode").MustInt(int(defaults.CPUMode))),
		RAMMode:              SoundModeFromInt(section.Key("RAMSoundMode").MustInt(int(defaults.RAMMode))),
		DiskMode:             SoundModeFromInt(section.Key("DiskSoundMode").MustInt(int(defaults.DiskMode))),
		SlideInterval:        section.Key("SlideInterval").MustInt(defaults.SlideInterval),
		FrequencyFluctuation: section.Key("FrequencyFluctuation").MustInt(0) != 0,
	}
	if cfg.SlideInterval < 1 {
		cfg.SlideInterval = 1
	}

	return &SoundPack{
		Directory:  packDir,
		Name:       filepath.Base(packDir),
		Config:     cfg,
		CPUSounds:  resolveSounds(packDir, "CPU", cfg.CPUMode),
		RAMSounds:  resolveSounds(packDir, "RAM", cfg.RAMMode),
		DiskSounds: resolveSounds(packDir, "disk", cfg.DiskMode),
	}, nil
}

// resolveSounds finds a channel's sound files. Fade mode wants an _A/_B
// pair (uppercase base or all-lowercase variant); when no pair exists, or in
// volume mode, a single base-named file is used. Disabled mode never
// resolves files.
func resolveSounds(packDir, baseName string, mode SoundMode) ChannelSounds {
	if mode == SoundModeDisabled {
		return ChannelSounds{}
	}

	if mode == SoundModeFade {
		for _, ext := range soundExtensions {
			idle := filepath.Join(packDir, fmt.Sprintf("%s_A.%s", baseName, ext))
			active := filepath.Join(packDir, fmt.Sprintf("%s_B.%s", baseName, ext))
			if fileExists(idle) && fileExists(active) {
				return ChannelSounds{Primary: idle, Secondary: active}
			}

			lower := strings.ToLower(baseName)
			idleLower := filepath.Join(packDir, fmt.Sprintf("%s_a.%s", lower, ext))
			activeLower := filepath.Join(packDir, fmt.Sprintf("%s_b.%s", lower, ext))
			if fileExists(idleLower) && fileExists(activeLower) {
				return ChannelSounds{Primary: idleLower, Secondary: activeLower}
			}
		}
	}

	// Single file: volume mode, or fade mode falling back.
	for _, ext := range soundExtensions {
		single := filepath.Join(packDir, fmt.Sprintf("%s.%s", baseName, ext))
		if fileExists(single) {
			return ChannelSounds{Primary: single}
		}

		singleLower := filepath.Join(packDir, fmt.Sprintf("%s.%s", strings.ToLower(baseName), ext))
		if fileExists(singleLower) {
			return ChannelSounds{Primary: singleLower}
		}
	}

	return ChannelSounds{}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
