// Package integration provides database configuration presets for the
// Anchor ledger launcher. Presets bundle storage settings (cache size, file
// handles) into named profiles so operators can pick a resource footprint
// without tuning individual flags.
//
// Usage:
//
//	cfg := integration.LitePreset()    // for development
//	cfg := integration.FullPreset()    // for production sequencer nodes
//	cfg := integration.ArchivePreset() // for explorers and analytics
//
// Each preset returns a PresetConfig that the launcher merges into its main
// config during startup.
package integration

import "fmt"

// PresetConfig captures the tunable storage parameters that vary across
// preset profiles.
type PresetConfig struct {
	Name    string // human-readable identifier (e.g. "lite", "full")
	CacheMB int    // memory allocated to leveldb caches
	Handles int    // file handles available to the database
}

func DefaultPreset() PresetConfig {
	return PresetConfig{
		Name:    "default",
		CacheMB: 256, // enough for the bootstrap tables plus headroom
		Handles: 512,
	}
}

// LitePreset returns a lightweight profile for development, CI and other
// low-resource environments.
func LitePreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "lite"
	cfg.CacheMB = 64
	cfg.Handles = 128
	return cfg
}

// FullPreset returns a production profile for sequencer and public RPC
// nodes: large caches so hot mapping-table state stays in memory.
func FullPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "full"
	cfg.CacheMB = 2048
	cfg.Handles = 1024
	return cfg
}

// ArchivePreset returns a profile for explorers and analytics platforms
// that scan the full mapping history.
func ArchivePreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "archive"
	cfg.CacheMB = 4096
	cfg.Handles = 2048
	return cfg
}

// GetPresetByName looks up a preset by its string identifier. It backs the
// --preset CLI flag.
func GetPresetByName(name string) (PresetConfig, error) {
	switch name {
	case "lite":
		return LitePreset(), nil
	case "full":
		return FullPreset(), nil
	case "archive":
		return ArchivePreset(), nil
	case "default":
		return DefaultPreset(), nil
	default:
		return PresetConfig{}, fmt.Errorf("unknown preset: %q (valid: lite, full, archive, default)", name)
	}
}

// ApplyPreset merges a preset into the target, overriding only the fields
// the preset sets. This lets presets stack under CLI overrides without
// clobbering unrelated settings.
func ApplyPreset(target *PresetConfig, preset PresetConfig) {
	if preset.CacheMB > 0 {
		target.CacheMB = preset.CacheMB
	}
	if preset.Handles > 0 {
		target.Handles = preset.Handles
	}
	if preset.Name != "" {
		target.Name = preset.Name
	}
}
