package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go-industrial/pattern"
	"go-industrial/song"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "INDUSTRIAL_"

// GenerationConfig holds the default song parameters
type GenerationConfig struct {
	Preset     string  `json:"preset,omitempty"`
	Tempo      int     `json:"tempo"`
	Intensity  int     `json:"intensity"`
	Distortion int     `json:"distortion"`
	Seed       uint32  `json:"seed,omitempty"` // 0 = wall clock at startup
	SongLength float64 `json:"songLength,omitempty"`
	Vocal      string  `json:"vocal,omitempty"`
	Looping    bool    `json:"looping,omitempty"`
}

// OutputConfig defines the live MIDI output
type OutputConfig struct {
	PortName string `json:"portName,omitempty"`
	Kit      string `json:"kit,omitempty"`
}

// StorageConfig locates files the app writes
type StorageConfig struct {
	ExportDir    string `json:"exportDir,omitempty"`
	DatabasePath string `json:"databasePath,omitempty"`
}

// ServerConfig configures the HTTP API and error reporting
type ServerConfig struct {
	Addr        string `json:"addr,omitempty"`
	SentryDSN   string `json:"sentryDsn,omitempty"`
	Environment string `json:"environment,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	PalettePath string `json:"palettePath,omitempty"`
	Debug       bool   `json:"debug,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Generation GenerationConfig `json:"generation"`
	Output     OutputConfig     `json:"output,omitempty"`
	Storage    StorageConfig    `json:"storage,omitempty"`
	Server     ServerConfig     `json:"server,omitempty"`
	UI         UIConfig         `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	p := song.DefaultParams()
	return &Config{
		Generation: GenerationConfig{
			Preset:     song.DefaultPreset,
			Tempo:      p.Tempo,
			Intensity:  p.Intensity,
			Distortion: p.Distortion,
			SongLength: p.SongLength,
			Vocal:      string(p.Vocal),
		},
		Output: OutputConfig{
			Kit: pattern.DefaultKit,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			Environment: "development",
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-industrial"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. Missing fields keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating the directory
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overlays INDUSTRIAL_* environment variables. Malformed numbers
// are reported and leave the field unchanged.
func (c *Config) ApplyEnv() error {
	var errs []string

	getInt := func(key string, dst *int) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, EnvPrefix+key)
				return
			}
			*dst = n
		}
	}
	getStr := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	getBool := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, EnvPrefix+key)
				return
			}
			*dst = b
		}
	}

	getStr("PRESET", &c.Generation.Preset)
	getInt("TEMPO", &c.Generation.Tempo)
	getInt("INTENSITY", &c.Generation.Intensity)
	getInt("DISTORTION", &c.Generation.Distortion)
	if v, ok := os.LookupEnv(EnvPrefix + "SEED"); ok && v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			errs = append(errs, EnvPrefix+"SEED")
		} else {
			c.Generation.Seed = uint32(n)
		}
	}
	getBool("LOOP", &c.Generation.Looping)
	getStr("MIDI_PORT", &c.Output.PortName)
	getStr("KIT", &c.Output.Kit)
	getStr("EXPORT_DIR", &c.Storage.ExportDir)
	getStr("DB_PATH", &c.Storage.DatabasePath)
	getStr("ADDR", &c.Server.Addr)
	getStr("SENTRY_DSN", &c.Server.SentryDSN)
	getStr("ENVIRONMENT", &c.Server.Environment)
	getBool("DEBUG", &c.UI.Debug)

	if len(errs) > 0 {
		return fmt.Errorf("malformed environment: %s: %w", strings.Join(errs, ", "), song.ErrInvalidParameter)
	}
	return nil
}

// Params converts the generation settings. seed replaces a zero Seed.
func (c *Config) Params(seed uint32) (song.Params, error) {
	g := c.Generation
	p := song.Params{
		Tempo:      g.Tempo,
		Intensity:  g.Intensity,
		Distortion: g.Distortion,
		Seed:       g.Seed,
		SongLength: g.SongLength,
		Vocal:      song.VocalStyle(g.Vocal),
	}
	if p.Seed == 0 {
		p.Seed = seed
	}
	if g.Vocal != "" {
		v, err := song.ParseVocalStyle(g.Vocal)
		if err != nil {
			return p, err
		}
		p.Vocal = v
	}
	return p, p.Validate()
}

// ExportDir returns where rendered files go, defaulting to the working dir
func (c *Config) ExportDir() string {
	if c.Storage.ExportDir != "" {
		return c.Storage.ExportDir
	}
	return "."
}

// DatabasePath returns the export history path
func (c *Config) DatabasePath() string {
	if c.Storage.DatabasePath != "" {
		return c.Storage.DatabasePath
	}
	if dir, err := ConfigDir(); err == nil {
		return filepath.Join(dir, "history.db")
	}
	return "history.db"
}
