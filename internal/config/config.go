package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const appDir = "gopher-pads"

// Environment overrides, applied after the file is read.
const (
	EnvAPIBase  = "GOPHER_PADS_API_BASE"
	EnvLogLevel = "GOPHER_PADS_LOG_LEVEL"
)

const (
	DefaultAPIBase       = "http://localhost:3000"
	DefaultWaveformColor = "#83E83E"
	DefaultBaseNote      = 36
)

// DeviceType represents the type of MIDI device
type DeviceType string

const (
	DeviceTypeClassic  DeviceType = "classic"  // Launchpad S
	DeviceTypeColorful DeviceType = "colorful" // Launchpad Mini Mk3
	DeviceTypeGeneric  DeviceType = "generic"  // keyboard or DAW sending notes
)

// PadColorConfig is an RGB LED color, 0-127 per channel.
type PadColorConfig struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// PadColors are the LED colors mirrored onto controllers.
type PadColors struct {
	Empty   PadColorConfig `json:"empty"`
	Loaded  PadColorConfig `json:"loaded"`
	Pressed PadColorConfig `json:"pressed"`
}

func DefaultPadColors() PadColors {
	return PadColors{
		Loaded:  PadColorConfig{R: 0, G: 60, B: 20},
		Pressed: PadColorConfig{R: 127, G: 127, B: 127},
	}
}

// DeviceConfig holds configuration for a single MIDI device
type DeviceConfig struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	InPort  string     `json:"in_port"`
	OutPort string     `json:"out_port"`
	Type    DeviceType `json:"type"`
}

// NewDeviceConfig creates a new device config with a generated ID
func NewDeviceConfig() DeviceConfig {
	return DeviceConfig{
		ID:   uuid.New().String(),
		Name: "New Device",
		Type: DeviceTypeColorful,
	}
}

// Config holds application configuration
type Config struct {
	FirstLaunchCompleted bool `json:"first_launch_completed"`
	OpenAtStartup        bool `json:"open_at_startup"`

	// APIBase is the preset service root.
	APIBase string `json:"api_base"`
	// PresetDir holds local preset files. Empty disables local presets.
	PresetDir     string `json:"preset_dir"`
	CurrentPreset string `json:"current_preset"`

	LogLevel   string `json:"log_level"`
	SampleRate int    `json:"sample_rate"`
	LatencyMS  int    `json:"latency_ms"`

	WaveformColor string         `json:"waveform_color"`
	BaseNote      int            `json:"base_note"`
	PadColors     PadColors      `json:"pad_colors"`
	Devices       []DeviceConfig `json:"devices"`

	path string
}

// Default returns a config with every field at its default.
func Default() *Config {
	c := &Config{}
	c.fill()
	return c
}

func (c *Config) fill() {
	if c.APIBase == "" {
		c.APIBase = DefaultAPIBase
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 44100
	}
	if c.LatencyMS <= 0 {
		c.LatencyMS = 10
	}
	if c.WaveformColor == "" {
		c.WaveformColor = DefaultWaveformColor
	}
	if c.BaseNote <= 0 || c.BaseNote > 127-15 {
		c.BaseNote = DefaultBaseNote
	}
	if c.PadColors == (PadColors{}) {
		c.PadColors = DefaultPadColors()
	}
	if c.Devices == nil {
		c.Devices = []DeviceConfig{}
	}
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIBase)); v != "" {
		c.APIBase = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
}

// configDir returns the platform-appropriate config directory
func configDir() (string, error) {
	configHome, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configHome, appDir), nil
}

// ConfigPath returns the full path to the config file
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultPresetDir is where local presets live unless configured.
func DefaultPresetDir() string {
	dir, err := configDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "presets")
}

// Load reads the config from the user config directory.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path, returning defaults if it does not
// exist. Environment overrides apply either way.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.fill()
	if cfg.PresetDir == "" {
		cfg.PresetDir = filepath.Join(filepath.Dir(path), "presets")
	}
	cfg.applyEnv()
	return cfg, nil
}

// Path is the file Save writes to.
func (c *Config) Path() string { return c.path }

// Save writes the config to disk
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	return c.SaveTo(path)
}

func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	c.path = path
	return nil
}

// WaveColor parses WaveformColor, falling back to the default green.
func (c *Config) WaveColor() color.Color {
	if col, err := ParseHexColor(c.WaveformColor); err == nil {
		return col
	}
	col, _ := ParseHexColor(DefaultWaveformColor)
	return col
}

// ParseHexColor accepts #RRGGBB or #RGB.
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
}

// AddDevice adds a new device to the config
func (c *Config) AddDevice(device DeviceConfig) {
	c.Devices = append(c.Devices, device)
}

// RemoveDevice removes a device by ID
func (c *Config) RemoveDevice(id string) {
	for i, d := range c.Devices {
		if d.ID == id {
			c.Devices = append(c.Devices[:i], c.Devices[i+1:]...)
			return
		}
	}
}

// UpdateDevice updates an existing device by ID
func (c *Config) UpdateDevice(device DeviceConfig) {
	for i, d := range c.Devices {
		if d.ID == device.ID {
			c.Devices[i] = device
			return
		}
	}
}
