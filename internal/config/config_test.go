package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingGivesDefaults(t *testing.T) {
	t.Setenv(EnvAPIBase, "")
	t.Setenv(EnvLogLevel, "")
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.False(t, cfg.FirstLaunchCompleted)
	assert.Equal(t, DefaultAPIBase, cfg.APIBase)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 44100, cfg.SampleRate)
	assert.Equal(t, DefaultBaseNote, cfg.BaseNote)
	assert.Equal(t, DefaultPadColors(), cfg.PadColors)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "presets"), cfg.PresetDir)
	assert.NotNil(t, cfg.Devices)
	assert.Equal(t, path, cfg.Path())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv(EnvAPIBase, "")
	t.Setenv(EnvLogLevel, "")
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	cfg.FirstLaunchCompleted = true
	cfg.CurrentPreset = "Basic Kit"
	cfg.WaveformColor = "#112233"
	dev := NewDeviceConfig()
	dev.InPort, dev.OutPort = "LPMiniMK3 MIDI", "LPMiniMK3 MIDI"
	cfg.AddDevice(dev)
	require.NoError(t, cfg.Save())

	got, err := LoadFrom(path)
	require.NoError(t, err)
	assert.True(t, got.FirstLaunchCompleted)
	assert.Equal(t, "Basic Kit", got.CurrentPreset)
	assert.Equal(t, color.RGBA{0x11, 0x22, 0x33, 0xFF}, got.WaveColor())
	require.Len(t, got.Devices, 1)
	assert.Equal(t, dev, got.Devices[0])
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIBase, "")
	t.Setenv(EnvLogLevel, "")
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api_base":"http://file:1","log_level":"warn"}`), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://file:1", cfg.APIBase)

	t.Setenv(EnvAPIBase, "http://env:2")
	t.Setenv(EnvLogLevel, "debug")
	cfg, err = LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env:2", cfg.APIBase)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#83E83E")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0x83, 0xE8, 0x3E, 0xFF}, c)

	c, err = ParseHexColor("f0a")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0xFF, 0x00, 0xAA, 0xFF}, c)

	for _, bad := range []string{"", "#12345", "#zzzzzz"} {
		_, err := ParseHexColor(bad)
		assert.Error(t, err, bad)
	}

	cfg := Default()
	cfg.WaveformColor = "nope"
	assert.Equal(t, color.RGBA{0x83, 0xE8, 0x3E, 0xFF}, cfg.WaveColor())
}

func TestDevices(t *testing.T) {
	cfg := Default()
	a, b := NewDeviceConfig(), NewDeviceConfig()
	assert.NotEqual(t, a.ID, b.ID)
	cfg.AddDevice(a)
	cfg.AddDevice(b)

	b.Name = "Renamed"
	cfg.UpdateDevice(b)
	assert.Equal(t, "Renamed", cfg.Devices[1].Name)

	cfg.RemoveDevice(a.ID)
	require.Len(t, cfg.Devices, 1)
	assert.Equal(t, b.ID, cfg.Devices[0].ID)
}
