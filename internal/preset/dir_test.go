package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirList(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}
	write("b.yaml", `
name: Yaml Kit
type: Drumkit
samples:
  - url: sounds/kick.wav
    name: Kick
  - url: https://example.com/hat.mp3
    name: Hat
`)
	write("a.json", `{"name":"Json Kit","samples":[{"url":"/abs/snare.wav","name":"Snare"}]}`)
	write("broken.yml", "name: [")
	write("invalid.json", `{"type":"x"}`)
	write("notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.yaml"), 0755))

	got, errs := Dir(dir).List()
	assert.Len(t, errs, 2)
	require.Len(t, got, 2)

	assert.Equal(t, "Json Kit", got[0].Name)
	assert.Equal(t, "Local", got[0].Type)
	assert.Equal(t, "json-kit", got[0].Slug)
	assert.Equal(t, "/abs/snare.wav", got[0].Samples[0].URL)

	assert.Equal(t, "Yaml Kit", got[1].Name)
	assert.Equal(t, filepath.Join(dir, "sounds", "kick.wav"), got[1].Samples[0].URL)
	assert.Equal(t, "https://example.com/hat.mp3", got[1].Samples[1].URL)
}

func TestDirMissing(t *testing.T) {
	got, errs := Dir(filepath.Join(t.TempDir(), "nope")).List()
	assert.Empty(t, got)
	assert.Len(t, errs, 1)
}

func TestDirSave(t *testing.T) {
	dir := Dir(filepath.Join(t.TempDir(), "presets"))
	p := NewPreset("Saved Kit", "Recording")
	p.Samples = []Sample{{URL: "/tmp/a.wav", Name: "A"}}

	path, err := dir.Save(p)
	require.NoError(t, err)
	assert.Equal(t, "saved-kit.yaml", filepath.Base(path))

	got, errs := dir.List()
	require.Empty(t, errs)
	require.Len(t, got, 1)
	assert.Equal(t, p.ID, got[0].ID)
	assert.Equal(t, p.Samples, got[0].Samples)

	_, err = dir.Save(Preset{})
	assert.ErrorIs(t, err, ErrInvalid)
}
