package preset

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Basic Kit":          "basic-kit",
		"  808 -- Drums!! ":  "808-drums",
		"Électro":            "lectro",
		"already-slugged-01": "already-slugged-01",
		"":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestNewPreset(t *testing.T) {
	p := NewPreset("My Kit", "Drumkit")
	_, err := uuid.Parse(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "my-kit", p.Slug)
	assert.False(t, p.UpdatedAt.IsZero())
	assert.NotEqual(t, p.ID, NewPreset("My Kit", "Drumkit").ID)
}

func TestValidate(t *testing.T) {
	good := Preset{Name: "Kit", Type: "Drumkit", Samples: []Sample{{URL: "k.wav", Name: "Kick"}}}
	require.NoError(t, Validate(good))

	tests := []struct {
		name string
		edit func(*Preset)
		want string
	}{
		{"no name", func(p *Preset) { p.Name = " " }, "name is required"},
		{"no type", func(p *Preset) { p.Type = "" }, "type is required"},
		{"sample url", func(p *Preset) { p.Samples[0].URL = "" }, "sample 0: url"},
		{"sample name", func(p *Preset) { p.Samples[0].Name = "" }, "sample 0: name"},
		{"too many", func(p *Preset) {
			for i := 0; i < MaxSamples; i++ {
				p.Samples = append(p.Samples, Sample{URL: "x", Name: "x"})
			}
		}, "17 samples"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := good
			p.Samples = append([]Sample(nil), good.Samples...)
			tt.edit(&p)
			err := Validate(p)
			require.ErrorIs(t, err, ErrInvalid)
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
		})
	}
}
