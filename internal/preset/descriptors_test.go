package preset

import (
	"testing"

	"github.com/PixPMusic/gopher-pads/internal/pads"
	"github.com/stretchr/testify/assert"
)

func TestDescriptorsResolveURLs(t *testing.T) {
	p := Preset{Samples: []Sample{
		{URL: "./Basic Kit/kick.wav", Name: "Kick"},
		{URL: "808/snare.wav"},
		{URL: "https://example.com/hat.mp3", Name: "Hat"},
	}}

	got := Descriptors(p, "http://host:3000/")
	assert.Equal(t, []pads.Descriptor{
		{URL: "http://host:3000/presets/Basic%20Kit/kick.wav", Name: "Kick"},
		{URL: "http://host:3000/presets/808/snare.wav"},
		{URL: "https://example.com/hat.mp3", Name: "Hat"},
	}, got)
	assert.Equal(t, "http://host:3000/presets/808/snare.wav", got[1].DisplayName())

	got = Descriptors(p, "")
	assert.Equal(t, DefaultAPIBase+"/presets/808/snare.wav", got[1].URL)
}

func TestFallbackDescriptors(t *testing.T) {
	fb := FallbackDescriptors()
	assert.Len(t, fb, 3)
	fb[0].Name = "changed"
	assert.Equal(t, "Kick", FallbackDescriptors()[0].Name)
}
