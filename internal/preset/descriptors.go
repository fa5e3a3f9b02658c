package preset

import (
	"strings"

	"github.com/PixPMusic/gopher-pads/internal/pads"
)

// DefaultAPIBase is where the preset service listens by default.
const DefaultAPIBase = "http://localhost:3000"

// Descriptors resolves a preset's samples for loading. Relative URLs are
// served under apiBase/presets/.
func Descriptors(p Preset, apiBase string) []pads.Descriptor {
	out := make([]pads.Descriptor, 0, len(p.Samples))
	for _, s := range p.Samples {
		out = append(out, pads.Descriptor{URL: resolve(s.URL, apiBase), Name: s.Name})
	}
	return out
}

func resolve(u, apiBase string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "file://") {
		return u
	}
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	path := strings.ReplaceAll(strings.TrimPrefix(u, "./"), " ", "%20")
	return strings.TrimRight(apiBase, "/") + "/presets/" + path
}

var fallback = []pads.Descriptor{
	{URL: "https://upload.wikimedia.org/wikipedia/commons/a/a3/Hardstyle_kick.wav", Name: "Kick"},
	{URL: "https://upload.wikimedia.org/wikipedia/commons/transcoded/c/c7/Redoblante_de_marcha.ogg/Redoblante_de_marcha.ogg.mp3", Name: "Snare"},
	{URL: "https://upload.wikimedia.org/wikipedia/commons/transcoded/c/c9/Hi-Hat_Cerrado.ogg/Hi-Hat_Cerrado.ogg.mp3", Name: "Hi-Hat"},
}

// FallbackDescriptors is the built-in kit used when no preset service
// answers.
func FallbackDescriptors() []pads.Descriptor {
	return append([]pads.Descriptor(nil), fallback...)
}
