package pads

import (
	"context"
	"fmt"

	"github.com/PixPMusic/gopher-pads/internal/audio"
)

// Descriptor names one sample to load.
type Descriptor struct {
	URL  string `json:"url" yaml:"url"`
	Name string `json:"name" yaml:"name"`
}

// DisplayName falls back to the URL when no name is given.
func (d Descriptor) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.URL
}

// Fetcher retrieves raw sample bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Loader produces a decoded buffer for a descriptor.
type Loader interface {
	Load(ctx context.Context, d Descriptor) (*audio.Buffer, error)
}

type LoaderFunc func(ctx context.Context, d Descriptor) (*audio.Buffer, error)

func (f LoaderFunc) Load(ctx context.Context, d Descriptor) (*audio.Buffer, error) {
	return f(ctx, d)
}

// NewLoader fetches with f and decodes with dec.
func NewLoader(f Fetcher, dec audio.Decoder) Loader {
	return LoaderFunc(func(ctx context.Context, d Descriptor) (*audio.Buffer, error) {
		data, err := f.Fetch(ctx, d.URL)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", d.URL, err)
		}
		buf, err := dec.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", d.URL, err)
		}
		return buf, nil
	})
}
