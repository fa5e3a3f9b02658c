package preset

import (
	"context"
	"strings"

	"github.com/PixPMusic/gopher-pads/internal/log"
	"github.com/PixPMusic/gopher-pads/internal/pads"
)

// Lister is the read side of Client.
type Lister interface {
	List(ctx context.Context, q Query) ([]Preset, error)
	APIBase() string
}

// Catalog merges presets from the service and a local folder. Either
// source may be missing.
type Catalog struct {
	remote Lister
	local  Dir
	log    *log.Logger
}

func NewCatalog(remote Lister, local Dir, logger *log.Logger) *Catalog {
	if logger == nil {
		logger = log.Default()
	}
	return &Catalog{remote: remote, local: local, log: logger}
}

// List returns service presets first, then local ones. An unreachable
// service or unreadable folder is logged, not returned.
func (c *Catalog) List(ctx context.Context) []Preset {
	var out []Preset
	if c.remote != nil {
		ps, err := c.remote.List(ctx, Query{})
		if err != nil {
			c.log.Warnf("Preset service unavailable: %v", err)
		} else {
			out = append(out, ps...)
		}
	}
	if c.local != "" {
		ps, errs := c.local.List()
		for _, err := range errs {
			c.log.Warnf("Local preset: %v", err)
		}
		out = append(out, ps...)
	}
	return out
}

// Descriptors resolves p's samples for loading.
func (c *Catalog) Descriptors(p Preset) []pads.Descriptor {
	if p.Local {
		out := make([]pads.Descriptor, 0, len(p.Samples))
		for _, s := range p.Samples {
			out = append(out, pads.Descriptor{URL: s.URL, Name: s.Name})
		}
		return out
	}
	base := DefaultAPIBase
	if c.remote != nil {
		base = c.remote.APIBase()
	}
	return Descriptors(p, base)
}

// Find picks a preset by name or slug, falling back to the first one.
func Find(ps []Preset, name string) (Preset, bool) {
	for _, p := range ps {
		if name != "" && (strings.EqualFold(p.Name, name) || p.Slug == name) {
			return p, true
		}
	}
	if len(ps) > 0 {
		return ps[0], true
	}
	return Preset{}, false
}
