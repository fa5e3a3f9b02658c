package preset

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxSamples matches the number of pads.
const MaxSamples = 16

var (
	ErrNotFound = errors.New("preset not found")
	ErrConflict = errors.New("preset already exists")
	ErrInvalid  = errors.New("invalid preset")
)

// Sample points at one audio file. Relative URLs are resolved against the
// preset service.
type Sample struct {
	URL  string `json:"url" yaml:"url"`
	Name string `json:"name" yaml:"name"`
}

type Preset struct {
	ID        string    `json:"id,omitempty" yaml:"id,omitempty"`
	Slug      string    `json:"slug,omitempty" yaml:"slug,omitempty"`
	Name      string    `json:"name" yaml:"name"`
	Type      string    `json:"type" yaml:"type"`
	Factory   bool      `json:"isFactoryPresets" yaml:"factory"`
	Samples   []Sample  `json:"samples" yaml:"samples"`
	UpdatedAt time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`

	// Local marks presets read from a Dir. Their sample URLs are paths.
	Local bool `json:"-" yaml:"-"`
}

func NewPreset(name, typ string) Preset {
	return Preset{
		ID:        uuid.New().String(),
		Slug:      Slugify(name),
		Name:      name,
		Type:      typ,
		UpdatedAt: time.Now(),
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name and collapses everything that is not a letter
// or digit into single dashes.
func Slugify(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// Validate reports every problem with p, wrapped in ErrInvalid.
func Validate(p Preset) error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if strings.TrimSpace(p.Type) == "" {
		errs = append(errs, errors.New("type is required"))
	}
	if len(p.Samples) > MaxSamples {
		errs = append(errs, fmt.Errorf("%d samples, at most %d allowed", len(p.Samples), MaxSamples))
	}
	for i, s := range p.Samples {
		if s.URL == "" {
			errs = append(errs, fmt.Errorf("sample %d: url is required", i))
		}
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("sample %d: name is required", i))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}
