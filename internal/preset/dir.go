package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dir is a folder of preset files, one preset per .json, .yaml or .yml
// file. Relative sample URLs in a file resolve against the folder.
type Dir string

// List reads every preset in the folder, sorted by name. Files that do
// not parse or validate are returned as errors alongside the good ones.
func (d Dir) List() ([]Preset, []error) {
	entries, err := os.ReadDir(string(d))
	if err != nil {
		return nil, []error{fmt.Errorf("read preset dir: %w", err)}
	}

	var (
		out  []Preset
		errs []error
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(string(d), e.Name())
		p, err := d.load(path)
		if err != nil {
			if !errors.Is(err, errSkip) {
				errs = append(errs, err)
			}
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, errs
}

var errSkip = errors.New("not a preset file")

func (d Dir) load(path string) (Preset, error) {
	var unmarshal func([]byte, any) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		unmarshal = json.Unmarshal
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	default:
		return Preset{}, errSkip
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("read %s: %w", path, err)
	}
	var p Preset
	if err := unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if p.Type == "" {
		p.Type = "Local"
	}
	if err := Validate(p); err != nil {
		return Preset{}, fmt.Errorf("%s: %w", path, err)
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	p.Local = true
	for i, s := range p.Samples {
		if !strings.Contains(s.URL, "://") && !filepath.IsAbs(s.URL) {
			p.Samples[i].URL = filepath.Join(string(d), filepath.FromSlash(s.URL))
		}
	}
	return p, nil
}

// Save writes p as YAML named after its slug.
func (d Dir) Save(p Preset) (string, error) {
	if err := Validate(p); err != nil {
		return "", err
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal preset: %w", err)
	}
	if err := os.MkdirAll(string(d), 0755); err != nil {
		return "", fmt.Errorf("create preset dir: %w", err)
	}
	path := filepath.Join(string(d), p.Slug+".yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write preset: %w", err)
	}
	return path, nil
}
