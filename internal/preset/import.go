package preset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PixPMusic/gopher-pads/internal/audio"
)

// Uploader sends files to the preset service.
type Uploader interface {
	Upload(ctx context.Context, r UploadRequest) (UploadResult, error)
}

// ImportRequest adds one local audio file to a preset.
type ImportRequest struct {
	Path       string
	SampleName string
	PresetName string
	// PresetType defaults to "Recording".
	PresetType string
}

// Import decodes a local file, normalizes its peak to full scale,
// re-encodes it as 16-bit WAV and uploads it into the named preset. The
// service creates the preset or appends to it.
func Import(ctx context.Context, up Uploader, dec audio.Decoder, r ImportRequest) (UploadResult, error) {
	if strings.TrimSpace(r.PresetName) == "" {
		return UploadResult{}, fmt.Errorf("%w: preset name is required", ErrInvalid)
	}
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return UploadResult{}, fmt.Errorf("import %s: %w", r.Path, err)
	}
	buf, err := dec.Decode(data)
	if err != nil {
		return UploadResult{}, fmt.Errorf("import %s: %w", r.Path, err)
	}
	buf.Normalize()

	wav, err := wavBytes(buf)
	if err != nil {
		return UploadResult{}, fmt.Errorf("import %s: %w", r.Path, err)
	}

	base := strings.TrimSuffix(filepath.Base(r.Path), filepath.Ext(r.Path))
	name := r.SampleName
	if name == "" {
		name = base
	}
	typ := r.PresetType
	if typ == "" {
		typ = "Recording"
	}
	return up.Upload(ctx, UploadRequest{
		Folder:     Slugify(r.PresetName),
		Files:      []UploadFile{{Name: base + ".wav", Data: wav, SampleName: name}},
		PresetName: r.PresetName,
		PresetType: typ,
	})
}

// wavBytes encodes through a temp file since the WAV encoder needs to
// seek back and patch the header.
func wavBytes(b *audio.Buffer) ([]byte, error) {
	f, err := os.CreateTemp("", "gopher-pads-*.wav")
	if err != nil {
		return nil, err
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if err := audio.EncodeWAV(f, b); err != nil {
		return nil, err
	}
	return os.ReadFile(f.Name())
}
