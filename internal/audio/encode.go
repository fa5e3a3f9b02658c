package audio

import (
	"fmt"
	"io"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncodeWAV writes b as 16-bit PCM WAV.
func EncodeWAV(w io.WriteSeeker, b *Buffer) error {
	nch := len(b.Channels)
	if nch == 0 {
		return fmt.Errorf("encode wav: buffer has no channels")
	}
	frames := b.Frames()

	ib := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: nch,
			SampleRate:  b.SampleRate,
		},
		Data:           make([]int, frames*nch),
		SourceBitDepth: 16,
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < nch; c++ {
			v := math.Max(-1, math.Min(1, float64(b.Channels[c][i])))
			ib.Data[i*nch+c] = int(v * math.MaxInt16)
		}
	}

	enc := wav.NewEncoder(w, b.SampleRate, 16, nch, 1)
	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return nil
}

// WriteWAVFile encodes b into a new file at path.
func WriteWAVFile(path string, b *Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeWAV(f, b); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
