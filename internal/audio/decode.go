package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// ErrDecode marks bytes that could not be turned into PCM.
var ErrDecode = errors.New("decode audio")

// Decoder turns encoded audio bytes into a Buffer.
type Decoder interface {
	Decode(data []byte) (*Buffer, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(data []byte) (*Buffer, error)

func (f DecoderFunc) Decode(data []byte) (*Buffer, error) { return f(data) }

// DefaultDecoder sniffs the container and dispatches to WAV or MP3.
var DefaultDecoder Decoder = DecoderFunc(Decode)

// Decode detects WAV or MP3 data from its header and decodes it.
func Decode(data []byte) (*Buffer, error) {
	switch {
	case isWAV(data):
		return DecodeWAV(data)
	case isMP3(data):
		return DecodeMP3(data)
	default:
		return nil, fmt.Errorf("%w: unrecognized format", ErrDecode)
	}
}

func isWAV(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

func isMP3(data []byte) bool {
	if len(data) >= 3 && string(data[0:3]) == "ID3" {
		return true
	}
	return len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0
}

// DecodeWAV decodes integer PCM WAV data.
func DecodeWAV(data []byte) (*Buffer, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid WAV file", ErrDecode)
	}
	if d.WavAudioFormat != 1 {
		return nil, fmt.Errorf("%w: unsupported WAV format %d", ErrDecode, d.WavAudioFormat)
	}

	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if pcm.Format == nil || pcm.Format.NumChannels <= 0 || pcm.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: missing WAV format", ErrDecode)
	}

	bitDepth := int(d.BitDepth)
	if bitDepth == 0 {
		return nil, fmt.Errorf("%w: unknown WAV bit depth", ErrDecode)
	}
	nch := pcm.Format.NumChannels
	frames := len(pcm.Data) / nch
	factor := float32(int(1) << (bitDepth - 1))
	offset := 0
	if bitDepth == 8 {
		// 8-bit WAV is unsigned
		offset = 128
	}

	buf := NewBuffer(nch, frames, pcm.Format.SampleRate)
	for i := 0; i < frames; i++ {
		for c := 0; c < nch; c++ {
			buf.Channels[c][i] = float32(pcm.Data[i*nch+c]-offset) / factor
		}
	}
	return buf, nil
}

// DecodeMP3 decodes MP3 data. go-mp3 always yields 16-bit stereo.
func DecodeMP3(data []byte) (*Buffer, error) {
	d, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	raw, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	const nch = 2
	frames := len(raw) / (2 * nch)
	if frames == 0 {
		return nil, fmt.Errorf("%w: empty MP3 stream", ErrDecode)
	}
	buf := NewBuffer(nch, frames, d.SampleRate())
	for i := 0; i < frames; i++ {
		for c := 0; c < nch; c++ {
			j := (i*nch + c) * 2
			v := int16(uint16(raw[j]) | uint16(raw[j+1])<<8)
			buf.Channels[c][i] = float32(v) / 32768
		}
	}
	return buf, nil
}
