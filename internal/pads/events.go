package pads

import "github.com/PixPMusic/gopher-pads/internal/audio"

// Listener receives engine notifications. Calls are made outside the
// engine lock, possibly from loader goroutines.
type Listener interface {
	LoadProgress(done, total int)
	PadsChanged(pads []Pad)
	Selected(slot int, name string)
	Highlight(slot int, on bool)
	Played(slot int, h *audio.Handle)
}

// ListenerFuncs adapts optional callbacks to a Listener.
type ListenerFuncs struct {
	OnLoadProgress func(done, total int)
	OnPadsChanged  func(pads []Pad)
	OnSelected     func(slot int, name string)
	OnHighlight    func(slot int, on bool)
	OnPlayed       func(slot int, h *audio.Handle)
}

func (f ListenerFuncs) LoadProgress(done, total int) {
	if f.OnLoadProgress != nil {
		f.OnLoadProgress(done, total)
	}
}

func (f ListenerFuncs) PadsChanged(pads []Pad) {
	if f.OnPadsChanged != nil {
		f.OnPadsChanged(pads)
	}
}

func (f ListenerFuncs) Selected(slot int, name string) {
	if f.OnSelected != nil {
		f.OnSelected(slot, name)
	}
}

func (f ListenerFuncs) Highlight(slot int, on bool) {
	if f.OnHighlight != nil {
		f.OnHighlight(slot, on)
	}
}

func (f ListenerFuncs) Played(slot int, h *audio.Handle) {
	if f.OnPlayed != nil {
		f.OnPlayed(slot, h)
	}
}
