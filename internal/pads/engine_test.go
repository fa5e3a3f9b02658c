package pads

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/PixPMusic/gopher-pads/internal/audio"
	"github.com/PixPMusic/gopher-pads/internal/log"
	"github.com/PixPMusic/gopher-pads/internal/playhead"
	"github.com/PixPMusic/gopher-pads/internal/trim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = 1000

type recorder struct {
	mu         sync.Mutex
	progress   [][2]int
	padUpdates [][]Pad
	selected   []int
	highlights []string
	played     []*audio.Handle
}

func (r *recorder) LoadProgress(done, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, [2]int{done, total})
}

func (r *recorder) PadsChanged(p []Pad) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.padUpdates = append(r.padUpdates, p)
}

func (r *recorder) Selected(slot int, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = append(r.selected, slot)
}

func (r *recorder) Highlight(slot int, on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.highlights = append(r.highlights, fmt.Sprintf("%d:%v", slot, on))
}

func (r *recorder) Played(_ int, h *audio.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.played = append(r.played, h)
}

func (r *recorder) playCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.played)
}

// seconds of silence at testRate
func silence(seconds float64) *audio.Buffer {
	return audio.NewBuffer(1, int(seconds*testRate), testRate)
}

func mapLoader(bufs map[string]*audio.Buffer) Loader {
	return LoaderFunc(func(_ context.Context, d Descriptor) (*audio.Buffer, error) {
		if b, ok := bufs[d.URL]; ok {
			return b, nil
		}
		return nil, fmt.Errorf("%w: %s", audio.ErrDecode, d.URL)
	})
}

type harness struct {
	engine *Engine
	clock  *audio.Offline
	rec    *recorder
}

func newHarness(t *testing.T, loader Loader) *harness {
	t.Helper()
	clock := audio.NewOffline(testRate, 1)
	e := New(Options{
		Loader:    loader,
		Scheduler: audio.NewScheduler(clock, clock),
		Logger:    log.Discard(),
	})
	rec := &recorder{}
	e.Subscribe(rec)
	return &harness{engine: e, clock: clock, rec: rec}
}

func descs(urls ...string) []Descriptor {
	out := make([]Descriptor, len(urls))
	for i, u := range urls {
		out[i] = Descriptor{URL: u, Name: "name-" + u}
	}
	return out
}

func TestLoadSamplesSkipsFailures(t *testing.T) {
	h := newHarness(t, mapLoader(map[string]*audio.Buffer{
		"a": silence(1),
		"c": silence(2),
	}))

	samples, err := h.engine.LoadSamples(context.Background(), descs("a", "b", "c"))
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, "name-a", samples[0].Name)
	assert.Equal(t, 0, samples[0].Source)
	assert.Equal(t, 0, samples[0].Slot)
	assert.Equal(t, "name-c", samples[1].Name)
	assert.Equal(t, 2, samples[1].Source)
	assert.Equal(t, 1, samples[1].Slot)

	assert.Len(t, h.rec.progress, 3)
	for i, p := range h.rec.progress {
		assert.Equal(t, [2]int{i + 1, 3}, p)
	}
}

func TestLoadSamplesKeepsDescriptorOrder(t *testing.T) {
	release := make(chan struct{})
	loader := LoaderFunc(func(_ context.Context, d Descriptor) (*audio.Buffer, error) {
		if d.URL == "slow" {
			<-release
		}
		return silence(1), nil
	})
	h := newHarness(t, loader)
	h.engine.Subscribe(ListenerFuncs{OnLoadProgress: func(done, _ int) {
		if done == 2 {
			close(release)
		}
	}})

	samples, err := h.engine.LoadSamples(context.Background(), descs("slow", "fast1", "fast2"))
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, "name-slow", samples[0].Name)
	assert.Equal(t, "name-fast1", samples[1].Name)
	assert.Equal(t, "name-fast2", samples[2].Name)
}

func TestLoadSamplesCapsAtGridSize(t *testing.T) {
	bufs := map[string]*audio.Buffer{}
	var urls []string
	for i := 0; i < MaxSlots+3; i++ {
		u := fmt.Sprintf("s%02d", i)
		bufs[u] = silence(0.1)
		urls = append(urls, u)
	}
	h := newHarness(t, mapLoader(bufs))

	samples, err := h.engine.LoadSamples(context.Background(), descs(urls...))
	require.NoError(t, err)
	assert.Len(t, samples, MaxSlots)
	assert.Equal(t, MaxSlots-1, samples[MaxSlots-1].Slot)
}

func TestSupersededLoadIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	loader := LoaderFunc(func(_ context.Context, d Descriptor) (*audio.Buffer, error) {
		if d.URL == "old" {
			close(started)
			<-release
		}
		return silence(1), nil
	})
	h := newHarness(t, loader)

	errc := make(chan error, 1)
	go func() {
		_, err := h.engine.LoadSamples(context.Background(), descs("old"))
		errc <- err
	}()
	<-started

	samples, err := h.engine.LoadSamples(context.Background(), descs("new1", "new2"))
	require.NoError(t, err)
	require.Len(t, samples, 2)

	close(release)
	assert.ErrorIs(t, <-errc, ErrSuperseded)

	got := h.engine.Samples()
	require.Len(t, got, 2)
	assert.Equal(t, "name-new1", got[0].Name)
	assert.False(t, h.engine.Loading())
}

func TestPadsDisabledWhileLoading(t *testing.T) {
	gate := make(chan struct{})
	block := false
	var mu sync.Mutex
	loader := LoaderFunc(func(_ context.Context, d Descriptor) (*audio.Buffer, error) {
		mu.Lock()
		b := block
		mu.Unlock()
		if b {
			<-gate
		}
		return silence(1), nil
	})
	h := newHarness(t, loader)
	_, err := h.engine.LoadSamples(context.Background(), descs("a"))
	require.NoError(t, err)
	assert.True(t, h.engine.Pads()[0].Enabled)

	mu.Lock()
	block = true
	mu.Unlock()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = h.engine.LoadSamples(context.Background(), descs("b"))
	}()
	require.Eventually(t, h.engine.Loading, time.Second, time.Millisecond)

	assert.False(t, h.engine.Pads()[0].Enabled)
	require.NoError(t, h.engine.TriggerSlot(context.Background(), 0))
	assert.Equal(t, 0, h.rec.playCount(), "no playback while loading")

	close(gate)
	<-done
	assert.True(t, h.engine.Pads()[0].Enabled)
}

func loaded(t *testing.T, bufs map[string]*audio.Buffer, urls ...string) *harness {
	t.Helper()
	h := newHarness(t, mapLoader(bufs))
	_, err := h.engine.LoadSamples(context.Background(), descs(urls...))
	require.NoError(t, err)
	return h
}

func TestTriggerPlaysTrimmedWindow(t *testing.T) {
	h := loaded(t, map[string]*audio.Buffer{"a": silence(2)}, "a")
	require.True(t, h.engine.SetTrimPosition(0, trim.Position{Left: 155, Right: 465}))

	h.clock.Advance(3)
	require.NoError(t, h.engine.TriggerSlot(context.Background(), 0))
	require.Equal(t, 1, h.rec.playCount())

	hd := h.rec.played[0]
	assert.InDelta(t, 3.0, hd.ClockStart, 1e-9)
	assert.InDelta(t, 1.0, hd.Duration, 1e-9)
	assert.Equal(t, 0, h.engine.Selected())
	assert.Equal(t, []int{0}, h.rec.selected)
	assert.Equal(t, []string{"0:true"}, h.rec.highlights)
	assert.Equal(t, trim.Position{Left: 155, Right: 465}, h.engine.Markers())
}

func TestPlayheadFollowsPlayback(t *testing.T) {
	h := loaded(t, map[string]*audio.Buffer{"a": silence(2)}, "a")
	require.NoError(t, h.engine.TriggerSlot(context.Background(), 0))

	assert.True(t, h.engine.Frame())
	h.clock.Advance(1)
	assert.True(t, h.engine.Frame())
	assert.True(t, h.engine.Playing())

	h.clock.Advance(1)
	assert.False(t, h.engine.Frame())
	assert.False(t, h.engine.Playing())
}

func TestTriggerEmptySlotIsSilent(t *testing.T) {
	h := loaded(t, map[string]*audio.Buffer{"a": silence(1)}, "a")

	require.NoError(t, h.engine.TriggerSlot(context.Background(), 5))
	require.NoError(t, h.engine.TriggerSlot(context.Background(), -1))
	assert.Equal(t, 0, h.rec.playCount())
	assert.Empty(t, h.rec.highlights)
	assert.False(t, h.engine.SelectSlot(5))
}

func TestKeyDownDebounced(t *testing.T) {
	h := loaded(t, map[string]*audio.Buffer{"a": silence(1)}, "a")
	ctx := context.Background()

	require.NoError(t, h.engine.KeyDown(ctx, "Z"))
	require.NoError(t, h.engine.KeyDown(ctx, "Z"))
	assert.Equal(t, 1, h.rec.playCount())

	h.engine.KeyUp("Z")
	require.NoError(t, h.engine.KeyDown(ctx, "Z"))
	assert.Equal(t, 2, h.rec.playCount())
	assert.Equal(t, []string{"0:true", "0:false", "0:true"}, h.rec.highlights)

	require.NoError(t, h.engine.KeyDown(ctx, "P"), "unbound keys are ignored")
	assert.Equal(t, 2, h.rec.playCount())
}

func TestMIDINotes(t *testing.T) {
	h := loaded(t, map[string]*audio.Buffer{"a": silence(1), "b": silence(1)}, "a", "b")
	ctx := context.Background()

	require.NoError(t, h.engine.NoteOn(ctx, 37, 100))
	assert.Equal(t, 1, h.rec.playCount())
	assert.Equal(t, 1, h.engine.Selected())

	require.NoError(t, h.engine.NoteOn(ctx, 37, 0))
	assert.Equal(t, 1, h.rec.playCount(), "velocity 0 is a release")
	assert.Equal(t, []string{"1:true", "1:false"}, h.rec.highlights)

	require.NoError(t, h.engine.NoteOn(ctx, 20, 100))
	assert.Equal(t, 1, h.rec.playCount())
}

func TestGridPress(t *testing.T) {
	h := loaded(t, map[string]*audio.Buffer{"a": silence(1)}, "a")
	ctx := context.Background()

	require.NoError(t, h.engine.GridPress(ctx, 3, 0, true))
	assert.Equal(t, 1, h.rec.playCount())
	require.NoError(t, h.engine.GridPress(ctx, 3, 0, false))
	require.NoError(t, h.engine.GridPress(ctx, 9, 9, true))
	assert.Equal(t, []string{"0:true", "0:false"}, h.rec.highlights)
}

func TestOverlappingTriggersDoNotCancel(t *testing.T) {
	h := loaded(t, map[string]*audio.Buffer{"a": silence(1)}, "a")
	ctx := context.Background()

	require.NoError(t, h.engine.PadDown(ctx, 0))
	h.clock.Advance(0.25)
	require.NoError(t, h.engine.PadDown(ctx, 0))
	assert.Equal(t, 2, h.clock.Active())
}

func TestPointerDragStoresTrim(t *testing.T) {
	h := loaded(t, map[string]*audio.Buffer{"a": silence(2), "b": silence(2)}, "a", "b")
	require.True(t, h.engine.SelectSlot(1))

	require.True(t, h.engine.PointerDown(618))
	require.True(t, h.engine.PointerMove(310))
	h.engine.PointerUp()
	assert.Equal(t, trim.Position{Left: 0, Right: 310}, h.engine.TrimPosition(1))
	assert.Equal(t, trim.Full(DefaultWidth), h.engine.TrimPosition(0))

	require.True(t, h.engine.SelectSlot(0))
	assert.Equal(t, trim.Full(DefaultWidth), h.engine.Markers())
	require.True(t, h.engine.SelectSlot(1))
	assert.Equal(t, trim.Position{Left: 0, Right: 310}, h.engine.Markers())

	assert.False(t, h.engine.PointerDown(150), "nothing to grab mid-track")
	assert.False(t, h.engine.PointerMove(100))
}

func TestResizeRescalesTrims(t *testing.T) {
	h := loaded(t, map[string]*audio.Buffer{"a": silence(2), "b": silence(2)}, "a", "b")
	require.True(t, h.engine.SetTrimPosition(0, trim.Position{Left: 100, Right: 300}))
	require.True(t, h.engine.SetTrimPosition(1, trim.Position{Left: 10, Right: 20}))
	require.True(t, h.engine.SelectSlot(0))

	require.True(t, h.engine.Resize(1240, 200))
	assert.False(t, h.engine.Resize(1240, 200))

	assert.Equal(t, trim.Position{Left: 200, Right: 600}, h.engine.TrimPosition(0))
	assert.Equal(t, trim.Position{Left: 20, Right: 40}, h.engine.TrimPosition(1))
	assert.Equal(t, trim.Position{Left: 200, Right: 600}, h.engine.Markers())
	assert.Equal(t, 1240, h.engine.WaveformImage().Bounds().Dx())
	assert.Equal(t, 200, h.engine.OverlayImage().Bounds().Dy())
	assert.Equal(t, trim.Full(1240), h.engine.TrimPosition(5))
}

func TestTrimsSurviveReloadOnlyForSameSample(t *testing.T) {
	bufs := map[string]*audio.Buffer{"a": silence(1), "b": silence(1), "c": silence(1)}
	h := loaded(t, bufs, "a", "b")
	h.engine.SetTrimPosition(0, trim.Position{Left: 5, Right: 50})
	h.engine.SetTrimPosition(1, trim.Position{Left: 6, Right: 60})

	_, err := h.engine.LoadSamples(context.Background(), descs("a", "c"))
	require.NoError(t, err)
	assert.Equal(t, trim.Position{Left: 5, Right: 50}, h.engine.TrimPosition(0))
	assert.Equal(t, trim.Full(DefaultWidth), h.engine.TrimPosition(1))
	assert.Equal(t, -1, h.engine.Selected())
}

func TestFrameDrawsMarkersAndPlayhead(t *testing.T) {
	h := loaded(t, map[string]*audio.Buffer{"a": silence(2)}, "a")
	h.engine.SetTrimPosition(0, trim.Position{Left: 100, Right: 300})
	require.NoError(t, h.engine.TriggerSlot(context.Background(), 0))
	require.Equal(t, 1, h.rec.playCount())

	h.clock.Advance(h.rec.played[0].Duration / 2)
	h.engine.Frame()
	img := h.engine.OverlayImage()
	assert.NotZero(t, img.RGBAAt(100, 10).A, "left marker")
	assert.NotZero(t, img.RGBAAt(200, 10).A, "playhead halfway")
	assert.Zero(t, img.RGBAAt(250, 10).A)
}

func TestUnsubscribe(t *testing.T) {
	h := loaded(t, map[string]*audio.Buffer{"a": silence(1)}, "a")
	extra := &recorder{}
	cancel := h.engine.Subscribe(extra)
	require.NoError(t, h.engine.TriggerSlot(context.Background(), 0))
	cancel()
	require.NoError(t, h.engine.TriggerSlot(context.Background(), 0))
	assert.Equal(t, 1, extra.playCount())
	assert.Equal(t, 2, h.rec.playCount())
}

func TestPadsLayout(t *testing.T) {
	h := loaded(t, map[string]*audio.Buffer{
		"a": silence(1), "b": silence(1), "c": silence(1), "d": silence(1), "e": silence(1),
	}, "a", "b", "c", "d", "e")

	pads := h.engine.Pads()
	require.Len(t, pads, MaxSlots)
	assert.Equal(t, [2]int{3, 0}, [2]int{pads[0].Row, pads[0].Col})
	assert.Equal(t, [2]int{3, 3}, [2]int{pads[3].Row, pads[3].Col})
	assert.Equal(t, [2]int{2, 0}, [2]int{pads[4].Row, pads[4].Col})
	assert.True(t, pads[4].Loaded)
	assert.False(t, pads[5].Loaded)
	assert.False(t, pads[5].Enabled)
	assert.Equal(t, "Z", pads[0].Key)
	assert.Equal(t, "name-e", pads[4].Label)
}

// gatedClock reports itself suspended and blocks the first Resume until
// gate is closed.
type gatedClock struct {
	*audio.Offline
	gate    chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (c *gatedClock) Suspended() bool { return true }

func (c *gatedClock) Resume(ctx context.Context) error {
	first := false
	c.once.Do(func() { first = true })
	if !first {
		return nil
	}
	close(c.entered)
	select {
	case <-c.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestStaleTriggerDoesNotMovePlayhead(t *testing.T) {
	clock := &gatedClock{
		Offline: audio.NewOffline(testRate, 1),
		gate:    make(chan struct{}),
		entered: make(chan struct{}),
	}
	e := New(Options{
		Loader:    mapLoader(map[string]*audio.Buffer{"a": silence(2), "b": silence(2)}),
		Scheduler: audio.NewScheduler(clock, clock.Offline),
		Logger:    log.Discard(),
	})
	rec := &recorder{}
	e.Subscribe(rec)
	_, err := e.LoadSamples(context.Background(), descs("a", "b"))
	require.NoError(t, err)
	require.True(t, e.SetTrimPosition(0, trim.Position{Left: 0, Right: 100}))
	require.True(t, e.SetTrimPosition(1, trim.Position{Left: 400, Right: 600}))

	errc := make(chan error, 1)
	go func() { errc <- e.TriggerSlot(context.Background(), 0) }()
	select {
	case <-clock.entered:
	case <-time.After(time.Second):
		t.Fatal("first trigger never reached Resume")
	}

	require.NoError(t, e.TriggerSlot(context.Background(), 1))
	close(clock.gate)
	require.NoError(t, <-errc)
	assert.Equal(t, 2, rec.playCount(), "both triggers still play")

	assert.Equal(t, 1, e.Selected())
	assert.Equal(t, trim.Position{Left: 400, Right: 600}, e.Markers())

	clock.Advance(0.2)
	require.True(t, e.Frame())
	img := e.OverlayImage()
	assert.Equal(t, playhead.DefaultColor, img.RGBAAt(462, 10), "playhead inside the selected pad's window")
	assert.NotEqual(t, playhead.DefaultColor, img.RGBAAt(62, 10), "no playhead for the superseded trigger")
}

func TestResizeDuringPlaybackRescalesPlayhead(t *testing.T) {
	h := loaded(t, map[string]*audio.Buffer{"a": silence(2)}, "a")
	require.True(t, h.engine.SetTrimPosition(0, trim.Position{Left: 300, Right: 620}))
	require.NoError(t, h.engine.TriggerSlot(context.Background(), 0))

	require.True(t, h.engine.Resize(310, DefaultHeight))
	assert.Equal(t, trim.Position{Left: 150, Right: 310}, h.engine.Markers())

	h.clock.Advance(0.5)
	require.True(t, h.engine.Frame())
	img := h.engine.OverlayImage()
	// 0.5s into a 1.032s window spanning pixels 150..310
	assert.Equal(t, playhead.DefaultColor, img.RGBAAt(227, 10))
	assert.NotEqual(t, playhead.DefaultColor, img.RGBAAt(200, 10))
}
