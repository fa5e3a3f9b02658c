package window

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/PixPMusic/gopher-pads/internal/audio"
	"github.com/PixPMusic/gopher-pads/internal/config"
	"github.com/PixPMusic/gopher-pads/internal/log"
	"github.com/PixPMusic/gopher-pads/internal/midi"
	"github.com/PixPMusic/gopher-pads/internal/pads"
	"github.com/PixPMusic/gopher-pads/internal/preset"
)

// Options wires the window to the rest of the application.
type Options struct {
	Config   *config.Config
	Engine   *pads.Engine
	Catalog  *preset.Catalog
	Client   *preset.Client
	MIDI     *midi.Manager
	Feedback *midi.Feedback
	Logger   *log.Logger
	// OnSave runs after the config is written.
	OnSave func()
}

// MainWindow manages the main application window
type MainWindow struct {
	window      fyne.Window
	app         fyne.App
	cfg         *config.Config
	engine      *pads.Engine
	catalog     *preset.Catalog
	client      *preset.Client
	midiManager *midi.Manager
	feedback    *midi.Feedback
	log         *log.Logger
	onSave      func()

	ctx    context.Context
	cancel context.CancelFunc

	// Sampler tab
	padButtons   [pads.MaxSlots]*padButton
	wave         *canvas.Raster
	overlay      *canvas.Raster
	progress     *widget.ProgressBar
	status       *widget.Label
	presetSelect *widget.Select
	presets      []preset.Preset
	current      preset.Preset

	overlayDirty atomic.Bool
	wasPlaying   bool
	ticker       *fyne.Animation

	// Devices tab
	deviceList *widget.List

	midiStopFuncs []func()
	unsubscribe   func()
}

// NewMainWindow creates the main application window
func NewMainWindow(app fyne.App, opts Options) *MainWindow {
	win := app.NewWindow("GopherPads")
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	mw := &MainWindow{
		window:      win,
		app:         app,
		cfg:         opts.Config,
		engine:      opts.Engine,
		catalog:     opts.Catalog,
		client:      opts.Client,
		midiManager: opts.MIDI,
		feedback:    opts.Feedback,
		log:         opts.Logger,
		onSave:      opts.OnSave,
		ctx:         ctx,
		cancel:      cancel,
	}

	mw.setupUI()
	mw.subscribe()
	mw.bindKeys()

	win.Resize(fyne.NewSize(720, 640))
	win.CenterOnScreen()

	win.SetCloseIntercept(func() {
		win.Hide()
	})

	mw.ticker = fyne.NewAnimation(time.Second, func(float32) { mw.tick() })
	mw.ticker.RepeatCount = fyne.AnimationRepeatForever
	mw.ticker.Curve = fyne.AnimationLinear
	mw.ticker.Start()

	return mw
}

func (mw *MainWindow) setupUI() {
	samplerTab := container.NewTabItemWithIcon("Pads", theme.MediaPlayIcon(), mw.createSamplerTab())
	devicesTab := container.NewTabItemWithIcon("Devices", theme.SettingsIcon(), mw.createDevicesTab())

	tabs := container.NewAppTabs(samplerTab, devicesTab)
	tabs.SetTabLocation(container.TabLocationTop)

	mw.window.SetContent(tabs)
}

// ============ SAMPLER TAB ============

func (mw *MainWindow) createSamplerTab() fyne.CanvasObject {
	mw.presetSelect = widget.NewSelect(nil, func(name string) {
		for _, p := range mw.presets {
			if p.Name == name {
				mw.LoadPreset(p)
				return
			}
		}
	})
	mw.presetSelect.PlaceHolder = "Preset"

	reloadBtn := widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() { mw.RefreshPresets() })
	importBtn := widget.NewButtonWithIcon("Import Sample", theme.UploadIcon(), func() { mw.showImportDialog() })
	saveBtn := widget.NewButtonWithIcon("Save Locally", theme.DocumentSaveIcon(), func() { mw.saveCurrentLocally() })

	toolbar := container.NewBorder(nil, nil,
		widget.NewLabelWithStyle("Preset", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(reloadBtn, importBtn, saveBtn),
		mw.presetSelect,
	)

	mw.progress = widget.NewProgressBar()
	mw.status = widget.NewLabel("No sample selected")
	mw.status.Truncation = fyne.TextTruncateEllipsis

	mw.wave = canvas.NewRaster(func(w, h int) image.Image {
		mw.engine.Resize(w, h)
		return mw.engine.WaveformImage()
	})
	mw.overlay = canvas.NewRaster(func(w, h int) image.Image {
		mw.engine.Resize(w, h)
		mw.engine.Frame()
		return mw.engine.OverlayImage()
	})
	surface := newTrimSurface(mw.wave, mw.overlay)
	surface.onDown = func(x float64) bool {
		ok := mw.engine.PointerDown(x)
		mw.overlayDirty.Store(ok)
		return ok
	}
	surface.onMove = func(x float64) bool {
		moved := mw.engine.PointerMove(x)
		if moved {
			mw.overlayDirty.Store(true)
		}
		return moved
	}
	surface.onUp = func() { mw.engine.PointerUp() }

	return container.NewBorder(
		container.NewVBox(toolbar, mw.progress, widget.NewSeparator()),
		mw.status,
		nil, nil,
		container.NewBorder(container.NewPadded(surface), nil, nil, nil, mw.createPadGrid()),
	)
}

func (mw *MainWindow) createPadGrid() fyne.CanvasObject {
	grid := container.NewGridWithColumns(pads.Cols)

	for row := 0; row < pads.Rows; row++ {
		for col := 0; col < pads.Cols; col++ {
			slot, _ := pads.SlotAt(row, col)
			btn := newPadButton(
				func() {
					if err := mw.engine.PadDown(mw.ctx, slot); err != nil {
						mw.log.Warnf("Pad %d: %v", slot, err)
					}
				},
				func() { mw.engine.PadUp(slot) },
			)
			mw.padButtons[slot] = btn
			grid.Add(btn)
		}
	}
	mw.refreshPads(mw.engine.Pads())
	return grid
}

func (mw *MainWindow) refreshPads(ps []pads.Pad) {
	for _, p := range ps {
		if b := mw.padButtons[p.Slot]; b != nil {
			b.SetPad(p)
		}
	}
}

// subscribe mirrors engine events into widgets. Events may arrive on any
// goroutine.
func (mw *MainWindow) subscribe() {
	mw.unsubscribe = mw.engine.Subscribe(pads.ListenerFuncs{
		OnLoadProgress: func(done, total int) {
			fyne.Do(func() {
				mw.progress.Max = float64(total)
				mw.progress.SetValue(float64(done))
			})
		},
		OnPadsChanged: func(ps []pads.Pad) {
			fyne.Do(func() {
				mw.refreshPads(ps)
				mw.wave.Refresh()
				mw.overlayDirty.Store(true)
			})
		},
		OnSelected: func(slot int, name string) {
			fyne.Do(func() {
				mw.status.SetText(fmt.Sprintf("Pad %d: %s", slot+1, name))
				mw.wave.Refresh()
				mw.overlayDirty.Store(true)
			})
		},
		OnHighlight: func(slot int, on bool) {
			fyne.Do(func() {
				if b := mw.padButtons[slot]; b != nil {
					b.SetPressed(on)
				}
			})
		},
		OnPlayed: func(int, *audio.Handle) {
			mw.overlayDirty.Store(true)
		},
	})
	if mw.feedback != nil {
		mw.engine.Subscribe(mw.feedback)
	}
}

func (mw *MainWindow) bindKeys() {
	dc, ok := mw.window.Canvas().(desktop.Canvas)
	if !ok {
		return
	}
	dc.SetOnKeyDown(func(e *fyne.KeyEvent) {
		if err := mw.engine.KeyDown(mw.ctx, string(e.Name)); err != nil {
			mw.log.Warnf("Key %s: %v", e.Name, err)
		}
	})
	dc.SetOnKeyUp(func(e *fyne.KeyEvent) {
		mw.engine.KeyUp(string(e.Name))
	})
}

// tick runs on the UI goroutine every frame. The overlay is redrawn while
// the playhead moves, once more after it stops, and after marker edits.
func (mw *MainWindow) tick() {
	playing := mw.engine.Playing()
	if mw.overlayDirty.Swap(false) || playing || mw.wasPlaying {
		mw.overlay.Refresh()
	}
	mw.wasPlaying = playing
}

// ============ PRESETS ============

// RefreshPresets reloads the catalog and loads the configured preset, the
// first available one, or the built-in kit.
func (mw *MainWindow) RefreshPresets() {
	go func() {
		ps := mw.catalog.List(mw.ctx)
		fyne.Do(func() {
			mw.presets = ps
			names := make([]string, 0, len(ps))
			for _, p := range ps {
				names = append(names, p.Name)
			}
			mw.presetSelect.Options = names
			mw.presetSelect.Refresh()

			p, ok := preset.Find(ps, mw.cfg.CurrentPreset)
			if !ok {
				mw.log.Infof("No presets available, loading built-in kit")
				mw.presetSelect.ClearSelected()
				mw.loadDescriptors(preset.Preset{Name: "Built-in"}, preset.FallbackDescriptors())
				return
			}
			if mw.presetSelect.Selected == p.Name {
				mw.LoadPreset(p)
				return
			}
			mw.presetSelect.SetSelected(p.Name)
		})
	}()
}

// LoadPreset swaps the pads to p's samples in the background.
func (mw *MainWindow) LoadPreset(p preset.Preset) {
	mw.loadDescriptors(p, mw.catalog.Descriptors(p))
}

func (mw *MainWindow) loadDescriptors(p preset.Preset, descs []pads.Descriptor) {
	mw.progress.SetValue(0)
	mw.status.SetText("Loading " + p.Name + "…")
	go func() {
		samples, err := mw.engine.LoadSamples(mw.ctx, descs)
		switch {
		case errors.Is(err, pads.ErrSuperseded):
			return
		case err != nil:
			mw.log.Warnf("Loading %s: %v", p.Name, err)
			return
		}
		mw.log.Infof("Preset %s: %d pads", p.Name, len(samples))
		fyne.Do(func() {
			mw.current = p
			mw.status.SetText(fmt.Sprintf("%s: %d of %d samples", p.Name, len(samples), len(descs)))
			if p.ID == "" && p.Slug == "" && !p.Local {
				return
			}
			if mw.cfg.CurrentPreset != p.Name {
				mw.cfg.CurrentPreset = p.Name
				mw.save()
			}
		})
	}()
}

// saveCurrentLocally copies the loaded preset into the local folder with
// resolved sample URLs.
func (mw *MainWindow) saveCurrentLocally() {
	p := mw.current
	if p.Name == "" || mw.cfg.PresetDir == "" {
		return
	}
	descs := mw.catalog.Descriptors(p)
	local := preset.NewPreset(p.Name, p.Type)
	for _, d := range descs {
		local.Samples = append(local.Samples, preset.Sample{URL: d.URL, Name: d.DisplayName()})
	}
	path, err := preset.Dir(mw.cfg.PresetDir).Save(local)
	if err != nil {
		mw.showError(err)
		return
	}
	mw.status.SetText("Saved " + path)
}

// ============ MIDI ============

// InitializeDevices puts controllers in programmer mode, lights their
// pads and starts listening for input.
func (mw *MainWindow) InitializeDevices() {
	var outs []midi.Output
	for _, device := range mw.cfg.Devices {
		if device.OutPort == "" || device.Type == config.DeviceTypeGeneric {
			continue
		}
		deviceType := midi.DeviceType(device.Type)
		if err := mw.midiManager.ActivateProgrammerMode(device.OutPort, deviceType); err != nil {
			mw.log.Warnf("Failed to activate programmer mode for %s: %v", device.Name, err)
			continue
		}
		if err := mw.midiManager.ClearAllPads(device.OutPort, deviceType); err != nil {
			mw.log.Warnf("Failed to clear %s: %v", device.Name, err)
		}
		mw.log.Infof("Activated programmer mode for %s", device.Name)
		outs = append(outs, midi.Output{Port: device.OutPort, Type: deviceType})
	}
	if mw.feedback != nil {
		c := mw.cfg.PadColors
		mw.feedback.SetColors(midi.Colors{
			Empty:   midi.PadColor(c.Empty),
			Loaded:  midi.PadColor(c.Loaded),
			Pressed: midi.PadColor(c.Pressed),
		})
		mw.feedback.PadsChanged(mw.engine.Pads())
		mw.feedback.SetOutputs(outs)
	}

	mw.StartMIDIListeners()
}

// StartMIDIListeners begins listening for MIDI input from all configured
// devices, or from every input port when no device has one set.
func (mw *MainWindow) StartMIDIListeners() {
	mw.StopMIDIListeners()

	configured := make([]midi.Input, 0, len(mw.cfg.Devices))
	for _, device := range mw.cfg.Devices {
		configured = append(configured, midi.Input{Port: device.InPort, Type: midi.DeviceType(device.Type)})
	}
	for _, in := range midi.Inputs(configured, mw.midiManager.ListInPorts()) {
		stop, err := mw.midiManager.StartListening(in.Port, in.Type, mw.handleMIDI)
		if err != nil {
			mw.log.Warnf("Failed to start listener for %s: %v", in.Port, err)
			continue
		}
		mw.midiStopFuncs = append(mw.midiStopFuncs, stop)
		mw.log.Infof("Started listening on %s", in.Port)
	}
}

func (mw *MainWindow) handleMIDI(ev midi.Event) {
	var err error
	switch {
	case ev.Grid:
		err = mw.engine.GridPress(mw.ctx, ev.Row, ev.Col, ev.On)
	case ev.On:
		err = mw.engine.NoteOn(mw.ctx, ev.Note, ev.Velocity)
	default:
		mw.engine.NoteOff(ev.Note)
	}
	if err != nil {
		mw.log.Warnf("MIDI from %s: %v", ev.Port, err)
	}
}

// StopMIDIListeners stops all MIDI input listeners
func (mw *MainWindow) StopMIDIListeners() {
	for _, stop := range mw.midiStopFuncs {
		if stop != nil {
			stop()
		}
	}
	mw.midiStopFuncs = nil
}

func (mw *MainWindow) save() {
	if err := mw.cfg.Save(); err != nil {
		mw.log.Errorf("Failed to save config: %v", err)
		return
	}
	if mw.onSave != nil {
		mw.onSave()
	}
}

// Show displays the window
func (mw *MainWindow) Show() {
	mw.deviceList.Refresh()
	mw.window.Show()
}

// Hide hides the window
func (mw *MainWindow) Hide() {
	mw.window.Hide()
}

// Close stops listeners and cancels in-flight loads.
func (mw *MainWindow) Close() {
	mw.ticker.Stop()
	mw.StopMIDIListeners()
	if mw.unsubscribe != nil {
		mw.unsubscribe()
	}
	mw.cancel()
}

// Window returns the underlying fyne.Window
func (mw *MainWindow) Window() fyne.Window {
	return mw.window
}
