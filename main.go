package main

import (
	"context"
	stdlog "log"
	"time"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
	"github.com/PixPMusic/gopher-pads/internal/audio"
	"github.com/PixPMusic/gopher-pads/internal/config"
	"github.com/PixPMusic/gopher-pads/internal/log"
	"github.com/PixPMusic/gopher-pads/internal/midi"
	"github.com/PixPMusic/gopher-pads/internal/pads"
	"github.com/PixPMusic/gopher-pads/internal/preset"
	"github.com/PixPMusic/gopher-pads/internal/tray"
	"github.com/PixPMusic/gopher-pads/internal/waveform"
	"github.com/PixPMusic/gopher-pads/internal/window"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register rtmidi driver
)

// openAudio prefers the system device and falls back to a silent clock
// so the UI still works without one.
func openAudio(ctx context.Context, cfg *config.Config, logger *log.Logger) (audio.Clock, audio.Sink, func()) {
	openCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out, err := audio.NewOutput(openCtx, audio.OutputOptions{
		SampleRate: cfg.SampleRate,
		Channels:   audio.DefaultChannels,
		Latency:    time.Duration(cfg.LatencyMS) * time.Millisecond,
	})
	if err == nil {
		return out, out.Mixer(), func() { _ = out.Close() }
	}

	logger.Warnf("No audio device (%v), running silent", err)
	off := audio.NewOffline(cfg.SampleRate, audio.DefaultChannels)
	runCtx, stop := context.WithCancel(ctx)
	go off.Run(runCtx, 10*time.Millisecond)
	return off, off, stop
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}
	logger := log.New(stdlog.Writer(), log.LevelFromString(cfg.LogLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock, sink, closeAudio := openAudio(ctx, cfg, logger)
	defer closeAudio()

	font, err := waveform.ParseFont(theme.DefaultTextFont().Content())
	if err != nil {
		logger.Warnf("Caption font: %v", err)
	}

	engine := pads.New(pads.Options{
		Loader:        pads.NewLoader(preset.NewFetcher(), audio.DefaultDecoder),
		Scheduler:     audio.NewScheduler(clock, sink),
		Bindings:      pads.NewBindings(pads.DefaultKeys, uint8(cfg.BaseNote)),
		Logger:        logger,
		WaveformColor: cfg.WaveColor(),
		CaptionFont:   font,
	})

	client := preset.NewClient(cfg.APIBase)
	catalog := preset.NewCatalog(client, preset.Dir(cfg.PresetDir), logger)

	// Initialize MIDI manager
	midiManager := midi.NewManager()
	defer midiManager.Close()
	feedback := midi.NewFeedback(midiManager, midi.DefaultColors(), logger)

	// Create Fyne app
	fyneApp := app.NewWithID("com.pixpmusic.gopherpads")

	mainWindow := window.NewMainWindow(fyneApp, window.Options{
		Config:   cfg,
		Engine:   engine,
		Catalog:  catalog,
		Client:   client,
		MIDI:     midiManager,
		Feedback: feedback,
		Logger:   logger,
	})
	defer mainWindow.Close()

	hasTray := tray.Setup(fyneApp, cfg, logger, tray.Callbacks{
		OnOpen:   mainWindow.Show,
		OnReload: mainWindow.RefreshPresets,
		OnQuit:   fyneApp.Quit,
	})

	mainWindow.InitializeDevices()
	mainWindow.RefreshPresets()

	// Show window on first launch or when there is no tray to reopen it from
	if !cfg.FirstLaunchCompleted || !hasTray {
		if !cfg.FirstLaunchCompleted {
			cfg.FirstLaunchCompleted = true
			if err := cfg.Save(); err != nil {
				logger.Errorf("Failed to save config: %v", err)
			}
		}
		mainWindow.Show()
	}

	// Run the Fyne app (this blocks until app.Quit is called)
	fyneApp.Run()
}
