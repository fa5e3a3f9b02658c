package tray

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/PixPMusic/gopher-pads/internal/config"
	"github.com/PixPMusic/gopher-pads/internal/log"
	"github.com/PixPMusic/gopher-pads/internal/startup"
)

// Callbacks for tray menu actions
type Callbacks struct {
	OnOpen   func()
	OnReload func()
	OnQuit   func()
}

func call(fn func()) func() {
	return func() {
		if fn != nil {
			fn()
		}
	}
}

// Setup installs the tray menu when running as a desktop app. It reports
// whether a tray is available.
func Setup(app fyne.App, cfg *config.Config, logger *log.Logger, callbacks Callbacks) bool {
	desk, ok := app.(desktop.App)
	if !ok {
		return false
	}

	startupItem := fyne.NewMenuItem("Open at Startup", nil)
	startupItem.Checked = cfg.OpenAtStartup

	menu := fyne.NewMenu("GopherPads",
		fyne.NewMenuItem("Open GopherPads", call(callbacks.OnOpen)),
		fyne.NewMenuItem("Reload Presets", call(callbacks.OnReload)),
		fyne.NewMenuItemSeparator(),
		startupItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", call(callbacks.OnQuit)),
	)

	// Set after the menu exists so it can refresh itself.
	startupItem.Action = func() {
		on := !startupItem.Checked
		if err := startup.Set(on); err != nil {
			logger.Warnf("Open at startup: %v", err)
			return
		}
		startupItem.Checked = on
		cfg.OpenAtStartup = on
		if err := cfg.Save(); err != nil {
			logger.Errorf("Failed to save config: %v", err)
		}
		menu.Refresh()
	}

	desk.SetSystemTrayMenu(menu)
	desk.SetSystemTrayIcon(theme.FileAudioIcon())
	return true
}
