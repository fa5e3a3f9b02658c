package window

import (
	"errors"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/PixPMusic/gopher-pads/internal/audio"
	"github.com/PixPMusic/gopher-pads/internal/preset"
)

// showImportDialog picks a local audio file, asks which preset it joins
// and uploads it to the preset service.
func (mw *MainWindow) showImportDialog() {
	if mw.client == nil {
		mw.showError(errors.New("no preset service configured"))
		return
	}
	open := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			mw.showError(err)
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()
		mw.showImportForm(path)
	}, mw.window)
	open.SetFilter(storage.NewExtensionFileFilter([]string{".wav", ".mp3"}))
	open.Show()
}

func (mw *MainWindow) showImportForm(path string) {
	presetEntry := widget.NewEntry()
	presetEntry.SetText(mw.current.Name)
	if mw.current.Local || mw.current.Name == "" {
		presetEntry.SetText("My Recordings")
	}
	sampleEntry := widget.NewEntry()
	sampleEntry.SetText(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

	items := []*widget.FormItem{
		widget.NewFormItem("Preset", presetEntry),
		widget.NewFormItem("Sample name", sampleEntry),
	}
	dialog.ShowForm("Import "+filepath.Base(path), "Upload", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		req := preset.ImportRequest{
			Path:       path,
			SampleName: strings.TrimSpace(sampleEntry.Text),
			PresetName: strings.TrimSpace(presetEntry.Text),
		}
		mw.status.SetText("Uploading " + filepath.Base(path) + "…")
		go mw.importSample(req)
	}, mw.window)
}

func (mw *MainWindow) importSample(req preset.ImportRequest) {
	res, err := preset.Import(mw.ctx, mw.client, audio.DefaultDecoder, req)
	if err != nil {
		mw.log.Warnf("Import %s: %v", req.Path, err)
		fyne.Do(func() { mw.showError(err) })
		return
	}
	mw.log.Infof("Uploaded %d file(s) into %s", res.Uploaded, req.PresetName)
	fyne.Do(func() {
		mw.cfg.CurrentPreset = req.PresetName
		mw.RefreshPresets()
	})
}

func (mw *MainWindow) showError(err error) {
	dialog.ShowError(err, mw.window)
}
