package window

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/PixPMusic/gopher-pads/internal/config"
)

// ============ DEVICES TAB ============

func (mw *MainWindow) createDevicesTab() fyne.CanvasObject {
	devicesHeader := widget.NewLabel("MIDI Devices")
	devicesHeader.TextStyle = fyne.TextStyle{Bold: true}

	addBtn := widget.NewButtonWithIcon("Add Device", theme.ContentAddIcon(), func() {
		mw.addDevice()
	})

	devicesToolbar := container.NewBorder(nil, nil, devicesHeader, addBtn)

	headerName := widget.NewLabel("Name")
	headerName.TextStyle = fyne.TextStyle{Bold: true}
	headerIn := widget.NewLabel("Input Port")
	headerIn.TextStyle = fyne.TextStyle{Bold: true}
	headerOut := widget.NewLabel("Output Port")
	headerOut.TextStyle = fyne.TextStyle{Bold: true}
	headerType := widget.NewLabel("Type")
	headerType.TextStyle = fyne.TextStyle{Bold: true}
	headerActions := widget.NewLabel("")

	columnHeaders := container.NewGridWithColumns(5,
		headerName, headerIn, headerOut, headerType, headerActions,
	)

	mw.deviceList = widget.NewList(
		func() int { return len(mw.cfg.Devices) },
		func() fyne.CanvasObject { return mw.createDeviceRow() },
		func(id widget.ListItemID, obj fyne.CanvasObject) { mw.updateDeviceRow(id, obj) },
	)

	saveBtn := widget.NewButtonWithIcon("Save & Activate Devices", theme.DocumentSaveIcon(), func() {
		mw.saveAndActivate()
	})
	saveBtn.Importance = widget.HighImportance

	actionsSection := container.NewVBox(
		widget.NewSeparator(),
		mw.createLEDColorsRow(),
		widget.NewSeparator(),
		container.NewHBox(saveBtn),
	)

	return container.NewBorder(
		container.NewVBox(devicesToolbar, widget.NewSeparator(), columnHeaders),
		actionsSection,
		nil, nil,
		mw.deviceList,
	)
}

func (mw *MainWindow) createDeviceRow() fyne.CanvasObject {
	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("Device Name")

	inPortSelect := widget.NewSelect([]string{}, nil)
	inPortSelect.PlaceHolder = "Select..."

	outPortSelect := widget.NewSelect([]string{}, nil)
	outPortSelect.PlaceHolder = "Select..."

	typeSelect := widget.NewSelect([]string{"Classic", "Colorful", "Generic"}, nil)
	typeSelect.PlaceHolder = "Type"

	removeBtn := widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)

	return container.NewGridWithColumns(5,
		nameEntry, inPortSelect, outPortSelect, typeSelect,
		container.NewCenter(removeBtn),
	)
}

func (mw *MainWindow) updateDeviceRow(id widget.ListItemID, obj fyne.CanvasObject) {
	if id >= len(mw.cfg.Devices) {
		return
	}

	device := &mw.cfg.Devices[id]
	grid := obj.(*fyne.Container)

	nameEntry := grid.Objects[0].(*widget.Entry)
	inPortSelect := grid.Objects[1].(*widget.Select)
	outPortSelect := grid.Objects[2].(*widget.Select)
	typeSelect := grid.Objects[3].(*widget.Select)
	removeBtnContainer := grid.Objects[4].(*fyne.Container)
	removeBtn := removeBtnContainer.Objects[0].(*widget.Button)

	inPorts := mw.midiManager.ListInPorts()
	outPorts := mw.midiManager.ListOutPorts()

	inPortSelect.Options = append([]string{"(None)"}, inPorts...)
	outPortSelect.Options = append([]string{"(None)"}, outPorts...)

	nameEntry.SetText(device.Name)
	nameEntry.OnChanged = func(s string) { device.Name = s }

	if device.InPort == "" {
		inPortSelect.SetSelected("(None)")
	} else {
		inPortSelect.SetSelected(device.InPort)
	}
	inPortSelect.OnChanged = func(s string) {
		if s == "(None)" {
			device.InPort = ""
		} else {
			device.InPort = s
		}
	}

	if device.OutPort == "" {
		outPortSelect.SetSelected("(None)")
	} else {
		outPortSelect.SetSelected(device.OutPort)
	}
	outPortSelect.OnChanged = func(s string) {
		if s == "(None)" {
			device.OutPort = ""
		} else {
			device.OutPort = s
		}
	}

	switch device.Type {
	case config.DeviceTypeClassic:
		typeSelect.SetSelected("Classic")
	case config.DeviceTypeGeneric:
		typeSelect.SetSelected("Generic")
	default:
		typeSelect.SetSelected("Colorful")
	}
	typeSelect.OnChanged = func(s string) {
		switch s {
		case "Classic":
			device.Type = config.DeviceTypeClassic
		case "Colorful":
			device.Type = config.DeviceTypeColorful
		case "Generic":
			device.Type = config.DeviceTypeGeneric
		}
	}

	deviceID := device.ID
	removeBtn.OnTapped = func() { mw.removeDevice(deviceID) }
}

func (mw *MainWindow) addDevice() {
	newDevice := config.NewDeviceConfig()
	mw.cfg.AddDevice(newDevice)
	mw.deviceList.Refresh()
}

func (mw *MainWindow) removeDevice(id string) {
	mw.cfg.RemoveDevice(id)
	mw.deviceList.Refresh()
}

func (mw *MainWindow) saveAndActivate() {
	mw.save()
	mw.InitializeDevices()
}

// createLEDColorsRow edits the colors mirrored onto controller pads.
func (mw *MainWindow) createLEDColorsRow() fyne.CanvasObject {
	header := widget.NewLabel("Pad LEDs")
	header.TextStyle = fyne.TextStyle{Bold: true}

	c := &mw.cfg.PadColors
	return container.NewHBox(header,
		mw.ledSwatch("Empty", &c.Empty),
		mw.ledSwatch("Loaded", &c.Loaded),
		mw.ledSwatch("Pressed", &c.Pressed),
	)
}

// ledSwatch shows a color preview; tapping it opens a picker. Colors are
// stored at MIDI resolution (0-127).
func (mw *MainWindow) ledSwatch(name string, c *config.PadColorConfig) fyne.CanvasObject {
	rect := canvas.NewRectangle(ledPreview(*c))
	rect.SetMinSize(fyne.NewSize(28, 28))
	rect.CornerRadius = 4

	open := func() {
		picker := dialog.NewColorPicker(name+" LED", "", func(col color.Color) {
			r, g, b, _ := col.RGBA()
			*c = config.PadColorConfig{R: uint8(r >> 9), G: uint8(g >> 9), B: uint8(b >> 9)}
			rect.FillColor = ledPreview(*c)
			rect.Refresh()
		}, mw.window)
		picker.Advanced = true
		picker.SetColor(ledPreview(*c))
		picker.Show()
	}
	return container.NewHBox(widget.NewLabel(name), newTappableRect(rect, open))
}

func ledPreview(c config.PadColorConfig) color.Color {
	return color.NRGBA{R: c.R << 1, G: c.G << 1, B: c.B << 1, A: 0xff}
}
