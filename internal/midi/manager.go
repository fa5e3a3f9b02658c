package midi

import (
	"errors"
	"fmt"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// ErrPortNotFound is returned when a named port is not present.
var ErrPortNotFound = errors.New("midi port not found")

// Manager discovers ports and talks to controllers through the
// registered gomidi driver.
type Manager struct {
	mu sync.Mutex
}

func NewManager() *Manager {
	return &Manager{}
}

// Close releases the driver.
func (m *Manager) Close() {
	midi.CloseDriver()
}

func (m *Manager) ListInPorts() []string {
	ins := midi.GetInPorts()
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names
}

func (m *Manager) ListOutPorts() []string {
	outs := midi.GetOutPorts()
	names := make([]string, 0, len(outs))
	for _, out := range outs {
		names = append(names, out.String())
	}
	return names
}

func findIn(name string) (drivers.In, error) {
	for _, in := range midi.GetInPorts() {
		if in.String() == name {
			return in, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPortNotFound, name)
}

func findOut(name string) (drivers.Out, error) {
	for _, out := range midi.GetOutPorts() {
		if out.String() == name {
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPortNotFound, name)
}

// StartListening delivers translated events from port to fn until the
// returned stop function is called. The callback runs on the driver's
// goroutine.
func (m *Manager) StartListening(port string, t DeviceType, fn func(Event)) (func(), error) {
	if port == "" {
		return func() {}, nil
	}
	in, err := findIn(port)
	if err != nil {
		return nil, err
	}
	dev := GetDevice(t)
	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		if ev, ok := Translate(dev, port, msg); ok {
			fn(ev)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", port, err)
	}
	return stop, nil
}

func (m *Manager) withSender(port string, fn func(send func(midi.Message) error) error) error {
	if port == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out, err := findOut(port)
	if err != nil {
		return err
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return fmt.Errorf("open sender for %s: %w", port, err)
	}
	return fn(send)
}

func (m *Manager) ActivateProgrammerMode(port string, t DeviceType) error {
	return m.withSender(port, GetDevice(t).ActivateProgrammerMode)
}

// SetPadColor lights a pad addressed in device coordinates.
func (m *Manager) SetPadColor(port string, t DeviceType, row, col int, c PadColor) error {
	return m.withSender(port, func(send func(midi.Message) error) error {
		return GetDevice(t).SetPadColor(send, row, col, c)
	})
}

func (m *Manager) ClearAllPads(port string, t DeviceType) error {
	return m.withSender(port, GetDevice(t).ClearAllPads)
}
