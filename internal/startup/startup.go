package startup

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"text/template"
)

const (
	appName  = "GopherPads"
	appLabel = "com.pixpmusic.gopherpads"
)

// Enable registers the application to launch at login.
func Enable() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	switch runtime.GOOS {
	case "darwin", "linux":
		return writeEntry(entryPath(runtime.GOOS), runtime.GOOS, exe)
	case "windows":
		return exec.Command("reg", "add", runKey, "/v", appName, "/t", "REG_SZ", "/d", exe, "/f").Run()
	}
	return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
}

// Disable removes the login entry. Missing entries are not an error.
func Disable() error {
	switch runtime.GOOS {
	case "darwin", "linux":
		return removeEntry(entryPath(runtime.GOOS))
	case "windows":
		out, err := exec.Command("reg", "delete", runKey, "/v", appName, "/f").CombinedOutput()
		if err != nil && !bytes.Contains(out, []byte("unable to find")) {
			return err
		}
		return nil
	}
	return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
}

func IsEnabled() bool {
	switch runtime.GOOS {
	case "darwin", "linux":
		_, err := os.Stat(entryPath(runtime.GOOS))
		return err == nil
	case "windows":
		return exec.Command("reg", "query", runKey, "/v", appName).Run() == nil
	}
	return false
}

// Set enables or disables the entry.
func Set(on bool) error {
	if on {
		return Enable()
	}
	return Disable()
}

const runKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

var entries = map[string]*template.Template{
	"darwin": template.Must(template.New("plist").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{.Label}}</string>
    <key>ProgramArguments</key>
    <array>
        <string>{{.Exec}}</string>
    </array>
    <key>RunAtLoad</key>
    <true/>
</dict>
</plist>
`)),
	"linux": template.Must(template.New("desktop").Parse(`[Desktop Entry]
Type=Application
Name={{.Name}}
Exec={{.Exec}}
Hidden=false
NoDisplay=false
X-GNOME-Autostart-enabled=true
`)),
}

func entryPath(goos string) string {
	home, _ := os.UserHomeDir()
	if goos == "darwin" {
		return filepath.Join(home, "Library", "LaunchAgents", appLabel+".plist")
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "autostart", "gopher-pads.desktop")
}

func writeEntry(path, goos, exe string) error {
	tmpl, ok := entries[goos]
	if !ok {
		return fmt.Errorf("unsupported platform: %s", goos)
	}
	var buf bytes.Buffer
	data := struct{ Name, Label, Exec string }{appName, appLabel, exe}
	if err := tmpl.Execute(&buf, data); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func removeEntry(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
