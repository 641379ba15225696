package player

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Browser opens URLs with the operating system's default handler.
type Browser struct {
	goos string
	run  runner
}

// NewBrowser creates a Browser for the running OS.
func NewBrowser() *Browser {
	return &Browser{goos: runtime.GOOS, run: (*exec.Cmd).Run}
}

func (b *Browser) Name() string { return "browser" }

func (b *Browser) Available() bool {
	name, _ := openerCommand(b.goos, "")
	_, err := exec.LookPath(name)
	return err == nil
}

// Open launches the OS opener. The opener returns once it has handed the
// URL to the browser, so this blocks only briefly.
func (b *Browser) Open(url, title string) error {
	name, args := openerCommand(b.goos, url)
	cmd := exec.Command(name, args...)
	if err := b.run(cmd); err != nil {
		return fmt.Errorf("opening %q with %s: %w", title, name, err)
	}
	return nil
}

// openerCommand returns the program and arguments that open url on goos.
func openerCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}
