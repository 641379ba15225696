package player

import (
	"fmt"
	"os/exec"
)

// Generic launches a named browser binary (firefox, chromium, ...) with the
// URL as its only argument.
type Generic struct {
	name string
	run  runner
}

func (g *Generic) Name() string { return g.name }

func (g *Generic) Available() bool {
	_, err := exec.LookPath(g.name)
	return err == nil
}

// Open starts the browser and returns without waiting for it to exit.
func (g *Generic) Open(url, title string) error {
	run := g.run
	if run == nil {
		run = detach
	}
	cmd := exec.Command(g.name, url)
	if err := run(cmd); err != nil {
		return fmt.Errorf("running %s for %q: %w", g.name, title, err)
	}
	return nil
}
