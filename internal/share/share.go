// Package share copies reel links to the system clipboard.
package share

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
)

// Copy puts text on the clipboard. When command is non-empty it is run
// with the text on stdin, which covers terminals where no native
// clipboard is reachable (ssh sessions with osc52 helpers, wl-copy,
// tmux load-buffer). Otherwise the platform clipboard is used.
func Copy(command, text string) error {
	if command != "" {
		parts := strings.Fields(command)
		cmd := exec.Command(parts[0], parts[1:]...)
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("share command %q: %w", parts[0], err)
		}
		return nil
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}
