// Package editor launches the user's preferred text editor on the
// configuration file.
package editor

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/thoreinstein/appcfg/internal/errors"
)

// Open launches the editor on path and waits for it to exit. The location is
// announced on w first.
//
// $EDITOR and $VISUAL may carry arguments, e.g. "code --wait".
func Open(path string, w io.Writer) error {
	argv := Command()
	fmt.Fprintf(w, "Location: %s\n", path)

	cmd := exec.Command(argv[0], append(argv[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", argv[0])
	}
	return nil
}

// Command returns the editor command line. Fallback chain: $EDITOR, $VISUAL,
// nano, vi.
func Command() []string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			return fields
		}
	}

	if _, err := exec.LookPath("nano"); err == nil {
		return []string{"nano"}
	}
	return []string{"vi"}
}
