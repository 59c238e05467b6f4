package shell

import (
	"errors"
	"io"
	"syscall"
)

// brokenPipeSubstring is filtered, verbatim, out of any external command's
// relayed stderr (see relayStderr in process.go). This is a known quirk of
// the original implementation rather than a deliberate design choice: it
// can mask a legitimate message that happens to contain this exact text.
// Preserved for behavioral fidelity; see DESIGN.md's Open Question
// decisions.
const brokenPipeSubstring = "write error: Broken pipe"

// writelnIgnoreBrokenPipe writes s followed by a newline to w, silently
// swallowing a broken-pipe write error. A builtin's stdout may be the
// upstream half of a pipeline whose downstream reader already exited (e.g.
// `history | head -1`), and reporting that as a builtin error would be
// noise the user can't act on.
func writelnIgnoreBrokenPipe(w io.Writer, s string) {
	if _, err := io.WriteString(w, s+"\n"); err != nil && !isBrokenPipe(err) {
		_ = err // nothing else to do with a write failure on stdout/stderr
	}
}

func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe)
}
