package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
)

// History is the shell's shared, ordered list of accepted command lines. It
// is process-wide mutable state and is guarded by a single mutex for the
// whole shell (§5 of the shell's design notes: one shared resource, one
// lock, short critical sections).
//
// Alongside the entry list, History tracks how many entries have already
// been appended to each path by a previous `history -a <path>`, so repeated
// `-a` calls to the same file only append their new tail.
type History struct {
	mu       sync.Mutex
	entries  []string
	limit    int
	appended map[string]int
}

// NewHistory builds an empty History. A non-positive limit means unbounded.
func NewHistory(limit int) *History {
	return &History{appended: make(map[string]int), limit: limit}
}

// Add appends one entry, trimming the oldest entries past the configured
// limit. Trimming shifts each `-a` append-counter down by the number of
// entries dropped, so every counter still marks the first held entry that
// its file has not yet received.
func (h *History) Add(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, line)
	if h.limit > 0 && len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		h.entries = h.entries[drop:]
		for path, mark := range h.appended {
			mark -= drop
			if mark < 0 {
				mark = 0
			}
			h.appended[path] = mark
		}
	}
}

// Len returns the number of entries currently held.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Last returns the most recent entry and whether one exists.
func (h *History) Last() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return "", false
	}
	return h.entries[len(h.entries)-1], true
}

// Snapshot returns a copy of every entry in order.
func (h *History) Snapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// List writes the formatted history listing to w: no-arg form prints every
// entry, an n-arg form prints only the last n (still numbered by true
// position). Numbering is right-justified to a display width of 5, using
// rune-width-aware padding so wide characters in an entry don't skew later
// columns.
func (h *History) List(w io.Writer, n int, hasN bool) {
	entries := h.Snapshot()

	start := 0
	if hasN {
		if n < 0 {
			n = 0
		}
		if n < len(entries) {
			start = len(entries) - n
		}
	}

	for i := start; i < len(entries); i++ {
		idx := strconv.Itoa(i + 1)
		pad := 5 - runewidth.StringWidth(idx)
		if pad < 0 {
			pad = 0
		}
		fmt.Fprintf(w, "%s%s  %s\n", strings.Repeat(" ", pad), idx, entries[i])
	}
}

// Load reads non-empty lines from path and appends each to the in-memory
// history, in file order. Missing files are treated as empty (no error).
func (h *History) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		h.Add(line)
	}
	return sc.Err()
}

// WriteFile truncates path and writes every in-memory entry, one per line.
func (h *History) WriteFile(path string) error {
	entries := h.Snapshot()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	for _, e := range entries {
		if _, err := fmt.Fprintln(bw, e); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Append appends to path only the entries not yet written by a previous
// Append call to this same path, then records the new high-water mark.
func (h *History) Append(path string) error {
	h.mu.Lock()
	start := h.appended[path]
	if start > len(h.entries) {
		start = len(h.entries)
	}
	tail := make([]string, len(h.entries)-start)
	copy(tail, h.entries[start:])
	newMark := len(h.entries)
	h.mu.Unlock()

	if len(tail) == 0 {
		h.mu.Lock()
		h.appended[path] = newMark
		h.mu.Unlock()
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	for _, e := range tail {
		if _, err := fmt.Fprintln(bw, e); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	h.mu.Lock()
	h.appended[path] = newMark
	h.mu.Unlock()
	return nil
}

// PushIfNotLast appends line to the history unless it already equals the
// most recent entry. The `history -w`/`history -a` builtins call this with
// their own reconstructed invocation string before persisting, matching the
// original implementation's defensive self-logging behavior — in the
// ordinary REPL flow the line is already the last entry (the REPL pushes
// every accepted line before dispatch), so this is normally a no-op, but it
// guards the builtin against being invoked in a context where that push
// didn't happen.
func (h *History) PushIfNotLast(line string) {
	h.mu.Lock()
	last := ""
	if len(h.entries) > 0 {
		last = h.entries[len(h.entries)-1]
	}
	needsPush := last != line
	h.mu.Unlock()

	if needsPush {
		h.Add(line)
	}
}
