package shell

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// LineEditor reads one line of input at a time. Close releases any
// underlying terminal resources.
type LineEditor interface {
	Readline() (string, error)
	Close() error
}

// NewLineEditor picks a readline-backed editor when stdin is an interactive
// terminal, and degrades to a plain line-at-a-time reader otherwise (a
// bufio.Scanner, which may read ahead of the line it returns) — so
// `posh < script.sh` or a pipe behaves identically to the core regardless
// of which editor backend would otherwise be wired in.
func NewLineEditor(in io.Reader, prompt string, historyFile string, shell *Shell) LineEditor {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          prompt,
			HistoryFile:     historyFile,
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
			AutoComplete:    &completer{shell: shell},
			Stdin:           f,
		})
		if err == nil {
			return &readlineEditor{rl: rl}
		}
		// fall through to the scanner on readline init failure (e.g. a
		// terminfo lookup failure in a minimal container)
	}
	return &scannerEditor{sc: bufio.NewScanner(in)}
}

type readlineEditor struct {
	rl *readline.Instance
}

func (e *readlineEditor) Readline() (string, error) {
	line, err := e.rl.Readline()
	if err == readline.ErrInterrupt {
		// Ctrl-C discards the current input; the REPL skips the empty line.
		return "", nil
	}
	return line, err
}

func (e *readlineEditor) Close() error {
	return e.rl.Close()
}

// scannerEditor is the non-interactive fallback: no editing, no history
// recall, no completion, just one line per Readline call.
type scannerEditor struct {
	sc *bufio.Scanner
}

func (e *scannerEditor) Readline() (string, error) {
	if !e.sc.Scan() {
		if err := e.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return e.sc.Text(), nil
}

func (e *scannerEditor) Close() error { return nil }

// completer implements readline.AutoCompleter: with no other word on the
// line it completes builtin names and PATH executables, otherwise it
// completes filesystem paths relative to the current working directory.
type completer struct {
	shell *Shell
}

func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
	fields := strings.Fields(text)

	if len(fields) == 0 || (len(fields) == 1 && !strings.HasSuffix(text, " ")) {
		prefix := ""
		if len(fields) == 1 {
			prefix = fields[0]
		}
		return c.completeCommand(prefix)
	}

	lastSpace := strings.LastIndex(text, " ")
	partial := ""
	if lastSpace < len(text)-1 {
		partial = text[lastSpace+1:]
	}
	return c.completePath(partial)
}

func (c *completer) completeCommand(prefix string) ([][]rune, int) {
	seen := map[string]bool{}
	var names []string

	for name := range c.shell.builtins {
		if strings.HasPrefix(name, prefix) && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}

	for _, dir := range c.shell.pathDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			name := e.Name()
			if !strings.HasPrefix(name, prefix) || seen[name] {
				continue
			}
			info, err := e.Info()
			if err != nil || !info.Mode().IsRegular() || info.Mode()&0111 == 0 {
				continue
			}
			names = append(names, name)
			seen[name] = true
		}
	}

	sort.Strings(names)
	return suffixesAfter(names, prefix), len(prefix)
}

func (c *completer) completePath(partial string) ([][]rune, int) {
	dir := filepath.Dir(partial)
	base := filepath.Base(partial)
	if partial == "" {
		dir, base = ".", ""
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0
	}

	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), base) {
			name := e.Name()
			if e.IsDir() {
				name += "/"
			}
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return suffixesAfter(names, base), len(base)
}

func suffixesAfter(names []string, prefix string) [][]rune {
	out := make([][]rune, len(names))
	for i, n := range names {
		out[i] = []rune(strings.TrimPrefix(n, prefix))
	}
	return out
}
