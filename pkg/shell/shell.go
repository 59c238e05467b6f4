// Package shell implements an interactive POSIX-sh-subset command-line
// shell: a REPL that tokenizes each line with quote and escape handling,
// builds a pipeline of builtins and external processes joined by `|`,
// applies stdout/stderr redirections, and waits for every stage to
// complete before prompting again.
//
// # I/O Redirection
//
// The shell supports standard I/O redirection operators:
//   - >   or 1>   : Redirect stdout (truncate)
//   - >>  or 1>>  : Redirect stdout (append)
//   - 2>          : Redirect stderr (truncate)
//   - 2>>         : Redirect stderr (append)
//
// # Architecture
//
// The shell is built from pluggable components: Parser (tokenizes one
// stage), the pipeline splitter and redirection extractor (ExtractRedirections),
// Executor (runs one external command), and a builtin registry. Tests
// exercise these independently of the interactive REPL loop.
//
// # Thread Safety
//
// A Shell instance is not safe for concurrent use by multiple goroutines
// driving its REPL; the History it owns is safe for concurrent access
// because a pipeline's stages run concurrently and may each touch it.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/naveen-k/posh/internal/config"
)

// Shell is a command-line shell instance.
type Shell struct {
	in  io.Reader
	Out io.Writer
	Err io.Writer

	pathDirs []string
	builtins map[string]Builtin
	executor Executor
	parser   Parser

	History *History
	config  config.Config
}

// New creates a Shell reading from in and writing to out/errw. PATH is
// captured once at construction time. The optional rc file (see
// internal/config) is loaded here; a malformed file is reported to errw
// and the shell proceeds with defaults rather than refusing to start.
func New(in io.Reader, out, errw io.Writer) *Shell {
	path := os.Getenv("PATH")
	var dirs []string
	if path != "" {
		dirs = strings.Split(path, string(os.PathListSeparator))
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(errw, "posh: config:", err)
	}

	shell := &Shell{
		in:       in,
		Out:      out,
		Err:      errw,
		pathDirs: dirs,
		builtins: make(map[string]Builtin),
		executor: &DefaultExecutor{},
		parser:   NewDefaultParser(),
		History:  NewHistory(cfg.HistoryLimit),
		config:   cfg,
	}

	shell.registerBuiltins()
	return shell
}

// Lookup searches the shell's captured PATH directories for a regular,
// executable file named name, returning its full path.
func (shell *Shell) Lookup(name string) (string, bool) {
	if strings.Contains(name, string(os.PathSeparator)) {
		if info, err := os.Stat(name); err == nil && info.Mode().IsRegular() && info.Mode()&0111 != 0 {
			return name, true
		}
		return "", false
	}

	for _, dir := range shell.pathDirs {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil {
			if info.Mode().IsRegular() && info.Mode()&0111 != 0 {
				return candidate, true
			}
		}
	}
	return "", false
}

// histFile resolves $HISTFILE, or "" if unset.
func histFile() string {
	return os.Getenv("HISTFILE")
}

// Run starts the REPL loop: print the prompt, read a line, push it to
// history, parse it into a Pipeline, execute, repeat. It returns the
// process exit code requested by `exit` (0 on a normal EOF) and a non-nil
// error only for a fatal, unrecoverable condition — parse errors and
// command-not-found are reported and do not end the loop, and a
// redirection target that fails to open is silently dropped.
func (shell *Shell) Run() (int, error) {
	if hf := histFile(); hf != "" {
		if err := shell.History.Load(hf); err != nil {
			fmt.Fprintln(shell.Err, "posh: reading HISTFILE:", err)
		}
	}

	readlineHistory := ""
	if home, err := os.UserHomeDir(); err == nil {
		readlineHistory = filepath.Join(home, ".posh_history")
	}

	editor := NewLineEditor(shell.in, shell.config.Prompt, readlineHistory, shell)
	defer editor.Close()

	defer func() {
		if hf := histFile(); hf != "" {
			if err := shell.History.Append(hf); err != nil {
				fmt.Fprintln(shell.Err, "posh: writing HISTFILE:", err)
			}
		}
	}()

	for {
		line, err := editor.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, nil
			}
			return 0, err
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		shell.History.Add(trimmed)

		code, execErr := shell.execLine(line)
		var exit *exitStatus
		if errors.As(execErr, &exit) {
			return exit.Code, nil
		}
		_ = code
	}
}

// execLine parses and runs one raw command line (which may itself be a
// multi-stage pipeline) against the shell's real stdin/stdout/stderr.
func (shell *Shell) execLine(line string) (int, error) {
	pipeline, err := ParsePipeline(line, shell.parser)
	if err != nil {
		fmt.Fprintln(shell.Err, err)
		return -1, nil
	}

	if len(pipeline.Stages) == 0 {
		return 0, nil
	}

	base := IOBindings{
		Stdin:  bufio.NewReader(shell.in),
		Stdout: shell.Out,
		Stderr: shell.Err,
	}

	code, err := shell.RunPipeline(context.Background(), pipeline, base)

	var exit *exitStatus
	if errors.As(err, &exit) {
		return code, err
	}
	if err != nil {
		fmt.Fprintln(shell.Err, "posh:", err)
	}
	return code, nil
}
