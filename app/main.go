// Command posh is an interactive POSIX-sh-subset command-line shell.
//
// # Features
//
// Built-in Commands:
//   - echo:    Print arguments to stdout
//   - exit:    Terminate the shell, optionally with an exit code
//   - type:    Display command type information
//   - pwd:     Print working directory
//   - cd:      Change directory (with tilde expansion)
//   - history: List, load, write, or append the command history
//
// External Commands:
//   - Any executable found in PATH, or named by a path containing a `/`
//   - Full argument and quoting support
//
// I/O Redirection:
//   - >   or 1>   : Redirect stdout (overwrite)
//   - >>  or 1>>  : Redirect stdout (append)
//   - 2>          : Redirect stderr (overwrite)
//   - 2>>         : Redirect stderr (append)
//
// Pipelines:
//   - Any number of stages joined by `|`, each of which may be a builtin
//     or an external command
//
// # Configuration
//
// An optional YAML rc file (see internal/config) sets the prompt string,
// a history capacity limit, and whether the argument-mangling
// compatibility heuristics are enabled. Its path is $POSHRC, or
// $HOME/.poshrc.yaml if that's unset.
//
// # Environment
//
// The shell reads the following environment variables:
//   - PATH:     Colon-separated list of directories to search for executables
//   - HOME:     User's home directory (used for tilde expansion in cd)
//   - HISTFILE: If set, history is loaded from this file at startup and
//     appended to it at exit, as if `history -r`/`history -a` ran implicitly
//   - POSHRC:   Overrides the rc file path (see internal/config)
//
// # Exit Codes
//
//   - 0:     Normal termination (EOF or a bare `exit`)
//   - N:     `exit N`
//   - 1:     Fatal I/O error reading the input stream
package main

import (
	"fmt"
	"os"

	"github.com/naveen-k/posh/pkg/shell"
)

func main() {
	s := shell.New(os.Stdin, os.Stdout, os.Stderr)

	code, err := s.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "posh:", err)
		os.Exit(1)
	}
	os.Exit(code)
}
