package shell

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrExit signals that the shell should terminate. The exit builtin returns
// an *exitStatus that unwraps to it; Run() finds that *exitStatus with
// errors.As and stops the loop.
var ErrExit = errors.New("exit")

// exitStatus wraps ErrExit to carry the process's requested exit code.
type exitStatus struct {
	Code int
}

func (e *exitStatus) Error() string { return "exit" }
func (e *exitStatus) Unwrap() error { return ErrExit }

// Builtin is an in-process command. It reads args (the stage's words after
// the command name) and writes to s.Out/s.Err, which the shell has already
// rebound to that stage's redirection targets before calling in.
type Builtin func(args []string, s *Shell) error

func (shell *Shell) registerBuiltins() {
	shell.builtins["echo"] = builtinEcho
	shell.builtins["exit"] = builtinExit
	shell.builtins["type"] = builtinType
	shell.builtins["pwd"] = builtinPwd
	shell.builtins["cd"] = builtinCd
	shell.builtins["history"] = builtinHistory
}

func builtinEcho(args []string, s *Shell) error {
	writelnIgnoreBrokenPipe(s.Out, strings.Join(args, " "))
	return nil
}

// builtinExit terminates the shell. With no argument the exit code is 0;
// with an argument that doesn't parse as an integer, the exit code falls
// back to 255 (matching the original implementation's unwrap_or(255), see
// DESIGN.md's Open Question decisions).
func builtinExit(args []string, s *Shell) error {
	code := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			code = 255
		} else {
			code = n
		}
	}
	return &exitStatus{Code: code}
}

func builtinType(args []string, s *Shell) error {
	if len(args) == 0 {
		fmt.Fprintln(s.Out, "type: usage: type NAME")
		return nil
	}

	name := args[0]

	if _, ok := s.builtins[name]; ok {
		fmt.Fprintln(s.Out, name, "is a shell builtin")
		return nil
	}

	if path, ok := s.Lookup(name); ok {
		fmt.Fprintln(s.Out, name, "is", path)
		return nil
	}

	fmt.Fprintln(s.Out, name+": not found")
	return nil
}

func builtinPwd(args []string, s *Shell) error {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(s.Err, "error finding directory:", err)
		return nil
	}
	fmt.Fprintln(s.Out, dir)
	return nil
}

func builtinCd(args []string, s *Shell) error {
	var target string

	if len(args) == 0 {
		fmt.Fprintln(s.Out, "cd: missing argument")
		return nil
	}
	target = args[0]

	if target == "~" || strings.HasPrefix(target, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			fmt.Fprintln(s.Err, "cd: HOME not set")
			return nil
		}
		if target == "~" {
			target = home
		} else {
			target = filepath.Join(home, target[2:])
		}
	}

	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		fmt.Fprintf(s.Out, "cd: %s: No such file or directory\n", args[0])
		return nil
	}

	if err := os.Chdir(target); err != nil {
		fmt.Fprintf(s.Out, "cd: %s: No such file or directory\n", args[0])
	}

	return nil
}

// builtinHistory implements `history`, `history n`, `history -r file`,
// `history -w file`, and `history -a file`. The file-writing forms push
// their own reconstructed invocation line into the in-memory history
// before persisting (see History.PushIfNotLast), replicating a quirk of
// the original implementation exactly enough that scripted sequences of
// `history -a $HISTFILE` produce byte-identical files.
func builtinHistory(args []string, s *Shell) error {
	if len(args) == 2 {
		switch args[0] {
		case "-r":
			if err := s.History.Load(args[1]); err != nil {
				fmt.Fprintln(s.Out, "history: cannot read:", err)
			}
			return nil
		case "-w":
			s.History.PushIfNotLast(historyInvocation("-w", args[1]))
			if err := s.History.WriteFile(args[1]); err != nil {
				fmt.Fprintln(s.Out, "history: cannot write:", err)
			}
			return nil
		case "-a":
			s.History.PushIfNotLast(historyInvocation("-a", args[1]))
			if err := s.History.Append(args[1]); err != nil {
				fmt.Fprintln(s.Out, "history: cannot append:", err)
			}
			return nil
		}
	}

	if len(args) == 1 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			s.History.List(s.Out, n, true)
			return nil
		}
	}

	s.History.List(s.Out, 0, false)
	return nil
}

func historyInvocation(flag, path string) string {
	return strings.Join([]string{"history", flag, path}, " ")
}
