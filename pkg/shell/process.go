package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// stageResult is a stage's outcome: an exit code plus any error that
// prevented the stage from producing one meaningfully (e.g. the command
// could not be started, or a builtin returned an error such as exit's
// *exitStatus).
type stageResult struct {
	code int
	err  error
}

// RunPipeline executes a parsed Pipeline against a base set of I/O
// bindings (normally the shell's own stdin/stdout/stderr) and returns the
// exit code of the last stage.
//
// For a single stage this reduces to "apply redirections, dispatch builtin
// or external, done". For multiple stages it allocates a pipe per junction,
// spawns every stage concurrently, and waits for all of them before
// returning — mirroring how a real shell's fork/exec/pipe loop behaves
// without this implementation needing to touch raw file descriptors or
// fork itself: os.Pipe() supplies the real OS-level plumbing, and
// os/exec.Cmd's Stdin/Stdout/Stderr fields accept those pipe ends directly.
//
// Builtins that are not the pipeline's last stage run in a goroutine (their
// observable effect on the parent shell, such as `cd`'s working-directory
// change, would be moot mid-pipeline anyway, since only the last stage's
// side effects on the shell are meaningful). A builtin that IS the last
// stage runs in the calling goroutine, with runBuiltinStage rebinding the
// shell's Out/Err to the stage's bindings for the duration of the call,
// exactly as the single-stage case works.
func (shell *Shell) RunPipeline(ctx context.Context, pipeline *Pipeline, base IOBindings) (int, error) {
	n := len(pipeline.Stages)
	if n == 0 {
		return 0, nil
	}

	stdins := make([]io.Reader, n)
	stdouts := make([]io.Writer, n)
	var closers []io.Closer

	stdins[0] = base.Stdin
	stdouts[n-1] = base.Stdout

	for i := 0; i < n-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			for _, c := range closers {
				_ = c.Close()
			}
			return -1, fmt.Errorf("fork failed: %w", err)
		}
		stdouts[i] = w
		stdins[i+1] = r
		closers = append(closers, r, w)
	}

	results := make([]stageResult, n)

	var wg sync.WaitGroup
	for i, stage := range pipeline.Stages {
		i, stage := i, stage
		isLast := i == n-1

		// Only the pipe ends belong to the stage; the base bindings stay open.
		var ownIn io.Reader
		var ownOut io.Writer
		if i > 0 {
			ownIn = stdins[i]
		}
		if !isLast {
			ownOut = stdouts[i]
		}

		opened := openRedirections(stage.Redirections, DefaultFileOpener{})

		bindings := opened.applyToBindings(IOBindings{
			Stdin:  stdins[i],
			Stdout: stdouts[i],
			Stderr: base.Stderr,
		})

		if builtin, ok := shell.builtins[stage.Command()]; ok {
			if isLast {
				results[i] = shell.runBuiltinStage(builtin, stage, bindings, opened)
				closeStageEnds(ownIn, ownOut)
			} else {
				wg.Add(1)
				go func() {
					defer wg.Done()
					results[i] = shell.runBuiltinStage(builtin, stage, bindings, opened)
					closeStageEnds(ownIn, ownOut)
				}()
			}
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = shell.runExternalStage(ctx, stage, bindings, opened)
			closeStageEnds(ownIn, ownOut)
		}()
	}

	wg.Wait()

	last := results[n-1]
	return last.code, last.err
}

// closeStageEnds closes the pipe ends this stage owns once it's done with
// them, so downstream readers observe EOF and upstream writers don't block
// on a reader that will never arrive.
func closeStageEnds(stdin io.Reader, stdout io.Writer) {
	if c, ok := stdin.(io.Closer); ok {
		_ = c.Close()
	}
	if c, ok := stdout.(io.Closer); ok {
		_ = c.Close()
	}
}

func (shell *Shell) runBuiltinStage(builtin Builtin, stage Stage, bindings IOBindings, opened *OpenedRedirections) stageResult {
	defer opened.Close()

	prevOut, prevErr := shell.Out, shell.Err
	shell.Out, shell.Err = bindings.Stdout, bindings.Stderr
	err := builtin(stage.Args(), shell)
	shell.Out, shell.Err = prevOut, prevErr

	if err != nil {
		return stageResult{code: -1, err: err}
	}
	return stageResult{code: 0}
}

func (shell *Shell) runExternalStage(ctx context.Context, stage Stage, bindings IOBindings, opened *OpenedRedirections) stageResult {
	defer opened.Close()

	name := stage.Command()
	path, ok := shell.Lookup(name)
	if !ok {
		fmt.Fprintln(shell.Out, name+": command not found")
		return stageResult{code: -1}
	}

	argv := append([]string{name}, shell.resolveArgs(stage.ArgWords())...)

	_, hasStderrRedirect := redirectsFD(stage.Redirections, 2)

	execBindings := bindings
	if !hasStderrRedirect {
		r, w, err := os.Pipe()
		if err == nil {
			execBindings.Stderr = w
			relayDone := make(chan struct{})
			go func() {
				defer close(relayDone)
				relayStderr(r, bindings.Stderr)
			}()
			defer func() {
				_ = w.Close()
				<-relayDone
				_ = r.Close()
			}()
		}
	}

	code, err := shell.executor.Execute(ctx, path, argv, execBindings)
	return stageResult{code: code, err: err}
}

func redirectsFD(redirs []Redirection, fd int) (Redirection, bool) {
	for _, r := range redirs {
		if r.FD == fd {
			return r, true
		}
	}
	return Redirection{}, false
}

// relayStderr copies a child's captured stderr to dst line by line,
// dropping any line that contains the literal substring
// "write error: Broken pipe" — see util.go's brokenPipeSubstring.
func relayStderr(src io.Reader, dst io.Writer) {
	sc := bufio.NewScanner(src)
	for sc.Scan() {
		line := sc.Text()
		if strings.Contains(line, brokenPipeSubstring) {
			continue
		}
		fmt.Fprintln(dst, line)
	}
}

// resolveArgs applies the argument-mangling heuristics to a stage's
// argument words when the shell's configuration enables them, returning
// plain strings ready for argv.
func (shell *Shell) resolveArgs(argWords []Word) []string {
	out := make([]string, len(argWords))
	for i, w := range argWords {
		if shell.config.EnableArgMangling {
			out[i] = mangleArgument(w)
		} else {
			out[i] = w.Text
		}
	}
	return out
}
