package shell_test

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/naveen-k/posh/pkg/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShell(t *testing.T) (*shell.Shell, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errw bytes.Buffer
	return shell.New(strings.NewReader(""), &out, &errw), &out, &errw
}

func run(t *testing.T, s *shell.Shell, out *bytes.Buffer, line string) (int, error) {
	t.Helper()
	parser := shell.NewDefaultParser()
	pipeline, err := shell.ParsePipeline(line, parser)
	require.NoError(t, err)

	return s.RunPipeline(context.Background(), pipeline, shell.IOBindings{
		Stdin:  strings.NewReader(""),
		Stdout: out,
		Stderr: out,
	})
}

func TestRunPipeline_SingleBuiltin(t *testing.T) {
	s, out, _ := newShell(t)

	code, err := run(t, s, out, "echo hello world")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hello world\n", out.String())
}

func TestRunPipeline_ExternalThroughCat(t *testing.T) {
	if _, ok := lookupOnPath("cat"); !ok {
		t.Skip("cat not found on PATH")
	}

	s, out, _ := newShell(t)

	code, err := run(t, s, out, "echo piped-through-cat | cat")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "piped-through-cat\n", out.String())
}

func TestRunPipeline_RedirectsStdoutToFile(t *testing.T) {
	s, out, _ := newShell(t)
	path := t.TempDir() + "/out.txt"

	code, err := run(t, s, out, "echo redirected > "+path)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Empty(t, out.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "redirected\n", string(data))
}

func TestRunPipeline_CommandNotFound(t *testing.T) {
	s, out, _ := newShell(t)

	code, err := run(t, s, out, "definitely-not-a-real-command")
	require.NoError(t, err)
	assert.Equal(t, -1, code)
	assert.Contains(t, out.String(), "not found")
}

func lookupOnPath(name string) (string, bool) {
	s := shell.New(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	return s.Lookup(name)
}
