package shell

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errw bytes.Buffer
	s := New(&bytes.Buffer{}, &out, &errw)
	return s, &out, &errw
}

func TestBuiltinEcho(t *testing.T) {
	s, out, _ := newTestShell(t)

	if err := builtinEcho([]string{"hello", "world"}, s); err != nil {
		t.Fatalf("builtinEcho error: %v", err)
	}
	if out.String() != "hello world\n" {
		t.Errorf("echo output = %q, want %q", out.String(), "hello world\n")
	}
}

func TestBuiltinExit(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{"no argument defaults to zero", nil, 0},
		{"numeric argument", []string{"7"}, 7},
		{"unparsable argument falls back to 255", []string{"not-a-number"}, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestShell(t)
			err := builtinExit(tt.args, s)

			var exit *exitStatus
			if !errors.As(err, &exit) {
				t.Fatalf("builtinExit did not return an *exitStatus: %v", err)
			}
			if exit.Code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", exit.Code, tt.wantCode)
			}
			if !errors.Is(err, ErrExit) {
				t.Errorf("exitStatus does not unwrap to ErrExit")
			}
		})
	}
}

func TestBuiltinType(t *testing.T) {
	s, out, _ := newTestShell(t)

	if err := builtinType([]string{"echo"}, s); err != nil {
		t.Fatalf("builtinType error: %v", err)
	}
	if out.String() != "echo is a shell builtin\n" {
		t.Errorf("type echo = %q", out.String())
	}

	out.Reset()
	if err := builtinType([]string{"definitely-not-a-real-command"}, s); err != nil {
		t.Fatalf("builtinType error: %v", err)
	}
	if out.String() != "definitely-not-a-real-command: not found\n" {
		t.Errorf("type <missing> = %q", out.String())
	}
}

func TestBuiltinPwd(t *testing.T) {
	s, out, _ := newTestShell(t)

	wantDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("os.Getwd: %v", err)
	}

	if err := builtinPwd(nil, s); err != nil {
		t.Fatalf("builtinPwd error: %v", err)
	}
	if got := out.String(); got != wantDir+"\n" {
		t.Errorf("pwd = %q, want %q", got, wantDir+"\n")
	}
}

func TestBuiltinCd(t *testing.T) {
	s, out, _ := newTestShell(t)

	original, err := os.Getwd()
	if err != nil {
		t.Fatalf("os.Getwd: %v", err)
	}
	defer os.Chdir(original)

	dir := t.TempDir()
	if err := builtinCd([]string{dir}, s); err != nil {
		t.Fatalf("builtinCd error: %v", err)
	}

	got, err := os.Getwd()
	if err != nil {
		t.Fatalf("os.Getwd: %v", err)
	}
	wantDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("filepath.EvalSymlinks: %v", err)
	}
	gotResolved, err := filepath.EvalSymlinks(got)
	if err != nil {
		t.Fatalf("filepath.EvalSymlinks: %v", err)
	}
	if gotResolved != wantDir {
		t.Errorf("cwd after cd = %q, want %q", gotResolved, wantDir)
	}

	out.Reset()
	if err := builtinCd([]string{"/no/such/directory"}, s); err != nil {
		t.Fatalf("builtinCd error: %v", err)
	}
	if out.String() == "" {
		t.Errorf("cd into a missing directory should report an error on stdout")
	}
}

func TestBuiltinCd_TildeExpansion(t *testing.T) {
	s, _, _ := newTestShell(t)

	original, err := os.Getwd()
	if err != nil {
		t.Fatalf("os.Getwd: %v", err)
	}
	defer os.Chdir(original)

	home := t.TempDir()
	t.Setenv("HOME", home)

	if err := builtinCd([]string{"~"}, s); err != nil {
		t.Fatalf("builtinCd error: %v", err)
	}

	got, err := os.Getwd()
	if err != nil {
		t.Fatalf("os.Getwd: %v", err)
	}
	gotResolved, _ := filepath.EvalSymlinks(got)
	wantResolved, _ := filepath.EvalSymlinks(home)
	if gotResolved != wantResolved {
		t.Errorf("cwd after cd ~ = %q, want %q", gotResolved, wantResolved)
	}
}

func TestBuiltinHistory_NoArgsListsEverything(t *testing.T) {
	s, out, _ := newTestShell(t)
	s.History.Add("echo a")
	s.History.Add("echo b")

	if err := builtinHistory(nil, s); err != nil {
		t.Fatalf("builtinHistory error: %v", err)
	}

	want := "    1  echo a\n    2  echo b\n"
	if out.String() != want {
		t.Errorf("history = %q, want %q", out.String(), want)
	}
}

func TestBuiltinHistory_WriteThenRead(t *testing.T) {
	s, _, _ := newTestShell(t)
	path := filepath.Join(t.TempDir(), "histfile")

	s.History.Add("echo a")
	s.History.Add("echo b")

	if err := builtinHistory([]string{"-w", path}, s); err != nil {
		t.Fatalf("builtinHistory -w error: %v", err)
	}

	fresh, _, _ := newTestShell(t)
	if err := builtinHistory([]string{"-r", path}, fresh); err != nil {
		t.Fatalf("builtinHistory -r error: %v", err)
	}
	if got := fresh.History.Snapshot(); len(got) != 2 || got[0] != "echo a" || got[1] != "echo b" {
		t.Errorf("history after -r = %v", got)
	}
}
