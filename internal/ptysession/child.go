package ptysession

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/creack/pty"
	"github.com/google/shlex"
)

// defaultRows and defaultCols are used when no COLUMNS/LINES hint is present
// in the environment and the caller didn't supply an explicit size.
const (
	defaultRows = 30
	defaultCols = 80
)

// inheritedEnvVars are passed through from the current process environment
// to the child unchanged, alongside the color/size overrides child applies.
var inheritedEnvVars = []string{"HOME", "USER", "PATH", "SHELL", "LANG", "LC_ALL", "PWD"}

// Child owns a spawned agent process and its PTY master.
type Child struct {
	Cmd *exec.Cmd
	Pty *os.File
}

// SpawnChild starts agent with args under a new PTY of the given size,
// inheriting the environment described in §4.1: TERM/COLORTERM/FORCE_COLOR
// plus COLUMNS/LINES overrides, and a filtered set of inherited variables.
// extraArgs, if non-empty, is shell-tokenized and appended after args.
func SpawnChild(agent string, args []string, extraArgs string, size GridSize) (*Child, error) {
	finalArgs := args
	if extraArgs != "" {
		toks, err := shlex.Split(extraArgs)
		if err != nil {
			return nil, fmt.Errorf("ptysession: parse extra args %q: %w", extraArgs, err)
		}
		finalArgs = append(append([]string{}, args...), toks...)
	}

	cmd := exec.Command(agent, finalArgs...)
	cmd.Env = buildChildEnv(size)
	if wd, err := os.Getwd(); err == nil {
		cmd.Dir = wd
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: size.Rows,
		Cols: size.Cols,
	})
	if err != nil {
		return nil, fmt.Errorf("ptysession: spawn %q: %w", agent, err)
	}
	return &Child{Cmd: cmd, Pty: ptmx}, nil
}

// resolveSize applies §4.1/§6's initial-size precedence: the COLUMNS/LINES
// environment variables, when present, are the documented hint source and
// override whatever size the caller computed (e.g. from an ioctl against
// the controlling terminal); any dimension still zero after that falls back
// to the caller-supplied size, and finally to the 80x30 default.
func resolveSize(size GridSize) GridSize {
	if rows, cols, ok := sizeFromEnv(); ok {
		if rows > 0 {
			size.Rows = rows
		}
		if cols > 0 {
			size.Cols = cols
		}
	}
	if size.Rows == 0 {
		size.Rows = defaultRows
	}
	if size.Cols == 0 {
		size.Cols = defaultCols
	}
	return size
}

// sizeFromEnv parses the COLUMNS/LINES environment variables named in
// §4.1/§6. Either may be absent or invalid; ok reports whether at least one
// parsed successfully.
func sizeFromEnv() (rows, cols uint16, ok bool) {
	if v, present := os.LookupEnv("LINES"); present {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			rows = uint16(n)
			ok = true
		}
	}
	if v, present := os.LookupEnv("COLUMNS"); present {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cols = uint16(n)
			ok = true
		}
	}
	return rows, cols, ok
}

func buildChildEnv(size GridSize) []string {
	env := []string{
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
		"FORCE_COLOR=1",
		fmt.Sprintf("COLUMNS=%d", size.Cols),
		fmt.Sprintf("LINES=%d", size.Rows),
	}
	for _, name := range inheritedEnvVars {
		if v, ok := os.LookupEnv(name); ok {
			env = append(env, name+"="+v)
		}
	}
	return env
}

// Resize applies a new size to the PTY master.
func (c *Child) Resize(size GridSize) error {
	return pty.Setsize(c.Pty, &pty.Winsize{Rows: size.Rows, Cols: size.Cols})
}

// Close releases the PTY master. It does not wait for or kill the child;
// callers that need that do it explicitly via Cmd.Process.
func (c *Child) Close() error {
	return c.Pty.Close()
}

// Kill sends SIGKILL to the child process, if still running.
func (c *Child) Kill() error {
	if c.Cmd.Process == nil {
		return nil
	}
	return c.Cmd.Process.Kill()
}
