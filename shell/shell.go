// Package shell runs external commands and answers small questions about the
// host environment.
package shell

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/kingrea/kipoiutils/internal/ctxlog"
)

// ErrLFSMissing is returned by LFSInstalled when git-lfs is not on PATH.
var ErrLFSMissing = errors.New("shell: git-lfs not installed")

// CallOptions tune Call.
type CallOptions struct {
	// Echo copies every stdout line to Stdout (os.Stdout when nil) as it
	// arrives.
	Echo   bool
	Stdout io.Writer
	Dir    string
	// Env entries are appended to the current environment.
	Env []string
	// DryRun returns the command without running it.
	DryRun bool
}

// Result describes a finished (or dry-run) command.
type Result struct {
	Cmd   string
	Args  []string
	Code  int
	Lines []string
}

// CommandError reports a command that could not start or exited non-zero.
type CommandError struct {
	Cmd    string
	Args   []string
	Code   int
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	argv := strings.Join(append([]string{e.Cmd}, e.Args...), " ")
	if e.Err != nil && e.Code == 0 {
		return fmt.Sprintf("shell: could not invoke [%s]: %v", argv, e.Err)
	}
	return fmt.Sprintf("shell: could not invoke [%s]\nreturn code: %d\nadditional info: %s", argv, e.Code, e.Output)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Call runs name with args and collects its stdout line by line, right
// trimmed. Stderr is inherited. A non-zero exit yields a *CommandError that
// carries the output.
func Call(ctx context.Context, name string, args []string, opts CallOptions) (*Result, error) {
	res := &Result{Cmd: name, Args: append([]string(nil), args...)}
	if opts.DryRun {
		return res, nil
	}
	log := ctxlog.FromContext(ctx)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	cmd.Stderr = os.Stderr
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &CommandError{Cmd: name, Args: res.Args, Err: err}
	}
	log.Debug("running command", "cmd", name, "args", args)
	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Cmd: name, Args: res.Args, Err: err}
	}

	echo := opts.Stdout
	if echo == nil {
		echo = os.Stdout
	}
	var errOut bytes.Buffer
	readErr := readLines(stdout, func(line string) {
		if opts.Echo {
			fmt.Fprintln(echo, line)
		}
		line = strings.TrimRight(line, " \t\r\n")
		errOut.WriteString(strings.ReplaceAll(line, "\x1b", "\n"))
		res.Lines = append(res.Lines, line)
	})

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.Code = exitErr.ExitCode()
		}
		log.Debug("command failed", "cmd", name, "code", res.Code, "error", err)
		return res, &CommandError{Cmd: name, Args: res.Args, Code: res.Code, Output: errOut.String(), Err: err}
	}
	if readErr != nil {
		return res, &CommandError{Cmd: name, Args: res.Args, Output: errOut.String(), Err: readErr}
	}
	return res, nil
}

// readLines calls fn for every line of r, without its newline, however long
// the line is. On a read error the rest of r is discarded so the writer is
// never left blocked.
func readLines(r io.Reader, fn func(string)) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			fn(strings.TrimSuffix(line, "\n"))
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			_, _ = io.Copy(io.Discard, r)
			return err
		}
	}
}

// CmdExists reports whether name resolves to an executable on PATH.
func CmdExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// LFSInstalled reports whether git-lfs is available. When it is not, raise
// selects between returning ErrLFSMissing and logging a warning.
func LFSInstalled(ctx context.Context, raise bool) (bool, error) {
	if CmdExists("git-lfs") {
		return true, nil
	}
	if raise {
		return false, ErrLFSMissing
	}
	ctxlog.FromContext(ctx).Warn("git-lfs not installed")
	return false, nil
}

// DiskUsage returns the human readable size of path as reported by du -sh,
// or "NA" when it cannot be determined.
func DiskUsage(ctx context.Context, path string) string {
	out, err := exec.CommandContext(ctx, "du", "-sh", path).Output()
	if err != nil {
		ctxlog.FromContext(ctx).Debug("du failed", "path", path, "error", err)
		return "NA"
	}
	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return "NA"
	}
	return fields[0]
}
