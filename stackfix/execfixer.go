package stackfix

import (
	"bufio"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jfrog/jfrog-client-go/utils/errorutils"
	"github.com/jfrog/jfrog-client-go/utils/io/fileutils"
	"github.com/jfrog/jfrog-client-go/utils/log"
	"github.com/webrunner/harness-cli-core/runner"
	"github.com/webrunner/harness-cli-core/utils/coreutils"
)

func init() {
	Register(DefaultFixerName, newExecFixer)
}

// execFixer pipes frame lines through the fix-stacks executable shipped in
// the utility directory. The subprocess is started on the first frame and
// kept alive for the remaining ones, since loading symbol tables is the
// expensive part.
type execFixer struct {
	executable string

	mutex      sync.Mutex
	cmd        *exec.Cmd
	stdin      *bufio.Writer
	stdout     *bufio.Reader
	warnedSlow bool
}

func newExecFixer(utilityPath string, build runner.BuildInfo) (SymbolFixer, error) {
	fileName := DefaultFixerName + build.BinSuffix
	executable := filepath.Join(utilityPath, fileName)
	exists, err := fileutils.IsFileExists(executable, false)
	if err != nil {
		return nil, err
	}
	if !exists {
		// Packaged builds ship the utility next to the harness, developer
		// machines usually carry it on PATH instead.
		executable = coreutils.FindInPath(fileName, os.Getenv("PATH"))
		if executable == "" {
			return nil, errorutils.CheckErrorf("couldn't find '%s' in the utility path or on PATH", fileName)
		}
	}
	return &execFixer{executable: executable}, nil
}

func (f *execFixer) FixSymbols(line string, opts FixOptions) (string, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if err := f.ensureStarted(opts); err != nil {
		return "", err
	}

	if _, err := f.stdin.WriteString(line + "\n"); err != nil {
		return "", errorutils.CheckError(err)
	}
	if err := f.stdin.Flush(); err != nil {
		return "", errorutils.CheckError(err)
	}
	fixed, err := f.stdout.ReadString('\n')
	if err != nil {
		return "", errorutils.CheckError(err)
	}
	return strings.TrimSuffix(fixed, "\n"), nil
}

func (f *execFixer) ensureStarted(opts FixOptions) error {
	if f.cmd != nil {
		return nil
	}

	if opts.SlowWarning && !f.warnedSlow {
		f.warnedSlow = true
		log.Info("Initializing stack-fixing for the first stack frame, this may take a while...")
	}

	var args []string
	if opts.BreakpadSymsDir != "" {
		args = append(args, "-b", opts.BreakpadSymsDir)
	}
	cmd := exec.Command(f.executable, args...)
	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return errorutils.CheckError(err)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return errorutils.CheckError(err)
	}
	if err := cmd.Start(); err != nil {
		return coreutils.ConvertExitCodeError(errorutils.CheckError(err))
	}

	f.cmd = cmd
	f.stdin = bufio.NewWriter(stdinPipe)
	f.stdout = bufio.NewReader(stdoutPipe)
	return nil
}

// Close terminates the fix-stacks subprocess, if one was started.
func (f *execFixer) Close() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.cmd == nil {
		return nil
	}
	if err := f.cmd.Process.Kill(); err != nil {
		return errorutils.CheckError(err)
	}
	err := f.cmd.Wait()
	f.cmd = nil
	return coreutils.ConvertExitCodeError(err)
}
