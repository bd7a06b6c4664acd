package stackfix

import (
	"fmt"
	"os"
	"regexp"
	"sync"

	"github.com/jfrog/jfrog-client-go/utils/errorutils"
	"github.com/jfrog/jfrog-client-go/utils/io/fileutils"
	"github.com/jfrog/jfrog-client-go/utils/log"
	"github.com/webrunner/harness-cli-core/runner"
	"github.com/webrunner/harness-cli-core/utils/coreutils"
)

// DefaultFixerName is the registry name of the exec-backed fixer shipped
// with this module.
const DefaultFixerName = "fix-stacks"

// frameRe matches the code-address marker emitted for captured stack
// frames, e.g. "#01: ???[/builds/app/libwebrunner.so +0x3b47d2]".
var frameRe = regexp.MustCompile(`#\d+: .+\[.+ \+0x[0-9A-Fa-f]+\]`)

// FixOptions controls a single line fix.
type FixOptions struct {
	// BreakpadSymsDir selects breakpad symbol-file resolution when non-empty.
	// Preferred for automation, where native symbols may have been stripped.
	BreakpadSymsDir string
	// SlowWarning asks the fixer to warn once that the first resolution may
	// take a while.
	SlowWarning bool
	// HideErrors suppresses per-line resolution error logging.
	HideErrors bool
}

// SymbolFixer rewrites one captured output line, replacing the raw code
// address with a resolved symbol (function name / file / line).
type SymbolFixer interface {
	FixSymbols(line string, opts FixOptions) (string, error)
}

// FixerFactory builds a SymbolFixer from the directory holding the debug
// utility binaries.
type FixerFactory func(utilityPath string, build runner.BuildInfo) (SymbolFixer, error)

var (
	registryMutex sync.Mutex
	registry      = make(map[string]FixerFactory)
)

// Register makes a fixer implementation resolvable by name. The name is
// matched against the stackfix.fixer configuration key at startup.
func Register(name string, factory FixerFactory) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	registry[name] = factory
}

func resolveFixer(name, utilityPath string, build runner.BuildInfo) (SymbolFixer, error) {
	registryMutex.Lock()
	factory, ok := registry[name]
	registryMutex.Unlock()
	if !ok {
		return nil, errorutils.CheckErrorf("unknown stack fixer '%s'", name)
	}
	return factory(utilityPath, build)
}

// Options controls the selection of a stack fixing function.
type Options struct {
	// UtilityPath is the directory holding the debug utility binaries.
	UtilityPath string
	// SymbolsPath optionally points at a breakpad symbols directory.
	SymbolsPath string
	// HideErrors suppresses per-line resolution error logging.
	HideErrors bool
	// FixerName overrides the registered fixer to use. Empty selects
	// DefaultFixerName.
	FixerName string
}

// FixerFunc rewrites one line of captured output. Lines that do not carry a
// code-address marker are returned unchanged.
type FixerFunc func(line string) string

// StackFixer returns a stack fixing function to use on output lines, or nil
// when no fixing is available: non-debug builds, stack fixing disabled via
// the environment, or an unsupported platform for native resolution.
func StackFixer(opts Options, platform runner.Platform, build runner.BuildInfo) FixerFunc {
	if !build.Debug {
		return nil
	}

	if os.Getenv(coreutils.DisableStackFixEnv) != "" {
		fmt.Println("WARNING: No stack-fixing will occur because " + coreutils.DisableStackFixEnv + " is set")
		return nil
	}

	fixOpts := FixOptions{SlowWarning: true, HideErrors: opts.HideErrors}
	if symsDirExists(opts.SymbolsPath) {
		fixOpts.BreakpadSymsDir = opts.SymbolsPath
	} else if !platform.IsLinux() && !platform.IsMac() && !platform.IsWindows() {
		return nil
	}

	fixerName := opts.FixerName
	if fixerName == "" {
		fixerName = DefaultFixerName
	}
	fixer, err := resolveFixer(fixerName, opts.UtilityPath, build)
	if err != nil {
		log.Error("No stack-fixing will occur: " + err.Error())
		return nil
	}

	return func(line string) string {
		if !frameRe.MatchString(line) {
			return line
		}
		fixed, err := fixer.FixSymbols(line, fixOpts)
		if err != nil {
			if !opts.HideErrors {
				log.Error("Failed to fix stack frame: " + err.Error())
			}
			return line
		}
		return fixed
	}
}

func symsDirExists(symbolsPath string) bool {
	if symbolsPath == "" {
		return false
	}
	exists, err := fileutils.IsDirExists(symbolsPath, false)
	return err == nil && exists
}
