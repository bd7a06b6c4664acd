package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jfrog/jfrog-client-go/utils/errorutils"
	"github.com/jfrog/jfrog-client-go/utils/log"
	"github.com/webrunner/harness-cli-core/utils/coreutils"
)

const (
	lowMemoryThresholdKB = 4 * 1024 * 1024

	asanLowMemoryOptions = "quarantine_size=50331648:malloc_context_size=5"
	lsanDefaultOptions   = "exitcode=0"
)

// EnvOptions controls a single environment composition.
type EnvOptions struct {
	// RuntimePath is the directory containing the build's shared libraries
	// and executables. Must be absolute.
	RuntimePath string
	// BaseEnv seeds the returned mapping. When nil, the environment of the
	// calling process is copied instead. BaseEnv itself is never mutated.
	BaseEnv map[string]string
	// CrashReporter enables the in-process crash reporter.
	CrashReporter bool
	// Debugger marks runs under a debugger. The crash reporter is disabled
	// for those regardless of CrashReporter.
	Debugger bool
	// DetectLeaks turns on LeakSanitizer with a non-fatal exit code.
	// Only meaningful for ASan builds.
	DetectLeaks bool
}

// Composer builds process environments for launching an instrumented build.
type Composer struct {
	platform Platform
	build    BuildInfo
	log      log.Log
	memoryKB MemoryQueryFunc
}

func NewComposer(platform Platform, build BuildInfo, logger log.Log) *Composer {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Composer{
		platform: platform,
		build:    build,
		log:      logger,
		memoryKB: func() (int64, error) { return SystemMemoryKB(platform) },
	}
}

// SetMemoryQuery overrides the total-memory query used for sanitizer tuning.
func (c *Composer) SetMemoryQuery(query MemoryQueryFunc) {
	c.memoryKB = query
}

// Compose populates OS environment variables for a harness run and returns
// the finished mapping. Pre-existing variables in the base environment are
// never removed, only recognized ones are added or extended.
func (c *Composer) Compose(opts EnvOptions) (map[string]string, error) {
	if !filepath.IsAbs(opts.RuntimePath) {
		return nil, errorutils.CheckErrorf("runtime path must be absolute, got '%s'", opts.RuntimePath)
	}

	env := copyEnv(opts.BaseEnv)
	libraryPath := c.libraryPath(opts.RuntimePath)
	c.extendLibrarySearchPath(env, libraryPath)

	// Allow non-packaged builds to access symlinked modules in the source dir.
	env[coreutils.RepoDirEnv] = c.build.SourceDir
	env[coreutils.ObjDirEnv] = c.build.ObjectDir

	// Never block a run behind an OS crash dialog.
	env[coreutils.GnomeCrashDialogEnv] = "1"
	env[coreutils.WindowsCrashDialogEnv] = "1"

	if opts.CrashReporter && !opts.Debugger {
		env[coreutils.CrashReporterNoReportEnv] = "1"
		env[coreutils.CrashReporterEnv] = "1"
		env[coreutils.CrashReporterShutdownEnv] = "1"
	} else {
		env[coreutils.CrashReporterDisableEnv] = "1"
	}

	// Crash on non-local network connections by default. The variable can be
	// set to "0" to temporarily enable non-local connections for local
	// testing, so an existing value is left alone.
	setDefault(env, coreutils.NonLocalConnectionsEnv, "1")

	// Default media logging, in case it is not set yet.
	setDefault(env, coreutils.RunnerLogEnv, "signaling:3,transport:4,jsep:4")
	setDefault(env, "R_LOG_LEVEL", "6")
	setDefault(env, "R_LOG_DESTINATION", "stderr")
	setDefault(env, "R_LOG_VERBOSE", "1")

	// Ask NSS to use lower-security password encryption to speed up runs.
	setDefault(env, coreutils.PasswordIterationCountEnv, "10")

	symbolizer := c.symbolizerPath(env, opts.RuntimePath, libraryPath)
	if c.build.Asan {
		if isFile(symbolizer) {
			env[coreutils.AsanSymbolizerPathEnv] = symbolizer
			c.log.Info("ASan using symbolizer at " + symbolizer)
		} else {
			c.log.Error("Failed to find ASan symbolizer at " + symbolizer)
		}
		c.tuneAsan(env, opts.DetectLeaks)
	}

	if c.build.Tsan && c.platform.IsLinux() {
		if isFile(symbolizer) {
			env[coreutils.TsanOptionsEnv] = "external_symbolizer_path=" + symbolizer
			c.log.Info("TSan using symbolizer at " + symbolizer)
		} else {
			c.log.Error("Failed to find TSan symbolizer at " + symbolizer)
		}
	}

	if c.build.Ubsan && (c.platform.IsLinux() || c.platform.IsMac()) {
		c.log.Info("UBSan enabled.")
	}

	return env, nil
}

// libraryPath returns the directory holding the build's shared libraries.
// On Mac the libraries live next to the runtime dir, under MacOS.
func (c *Composer) libraryPath(runtimePath string) string {
	if c.platform.IsMac() {
		return filepath.Join(filepath.Dir(runtimePath), "MacOS")
	}
	return runtimePath
}

// extendLibrarySearchPath adds the library dir to the platform's dynamic
// library search variable. Windows resolves DLLs through PATH and expects
// the system directories first, so the library dir is appended there and
// prepended everywhere else.
func (c *Composer) extendLibrarySearchPath(env map[string]string, libraryPath string) {
	var envVar string
	var segments []string
	switch {
	case c.platform.IsLinux():
		envVar = "LD_LIBRARY_PATH"
		segments = []string{libraryPath, env[envVar]}
	case c.platform.IsMac():
		envVar = "DYLD_LIBRARY_PATH"
		segments = []string{libraryPath, env[envVar]}
	case c.platform.IsWindows():
		envVar = "PATH"
		segments = []string{env[envVar], libraryPath}
	default:
		return
	}
	var nonEmpty []string
	for _, segment := range segments {
		if segment != "" {
			nonEmpty = append(nonEmpty, segment)
		}
	}
	env[envVar] = strings.Join(nonEmpty, string(os.PathListSeparator))
}

// symbolizerPath returns the path of the llvm-symbolizer executable to use.
// An explicit override pointing at an existing file wins over the one
// shipped in the runtime dir.
func (c *Composer) symbolizerPath(env map[string]string, runtimePath, libraryPath string) string {
	if override := env[coreutils.AsanSymbolizerPathEnv]; override != "" && isFile(override) {
		return override
	}
	symbolizerDir := runtimePath
	if c.platform.IsMac() {
		symbolizerDir = libraryPath
	}
	return filepath.Join(symbolizerDir, "llvm-symbolizer"+c.build.BinSuffix)
}

// tuneAsan lowers ASan resource usage on machines with 4 GiB of memory or
// less, where the default quarantine leads to OOM conditions. A failed
// memory query only skips the tuning, it never fails the composition.
func (c *Composer) tuneAsan(env map[string]string, detectLeaks bool) {
	totalKB, err := c.memoryKB()
	if err != nil {
		c.log.Info(fmt.Sprintf("Failed to determine available memory, disabling ASan low-memory configuration: %s", err))
		return
	}

	configuration := "default memory"
	var asanOptions []string
	if totalKB <= lowMemoryThresholdKB {
		configuration = "low-memory"
		asanOptions = append(asanOptions, strings.Split(asanLowMemoryOptions, ":")...)
	}

	if detectLeaks {
		c.log.Info("LSan enabled.")
		asanOptions = append(asanOptions, "detect_leaks=1")
		env[coreutils.LsanOptionsEnv] = lsanDefaultOptions
	}

	if len(asanOptions) > 0 {
		env[coreutils.AsanOptionsEnv] = strings.Join(asanOptions, ":")
	}
	c.log.Info(fmt.Sprintf("ASan running in %s configuration", configuration))
}

func copyEnv(base map[string]string) map[string]string {
	env := make(map[string]string)
	if base == nil {
		for _, keyVal := range os.Environ() {
			key, val, found := strings.Cut(keyVal, "=")
			if found {
				env[key] = val
			}
		}
		return env
	}
	for key, val := range base {
		env[key] = val
	}
	return env
}

func setDefault(env map[string]string, key, value string) {
	if _, ok := env[key]; !ok {
		env[key] = value
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
