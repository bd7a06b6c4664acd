package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jfrog/jfrog-client-go/utils/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webrunner/harness-cli-core/utils/coreutils"
)

type testLogger struct {
	infos  []string
	errors []string
}

func (l *testLogger) Verbose(a ...interface{}) {}
func (l *testLogger) Debug(a ...interface{})  {}
func (l *testLogger) Info(a ...interface{})   { l.infos = append(l.infos, fmt.Sprint(a...)) }
func (l *testLogger) Warn(a ...interface{})   {}
func (l *testLogger) Error(a ...interface{})  { l.errors = append(l.errors, fmt.Sprint(a...)) }
func (l *testLogger) Output(a ...interface{}) {}
func (l *testLogger) GetLogLevel() log.LevelType { return log.DEBUG }

func newTestComposer(t *testing.T, osName string, build BuildInfo, memoryKB int64, memoryErr error) (*Composer, *testLogger) {
	t.Helper()
	logger := &testLogger{}
	composer := NewComposer(NewPlatform(osName), build, logger)
	composer.SetMemoryQuery(func() (int64, error) { return memoryKB, memoryErr })
	return composer, logger
}

func absRuntimePath(t *testing.T) string {
	t.Helper()
	path, err := filepath.Abs(t.TempDir())
	require.NoError(t, err)
	return path
}

func TestComposeRejectsRelativeRuntimePath(t *testing.T) {
	composer, _ := newTestComposer(t, "linux", BuildInfo{}, 0, nil)
	_, err := composer.Compose(EnvOptions{RuntimePath: filepath.Join("relative", "path")})
	assert.ErrorContains(t, err, "must be absolute")
}

func TestComposePreservesUnrelatedVariables(t *testing.T) {
	composer, _ := newTestComposer(t, "linux", BuildInfo{}, 0, nil)
	base := map[string]string{"UNRELATED": "value", "ANOTHER": "one"}
	env, err := composer.Compose(EnvOptions{RuntimePath: absRuntimePath(t), BaseEnv: base})
	require.NoError(t, err)
	assert.Equal(t, "value", env["UNRELATED"])
	assert.Equal(t, "one", env["ANOTHER"])
	// The base mapping itself must stay untouched.
	assert.Len(t, base, 2)
}

func TestComposeLibrarySearchPath(t *testing.T) {
	sep := string(os.PathListSeparator)
	runtimePath := absRuntimePath(t)

	tests := []struct {
		osName   string
		envVar   string
		existing string
		expected string
	}{
		{"linux", "LD_LIBRARY_PATH", "", runtimePath},
		{"linux", "LD_LIBRARY_PATH", "/usr/lib", runtimePath + sep + "/usr/lib"},
		{"windows", "PATH", "C:\\Windows", "C:\\Windows" + sep + runtimePath},
		{"darwin", "DYLD_LIBRARY_PATH", "", filepath.Join(filepath.Dir(runtimePath), "MacOS")},
	}
	for _, test := range tests {
		composer, _ := newTestComposer(t, test.osName, BuildInfo{}, 0, nil)
		base := map[string]string{}
		if test.existing != "" {
			base[test.envVar] = test.existing
		}
		env, err := composer.Compose(EnvOptions{RuntimePath: runtimePath, BaseEnv: base})
		require.NoError(t, err)
		assert.Equal(t, test.expected, env[test.envVar], "os: %s existing: %s", test.osName, test.existing)
	}
}

func TestComposeCrashReporterModes(t *testing.T) {
	runtimePath := absRuntimePath(t)

	composer, _ := newTestComposer(t, "linux", BuildInfo{}, 0, nil)
	env, err := composer.Compose(EnvOptions{RuntimePath: runtimePath, BaseEnv: map[string]string{}, CrashReporter: true})
	require.NoError(t, err)
	assert.Equal(t, "1", env[coreutils.CrashReporterEnv])
	assert.Equal(t, "1", env[coreutils.CrashReporterNoReportEnv])
	assert.Equal(t, "1", env[coreutils.CrashReporterShutdownEnv])
	assert.NotContains(t, env, coreutils.CrashReporterDisableEnv)

	// A debugger wins over the crash reporter.
	env, err = composer.Compose(EnvOptions{RuntimePath: runtimePath, BaseEnv: map[string]string{}, CrashReporter: true, Debugger: true})
	require.NoError(t, err)
	assert.Equal(t, "1", env[coreutils.CrashReporterDisableEnv])
	assert.NotContains(t, env, coreutils.CrashReporterEnv)
}

func TestComposeDefaultsDoNotOverride(t *testing.T) {
	composer, _ := newTestComposer(t, "linux", BuildInfo{}, 0, nil)
	base := map[string]string{coreutils.NonLocalConnectionsEnv: "0", "R_LOG_LEVEL": "2"}
	env, err := composer.Compose(EnvOptions{RuntimePath: absRuntimePath(t), BaseEnv: base})
	require.NoError(t, err)
	assert.Equal(t, "0", env[coreutils.NonLocalConnectionsEnv])
	assert.Equal(t, "2", env["R_LOG_LEVEL"])
	assert.Equal(t, "10", env[coreutils.PasswordIterationCountEnv])
	assert.Equal(t, "stderr", env["R_LOG_DESTINATION"])
}

func TestComposeAsanMemoryBoundary(t *testing.T) {
	runtimePath := absRuntimePath(t)

	// Exactly 4 GiB selects the low-memory configuration.
	composer, logger := newTestComposer(t, "linux", BuildInfo{Asan: true}, 4*1024*1024, nil)
	env, err := composer.Compose(EnvOptions{RuntimePath: runtimePath, BaseEnv: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, "quarantine_size=50331648:malloc_context_size=5", env[coreutils.AsanOptionsEnv])
	assert.Contains(t, strings.Join(logger.infos, "\n"), "low-memory configuration")

	// One kilobyte more keeps the default configuration.
	composer, logger = newTestComposer(t, "linux", BuildInfo{Asan: true}, 4*1024*1024+1, nil)
	env, err = composer.Compose(EnvOptions{RuntimePath: runtimePath, BaseEnv: map[string]string{}})
	require.NoError(t, err)
	assert.NotContains(t, env, coreutils.AsanOptionsEnv)
	assert.Contains(t, strings.Join(logger.infos, "\n"), "default memory configuration")
}

func TestComposeAsanMemoryQueryFailureIsNotFatal(t *testing.T) {
	composer, logger := newTestComposer(t, "linux", BuildInfo{Asan: true}, 0, fmt.Errorf("no such command"))
	env, err := composer.Compose(EnvOptions{RuntimePath: absRuntimePath(t), BaseEnv: map[string]string{}, DetectLeaks: true})
	require.NoError(t, err)
	assert.NotContains(t, env, coreutils.AsanOptionsEnv)
	// Leak detection is part of the skipped tuning.
	assert.NotContains(t, env, coreutils.LsanOptionsEnv)
	assert.Contains(t, strings.Join(logger.infos, "\n"), "disabling ASan low-memory configuration")
}

func TestComposeLeakSanitizerOptions(t *testing.T) {
	composer, logger := newTestComposer(t, "linux", BuildInfo{Asan: true}, 16*1024*1024, nil)
	env, err := composer.Compose(EnvOptions{RuntimePath: absRuntimePath(t), BaseEnv: map[string]string{}, DetectLeaks: true})
	require.NoError(t, err)
	assert.Equal(t, "detect_leaks=1", env[coreutils.AsanOptionsEnv])
	assert.Equal(t, "exitcode=0", env[coreutils.LsanOptionsEnv])
	assert.Contains(t, strings.Join(logger.infos, "\n"), "LSan enabled.")
}

func TestComposeSymbolizerDiscovery(t *testing.T) {
	runtimePath := absRuntimePath(t)
	symbolizer := filepath.Join(runtimePath, "llvm-symbolizer")
	require.NoError(t, os.WriteFile(symbolizer, []byte("#!/bin/sh\n"), 0755))

	composer, logger := newTestComposer(t, "linux", BuildInfo{Asan: true, Tsan: true}, 16*1024*1024, nil)
	env, err := composer.Compose(EnvOptions{RuntimePath: runtimePath, BaseEnv: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, symbolizer, env[coreutils.AsanSymbolizerPathEnv])
	assert.Equal(t, "external_symbolizer_path="+symbolizer, env[coreutils.TsanOptionsEnv])
	assert.Empty(t, logger.errors)
}

func TestComposeSymbolizerOverride(t *testing.T) {
	override := filepath.Join(t.TempDir(), "my-symbolizer")
	require.NoError(t, os.WriteFile(override, []byte("#!/bin/sh\n"), 0755))

	composer, _ := newTestComposer(t, "linux", BuildInfo{Asan: true}, 16*1024*1024, nil)
	env, err := composer.Compose(EnvOptions{
		RuntimePath: absRuntimePath(t),
		BaseEnv:     map[string]string{coreutils.AsanSymbolizerPathEnv: override},
	})
	require.NoError(t, err)
	assert.Equal(t, override, env[coreutils.AsanSymbolizerPathEnv])
}

func TestComposeMissingSymbolizerLogsError(t *testing.T) {
	composer, logger := newTestComposer(t, "linux", BuildInfo{Asan: true}, 16*1024*1024, nil)
	_, err := composer.Compose(EnvOptions{RuntimePath: absRuntimePath(t), BaseEnv: map[string]string{}})
	require.NoError(t, err)
	require.Len(t, logger.errors, 1)
	assert.Contains(t, logger.errors[0], "Failed to find ASan symbolizer")
}

func TestComposeUbsanLogsOnUnixOnly(t *testing.T) {
	runtimePath := absRuntimePath(t)

	composer, logger := newTestComposer(t, "linux", BuildInfo{Ubsan: true}, 0, nil)
	_, err := composer.Compose(EnvOptions{RuntimePath: runtimePath, BaseEnv: map[string]string{}})
	require.NoError(t, err)
	assert.Contains(t, logger.infos, "UBSan enabled.")

	composer, logger = newTestComposer(t, "windows", BuildInfo{Ubsan: true}, 0, nil)
	_, err = composer.Compose(EnvOptions{RuntimePath: runtimePath, BaseEnv: map[string]string{}})
	require.NoError(t, err)
	assert.NotContains(t, logger.infos, "UBSan enabled.")
}
