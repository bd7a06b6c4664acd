package coreutils

const (

	// General core constants
	OnErrorPanic OnError = "panic"

	// Home dir layout
	HarnessConfigFile  = "harness-cli.yaml"
	HarnessLogsDirName = "logs"

	// CLI environment variables
	ErrorHandling    = "HARNESS_CLI_ERROR_HANDLING"
	TempDir          = "HARNESS_CLI_TEMP_DIR"
	LogLevel         = "HARNESS_CLI_LOG_LEVEL"
	LogTimestamp     = "HARNESS_CLI_LOG_TIMESTAMP"
	OutputDirPathEnv = "HARNESS_CLI_SUMMARY_OUTPUT_DIR"
	CI               = "CI"
)

// Environment variables composed into the environment of the application under test.
const (
	RepoDirEnv                = "WEBRUNNER_REPO_DIR"
	ObjDirEnv                 = "WEBRUNNER_OBJ_DIR"
	GnomeCrashDialogEnv       = "GNOME_DISABLE_CRASH_DIALOG"
	WindowsCrashDialogEnv     = "WEBRUNNER_NO_WINDOWS_CRASH_DIALOG"
	CrashReporterEnv          = "WEBRUNNER_CRASHREPORTER"
	CrashReporterNoReportEnv  = "WEBRUNNER_CRASHREPORTER_NO_REPORT"
	CrashReporterShutdownEnv  = "WEBRUNNER_CRASHREPORTER_SHUTDOWN"
	CrashReporterDisableEnv   = "WEBRUNNER_CRASHREPORTER_DISABLE"
	NonLocalConnectionsEnv    = "WEBRUNNER_DISABLE_NONLOCAL_CONNECTIONS"
	RunnerLogEnv              = "WEBRUNNER_LOG"
	PasswordIterationCountEnv = "NSS_MAX_MP_PBE_ITERATION_COUNT"
	DisableStackFixEnv        = "WEBRUNNER_DISABLE_STACK_FIX"
	AsanSymbolizerPathEnv     = "ASAN_SYMBOLIZER_PATH"
	AsanOptionsEnv            = "ASAN_OPTIONS"
	LsanOptionsEnv            = "LSAN_OPTIONS"
	TsanOptionsEnv            = "TSAN_OPTIONS"
)

// Although these vars are constant, they are defined inside a vars section and not a constants section because the tests modify these values.
var (
	HomeDir = "HARNESS_CLI_HOME_DIR"
)
