package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jfrog/jfrog-client-go/utils/errorutils"
	clientLog "github.com/jfrog/jfrog-client-go/utils/log"
	"github.com/urfave/cli"
	harnessclicore "github.com/webrunner/harness-cli-core"
	"github.com/webrunner/harness-cli-core/datareview"
	"github.com/webrunner/harness-cli-core/runner"
	"github.com/webrunner/harness-cli-core/stackfix"
	"github.com/webrunner/harness-cli-core/utils/config"
	"github.com/webrunner/harness-cli-core/utils/coreutils"
	"github.com/webrunner/harness-cli-core/utils/log"
)

func main() {
	log.SetDefaultLogger()
	logFile := initCiLogFile()

	app := cli.NewApp()
	app.Name = "harness-cli"
	app.Usage = "Test harness utilities: run environments, stack fixing and data review requests"
	app.Version = harnessclicore.GetVersion()
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Println(harnessclicore.GetUserAgent())
	}
	app.Commands = []cli.Command{
		testEnvCommand(),
		fixStacksCommand(),
		dataReviewCommand(),
	}

	err := app.Run(os.Args)
	if logFile != nil {
		if closeErr := log.CloseLogFile(logFile); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	coreutils.ExitOnErr(err)
}

// In CI runs the log is persisted under the harness home dir as well, so it
// can be collected as a job artifact.
func initCiLogFile() *os.File {
	if os.Getenv(coreutils.CI) != "true" {
		return nil
	}
	logFile, err := log.CreateLogFile()
	if err != nil {
		clientLog.Warn("Failed creating the log file:", err.Error())
		return nil
	}
	log.SetFileLogger(logFile)
	return logFile
}

func buildInfoFromContext(c *cli.Context) runner.BuildInfo {
	return runner.BuildInfo{
		Debug:     c.Bool("debug"),
		Asan:      c.Bool("asan"),
		Tsan:      c.Bool("tsan"),
		Ubsan:     c.Bool("ubsan"),
		BinSuffix: c.String("bin-suffix"),
		SourceDir: c.String("source-dir"),
		ObjectDir: c.String("obj-dir"),
	}
}

func buildFlags() []cli.Flag {
	return []cli.Flag{
		cli.BoolFlag{Name: "debug", Usage: "The application is a debug build"},
		cli.BoolFlag{Name: "asan", Usage: "The build is AddressSanitizer instrumented"},
		cli.BoolFlag{Name: "tsan", Usage: "The build is ThreadSanitizer instrumented"},
		cli.BoolFlag{Name: "ubsan", Usage: "The build is UndefinedBehaviorSanitizer instrumented"},
		cli.StringFlag{Name: "bin-suffix", Usage: "Executable suffix of the build's platform (\".exe\" on Windows)"},
		cli.StringFlag{Name: "source-dir", Usage: "Path of the source checkout of a non-packaged build"},
		cli.StringFlag{Name: "obj-dir", Usage: "Path of the object directory of a non-packaged build"},
	}
}

func testEnvCommand() cli.Command {
	return cli.Command{
		Name:      "test-env",
		Usage:     "Compose the process environment for launching an instrumented build",
		ArgsUsage: "<runtime path>",
		Flags: append(buildFlags(),
			cli.BoolFlag{Name: "disable-crashreporter", Usage: "Launch with the crash reporter disabled"},
			cli.BoolFlag{Name: "debugger", Usage: "The run happens under a debugger"},
			cli.BoolFlag{Name: "detect-leaks", Usage: "Enable LeakSanitizer with a non-fatal exit code"},
		),
		Action: testEnvAction,
	}
}

func testEnvAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errorutils.CheckErrorf("expected exactly one argument, the runtime path")
	}

	harnessConfig, err := config.ReadHarnessConfig()
	if err != nil {
		return err
	}

	composer := runner.NewComposer(runner.CurrentPlatform(), buildInfoFromContext(c), nil)
	opts := runner.EnvOptions{
		RuntimePath:   c.Args().Get(0),
		CrashReporter: harnessConfig.CrashReporter && !c.Bool("disable-crashreporter"),
		Debugger:      c.Bool("debugger"),
		DetectLeaks:   c.Bool("detect-leaks"),
	}
	if harnessConfig.SymbolizerPath != "" && os.Getenv(coreutils.AsanSymbolizerPathEnv) == "" {
		opts.BaseEnv = environAsMap()
		opts.BaseEnv[coreutils.AsanSymbolizerPathEnv] = harnessConfig.SymbolizerPath
	}

	env, err := composer.Compose(opts)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("%s=%s\n", key, env[key])
	}
	return nil
}

func environAsMap() map[string]string {
	env := make(map[string]string)
	for _, keyVal := range os.Environ() {
		if key, val, found := strings.Cut(keyVal, "="); found {
			env[key] = val
		}
	}
	return env
}

func fixStacksCommand() cli.Command {
	return cli.Command{
		Name:      "fix-stacks",
		Usage:     "Rewrite raw stack frames of captured output into human-readable ones, stdin to stdout",
		ArgsUsage: " ",
		Flags: append(buildFlags(),
			cli.StringFlag{Name: "utility-path", Usage: "[Mandatory] Directory holding the debug utility binaries"},
			cli.StringFlag{Name: "symbols-path", Usage: "[Optional] Breakpad symbols directory"},
			cli.BoolFlag{Name: "hide-errors", Usage: "Suppress per-line symbol resolution errors"},
		),
		Action: fixStacksAction,
	}
}

func fixStacksAction(c *cli.Context) error {
	if c.String("utility-path") == "" {
		return errorutils.CheckErrorf("the --utility-path option is mandatory")
	}

	harnessConfig, err := config.ReadHarnessConfig()
	if err != nil {
		return err
	}

	fixer := stackfix.StackFixer(stackfix.Options{
		UtilityPath: c.String("utility-path"),
		SymbolsPath: c.String("symbols-path"),
		HideErrors:  c.Bool("hide-errors"),
		FixerName:   harnessConfig.StackFixer,
	}, runner.CurrentPlatform(), buildInfoFromContext(c))
	if fixer == nil {
		clientLog.Warn("No stack fixing is available, lines are passed through unchanged")
		fixer = func(line string) string { return line }
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	writer := bufio.NewWriter(os.Stdout)
	for scanner.Scan() {
		if _, err = writer.WriteString(fixer(scanner.Text()) + "\n"); err != nil {
			return errorutils.CheckError(err)
		}
	}
	if err = scanner.Err(); err != nil {
		return errorutils.CheckError(err)
	}
	return errorutils.CheckError(writer.Flush())
}

func dataReviewCommand() cli.Command {
	return cli.Command{
		Name:      "data-review",
		Usage:     "Generate a data review request skeleton for the metrics referencing a bug",
		ArgsUsage: "<bug> <metrics files...>",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "format", Usage: "[Default: from configuration] Output format: markdown, table or csv"},
			cli.BoolFlag{Name: "open", Usage: "Open the generated request in the default browser"},
		},
		Action: dataReviewAction,
	}
}

func dataReviewAction(c *cli.Context) error {
	if c.NArg() < 2 {
		return errorutils.CheckErrorf("expected a bug number and at least one metrics definition file")
	}

	harnessConfig, err := config.ReadHarnessConfig()
	if err != nil {
		return err
	}
	format := c.String("format")
	coreutils.SetIfEmpty(&format, harnessConfig.ReportFormat)
	switch datareview.OutputFormat(format) {
	case datareview.Markdown, datareview.Table, datareview.Csv:
	default:
		return errorutils.CheckErrorf("unknown output format '%s'", format)
	}

	command := datareview.NewReviewCommand().
		SetBug(coreutils.RemoveAllWhiteSpaces(c.Args().Get(0))).
		SetMetricsFiles(c.Args()[1:]).
		SetFormat(datareview.OutputFormat(format)).
		SetOpenBrowser(c.Bool("open"))
	return command.Run()
}
