package config

import (
	"os"
	"path/filepath"

	"github.com/jfrog/jfrog-client-go/utils/errorutils"
	"github.com/jfrog/jfrog-client-go/utils/io/fileutils"
	"github.com/spf13/viper"
	"github.com/webrunner/harness-cli-core/utils/coreutils"
)

// Configuration keys of harness-cli.yaml.
const (
	SymbolizerPathKey   = "symbolizer.path"
	StackFixerKey       = "stackfix.fixer"
	ReportFormatKey     = "report.format"
	CrashReporterKey    = "runner.crashreporter"
	DefaultStackFixer   = "fix-stacks"
	DefaultReportFormat = "markdown"
)

// HarnessConfig holds the optional configuration read from
// $HARNESS_CLI_HOME_DIR/harness-cli.yaml. Zero values mean "not configured".
type HarnessConfig struct {
	SymbolizerPath string
	StackFixer     string
	ReportFormat   string
	CrashReporter  bool
}

// ReadHarnessConfig loads harness-cli.yaml from the harness home directory.
// A missing file is not an error; defaults are returned instead.
func ReadHarnessConfig() (*HarnessConfig, error) {
	conf := &HarnessConfig{
		StackFixer:    DefaultStackFixer,
		ReportFormat:  DefaultReportFormat,
		CrashReporter: true,
	}
	homeDir, err := coreutils.GetHarnessHomeDir()
	if err != nil {
		return nil, err
	}
	configPath := filepath.Join(homeDir, coreutils.HarnessConfigFile)
	exists, err := fileutils.IsFileExists(configPath, false)
	if err != nil || !exists {
		return conf, err
	}

	vConfig, err := readConfigFile(configPath)
	if err != nil {
		return nil, err
	}
	conf.SymbolizerPath = vConfig.GetString(SymbolizerPathKey)
	conf.StackFixer = vConfig.GetString(StackFixerKey)
	conf.ReportFormat = vConfig.GetString(ReportFormatKey)
	coreutils.SetIfEmpty(&conf.StackFixer, DefaultStackFixer)
	coreutils.SetIfEmpty(&conf.ReportFormat, DefaultReportFormat)
	if vConfig.IsSet(CrashReporterKey) {
		conf.CrashReporter = vConfig.GetBool(CrashReporterKey)
	}
	return conf, nil
}

func readConfigFile(configPath string) (config *viper.Viper, err error) {
	config = viper.New()
	config.SetConfigType("yaml")

	f, err := os.Open(configPath)
	if err != nil {
		return config, errorutils.CheckError(err)
	}
	defer func() {
		closeErr := f.Close()
		if err == nil {
			err = errorutils.CheckError(closeErr)
		}
	}()
	err = config.ReadConfig(f)
	if err != nil {
		return config, errorutils.CheckError(err)
	}
	return config, nil
}
