package commandsummary

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jfrog/jfrog-client-go/utils/errorutils"
	"github.com/jfrog/jfrog-client-go/utils/io/fileutils"
	"github.com/webrunner/harness-cli-core/utils/coreutils"
)

const (
	// The name of the directory where all the command summaries are stored.
	// Inside this directory, each command has its own directory.
	OutputDirName = "harness-command-summary"
	// The collated markdown of a command directory.
	finalMarkdownFileName = "markdown.md"

	dataFileSuffix = "-data.md"
)

// CommandSummary records the markdown produced by harness commands, so an
// outer automation layer (a CI job summary, typically) can collect it after
// the run.
type CommandSummary struct {
	summaryOutputPath string
	commandsName      string
}

// New creates a recorder for the named command. The output root is taken
// from the HARNESS_CLI_SUMMARY_OUTPUT_DIR environment variable; check
// ShouldRecordSummary before calling.
func New(commandsName string) (*CommandSummary, error) {
	outputDir := os.Getenv(coreutils.OutputDirPathEnv)
	if outputDir == "" {
		return nil, fmt.Errorf("output dir path is not defined, please set the %s environment variable", coreutils.OutputDirPathEnv)
	}
	cs := &CommandSummary{
		commandsName:      commandsName,
		summaryOutputPath: outputDir,
	}
	if err := cs.prepareFileSystem(); err != nil {
		return nil, err
	}
	return cs, nil
}

// If the output dir path is not defined, the command summary should not be recorded.
func ShouldRecordSummary() bool {
	return os.Getenv(coreutils.OutputDirPathEnv) != ""
}

// Record stores one markdown document for later collation.
func (cs *CommandSummary) Record(markdown string) (err error) {
	fileName := uuid.NewString() + dataFileSuffix
	file, err := os.Create(filepath.Join(cs.summaryOutputPath, fileName))
	if err != nil {
		return errorutils.CheckError(err)
	}
	defer func() {
		closeErr := errorutils.CheckError(file.Close())
		if err == nil {
			err = closeErr
		}
	}()
	if _, err = file.WriteString(markdown); err != nil {
		return errorutils.CheckError(err)
	}
	return
}

// GenerateMarkdown collates every recorded document of the command into a
// single markdown.md in the command's summary directory, and returns the
// collated content.
func (cs *CommandSummary) GenerateMarkdown() (string, error) {
	dataFiles, err := cs.recordedFiles()
	if err != nil {
		return "", fmt.Errorf("failed to load data files of command %s: %w", cs.commandsName, err)
	}

	var sections []string
	for _, dataFile := range dataFiles {
		content, err := fileutils.ReadFile(dataFile)
		if err != nil {
			return "", err
		}
		sections = append(sections, string(content))
	}
	markdown := strings.Join(sections, "\n")

	finalPath := filepath.Join(cs.summaryOutputPath, finalMarkdownFileName)
	if err = os.WriteFile(finalPath, []byte(markdown), 0644); err != nil {
		return "", errorutils.CheckError(err)
	}
	return markdown, nil
}

func (cs *CommandSummary) recordedFiles() ([]string, error) {
	entries, err := os.ReadDir(cs.summaryOutputPath)
	if err != nil {
		return nil, errorutils.CheckError(err)
	}
	var dataFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), dataFileSuffix) {
			dataFiles = append(dataFiles, filepath.Join(cs.summaryOutputPath, entry.Name()))
		}
	}
	// Recorded names are random, collate in a stable order.
	sort.Strings(dataFiles)
	return dataFiles, nil
}

// prepareFileSystem creates outputRoot/harness-command-summary/<command> and
// points the recorder at it.
func (cs *CommandSummary) prepareFileSystem() error {
	specificCommandOutputPath := filepath.Join(cs.summaryOutputPath, OutputDirName, cs.commandsName)
	if err := errorutils.CheckError(os.MkdirAll(specificCommandOutputPath, 0755)); err != nil {
		return err
	}
	cs.summaryOutputPath = specificCommandOutputPath
	return nil
}

// OutputPath returns the directory the summaries of this command land in.
func (cs *CommandSummary) OutputPath() string {
	return cs.summaryOutputPath
}
