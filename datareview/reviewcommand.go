package datareview

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/jfrog/jfrog-client-go/utils/errorutils"
	"github.com/jfrog/jfrog-client-go/utils/log"
	"github.com/pkg/browser"
	"github.com/webrunner/harness-cli-core/commandsummary"
	"github.com/webrunner/harness-cli-core/utils/coreutils"
)

// OutputFormat selects how the matched measurements are rendered.
type OutputFormat string

const (
	Markdown OutputFormat = "markdown"
	Table    OutputFormat = "table"
	Csv      OutputFormat = "csv"
)

// ReviewCommand generates a data review request for one bug over a set of
// metrics definition files.
type ReviewCommand struct {
	bug          string
	metricsFiles []string
	format       OutputFormat
	openBrowser  bool
}

func NewReviewCommand() *ReviewCommand {
	return &ReviewCommand{format: Markdown}
}

func (rc *ReviewCommand) SetBug(bug string) *ReviewCommand {
	rc.bug = bug
	return rc
}

func (rc *ReviewCommand) SetMetricsFiles(metricsFiles []string) *ReviewCommand {
	rc.metricsFiles = metricsFiles
	return rc
}

func (rc *ReviewCommand) SetFormat(format OutputFormat) *ReviewCommand {
	rc.format = format
	return rc
}

func (rc *ReviewCommand) SetOpenBrowser(openBrowser bool) *ReviewCommand {
	rc.openBrowser = openBrowser
	return rc
}

func (rc *ReviewCommand) CommandName() string {
	return "data_review"
}

func (rc *ReviewCommand) Run() error {
	if coreutils.IsAnyEmpty(rc.bug, string(rc.format)) || len(rc.metricsFiles) == 0 {
		return errorutils.CheckErrorf("a bug number, an output format and at least one metrics definition file are required")
	}

	review, err := Collect(rc.bug, rc.metricsFiles)
	if err != nil {
		return coreutils.CliError{ExitCode: coreutils.ExitCodeError, ErrorMsg: err.Error()}
	}
	if !review.HasMatches() {
		return coreutils.CliError{
			ExitCode: coreutils.ExitCodeError,
			ErrorMsg: "I'm sorry, I couldn't find metrics matching the bug number " + rc.bug + ".",
		}
	}

	switch rc.format {
	case Table:
		if err = coreutils.PrintTable(review.Rows, coreutils.PrintTitle("Proposed measurements for bug "+rc.bug), "No measurements were found"); err != nil {
			return err
		}
		log.Output(review.DurationSentence())
		return nil
	case Csv:
		csvContent, err := gocsv.MarshalString(&review.Rows)
		if err != nil {
			return errorutils.CheckError(err)
		}
		log.Output(csvContent)
		return nil
	default:
		return rc.outputMarkdown(review)
	}
}

func (rc *ReviewCommand) outputMarkdown(review *Review) error {
	var buffer bytes.Buffer
	review.WriteMarkdown(&buffer)
	markdown := buffer.String()
	if _, err := os.Stdout.WriteString(markdown); err != nil {
		return errorutils.CheckError(err)
	}

	if commandsummary.ShouldRecordSummary() {
		if err := rc.recordSummary(markdown); err != nil {
			return err
		}
	}
	if rc.openBrowser {
		return rc.openInBrowser(markdown)
	}
	return nil
}

func (rc *ReviewCommand) recordSummary(markdown string) error {
	summary, err := commandsummary.New(rc.CommandName())
	if err != nil {
		return err
	}
	if err = summary.Record(markdown); err != nil {
		return err
	}
	// Keep the collated markdown current after every recording. The CI
	// layer picks it up whenever the job ends.
	_, err = summary.GenerateMarkdown()
	return err
}

// openInBrowser writes the skeleton to a temp file and hands it to the
// default browser, so it can be pasted into the review request form.
func (rc *ReviewCommand) openInBrowser(markdown string) error {
	reviewFile := filepath.Join(coreutils.GetCliPersistentTempDirPath(), "data-review-"+rc.bug+".md")
	if err := os.WriteFile(reviewFile, []byte(markdown), 0644); err != nil {
		return errorutils.CheckError(err)
	}
	log.Info("The review request was saved to " + coreutils.PrintLink(reviewFile))
	return errorutils.CheckError(browser.OpenFile(reviewFile))
}
