package datareview

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/webrunner/harness-cli-core/metrics"
	"github.com/webrunner/harness-cli-core/utils/coreutils"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Row is one proposed measurement of the review request table.
type Row struct {
	Name        string `col-name:"Measurement Name" csv:"measurement_name"`
	Description string `col-name:"Measurement Description" col-max-width:"60" csv:"measurement_description"`
	Sensitivity string `col-name:"Data Collection Category" csv:"data_collection_category"`
	TrackingBug string `col-name:"Tracking Bug" csv:"tracking_bug"`
}

// Review is the accumulated content of a data review request: the matched
// measurement rows, the distinct expiry values encountered, and the owners
// of permanent collections.
type Review struct {
	Bug               string
	Rows              []Row
	Durations         []string
	ResponsibleEmails []string
}

// Collect filters the metrics catalog down to the metrics referencing bug
// and accumulates them into a Review. A validation failure in any of the
// definition files is returned as an error; the caller must not produce
// a report in that case.
func Collect(bug string, metricsFiles []string) (*Review, error) {
	// The review tooling accepts any value of expires, including ones the
	// strict parser would reject.
	result := metrics.ParseObjects(metricsFiles, metrics.Options{
		AllowReserved:  true,
		AllowAnyExpiry: true,
	})
	if metrics.ReportValidationErrors(result) {
		return nil, fmt.Errorf("the given metrics files did not pass validation")
	}

	matcher := regexp.MustCompile(`(?:\W|^)` + regexp.QuoteMeta(bug) + `(?:\W|$)`)
	review := &Review{Bug: bug}
	durations := make(map[string]struct{})
	responsibleEmails := make(map[string]struct{})

	categories := maps.Keys(result.Objects)
	slices.Sort(categories)
	for _, categoryName := range categories {
		metricNames := maps.Keys(result.Objects[categoryName])
		slices.Sort(metricNames)
		for _, metricName := range metricNames {
			metric := result.Objects[categoryName][metricName]
			if !matchesBug(matcher, metric.Bugs) {
				continue
			}

			dottedName := metrics.SnakeCase(categoryName) + "." + metrics.SnakeCase(metric.Name)
			sensitivity := strings.Join(metric.DataSensitivity, ", ")
			// The most recent bug of the metric, not necessarily the one
			// that matched the filter.
			lastBug := metric.Bugs[len(metric.Bugs)-1]
			review.Rows = append(review.Rows, Row{
				Name:        dottedName,
				Description: oneLine(metric.Description),
				Sensitivity: sensitivity,
				TrackingBug: lastBug,
			})
			if metric.IsEvent() && len(metric.ExtraKeys) > 0 {
				extraNames := maps.Keys(metric.ExtraKeys)
				slices.Sort(extraNames)
				for _, extraName := range extraNames {
					review.Rows = append(review.Rows, Row{
						Name:        dottedName + "#" + extraName,
						Description: oneLine(metric.ExtraKeys[extraName].Description),
						Sensitivity: sensitivity,
						TrackingBug: lastBug,
					})
				}
			}

			durations[string(metric.Expires)] = struct{}{}
			if string(metric.Expires) == metrics.NeverExpires {
				for _, email := range metric.NotificationEmails {
					responsibleEmails[email] = struct{}{}
				}
			}
		}
	}

	review.Durations = maps.Keys(durations)
	slices.Sort(review.Durations)
	review.ResponsibleEmails = maps.Keys(responsibleEmails)
	slices.Sort(review.ResponsibleEmails)
	return review, nil
}

// HasMatches reports whether any metric referenced the bug.
func (r *Review) HasMatches() bool {
	return len(r.Rows) > 0
}

// DurationSentence describes how long the proposed collections will last.
func (r *Review) DurationSentence() string {
	var sentence string
	if len(r.Durations) == 1 {
		duration := r.Durations[0]
		if duration == metrics.NeverExpires {
			sentence = "This collection will be collected permanently."
		} else {
			sentence = fmt.Sprintf("This collection has expiry '%s'", duration)
		}
	} else {
		sentence = fmt.Sprintf("Parts of this collection expire at different times: %v", r.Durations)
	}

	if slices.Contains(r.Durations, metrics.NeverExpires) {
		sentence += "\n" + coreutils.ListToText(r.ResponsibleEmails) + " will be responsible for the permanent collections."
	}
	return sentence
}

// MarkdownTable renders the measurement rows in the fixed review-request
// table format, one row per line.
func (r *Review) MarkdownTable() string {
	var builder strings.Builder
	for _, row := range r.Rows {
		builder.WriteString(fmt.Sprintf("`%s` | %s | %s | %s\n", row.Name, row.Description, row.Sensitivity, row.TrackingBug))
	}
	return builder.String()
}

func matchesBug(matcher *regexp.Regexp, bugs []string) bool {
	for _, recorded := range bugs {
		if len(matcher.FindAllString(recorded, -1)) == 1 {
			return true
		}
	}
	return false
}

func oneLine(description string) string {
	return strings.ReplaceAll(strings.TrimSpace(description), "\n", " ")
}

// GenerateReviewRequest prints a filled-in data review request skeleton for
// every metric referencing bug. Returns 0 on success and 1 when validation
// failed or no metric matched; nothing is printed in the validation case.
func GenerateReviewRequest(w io.Writer, bug string, metricsFiles []string) int {
	review, err := Collect(bug, metricsFiles)
	if err != nil {
		return 1
	}
	if !review.HasMatches() {
		fmt.Fprintf(w, "I'm sorry, I couldn't find metrics matching the bug number %s.\n", bug)
		return 1
	}
	review.WriteMarkdown(w)
	return 0
}
