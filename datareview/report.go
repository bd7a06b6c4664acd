package datareview

import (
	"fmt"
	"io"
)

// The skeleton mirrors the standard data-collection review request form.
const (
	reportIntro = `
!! Reminder: it is your responsibility to complete and check the correctness of
!! this automatically-generated request skeleton before requesting Data
!! Collection Review.

DATA REVIEW REQUEST
1. What questions will you answer with this data?

TODO: Fill this in.

2. Why do we need to answer these questions? Are there benefits for users?
   Do we need this information to address product or business requirements?

In order to guarantee the performance of our products, it is vital to monitor
real-world installs used by real-world users.

3. What alternative methods did you consider to answer these questions?
   Why were they not sufficient?

Our ability to measure the practical performance impact of changes through CI
and manual testing is limited. Monitoring the performance of our products in
the wild among real users is the only way to be sure we have an accurate
picture.

4. Can current instrumentation answer these questions?

No.

5. List all proposed measurements and indicate the category of data collection for each
   measurement, using the standard data collection categories.

Measurement Name | Measurement Description | Data Collection Category | Tracking Bug
---------------- | ----------------------- | ------------------------ | ------------`

	reportDocumentation = `
6. Please provide a link to the documentation for this data collection which
   describes the ultimate data set in a public, complete, and accurate way.

This collection is documented in the Telemetry Dictionary.

7. How long will this data be collected?
`

	reportOutro = `
8. What populations will you measure?

All channels, countries, and locales. No filters.

9. If this data collection is default on, what is the opt-out mechanism for users?

The opt-out can be found in the product's preferences.

10. Please provide a general description of how you will analyze this data.

This will be continuously monitored for regression and improvement detection.

11. Where do you intend to share the results of your analysis?

Internal monitoring dashboards.

12. Is there a third-party tool (i.e. not Telemetry) that you
    are proposing to use for this data collection?

No.
`
)

// WriteMarkdown renders the full review request skeleton, with the
// measurement table and the collection duration interpolated at their
// fixed points.
func (r *Review) WriteMarkdown(w io.Writer) {
	fmt.Fprintln(w, reportIntro)
	fmt.Fprintln(w, r.MarkdownTable())
	fmt.Fprint(w, reportDocumentation, "\n")
	fmt.Fprintln(w, r.DurationSentence())
	fmt.Fprint(w, reportOutro, "\n")
}
