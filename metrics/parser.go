package metrics

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jfrog/jfrog-client-go/utils/errorutils"
	"github.com/jfrog/jfrog-client-go/utils/io/fileutils"
	"github.com/jfrog/jfrog-client-go/utils/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// ReservedCategoryPrefix marks categories owned by the collection framework
// itself. Definition files may not use it unless explicitly allowed.
const ReservedCategoryPrefix = "webrunner."

var expiryVersionRe = regexp.MustCompile(`^\d+(\.\d+)*$`)

// Options tunes catalog parsing.
type Options struct {
	// AllowReserved permits categories under ReservedCategoryPrefix.
	AllowReserved bool
	// AllowAnyExpiry accepts any expires value. Without it, expires must be
	// "never" or a version string.
	AllowAnyExpiry bool
	// CurrentVersion, when set, flags metrics whose version expiry has
	// already passed as validation errors.
	CurrentVersion string
}

// ParseResult carries the merged catalog and every validation error found.
// The catalog holds only the files and metrics that parsed cleanly.
type ParseResult struct {
	Objects Catalog
	Errors  []error
}

// ParseObjects loads and validates every definition file, merging the
// catalogs into one. Files are loaded concurrently; merge order follows the
// order of paths, and a category defined in several files is merged
// metric by metric.
func ParseObjects(paths []string, opts Options) *ParseResult {
	type fileResult struct {
		catalog Catalog
		errs    []error
	}

	results := make([]fileResult, len(paths))
	var group errgroup.Group
	for i, path := range paths {
		group.Go(func() error {
			catalog, errs := parseFile(path, opts)
			results[i] = fileResult{catalog: catalog, errs: errs}
			return nil
		})
	}
	// Workers never return errors, they collect them per file instead.
	_ = group.Wait()

	merged := &ParseResult{Objects: make(Catalog)}
	for _, result := range results {
		merged.Errors = append(merged.Errors, result.errs...)
		for categoryName, metricsByName := range result.catalog {
			if merged.Objects[categoryName] == nil {
				merged.Objects[categoryName] = make(map[string]Metric)
			}
			for metricName, metric := range metricsByName {
				merged.Objects[categoryName][metricName] = metric
			}
		}
	}
	return merged
}

// ReportValidationErrors logs every validation error and reports whether any
// were found.
func ReportValidationErrors(result *ParseResult) bool {
	for _, err := range result.Errors {
		log.Error(err.Error())
	}
	return len(result.Errors) > 0
}

func parseFile(path string, opts Options) (Catalog, []error) {
	content, err := fileutils.ReadFile(path)
	if err != nil {
		return nil, []error{err}
	}

	var document map[string]yaml.Node
	if err := yaml.Unmarshal(content, &document); err != nil {
		return nil, []error{errorutils.CheckErrorf("%s: %s", path, err)}
	}

	catalog := make(Catalog)
	var errs []error
	for categoryName, categoryNode := range document {
		// Directives like $schema and $tags are not categories.
		if strings.HasPrefix(categoryName, "$") {
			continue
		}
		if strings.HasPrefix(categoryName, ReservedCategoryPrefix) && !opts.AllowReserved {
			errs = append(errs, errorutils.CheckErrorf("%s: category '%s' uses the reserved prefix '%s'", path, categoryName, ReservedCategoryPrefix))
			continue
		}

		var metricsByName map[string]Metric
		if err := categoryNode.Decode(&metricsByName); err != nil {
			errs = append(errs, errorutils.CheckErrorf("%s: category '%s': %s", path, categoryName, err))
			continue
		}

		catalog[categoryName] = make(map[string]Metric)
		for metricName, metric := range metricsByName {
			metric.Name = metricName
			if metricErrs := validateMetric(path, categoryName, &metric, opts); len(metricErrs) > 0 {
				errs = append(errs, metricErrs...)
				continue
			}
			catalog[categoryName][metricName] = metric
		}
	}
	return catalog, errs
}

func validateMetric(path, categoryName string, metric *Metric, opts Options) []error {
	var errs []error
	report := func(format string, args ...interface{}) {
		prefix := fmt.Sprintf("%s: %s.%s: ", path, categoryName, metric.Name)
		errs = append(errs, errorutils.CheckErrorf(prefix+format, args...))
	}

	if metric.Type == "" {
		report("missing required field 'type'")
	}
	if strings.TrimSpace(metric.Description) == "" {
		report("missing required field 'description'")
	}
	if len(metric.Bugs) == 0 {
		report("missing required field 'bugs'")
	}
	if len(metric.NotificationEmails) == 0 {
		report("missing required field 'notification_emails'")
	}
	if len(metric.ExtraKeys) > 0 && !metric.IsEvent() {
		report("extra_keys is only allowed on event metrics, not type '%s'", metric.Type)
	}

	expires := string(metric.Expires)
	switch {
	case expires == "":
		report("missing required field 'expires'")
	case opts.AllowAnyExpiry || expires == NeverExpires:
	case !expiryVersionRe.MatchString(expires):
		report("expires must be '%s' or a version string, got '%s'", NeverExpires, expires)
	case opts.CurrentVersion != "" && metric.IsExpired(opts.CurrentVersion):
		report("expired at version %s (current version is %s)", expires, opts.CurrentVersion)
	}

	return errs
}
