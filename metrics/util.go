package metrics

import (
	"regexp"
	"strings"
)

var (
	firstCapRe = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	allCapRe   = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// SnakeCase normalizes a category or metric name to snake_case the same way
// the definition-file tooling does: camelCase humps become underscores, and
// dots and dashes are folded into underscores as well.
func SnakeCase(name string) string {
	partial := firstCapRe.ReplaceAllString(name, "${1}_${2}")
	partial = allCapRe.ReplaceAllString(partial, "${1}_${2}")
	partial = strings.ReplaceAll(partial, "-", "_")
	partial = strings.ReplaceAll(partial, ".", "_")
	return strings.ToLower(partial)
}
