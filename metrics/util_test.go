package metrics

import (
	"testing"

	"github.com/magiconair/properties/assert"
)

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", "simple"},
		{"already_snake", "already_snake"},
		{"camelCase", "camel_case"},
		{"PascalCase", "pascal_case"},
		{"with-dashes", "with_dashes"},
		{"dotted.category", "dotted_category"},
		{"pageLoadTimeMS", "page_load_time_ms"},
	}
	for _, test := range tests {
		assert.Equal(t, SnakeCase(test.input), test.expected)
	}
}
