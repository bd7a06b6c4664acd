package metrics

import (
	"github.com/jfrog/gofrog/version"
	"github.com/jfrog/jfrog-client-go/utils/errorutils"
	"gopkg.in/yaml.v3"
)

// NeverExpires marks a permanent collection. Metrics carrying it must name
// responsible owners in their notification emails.
const NeverExpires = "never"

// FlexString decodes any YAML scalar into its textual form. Definition files
// record bug numbers and version expiries as bare integers as often as
// quoted strings.
type FlexString string

func (s *FlexString) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errorutils.CheckErrorf("line %d: expected a scalar value", node.Line)
	}
	*s = FlexString(node.Value)
	return nil
}

// FlexStringList decodes a YAML sequence of scalars into strings.
type FlexStringList []string

func (l *FlexStringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return errorutils.CheckErrorf("line %d: expected a list", node.Line)
	}
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			return errorutils.CheckErrorf("line %d: expected a list of scalar values", item.Line)
		}
		*l = append(*l, item.Value)
	}
	return nil
}

// ExtraKey describes one allowed extra key of an event metric.
type ExtraKey struct {
	Description string `yaml:"description"`
}

// Metric is one data-collection point of the catalog.
type Metric struct {
	// Name is the metric's key within its category. Populated by the parser,
	// not the definition file.
	Name string `yaml:"-"`

	Type               string              `yaml:"type"`
	Description        string              `yaml:"description"`
	Bugs               FlexStringList      `yaml:"bugs"`
	NotificationEmails FlexStringList      `yaml:"notification_emails"`
	Expires            FlexString          `yaml:"expires"`
	DataSensitivity    FlexStringList      `yaml:"data_sensitivity"`
	ExtraKeys          map[string]ExtraKey `yaml:"extra_keys"`
}

// IsEvent reports whether the metric is event-typed and may declare extra keys.
func (m *Metric) IsEvent() bool {
	return m.Type == "event"
}

// IsExpired reports whether the metric's collection window has closed for
// the given application version. Permanent collections never expire.
func (m *Metric) IsExpired(currentVersion string) bool {
	if string(m.Expires) == NeverExpires {
		return false
	}
	return version.NewVersion(currentVersion).AtLeast(string(m.Expires))
}

// Catalog maps category names to the metrics they contain, keyed by metric name.
type Catalog map[string]map[string]Metric
