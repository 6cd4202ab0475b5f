package metrics

import "strings"

var nameFlattener = strings.NewReplacer(" ", "_", ".", "_", "-", "_", "=", "_", "/", "_")

// FlattenName turns service, topic and policy names into a valid prometheus
// name segment.
func FlattenName(name string) string {
	return nameFlattener.Replace(name)
}

// BuildFQName joins the non empty names with underscores.
func BuildFQName(names ...string) string {
	parts := make([]string, 0, len(names))
	for _, name := range names {
		if name != "" {
			parts = append(parts, name)
		}
	}
	return FlattenName(strings.Join(parts, "_"))
}
