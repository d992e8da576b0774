package format

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ash/internal/store"
)

// YAML writes a sequence with one entry per row. With headings each entry
// maps column name to value, in column order; without them each entry is a
// plain list of values.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) Description() string {
	return "Rows are emitted as a YAML sequence."
}

func (YAML) Format(w io.Writer, rs *store.ResultSet, showHeadings bool) error {
	if rs == nil {
		return nil
	}

	doc := &yaml.Node{Kind: yaml.SequenceNode}
	for r := 0; r < rs.Rows(); r++ {
		entry := &yaml.Node{Kind: yaml.SequenceNode}
		if showHeadings {
			entry.Kind = yaml.MappingNode
		}
		for c, cell := range rs.Row(r) {
			if showHeadings {
				entry.Content = append(entry.Content, str(rs.Headers()[c]))
			}
			entry.Content = append(entry.Content, str(cell))
		}
		doc.Content = append(doc.Content, entry)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
