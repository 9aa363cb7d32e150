package models

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// decodeNamed decodes a YAML mapping of name → record into an ordered slice,
// handing each key to setName. A null node decodes to an empty slice.
func decodeNamed[T any](value *yaml.Node, setName func(*T, string)) ([]*T, error) {
	value = resolveAlias(value)
	if value.Kind == yaml.ScalarNode && value.ShortTag() == "!!null" {
		return nil, nil
	}
	if value.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", value.Line)
	}

	entries, err := mappingEntries(value, map[*yaml.Node]bool{})
	if err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(entries))
	for _, e := range entries {
		item := new(T)
		if err := e.value.Decode(item); err != nil {
			return nil, fmt.Errorf("%s: %w", e.key, err)
		}
		setName(item, e.key)
		out = append(out, item)
	}
	return out, nil
}

type entry struct {
	key   string
	value *yaml.Node
}

// mappingEntries lists the entries of a mapping in document order with merge
// keys (<<) expanded where they appear. Keys written in the mapping win over
// merged ones and earlier merge sources win over later ones, as in yaml.v3.
func mappingEntries(node *yaml.Node, active map[*yaml.Node]bool) ([]entry, error) {
	active[node] = true
	defer delete(active, node)

	explicit := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		if key := resolveAlias(node.Content[i]); !isMergeKey(key) {
			explicit[key.Value] = true
		}
	}

	out := make([]entry, 0, len(node.Content)/2)
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := resolveAlias(node.Content[i])
		if !isMergeKey(key) {
			if seen[key.Value] {
				continue
			}
			seen[key.Value] = true
			out = append(out, entry{key: key.Value, value: node.Content[i+1]})
			continue
		}

		sources, err := mergeSources(node.Content[i+1])
		if err != nil {
			return nil, err
		}
		for _, src := range sources {
			if active[src] {
				return nil, fmt.Errorf("line %d: mapping merges itself", src.Line)
			}
			merged, err := mappingEntries(src, active)
			if err != nil {
				return nil, err
			}
			for _, e := range merged {
				if explicit[e.key] || seen[e.key] {
					continue
				}
				seen[e.key] = true
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func mergeSources(value *yaml.Node) ([]*yaml.Node, error) {
	value = resolveAlias(value)
	switch value.Kind {
	case yaml.MappingNode:
		return []*yaml.Node{value}, nil
	case yaml.SequenceNode:
		sources := make([]*yaml.Node, 0, len(value.Content))
		for _, item := range value.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("line %d: merge value must be a mapping", item.Line)
			}
			sources = append(sources, item)
		}
		return sources, nil
	default:
		return nil, fmt.Errorf("line %d: merge value must be a mapping or a sequence of mappings", value.Line)
	}
}

func isMergeKey(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!merge"
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}
