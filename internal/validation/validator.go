// Package validation checks a parsed hostconf inventory against its schema.
//
// The schema is a declarative description of the inventory's shape (records,
// keyed mappings, sequences and typed scalars) that is evaluated against the
// raw YAML node tree before anything is decoded into Go structs. Type
// mismatches are therefore caught in one place, with the dotted path of the
// offending field:
//
//	hosts.web01.interfaces.eth0.mac: expected MAC address, got "not-a-mac" (line 7)
//
// Scalar constraints (MAC pattern, non-negative uid) are expressed as
// go-playground/validator tags and evaluated with Validate.Var.
//
// Unknown keys are ignored at every level so inventories can carry fields that
// a newer or older hostconf does not know about. Merge keys (<<) are expanded
// before a mapping is checked, so values pulled in from an anchor are held to
// the same rules as values written in place.
//
// # Usage Example
//
//	v := validation.New()
//	if err := v.Validate(&root); err != nil {
//	    var schemaErr *validation.SchemaError
//	    if errors.As(err, &schemaErr) {
//	        for _, e := range schemaErr.Errors {
//	            fmt.Println(e)
//	        }
//	    }
//	}
package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"evalgo.org/hostconf/models"
)

// ErrSchemaViolation is matched by every *SchemaError.
var ErrSchemaViolation = errors.New("schema violation")

// Validator evaluates the inventory schema against YAML node trees.
type Validator struct {
	// structValidator evaluates scalar rules expressed as validator tags
	structValidator *validator.Validate

	// schema is the root shape of an inventory document
	schema *Shape
}

// ValidationError is a single schema violation.
type ValidationError struct {
	// Field is the dotted path of the offending value (hosts.web01.interfaces.eth0.mac)
	Field string `json:"field"`

	// Expected describes the declared shape
	Expected string `json:"expected"`

	// Actual describes what the document contains
	Actual string `json:"actual"`

	// Line is the 1-based line in the source document, 0 when unknown
	Line int `json:"line,omitempty"`
}

func (e ValidationError) String() string {
	field := e.Field
	if field == "" {
		field = "document"
	}
	s := fmt.Sprintf("%s: expected %s, got %s", field, e.Expected, e.Actual)
	if e.Line > 0 {
		s += fmt.Sprintf(" (line %d)", e.Line)
	}
	return s
}

// SchemaError collects every violation found in a document.
type SchemaError struct {
	Errors []ValidationError `json:"errors"`
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, v := range e.Errors {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%s: %s", ErrSchemaViolation, strings.Join(parts, "; "))
}

// Is reports whether target is ErrSchemaViolation.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchemaViolation
}

// New creates a Validator for the inventory schema.
func New() *Validator {
	v := validator.New()
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("hostmac", func(fl validator.FieldLevel) bool {
		return models.ValidMAC(fl.Field().String())
	})

	return &Validator{
		structValidator: v,
		schema:          DocumentSchema(),
	}
}

// Validate checks root, a document or mapping node, against the inventory
// schema. It returns nil or a *SchemaError listing every violation.
func (v *Validator) Validate(root *yaml.Node) error {
	var errs []ValidationError

	node := root
	if node != nil && node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			node = nil
		} else {
			node = node.Content[0]
		}
	}

	if node == nil || node.Kind == 0 {
		errs = append(errs, ValidationError{Expected: "mapping", Actual: "empty document"})
	} else {
		errs = v.check(node, v.schema, "", errs)
	}

	if len(errs) > 0 {
		return &SchemaError{Errors: errs}
	}
	return nil
}

// ValidateBytes parses data as YAML and validates it.
func (v *Validator) ValidateBytes(data []byte) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	return v.Validate(&root)
}

// check validates node against shape and appends violations to errs.
func (v *Validator) check(node *yaml.Node, shape *Shape, path string, errs []ValidationError) []ValidationError {
	node = resolveAlias(node)
	actual := describe(node)

	switch shape.Kind {
	case KindRecord:
		if node.Kind != yaml.MappingNode {
			return append(errs, violation(path, "mapping", actual, node))
		}
		var entries []pair
		entries, errs = pairs(node, path, errs)
		fields := make(map[string]*yaml.Node, len(entries))
		for _, p := range entries {
			fields[p.key] = p.value
		}
		for _, f := range shape.Fields {
			value, ok := fields[f.Name]
			if ok && isNull(value) {
				ok = false
			}
			if !ok {
				if f.Required {
					errs = append(errs, violation(join(path, f.Name), f.Shape.Kind.String(), "nothing (required field missing)", node))
				}
				continue
			}
			errs = v.check(value, f.Shape, join(path, f.Name), errs)
		}

	case KindMap:
		if node.Kind != yaml.MappingNode {
			return append(errs, violation(path, "mapping", actual, node))
		}
		var entries []pair
		entries, errs = pairs(node, path, errs)
		for _, p := range entries {
			errs = v.check(p.value, shape.Values, join(path, p.key), errs)
		}

	case KindSequence:
		if node.Kind != yaml.SequenceNode {
			return append(errs, violation(path, "sequence", actual, node))
		}
		for i, item := range node.Content {
			errs = v.check(item, shape.Values, fmt.Sprintf("%s[%d]", path, i), errs)
		}

	case KindString, KindBool, KindInt, KindScalar:
		if !shape.Kind.accepts(node) {
			return append(errs, violation(path, shape.Kind.String(), actual, node))
		}
		if shape.Rules != "" {
			if err := v.checkRules(node, shape); err != nil {
				expected := shape.Describe
				if expected == "" {
					expected = fmt.Sprintf("%s satisfying %q", shape.Kind, shape.Rules)
				}
				errs = append(errs, violation(path, expected, strconv.Quote(node.Value), node))
			}
		}
	}

	return errs
}

// checkRules evaluates the validator tags of a scalar shape.
func (v *Validator) checkRules(node *yaml.Node, shape *Shape) error {
	if shape.Kind == KindInt {
		var n int
		if err := node.Decode(&n); err != nil {
			return err
		}
		return v.structValidator.Var(n, shape.Rules)
	}
	return v.structValidator.Var(node.Value, shape.Rules)
}

type pair struct {
	key   string
	value *yaml.Node
}

// pairs returns the key/value pairs of a mapping node in document order,
// reporting duplicate and non-scalar keys. Only the first occurrence of a
// duplicated key is returned.
//
// Merge keys (<<) are expanded in place with the precedence yaml.v3 applies
// when decoding: keys written in the mapping win over merged ones, and an
// earlier merge source wins over a later one.
func pairs(node *yaml.Node, path string, errs []ValidationError) ([]pair, []ValidationError) {
	return expandPairs(node, path, errs, map[*yaml.Node]bool{})
}

func expandPairs(node *yaml.Node, path string, errs []ValidationError, active map[*yaml.Node]bool) ([]pair, []ValidationError) {
	active[node] = true
	defer delete(active, node)

	explicit := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := resolveAlias(node.Content[i])
		if keyNode.Kind == yaml.ScalarNode && !isMerge(keyNode) {
			explicit[keyNode.Value] = true
		}
	}

	out := make([]pair, 0, len(node.Content)/2)
	lines := make(map[string]int, len(node.Content)/2)
	merged := make(map[string]bool)
	mergeLine := 0
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := resolveAlias(node.Content[i])
		if isMerge(keyNode) {
			if mergeLine > 0 {
				errs = append(errs, violation(join(path, "<<"), "unique key", fmt.Sprintf("duplicate of line %d", mergeLine), keyNode))
				continue
			}
			mergeLine = keyNode.Line
			var sources []pair
			sources, errs = mergeSources(node.Content[i+1], join(path, "<<"), errs, active)
			for _, p := range sources {
				if explicit[p.key] || merged[p.key] {
					continue
				}
				merged[p.key] = true
				out = append(out, p)
			}
			continue
		}
		if keyNode.Kind != yaml.ScalarNode {
			errs = append(errs, violation(path, "scalar key", describe(keyNode), keyNode))
			continue
		}
		key := keyNode.Value
		if line, dup := lines[key]; dup {
			errs = append(errs, violation(join(path, key), "unique key", fmt.Sprintf("duplicate of line %d", line), keyNode))
			continue
		}
		lines[key] = keyNode.Line
		out = append(out, pair{key: key, value: node.Content[i+1]})
	}
	return out, errs
}

// mergeSources returns the pairs contributed by the value of a merge key:
// a mapping, an alias of one, or a sequence of those.
func mergeSources(value *yaml.Node, path string, errs []ValidationError, active map[*yaml.Node]bool) ([]pair, []ValidationError) {
	value = resolveAlias(value)

	var sources []*yaml.Node
	switch value.Kind {
	case yaml.MappingNode:
		sources = []*yaml.Node{value}
	case yaml.SequenceNode:
		for i, item := range value.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.MappingNode {
				errs = append(errs, violation(fmt.Sprintf("%s[%d]", path, i), "mapping", describe(item), item))
				continue
			}
			sources = append(sources, item)
		}
	default:
		return nil, append(errs, violation(path, "mapping or sequence of mappings", describe(value), value))
	}

	var out []pair
	seen := make(map[string]bool)
	for _, src := range sources {
		if active[src] {
			errs = append(errs, violation(path, "mapping", "a mapping that merges itself", src))
			continue
		}
		var ps []pair
		ps, errs = expandPairs(src, path, errs, active)
		for _, p := range ps {
			if !seen[p.key] {
				seen[p.key] = true
				out = append(out, p)
			}
		}
	}
	return out, errs
}

// isMerge reports whether a key node is the YAML merge key. A quoted "<<" is
// an ordinary string key.
func isMerge(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!merge"
}

func violation(path, expected, actual string, node *yaml.Node) ValidationError {
	return ValidationError{
		Field:    path,
		Expected: expected,
		Actual:   actual,
		Line:     node.Line,
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	node = resolveAlias(node)
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}

// describe names the shape of a node for error messages.
func describe(node *yaml.Node) string {
	switch node.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!str":
			return "string"
		case "!!bool":
			return "bool"
		case "!!int":
			return "int"
		case "!!float":
			return "float"
		case "!!null":
			return "null"
		default:
			return strings.TrimPrefix(node.ShortTag(), "!!")
		}
	default:
		return "unknown node"
	}
}
