package validation

import "gopkg.in/yaml.v3"

// Kind is the declared type of a schema node.
type Kind int

const (
	// KindRecord is a mapping with a fixed set of known fields
	KindRecord Kind = iota
	// KindMap is a mapping with arbitrary keys whose values share one shape
	KindMap
	// KindSequence is a list whose items share one shape
	KindSequence
	// KindString is a YAML string scalar
	KindString
	// KindBool is a YAML boolean scalar
	KindBool
	// KindInt is a YAML integer scalar
	KindInt
	// KindScalar is a string or integer scalar kept as literal text
	KindScalar
)

func (k Kind) String() string {
	switch k {
	case KindRecord, KindMap:
		return "mapping"
	case KindSequence:
		return "sequence"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindScalar:
		return "string or int"
	default:
		return "unknown"
	}
}

// accepts reports whether a scalar node has the declared type.
func (k Kind) accepts(node *yaml.Node) bool {
	if node.Kind != yaml.ScalarNode {
		return false
	}
	tag := node.ShortTag()
	switch k {
	case KindString:
		return tag == "!!str"
	case KindBool:
		return tag == "!!bool"
	case KindInt:
		return tag == "!!int"
	case KindScalar:
		return tag == "!!str" || tag == "!!int"
	}
	return false
}

// Shape describes the expected form of a YAML node.
type Shape struct {
	Kind Kind

	// Fields are the known fields of a KindRecord
	Fields []Field

	// Values is the shape of KindMap values and KindSequence items
	Values *Shape

	// Rules are validator tags applied to scalar values
	Rules string

	// Describe replaces the generated expectation text when Rules fail
	Describe string
}

// Field is a named field of a record.
type Field struct {
	Name     string
	Shape    *Shape
	Required bool
}

func str() *Shape            { return &Shape{Kind: KindString} }
func boolean() *Shape        { return &Shape{Kind: KindBool} }
func stringList() *Shape     { return listOf(str()) }
func listOf(s *Shape) *Shape { return &Shape{Kind: KindSequence, Values: s} }
func mapOf(s *Shape) *Shape  { return &Shape{Kind: KindMap, Values: s} }

func optional(name string, s *Shape) Field { return Field{Name: name, Shape: s} }
func required(name string, s *Shape) Field { return Field{Name: name, Shape: s, Required: true} }

// RouteSchema is the shape of one entry in an interface's `routes` list.
func RouteSchema() *Shape {
	return &Shape{Kind: KindRecord, Fields: []Field{
		required("to", str()),
		required("via", str()),
		optional("metric", &Shape{Kind: KindScalar}),
	}}
}

// InterfaceSchema is the shape of a value in a host's `interfaces` mapping.
func InterfaceSchema() *Shape {
	return &Shape{Kind: KindRecord, Fields: []Field{
		required("mac", &Shape{Kind: KindString, Rules: "hostmac", Describe: "MAC address"}),
		optional("addresses", stringList()),
		optional("routes", listOf(RouteSchema())),
	}}
}

// UserSchema is the shape of a value in a host's `users` mapping.
func UserSchema() *Shape {
	return &Shape{Kind: KindRecord, Fields: []Field{
		required("primary_group", str()),
		optional("groups", stringList()),
		optional("gecos", str()),
		optional("shell", str()),
		optional("ssh_keys", stringList()),
		optional("sudo", boolean()),
		optional("lock_passwd", boolean()),
		optional("uid", &Shape{Kind: KindInt, Rules: "gte=0", Describe: "non-negative int"}),
	}}
}

// HostSchema is the shape of a value in the `hosts` mapping.
func HostSchema() *Shape {
	return &Shape{Kind: KindRecord, Fields: []Field{
		optional("install", str()),
		optional("install_to", str()),
		optional("config", str()),
		optional("nameserver", str()),
		optional("root_pw", str()),
		optional("run_cmds", stringList()),
		optional("groups", stringList()),
		optional("is_router", boolean()),
		optional("users", mapOf(UserSchema())),
		optional("interfaces", mapOf(InterfaceSchema())),
	}}
}

// DocumentSchema is the shape of a whole inventory document.
func DocumentSchema() *Shape {
	return &Shape{Kind: KindRecord, Fields: []Field{
		required("hosts", mapOf(HostSchema())),
	}}
}
