package models

import "gopkg.in/yaml.v3"

// Interface is one network interface of a host.
type Interface struct {
	// Name is the interface name (the mapping key, not a YAML field)
	Name string `yaml:"-"`

	// MAC is the hardware address exactly as written in the inventory
	MAC string `yaml:"mac"`

	// Addresses are addresses in CIDR notation, in order
	Addresses []string `yaml:"addresses,omitempty"`

	// Routes are static routes, in order
	Routes []Route `yaml:"routes,omitempty"`
}

// Route is a static route attached to an interface.
type Route struct {
	To     string `yaml:"to"`
	Via    string `yaml:"via"`
	Metric Scalar `yaml:"metric,omitempty"`
}

// InterfaceList is the ordered form of a host's `interfaces` mapping.
type InterfaceList []*Interface

// UnmarshalYAML decodes the name → interface mapping keeping document order.
func (l *InterfaceList) UnmarshalYAML(value *yaml.Node) error {
	ifaces, err := decodeNamed(value, func(i *Interface, name string) { i.Name = name })
	if err != nil {
		return err
	}
	*l = ifaces
	return nil
}

// Get returns the interface with the given name.
func (l InterfaceList) Get(name string) (*Interface, bool) {
	for _, iface := range l {
		if iface.Name == name {
			return iface, true
		}
	}
	return nil, false
}

// Scalar keeps the literal text of a YAML scalar regardless of its resolved
// type, so `metric: 100` and `metric: "100"` decode to the same value.
type Scalar string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Scalar) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.AliasNode && value.Alias != nil {
		value = value.Alias
	}
	if value.Kind != yaml.ScalarNode {
		return &yaml.TypeError{Errors: []string{"metric must be a scalar"}}
	}
	if value.ShortTag() == "!!null" {
		*s = ""
		return nil
	}
	*s = Scalar(value.Value)
	return nil
}

// String returns the literal text.
func (s Scalar) String() string {
	return string(s)
}
