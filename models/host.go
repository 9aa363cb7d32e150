package models

import "gopkg.in/yaml.v3"

// Host is the provisioning record for one physical or virtual machine.
// The hostname is the key of the record under `hosts` and is carried in Name.
type Host struct {
	// Name is the hostname (the mapping key, not a YAML field)
	Name string `yaml:"-"`

	// Install names the OS image or installer profile
	Install string `yaml:"install,omitempty"`

	// InstallTo is the target disk for the installer
	InstallTo string `yaml:"install_to,omitempty"`

	// Config names the OS configuration profile applied after install
	Config string `yaml:"config,omitempty"`

	// Nameserver is the resolver address for the host
	Nameserver string `yaml:"nameserver,omitempty"`

	// RootPW is the root password, plain or crypt(3) hashed; nil when unset
	RootPW *string `yaml:"root_pw,omitempty"`

	// RunCmds are shell commands executed on first boot, in order
	RunCmds []string `yaml:"run_cmds,omitempty"`

	// Groups are extra groups created on the host
	Groups []string `yaml:"groups,omitempty"`

	// IsRouter marks hosts that forward traffic
	IsRouter bool `yaml:"is_router,omitempty"`

	// Users are the local accounts, in document order
	Users UserList `yaml:"users,omitempty"`

	// Interfaces are the network interfaces, in document order
	Interfaces InterfaceList `yaml:"interfaces,omitempty"`
}

// Interface returns the interface with the given name.
func (h *Host) Interface(name string) (*Interface, bool) {
	for _, iface := range h.Interfaces {
		if iface.Name == name {
			return iface, true
		}
	}
	return nil, false
}

// HostList is the ordered form of the `hosts` mapping.
type HostList []*Host

// UnmarshalYAML decodes the hostname → host mapping keeping document order.
func (l *HostList) UnmarshalYAML(value *yaml.Node) error {
	hosts, err := decodeNamed(value, func(h *Host, name string) { h.Name = name })
	if err != nil {
		return err
	}
	*l = hosts
	return nil
}
