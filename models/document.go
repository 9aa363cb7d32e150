package models

// Document is the root of a hostconf inventory.
//
// Example YAML representation:
//
//	hosts:
//	  web01:
//	    install: ubuntu-24.04
//	    install_to: /dev/sda
//	    users:
//	      alice:
//	        primary_group: alice
//	        ssh_keys: ["ssh-ed25519 AAAA... alice@laptop"]
//	    interfaces:
//	      eth0:
//	        mac: "aa:bb:cc:dd:ee:ff"
//	        addresses: ["10.0.0.5/24"]
//	        routes:
//	          - to: default
//	            via: 10.0.0.1
//
// A Document is decoded once at startup and never mutated afterwards.
type Document struct {
	// Hosts keeps the hosts in document order.
	Hosts HostList `yaml:"hosts"`
}

// Host returns the host with the given name.
func (d *Document) Host(name string) (*Host, bool) {
	for _, h := range d.Hosts {
		if h.Name == name {
			return h, true
		}
	}
	return nil, false
}

// InterfaceCount returns the number of interfaces declared across all hosts.
func (d *Document) InterfaceCount() int {
	n := 0
	for _, h := range d.Hosts {
		n += len(h.Interfaces)
	}
	return n
}
