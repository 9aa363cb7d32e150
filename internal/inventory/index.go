package inventory

import (
	"fmt"
	"strings"

	"evalgo.org/hostconf/models"
)

// MACPolicy selects how MAC addresses are compared.
type MACPolicy string

const (
	// MACNormalized compares MACs case-insensitively with '-' and ':' treated
	// as the same separator.
	MACNormalized MACPolicy = "normalized"

	// MACExact compares MACs as literal strings.
	MACExact MACPolicy = "exact"
)

// ParseMACPolicy converts a configuration value to a MACPolicy.
// The empty string selects MACNormalized.
func ParseMACPolicy(s string) (MACPolicy, error) {
	switch MACPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MACNormalized:
		return MACNormalized, nil
	case MACExact:
		return MACExact, nil
	default:
		return "", fmt.Errorf("unknown MAC policy %q (want %q or %q)", s, MACNormalized, MACExact)
	}
}

// Key returns the index key for mac under the policy.
func (p MACPolicy) Key(mac string) string {
	if p == MACExact {
		return mac
	}
	return models.NormalizeMAC(mac)
}

// Entry is one registered MAC.
type Entry struct {
	MAC       string `json:"mac"`
	Hostname  string `json:"hostname"`
	Interface string `json:"interface"`
}

// Conflict is an interface whose MAC was already registered by an earlier
// interface. Lookups for the MAC resolve to Winner.
type Conflict struct {
	Entry
	Winner Entry `json:"winner"`
}

// Index maps MAC addresses to hosts.
type Index struct {
	policy    MACPolicy
	hosts     map[string]*models.Host
	entries   []Entry
	conflicts []Conflict
}

// NewIndex builds an index over every interface of every host, in document
// order. When two interfaces declare the same key the first one wins.
func NewIndex(doc *models.Document, policy MACPolicy) *Index {
	if policy == "" {
		policy = MACNormalized
	}

	idx := &Index{
		policy: policy,
		hosts:  make(map[string]*models.Host, doc.InterfaceCount()),
	}
	owners := make(map[string]Entry, doc.InterfaceCount())

	for _, host := range doc.Hosts {
		for _, iface := range host.Interfaces {
			key := policy.Key(iface.MAC)
			entry := Entry{MAC: iface.MAC, Hostname: host.Name, Interface: iface.Name}
			if winner, taken := owners[key]; taken {
				idx.conflicts = append(idx.conflicts, Conflict{Entry: entry, Winner: winner})
				continue
			}
			owners[key] = entry
			idx.hosts[key] = host
			idx.entries = append(idx.entries, entry)
		}
	}

	return idx
}

// Resolve returns the host owning mac. Only whole keys match.
func (i *Index) Resolve(mac string) (*models.Host, bool) {
	host, ok := i.hosts[i.policy.Key(mac)]
	return host, ok
}

// Policy returns the comparison policy of the index.
func (i *Index) Policy() MACPolicy {
	return i.policy
}

// Len returns the number of distinct registered MACs.
func (i *Index) Len() int {
	return len(i.entries)
}

// Entries returns the registered MACs in document order.
func (i *Index) Entries() []Entry {
	out := make([]Entry, len(i.entries))
	copy(out, i.entries)
	return out
}

// Conflicts returns the interfaces that lost a duplicate MAC tie-break.
func (i *Index) Conflicts() []Conflict {
	out := make([]Conflict, len(i.conflicts))
	copy(out, i.conflicts)
	return out
}
