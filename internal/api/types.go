package api

import "evalgo.org/hostconf/internal/inventory"

// HostsResponse is a page of registered MACs.
type HostsResponse struct {
	Policy    inventory.MACPolicy  `json:"mac_policy"`
	Count     int                  `json:"count"`
	Total     int                  `json:"total"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	Entries   []inventory.Entry    `json:"entries"`
	Conflicts []inventory.Conflict `json:"conflicts,omitempty"`
}
