package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// listHosts handles GET /hosts. The optional hostname query parameter
// restricts the listing to one host.
func (s *Server) listHosts(c echo.Context) error {
	idx := s.service.Index()

	entries := idx.Entries()
	if hostname := c.QueryParam("hostname"); hostname != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if e.Hostname == hostname {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	limit, offset := parsePagination(c)
	total := len(entries)
	entries = paginate(entries, limit, offset)

	return c.JSON(http.StatusOK, HostsResponse{
		Policy:    idx.Policy(),
		Count:     len(entries),
		Total:     total,
		Limit:     limit,
		Offset:    offset,
		Entries:   entries,
		Conflicts: idx.Conflicts(),
	})
}
