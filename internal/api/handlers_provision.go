package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"evalgo.org/hostconf/internal/projection"
	"evalgo.org/hostconf/internal/provision"
	"evalgo.org/hostconf/internal/render"
	"evalgo.org/hostconf/internal/version"
)

// handleDocument serves the rendered document of kind for the :mac host.
func (s *Server) handleDocument(kind projection.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		mac := c.Param("mac")

		res, err := s.service.Lookup(c.Request().Context(), kind, mac)
		s.metrics.ObserveLookup(string(kind), lookupOutcome(err))
		if err != nil {
			s.logLookupError(kind.String(), mac, err)
			return provisionError(err, mac)
		}

		s.logger.Debug("document served", "kind", kind, "mac", mac, "host", res.Hostname)
		return c.Blob(http.StatusOK, res.ContentType, res.Body)
	}
}

// handleField serves one raw host field as plain text.
func (s *Server) handleField(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		mac := c.Param("mac")

		res, err := s.service.Field(c.Request().Context(), name, mac)
		s.metrics.ObserveLookup(name, lookupOutcome(err))
		if err != nil {
			s.logLookupError(name, mac, err)
			return provisionError(err, mac)
		}

		return c.Blob(http.StatusOK, res.ContentType, res.Body)
	}
}

// handleCustomUnattend renders the request body as a template against the
// unattend view of the :mac host.
func (s *Server) handleCustomUnattend(c echo.Context) error {
	mac := c.Param("mac")

	// Read one byte past the limit so oversized bodies are detected
	// without buffering them whole.
	limit := int64(s.config.Render.CustomTemplateMaxBytes)
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, limit+1))
	if err != nil {
		return BadRequestError("Failed to read template", err.Error())
	}
	if int64(len(body)) > limit {
		return PayloadTooLargeError("Template too large", fmt.Sprintf("Templates are limited to %d bytes", limit))
	}
	if len(body) == 0 {
		return BadRequestError("Empty template", "The request body must contain a template")
	}

	res, err := s.service.LookupCustom(c.Request().Context(), mac, body)
	s.metrics.ObserveLookup("custom", lookupOutcome(err))
	if err != nil {
		s.logLookupError("custom", mac, err)
		if errors.Is(err, render.ErrRender) {
			return UnprocessableError("Template execution failed", err.Error())
		}
		return provisionError(err, mac)
	}

	return c.Blob(http.StatusOK, res.ContentType, res.Body)
}

func (s *Server) logLookupError(kind, mac string, err error) {
	switch {
	case errors.Is(err, provision.ErrHostNotFound), errors.Is(err, provision.ErrInvalidMAC):
		s.logger.Info("lookup failed", "kind", kind, "mac", mac, "error", err)
	default:
		s.logger.Error("lookup failed", "kind", kind, "mac", mac, "error", err)
	}
}

// healthCheck handles health check requests.
func (s *Server) healthCheck(c echo.Context) error {
	stats := s.service.Stats()

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"service":    "hostconf",
		"version":    version.Get().Version,
		"mac_policy": s.service.Index().Policy(),
		"templates":  s.service.TemplateSource(),
		"inventory":  stats,
		"log_stream": map[string]interface{}{
			"connected_clients": s.hub.ClientCount(),
		},
	})
}
