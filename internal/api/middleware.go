package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"evalgo.org/hostconf/models"
)

// ValidateTemplateContentType middleware ensures that template uploads are sent as text
func ValidateTemplateContentType(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Allow empty body, the handler rejects it
		if c.Request().ContentLength == 0 {
			return next(c)
		}

		contentType := c.Request().Header.Get(echo.HeaderContentType)
		if contentType != "" && !strings.HasPrefix(contentType, "text/") {
			return NewAPIError(
				http.StatusUnsupportedMediaType,
				"Invalid Content-Type",
				"Templates must be sent as text/*. Got: "+contentType,
			)
		}

		return next(c)
	}
}

// ValidateMAC middleware rejects requests whose :mac parameter is not a MAC address
func ValidateMAC(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		mac := c.Param("mac")
		if !models.ValidMAC(mac) {
			return invalidMACError(mac)
		}

		return next(c)
	}
}

// requireCustomTemplates middleware hides the template upload route unless it is enabled
func (s *Server) requireCustomTemplates(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.service.CustomTemplatesEnabled() {
			return echo.ErrNotFound
		}
		return next(c)
	}
}

// SecurityHeaders middleware adds security headers to responses
func SecurityHeaders(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Add security headers
		c.Response().Header().Set("X-Content-Type-Options", "nosniff")
		c.Response().Header().Set("X-Frame-Options", "DENY")
		c.Response().Header().Set("X-XSS-Protection", "1; mode=block")
		c.Response().Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		return next(c)
	}
}

// formatRequestLine renders one request in the broadcast log format:
//
//	2025-01-02T15:04:05Z - 10.0.0.5:51234 GET /user-data/aa:bb:cc:dd:ee:ff HTTP/1.1 200
func formatRequestLine(v middleware.RequestLoggerValues, remoteAddr string) string {
	return fmt.Sprintf("%s - %s %s %s %s %d",
		v.StartTime.UTC().Format(time.RFC3339),
		remoteAddr,
		v.Method,
		v.URIPath,
		v.Protocol,
		v.Status,
	)
}

// requestLogger logs every request to slog, the log stream and the
// request metrics.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		HandleError:  true,
		LogLatency:   true,
		LogProtocol:  true,
		LogRemoteIP:  true,
		LogMethod:    true,
		LogURIPath:   true,
		LogRoutePath: true,
		LogRequestID: true,
		LogStatus:    true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			route := v.RoutePath
			if route == "" {
				route = "unmatched"
			}
			s.metrics.ObserveRequest(route, v.Method, v.Status, v.Latency)

			s.hub.Broadcast(formatRequestLine(v, c.Request().RemoteAddr))

			attrs := []any{
				"method", v.Method,
				"path", v.URIPath,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			if v.Status >= 500 {
				s.logger.Error("request", attrs...)
			} else {
				s.logger.Info("request", attrs...)
			}
			return nil
		},
	})
}
