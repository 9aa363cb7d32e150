package api

import (
	"bytes"
	"net/http"
	"slices"

	"github.com/a-h/templ"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// newUpgrader accepts websocket handshakes from the configured CORS origins.
// Requests without an Origin header (curl, websocat) are always accepted.
func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || slices.Contains(allowedOrigins, "*") {
				return true
			}
			return slices.Contains(allowedOrigins, origin)
		},
	}
}

// handleLog serves the request log page, or streams request lines when the
// request is a websocket upgrade.
func (s *Server) handleLog(c echo.Context) error {
	if websocket.IsWebSocketUpgrade(c.Request()) {
		return s.streamLog(c)
	}
	return Render(c, http.StatusOK, logPage("hostconf request log", c.Path()))
}

func (s *Server) streamLog(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the error response
		s.logger.Warn("log stream upgrade failed", "error", err)
		return nil
	}

	client := &Client{
		hub:  s.hub,
		conn: ws,
		send: make(chan []byte, 256),
	}

	if !s.hub.attach(client) {
		_ = ws.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()

	return nil
}

// Render writes a templ component. The component is rendered to a buffer
// first so a failing component never produces a partial page.
func Render(c echo.Context, status int, component templ.Component) error {
	var buf bytes.Buffer
	if err := component.Render(c.Request().Context(), &buf); err != nil {
		return InternalError("Failed to render page", err.Error())
	}
	return c.HTMLBlob(status, buf.Bytes())
}
