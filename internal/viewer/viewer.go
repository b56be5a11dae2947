// Package viewer serves a followed file's lines to browsers over a
// websocket, with an optional sanitized HTML rendering for markdown files.
package viewer

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/websocket"
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

// Server streams lines to websocket clients. Lines are fed in through
// Broadcast, typically from a follower.
type Server struct {
	path           string
	renderMarkdown bool
	hub            *hub
	upgrader       websocket.Upgrader
}

// New returns a Server for the file at path. When renderMarkdown is set,
// the /render endpoint serves the file as sanitized HTML.
func New(path string, renderMarkdown bool) *Server {
	return &Server{
		path:           path,
		renderMarkdown: renderMarkdown,
		hub:            newHub(),
	}
}

// Broadcast delivers one line to every connected client.
func (s *Server) Broadcast(line []byte) {
	s.hub.broadcast(line)
}

// Routes returns the HTTP handler for the viewer.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /render", s.handleRender)
	return mux
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>linewise: {{.Name}}</title>
<style>
body { font-family: monospace; margin: 1em; }
pre { white-space: pre-wrap; word-break: break-all; }
</style>
</head>
<body>
<h1>{{.Name}}</h1>
{{if .Render}}<p><a href="render">rendered markdown</a></p>{{end}}
<pre id="lines"></pre>
<script>
const pre = document.getElementById("lines");
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.onmessage = (ev) => { pre.textContent += ev.data; };
ws.onclose = () => { pre.textContent += "\n[disconnected]\n"; };
</script>
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTmpl.Execute(w, map[string]any{
		"Name":   filepath.Base(s.path),
		"Render": s.renderMarkdown,
	})
	if err != nil {
		slog.Error("Failed to render index", "error", err)
	}
}

// handleWS upgrades the connection and streams broadcast lines until the
// client goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade to WebSocket", "error", err)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Error("Failed to close WebSocket connection", "error", err)
		}
	}()

	c := &client{
		id:   fmt.Sprintf("%s-%d", r.RemoteAddr, time.Now().UnixNano()),
		send: make(chan []byte, 100),
		done: make(chan struct{}),
	}
	s.hub.register(c)
	defer s.hub.unregister(c.id)
	defer close(c.done)

	// Writer goroutine owns the connection's write side.
	go func() {
		for {
			select {
			case line := <-c.send:
				if err := conn.WriteMessage(websocket.TextMessage, line); err != nil {
					slog.Error("Failed to write WebSocket message", "error", err, "clientID", c.id)
					return
				}
			case <-c.done:
				return
			}
		}
	}()

	// Block on the read side to notice the client disconnecting.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if !s.renderMarkdown {
		http.NotFound(w, r)
		return
	}
	content, err := os.ReadFile(s.path)
	if err != nil {
		slog.Error("Failed to read file for rendering", "path", s.path, "error", err)
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(renderHTML(content)); err != nil {
		slog.Error("Failed to write rendered markdown", "error", err)
	}
}

// renderHTML converts markdown to sanitized HTML. blackfriday does the
// parsing, bluemonday strips anything unsafe so a hostile file cannot
// inject script into the viewer.
func renderHTML(markdown []byte) []byte {
	unsafe := blackfriday.Run(markdown, blackfriday.WithExtensions(blackfriday.CommonExtensions))
	return bluemonday.UGCPolicy().SanitizeBytes(unsafe)
}
