package web

import (
	"html/template"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/robinvdvleuten/roclex/formatter"
	"github.com/robinvdvleuten/roclex/roc"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Name}} - roclex</title>
<link rel="stylesheet" href="/api/highlight.css">
<style>body { margin: 0; background: #1E1E1E; } pre { margin: 0; padding: 1em; }</style>
</head>
<body>
{{.Highlighted}}
<script>
new EventSource("/api/events").onmessage = (e) => { if (e.data === "reload") location.reload(); };
</script>
</body>
</html>
`))

// handleIndex renders the served file as a page that reloads on change.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	root, snap := s.rootFile, s.snapshot
	s.mu.RUnlock()

	if snap == nil {
		http.Error(w, "No source loaded", http.StatusServiceUnavailable)
		return
	}

	var buf strings.Builder
	f := formatter.New(formatter.WithMode(formatter.ModeHTML), formatter.WithLineNumbers())
	if err := f.Format(r.Context(), roc.Tokenize(snap.source), &buf); err != nil {
		http.Error(w, "Failed to render source", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = indexTemplate.Execute(w, struct {
		Name        string
		Highlighted template.HTML
	}{
		Name:        filepath.Base(root),
		Highlighted: template.HTML(buf.String()),
	})
}
