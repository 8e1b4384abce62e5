// Package web embeds the single static page served at the root route.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// PageData is what the home page renders.
type PageData struct {
	Title string
	// ClientKey is written into the page script and is readable by every visitor.
	ClientKey string
}

// HomeHandler returns an http.Handler rendering the home page with data.
// The page is rendered once; data does not change while the process runs.
func HomeHandler(data PageData) http.Handler {
	if data.Title == "" {
		data.Title = "Daily wins"
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		panic("web: failed to render index template: " + err.Error())
	}
	page := buf.Bytes()

	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if _, err := w.Write(page); err != nil {
			slog.Debug("web: failed to write home page", "error", err)
		}
	})
}
