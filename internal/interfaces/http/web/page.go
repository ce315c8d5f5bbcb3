package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/sngm3741/coffee-map/internal/coffee/maps"
	"github.com/sngm3741/coffee-map/internal/interfaces/http/common"
	"github.com/sngm3741/coffee-map/internal/interfaces/http/web/render"
)

//go:embed assets/index.html assets/app.js
var assets embed.FS

var pageTemplate = template.Must(template.ParseFS(assets, "assets/index.html"))

type pageData struct {
	DefaultZipCode string
	InitialZoom    int
	Prompt         string
}

func (h *Handler) pageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var buf bytes.Buffer
		err := pageTemplate.Execute(&buf, pageData{
			DefaultZipCode: h.defaultZipCode,
			InitialZoom:    maps.InitialZoom,
			Prompt:         render.SearchPromptMessage,
		})
		if err != nil {
			h.logger.WithError(err).Error("page render failed", nil)
			common.WriteError(h.logger, w, http.StatusInternalServerError, msgInternal)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	}
}

func (h *Handler) scriptHandler() http.HandlerFunc {
	script, err := assets.ReadFile("assets/app.js")
	return func(w http.ResponseWriter, r *http.Request) {
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(script)
	}
}
