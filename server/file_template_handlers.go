package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/jrsteele09/gatekeeper/server/flash"
	"github.com/rs/zerolog/log"
)

const contentTypeHTML = "text/html; charset=utf-8"

const (
	pageLogin    = "login.html"
	pageSignUser = "sign_user.html"
	pageHome     = "home.html"
)

//go:embed templates/*
var templateFiles embed.FS

// PageData is the view model shared by every page.
type PageData struct {
	AppName   string
	Flashes   []flash.Message
	Errors    []string
	Email     string // preserved form input
	FullName  string // preserved form input
	UserLabel string
	Bootstrap bool
}

// pageTemplates holds each page parsed together with the base layout.
type pageTemplates map[string]*template.Template

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

func parsePageTemplates() (pageTemplates, error) {
	pages := pageTemplates{}
	for _, name := range []string{pageLogin, pageSignUser, pageHome} {
		tmpl, err := template.ParseFS(TemplateFilesFS(), "base.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// render executes a page into a buffer first so a template failure never leaves a half-written response.
func (s *Server) render(w http.ResponseWriter, name string, data PageData) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Error().Str("page", name).Msg("unknown page template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	data.AppName = s.config.GetAppName()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		log.Err(err).Str("page", name).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Err(err).Str("page", name).Msg("Failed to write page")
	}
}
