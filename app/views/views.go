// Package views embeds the HTML templates of the blog.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed layout.html posts/*.html shared/*.html
var files embed.FS

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("Jan 2, 2006 15:04")
	},
	"fieldError": func(errs map[string]string, field string) string {
		return errs[field]
	},
}

// pages lists the files each page template is built from, layout first.
var pages = map[string][]string{
	"index": {"layout.html", "posts/index.html", "shared/pager.html"},
	"show":  {"layout.html", "posts/show.html", "shared/comments.html", "shared/pager.html"},
	"new":   {"layout.html", "posts/new.html"},
}

// Load parses every page template. Each one is executed by name "layout".
func Load() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(pages))
	for name, patterns := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(files, patterns...)
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", name, err)
		}
		templates[name] = t
	}
	return templates, nil
}

// MustLoad is Load for program start-up.
func MustLoad() map[string]*template.Template {
	templates, err := Load()
	if err != nil {
		panic(err)
	}
	return templates
}
