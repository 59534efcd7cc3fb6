package web

import (
	"embed"
	"html/template"
	"io/fs"
	"sync"
)

//go:embed *.html app.css widget.js
var content embed.FS

var (
	tmpl *template.Template
	once sync.Once
)

// Templates returns the parsed HTML templates for the admin UI, embedded
// at build time.
func Templates() *template.Template {
	once.Do(func() {
		tmpl = template.Must(template.ParseFS(content, "*.html"))
	})
	return tmpl
}

// StaticFS exposes embedded static assets such as CSS.
func StaticFS() fs.FS {
	return content
}

// WidgetScript returns the embeddable widget loader served at /widget.js.
func WidgetScript() []byte {
	data, err := content.ReadFile("widget.js")
	if err != nil {
		panic(err)
	}
	return data
}
