// Package templates embeds the dashboard page.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var files embed.FS

// Parse loads every embedded page.
func Parse() (*template.Template, error) {
	return template.ParseFS(files, "*.html")
}
