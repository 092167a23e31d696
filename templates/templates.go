// Package templates embeds the HTML pages served by the password-reset
// flow.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var files embed.FS

// Parse returns the parsed template set for gin's HTML renderer.
func Parse() *template.Template {
	return template.Must(template.ParseFS(files, "*.html"))
}
