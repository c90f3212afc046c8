// Package view holds the embedded HTML templates for the account flow and
// their view models. Rendering is deliberately minimal; the flow is
// form-post-and-redirect, not a styled frontend.
package view

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses the embedded template set for gin's HTML renderer.
func Templates() *template.Template {
	return template.Must(template.ParseFS(files, "templates/*.html"))
}

// Form is the view model for the login and register pages.
type Form struct {
	Error string
}

// Verify is the view model for the verification-pending page.
type Verify struct {
	Email string
}

// Home is the view model for the application home page.
type Home struct {
	SignedIn bool
	Name     string
	Email    string
	Role     string
}
