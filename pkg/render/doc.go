// Package render wraps a pongo2 template set behind the TemplateRenderer seam
// used by the HTML renderer.
package render
