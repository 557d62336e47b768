// Package lookup serves the search endpoints that remote autocompleter fields
// point at. Sources are registered by route name and answer GET and HEAD
// requests with {"data":[{"value":...,"label":...}]}.
package lookup
