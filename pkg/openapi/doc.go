// Package openapi finds autocompleter field definitions in OpenAPI request
// body schemas. Properties opt in with the x-autocompleter extension; kin-openapi
// does the parsing and reference resolution.
package openapi
