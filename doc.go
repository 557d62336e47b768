// Package autocompleter configures autocomplete form fields layered on choice
// and entity widgets. Fields are described with Options, built by the
// configurator in pkg/field, rendered as HTML or prompted in a terminal, and
// served by the lookup endpoints in components/lookup.
//
// Runtime bundles those pieces for a set of field definitions loaded from
// JSON/YAML files or an OpenAPI document.
package autocompleter
