// Package fieldconfig loads autocompleter field definitions and entity manager
// connections from JSON or YAML files.
//
// A document looks like:
//
//	managers:
//	  - name: default
//	    driver: sqlite
//	    dsn: file:colors.db
//	fields:
//	  favorite_colors:
//	    widget: entity
//	    route_name: colors_lookup
//	    multiple: true
//	    class: colors
//	    property: name
//
// em and class are accepted as short forms of entity_manager_id and
// entity_class. Field names must be unique across every loaded file.
package fieldconfig
