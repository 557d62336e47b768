package lookup

import (
	"fmt"
	"net/http"
	"strings"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath returns the prefix under which route names are served.
func MountPath(basePath string, fns ...OptionFn) string {
	opts := NewOptions(fns...)
	return mountPath(basePath, opts.RoutePath)
}

// RoutePath returns the URL of a single route name under basePath.
func RoutePath(basePath, routeName string, fns ...OptionFn) string {
	return joinRoute(MountPath(basePath, fns...), routeName)
}

func joinRoute(prefix, routeName string) string {
	routeName = strings.Trim(strings.TrimSpace(routeName), "/")
	return strings.TrimRight(prefix, "/") + "/" + routeName
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}

func registerPrefix(mux Mux, pattern string, handler http.Handler) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("lookup: missing mux")
	}
	pattern = strings.TrimRight(pattern, "/") + "/"
	mux.Handle(pattern, handler)
	return pattern, nil
}
