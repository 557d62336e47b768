package autocompleter

import (
	"io/fs"

	"github.com/goliatone/go-autocompleter/pkg/renderers/html"
)

// RuntimeAssetsFS exposes the browser script that wires rendered inputs to
// their lookup endpoints.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(autocompleter.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	return html.AssetsFS()
}
