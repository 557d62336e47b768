package lookup

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-autocompleter/pkg/choicelist"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type optionsResponse struct {
	Data choicelist.Choices `json:"data"`
}

// Handler serves lookup queries against a single source.
func Handler(source choicelist.Searcher, fns ...OptionFn) http.Handler {
	return HandlerWithOptions(source, NewOptions(fns...))
}

// HandlerWithOptions builds the handler from a pre-constructed Options value.
// Defaults are re-applied to opts.
func HandlerWithOptions(source choicelist.Searcher, opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serve(w, r, source, "", opts)
	})
}

func serve(w http.ResponseWriter, r *http.Request, source choicelist.Searcher, route string, opts Options) {
	if r == nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	if opts.Guard != nil {
		if err := opts.Guard(r); err != nil {
			writeGuardError(w, err)
			return
		}
	}

	if source == nil {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get(opts.SearchParam))
	limit := clampLimit(parseInt(r.URL.Query().Get(opts.LimitParam)), opts)

	var results choicelist.Choices
	if query != "" || opts.EmptySearchMode == EmptySearchTop {
		found, err := source.Search(r.Context(), query, limit)
		if err != nil {
			opts.Logger.Error("lookup search failed",
				zap.String("route", route),
				zap.String("query", query),
				zap.Error(err),
			)
			writeError(w, err)
			return
		}
		results = found
	}
	if results == nil {
		results = choicelist.Choices{}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(optionsResponse{Data: results}); err != nil {
		opts.Logger.Warn("lookup response write failed", zap.String("route", route), zap.Error(err))
	}
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
	}
	http.Error(w, http.StatusText(code), code)
}

func parseInt(raw string) int {
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
