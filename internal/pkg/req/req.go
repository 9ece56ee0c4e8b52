/*
Package req provides helper functions for HTTP request parsing and data binding.

It encapsulates JSON body binding with strict field checking and integrates the
application error codes so handlers report malformed input consistently.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"roboveda/internal/pkg/errs"
)

// MaxBodySize defines the maximum allowed size (4 MB) for a JSON request body.
const MaxBodySize int64 = 4 << 20

// BindJSON attempts to bind the JSON data from the HTTP request body to the destination struct dst.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
