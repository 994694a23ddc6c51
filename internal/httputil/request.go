package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxRequestBody caps JSON request bodies. Note content is the largest
// payload the API accepts; 2MB leaves ample headroom over the content limit.
const maxRequestBody = 2 << 20

// ParseJSON decodes JSON from the request body into the given destination.
// The body is size-limited; oversized requests get a proper 413 from
// MaxBytesReader.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
