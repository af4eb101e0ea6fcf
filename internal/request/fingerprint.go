package request

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
)

// Fingerprint returns a stable hex digest identifying the request for
// deduplication. Two requests for the same method and URL share a
// fingerprint regardless of depth or redirect history.
func (r *Request) Fingerprint() string {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	sum := sha256.Sum256([]byte(method + " " + r.URL))
	return hex.EncodeToString(sum[:])
}
