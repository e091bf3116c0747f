package common

import (
	"net/http"
	"net/http/httputil"

	"infinite-experiment/airtrack/internal/logging"
)

// LogHTTPRequest dumps an outgoing request at debug level. Values of the
// named headers are masked in the dump; req itself is left untouched.
func LogHTTPRequest(req *http.Request, redact ...string) {
	if !logging.DebugEnabled() {
		return
	}

	clone := req.Clone(req.Context())
	for _, h := range redact {
		if clone.Header.Get(h) != "" {
			clone.Header.Set(h, "[redacted]")
		}
	}

	// GET requests only; the body is never consumed
	dump, err := httputil.DumpRequestOut(clone, false)
	if err != nil {
		logging.Debug("Failed to dump HTTP request", "error", err.Error())
		return
	}
	logging.Debug("Upstream request", "dump", string(dump))
}
