package http

import (
	"net/http"
	"strconv"
	"strings"
)

// sanitizeInput trims whitespace and strips control characters from form
// values before they reach the domain layer.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// parsePathID extracts a positive integer path value.
func parsePathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
