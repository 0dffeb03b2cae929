package engine

import "strings"

// ValidCandidate reports whether a discovered hostname is eligible for
// probing. Malformed candidates (empty, no dot, leading/trailing dot) are
// discarded before any probe is scheduled and are never counted as failures.
func ValidCandidate(host string) bool {
	if host == "" {
		return false
	}
	if !strings.Contains(host, ".") {
		return false
	}
	if strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return false
	}
	return true
}
