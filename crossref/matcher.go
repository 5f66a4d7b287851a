package crossref

import "strings"

// httpMethodMarkers are the method names recognized inside a source_arn,
// in marker form (e.g. "/POST/").
var httpMethodMarkers = []string{"GET", "PUT", "POST", "DELETE", "OPTIONS", "HEAD", "PATCH", "TRACE"}

// ArnMatcher extracts the HTTP method and path fragment embedded in a
// permission statement's source_arn. The exact shape of execution ARNs is
// not fully specified, so the matcher is pluggable; implementations should
// flag ambiguous matches rather than silently picking one.
type ArnMatcher interface {
	// Match returns the lower-cased HTTP method and the path (with leading
	// slash) extracted from sourceARN. ok is false when no method marker was
	// found; ambiguous is true when several markers matched, in which case
	// the last marker is used.
	Match(sourceARN string) (method, path string, ok, ambiguous bool)
}

// DefaultMatcher matches the execution-ARN shape used by API-Gateway
// permission statements: .../<stage>/<METHOD>/<path>. It first splits on
// the stage wildcard ("/*/"); when no wildcard is present it scans for the
// last "/<METHOD>/" marker.
type DefaultMatcher struct{}

// Match implements ArnMatcher.
func (DefaultMatcher) Match(sourceARN string) (method, path string, ok, ambiguous bool) {
	// Stage wildcard form: everything after the last "/*/" is METHOD/path.
	if idx := strings.LastIndex(sourceARN, "/*/"); idx >= 0 {
		fragment := sourceARN[idx+len("/*/"):]
		if m, p, valid := splitMethodPath(fragment); valid {
			return m, p, true, false
		}
	}

	// Fallback: scan for explicit method markers and take the last one.
	last := -1
	markers := 0
	for _, candidate := range httpMethodMarkers {
		marker := "/" + candidate + "/"
		for from := 0; ; {
			i := strings.Index(sourceARN[from:], marker)
			if i < 0 {
				break
			}
			markers++
			if from+i > last {
				last = from + i
				method = strings.ToLower(candidate)
			}
			from += i + 1
		}
	}
	if last < 0 {
		return "", "", false, false
	}
	fragment := sourceARN[last+1:] // skip the leading slash of the marker
	_, p, _ := splitMethodPath(fragment)
	return method, p, true, markers > 1
}

// splitMethodPath splits "POST/v1/lambda/endpoint1" into its method and
// "/v1/lambda/endpoint1". valid is false when the first segment is not a
// recognized HTTP method.
func splitMethodPath(fragment string) (method, path string, valid bool) {
	head, rest, found := strings.Cut(fragment, "/")
	if !found {
		return "", "", false
	}
	for _, candidate := range httpMethodMarkers {
		if strings.EqualFold(head, candidate) {
			return strings.ToLower(head), "/" + rest, true
		}
	}
	return "", "", false
}
