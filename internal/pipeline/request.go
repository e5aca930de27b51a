package pipeline

import (
	"fmt"
	"net/url"
	"strings"
)

// Request is a parsed image request: the source path plus its query
// parameters. Requests are parsed once per incoming identifier and not
// retained.
type Request struct {
	Path  string
	Query url.Values
}

// ParseRequest splits an identifier at the first '?'. The portion before is
// the source path; the portion after parses as ordinary URL query
// parameters. An identifier without '?' yields an empty query.
func ParseRequest(id string) (Request, error) {
	path, rawQuery, _ := strings.Cut(id, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Request{}, fmt.Errorf("failed to parse request query %q: %w", rawQuery, err)
	}
	return Request{Path: path, Query: query}, nil
}
