package core

import (
	"fmt"
	"net/url"
	"strings"
)

// MediaType distinguishes movies from series.
type MediaType string

// Supported media types.
const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

// ParseMediaType validates a media type string.
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(strings.ToLower(strings.TrimSpace(s))) {
	case MediaMovie:
		return MediaMovie, nil
	case MediaTV:
		return MediaTV, nil
	}
	return "", fmt.Errorf("unknown media type %q (want movie or tv)", s)
}

// Param is a single query string parameter.
type Param struct {
	Key   string
	Value string
}

// Query is a provider request: a resource path plus ordered parameters.
// MediaType is the type assumed for results that do not carry their own.
type Query struct {
	Path      string
	Params    []Param
	MediaType MediaType
}

// With returns a copy of q with key set to value. An existing key keeps its
// position; a new key is appended.
func (q Query) With(key, value string) Query {
	params := make([]Param, 0, len(q.Params)+1)
	replaced := false
	for _, p := range q.Params {
		if p.Key == key {
			params = append(params, Param{Key: key, Value: value})
			replaced = true
			continue
		}
		params = append(params, p)
	}
	if !replaced {
		params = append(params, Param{Key: key, Value: value})
	}
	q.Params = params
	return q
}

// Get returns the value of key.
func (q Query) Get(key string) (string, bool) {
	for _, p := range q.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Values converts the parameters to url.Values.
func (q Query) Values() url.Values {
	v := make(url.Values, len(q.Params))
	for _, p := range q.Params {
		v.Add(p.Key, p.Value)
	}
	return v
}

// Encode serializes the query as path?k=v&k=v keeping parameter order.
// Equal queries always encode to the same string.
func (q Query) Encode() string {
	if len(q.Params) == 0 {
		return q.Path
	}
	var b strings.Builder
	b.WriteString(q.Path)
	b.WriteByte('?')
	for i, p := range q.Params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		// Commas are meaningful to the provider (AND lists) and stay readable.
		b.WriteString(strings.ReplaceAll(url.QueryEscape(p.Value), "%2C", ","))
	}
	return b.String()
}

// String implements fmt.Stringer.
func (q Query) String() string {
	return q.Encode()
}

// IsZero reports whether the query has no path.
func (q Query) IsZero() bool {
	return q.Path == ""
}
