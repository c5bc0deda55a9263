package contract

import (
	"maps"
	"net/url"
	"path"
	"slices"
	"strconv"
	"strings"
)

// RouteField is the parameter naming the requested endpoint. Its trailing
// path segment is the endpoint name.
const RouteField = "url"

// UploadError is the transfer status of an uploaded file.
type UploadError int

// Upload statuses. UploadNoFile marks a file field that was submitted empty.
const (
	UploadOK      UploadError = 0
	UploadPartial UploadError = 3
	UploadNoFile  UploadError = 4
)

// File describes a file uploaded with the request.
type File struct {
	// Name is the client supplied file name.
	Name     string
	TempPath string
	Size     int64
	Error    UploadError
}

// Present reports whether a file was actually transferred for the field.
func (f *File) Present() bool {
	return f != nil && f.Error != UploadNoFile
}

// Extension returns the lower-cased text after the last dot of the file name,
// or "" when the name has no dot.
func (f *File) Extension() string {
	if f == nil {
		return ""
	}
	i := strings.LastIndexByte(f.Name, '.')
	if i < 0 || i == len(f.Name)-1 {
		return ""
	}
	return strings.ToLower(f.Name[i+1:])
}

// Value is a single request parameter: a text value, an uploaded file, or both.
type Value struct {
	Text string
	File *File
}

// Params holds the normalized parameters of one request.
type Params map[string]Value

// Has reports whether the parameter was sent at all, even empty.
func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Get returns the text value of name, or "" when absent.
func (p Params) Get(name string) string {
	return p[name].Text
}

// File returns the uploaded file for name when one was transferred.
func (p Params) File(name string) *File {
	if f := p[name].File; f.Present() {
		return f
	}
	return nil
}

// Int returns the value of name parsed as a base-10 integer, or def when the
// value is absent or malformed.
func (p Params) Int(name string, def int64) int64 {
	n, err := strconv.ParseInt(p.Get(name), 10, 64)
	if err != nil {
		return def
	}
	return n
}

// Bool treats "1" and "true" as true.
func (p Params) Bool(name string) bool {
	switch p.Get(name) {
	case "1", "true":
		return true
	}
	return false
}

// Endpoint returns the trailing segment of the routing field.
func (p Params) Endpoint() string {
	route := strings.Trim(p.Get(RouteField), "/")
	if route == "" {
		return ""
	}
	return path.Base(route)
}

// Extract merges the query and body sources into one Params. Body values win
// on key collisions. Keys and text values are trimmed of surrounding
// whitespace; when several keys of one source trim to the same name, the
// exact key wins, then the last padded key in sorted order. Uploaded files are attached to the value of their field.
//
// The routing field must be present; its absence is ErrInvalidRequest.
func Extract(query, body url.Values, files map[string]*File) (Params, error) {
	params := make(Params, len(query)+len(body)+len(files))
	for _, source := range []url.Values{query, body} {
		for _, key := range orderedKeys(source) {
			values := source[key]
			if len(values) == 0 {
				continue
			}
			name := strings.TrimSpace(key)
			v := params[name]
			v.Text = strings.TrimSpace(values[len(values)-1])
			params[name] = v
		}
	}
	for _, key := range orderedKeys(files) {
		file := files[key]
		if file == nil {
			continue
		}
		name := strings.TrimSpace(key)
		v := params[name]
		v.File = file
		params[name] = v
	}

	if !params.Has(RouteField) {
		return nil, ErrInvalidRequest
	}
	return params, nil
}

// orderedKeys returns the keys of m with padded keys first, each group
// sorted, so that applying them in order lets an exact key win.
func orderedKeys[M ~map[string]V, V any](m M) []string {
	keys := slices.Collect(maps.Keys(m))
	slices.SortFunc(keys, func(a, b string) int {
		aExact, bExact := a == strings.TrimSpace(a), b == strings.TrimSpace(b)
		switch {
		case aExact == bExact:
			return strings.Compare(a, b)
		case aExact:
			return 1
		default:
			return -1
		}
	})
	return keys
}
