// Package uri implements the XMPP URIs used to name pubsub services,
// nodes and items.
//
// A pubsub URI has the form
//
//	xmpp:pubsub.example.com?;node=/calls;item=42
//
// The path is the service address; the query carries semicolon separated
// key=value pairs. Query values are percent-decoded by Parse and escaped
// by String; accessors return the decoded form. URI values are immutable:
// every With* method returns a new URI.
package uri

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Scheme is the URI scheme for XMPP addresses.
const Scheme = "xmpp"

// Query parameter names.
const (
	ParamNode = "node"
	ParamItem = "item"
)

// ErrInvalidURI is returned when a string cannot be parsed as an XMPP URI.
var ErrInvalidURI = errors.New("invalid xmpp uri")

type param struct {
	key, value string
}

// URI is an XMPP URI naming a service, a node on it, or an item in a node.
type URI struct {
	path   string
	action string
	params []param
}

// New returns a URI for the service address path.
func New(path string) URI {
	return URI{path: path}
}

// Parse parses s as an XMPP URI. The scheme prefix is optional. Query
// values are percent-decoded; the path is kept as written.
func Parse(s string) (URI, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return URI{}, fmt.Errorf("%w: empty", ErrInvalidURI)
	}

	rest := s
	if i := strings.Index(rest, ":"); i >= 0 && !strings.Contains(rest[:i], "@") && !strings.Contains(rest[:i], "/") {
		if !strings.EqualFold(rest[:i], Scheme) {
			return URI{}, fmt.Errorf("%w: scheme %q", ErrInvalidURI, rest[:i])
		}
		rest = rest[i+1:]
	}
	rest = strings.TrimPrefix(rest, "//")

	var u URI
	path, query, _ := strings.Cut(rest, "?")
	u.path = path

	for i, part := range strings.Split(query, ";") {
		if part == "" {
			continue
		}
		key, value, hasValue := strings.Cut(part, "=")
		if i == 0 && !hasValue {
			u.action = key
			continue
		}
		decoded, err := url.PathUnescape(value)
		if err != nil {
			return URI{}, fmt.Errorf("%w: query %q: %w", ErrInvalidURI, part, err)
		}
		u.params = append(u.params, param{key: key, value: decoded})
	}
	return u, nil
}

// MustParse is like Parse but panics on error. Intended for constants.
func MustParse(s string) URI {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Path returns the service address.
func (u URI) Path() string { return u.path }

// Action returns the query type (e.g. "pubsub"), or "" if none.
func (u URI) Action() string { return u.action }

// IsZero reports whether u is the zero URI.
func (u URI) IsZero() bool {
	return u.path == "" && u.action == "" && len(u.params) == 0
}

// QueryParam returns the value of the query parameter key, or "".
func (u URI) QueryParam(key string) string {
	for _, p := range u.params {
		if p.key == key {
			return p.value
		}
	}
	return ""
}

// Node returns the node query parameter.
func (u URI) Node() string { return u.QueryParam(ParamNode) }

// Item returns the item query parameter.
func (u URI) Item() string { return u.QueryParam(ParamItem) }

// Service returns u with the query stripped.
func (u URI) Service() URI {
	return URI{path: u.path}
}

// WithNode returns the service URI extended with ;node=node.
// Any item parameter is dropped.
func (u URI) WithNode(node string) URI {
	return URI{path: u.path, action: u.action, params: []param{{key: ParamNode, value: node}}}
}

// WithItem returns the URI for item id on node.
func (u URI) WithItem(node, id string) URI {
	return URI{path: u.path, action: u.action, params: []param{
		{key: ParamNode, value: node},
		{key: ParamItem, value: id},
	}}
}

// Equal reports whether u and o name the same resource.
func (u URI) Equal(o URI) bool {
	return u.String() == o.String()
}

// String formats u as xmpp:path?action;key=value...
func (u URI) String() string {
	var b strings.Builder
	b.WriteString(Scheme)
	b.WriteByte(':')
	b.WriteString(u.path)
	if u.action == "" && len(u.params) == 0 {
		return b.String()
	}
	b.WriteByte('?')
	b.WriteString(u.action)
	for _, p := range u.params {
		b.WriteByte(';')
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(escapeValue(p.value))
	}
	return b.String()
}

// escapeValue percent-encodes the bytes of v that would end or split a
// query value. Node names keep their slashes and at signs readable.
func escapeValue(v string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(v); i++ {
		c := v[i]
		if keepInValue(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func keepInValue(c byte) bool {
	switch {
	case c >= 0x80:
		return true
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-._~!$'()*+,:@/", c) >= 0
}
