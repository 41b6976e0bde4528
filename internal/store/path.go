package store

import (
	"fmt"
	"strings"
)

// MaxDepth is the deepest collection nesting the system uses
// (threads/{t}/comments/{c}/replies).
const MaxDepth = 3

// Path addresses one collection: segments alternate collection names and
// document ids and always end on a collection name, per the grammar
// collection/{id}(/subcollection/{id})*.
type Path []string

// NewPath builds a collection path from alternating collection/id segments.
func NewPath(segments ...string) (Path, error) {
	p := Path(segments)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// MustPath is NewPath for compile-time-known paths.
func MustPath(segments ...string) Path {
	p, err := NewPath(segments...)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePath parses a slash-separated collection path.
func ParsePath(s string) (Path, error) {
	s = strings.Trim(s, "/")
	if s == "" {
		return nil, fmt.Errorf("empty path")
	}
	return NewPath(strings.Split(s, "/")...)
}

// Validate checks the alternating grammar and the depth limit.
func (p Path) Validate() error {
	if len(p) == 0 || len(p)%2 == 0 {
		return fmt.Errorf("path %q: must have an odd number of segments ending on a collection", p.String())
	}
	for i, seg := range p {
		if seg == "" {
			return fmt.Errorf("path %q: empty segment at position %d", p.String(), i)
		}
	}
	if p.Depth() > MaxDepth {
		return fmt.Errorf("path %q: depth %d exceeds maximum %d", p.String(), p.Depth(), MaxDepth)
	}
	return nil
}

// Depth is the number of collection segments in the path.
func (p Path) Depth() int {
	return (len(p) + 1) / 2
}

// Collection is the final (addressed) collection name.
func (p Path) Collection() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

func (p Path) String() string {
	return strings.Join(p, "/")
}

// Template is a collection path with placeholder ancestor ids, e.g.
// threads/*/comments. Binding it with concrete ancestor ids yields a Path.
type Template []string

// NewTemplate builds a template from alternating collection names and "*"
// placeholders.
func NewTemplate(segments ...string) (Template, error) {
	t := Template(segments)
	if len(t) == 0 || len(t)%2 == 0 {
		return nil, fmt.Errorf("template %q: must have an odd number of segments", strings.Join(t, "/"))
	}
	for i, seg := range t {
		if i%2 == 1 && seg != "*" {
			return nil, fmt.Errorf("template %q: segment %d must be a * placeholder", strings.Join(t, "/"), i)
		}
		if i%2 == 0 && (seg == "" || seg == "*") {
			return nil, fmt.Errorf("template %q: segment %d must be a collection name", strings.Join(t, "/"), i)
		}
	}
	if Path(t).Depth() > MaxDepth {
		return nil, fmt.Errorf("template %q: exceeds maximum depth %d", strings.Join(t, "/"), MaxDepth)
	}
	return t, nil
}

// MustTemplate is NewTemplate for compile-time-known templates.
func MustTemplate(segments ...string) Template {
	t, err := NewTemplate(segments...)
	if err != nil {
		panic(err)
	}
	return t
}

// Arity is the number of ancestor ids needed to bind the template.
func (t Template) Arity() int {
	return len(t) / 2
}

// Bind substitutes ancestor ids for the placeholders, producing a concrete
// collection path.
func (t Template) Bind(ancestorIDs ...string) (Path, error) {
	if len(ancestorIDs) != t.Arity() {
		return nil, fmt.Errorf("template %q: want %d ancestor ids, got %d",
			strings.Join(t, "/"), t.Arity(), len(ancestorIDs))
	}
	p := make(Path, len(t))
	next := 0
	for i, seg := range t {
		if i%2 == 1 {
			p[i] = ancestorIDs[next]
			next++
		} else {
			p[i] = seg
		}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
