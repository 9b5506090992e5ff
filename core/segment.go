package core

import "strings"

// PathSegment is one named hop in a dotted call path. In
//
//	dal.users.profile.get(...)
//
// the accumulated path is the segments "users", "profile", "get". A segment
// is immutable once constructed. Identity is the name; the metadata is
// carried for middleware introspection and plays no part in resolution.
type PathSegment struct {
	name string
	meta map[string]any
}

// NewPathSegment constructs a segment. The name must be non-empty; violating
// that is a programmer error and panics rather than producing a segment that
// can never resolve.
func NewPathSegment(name string, meta map[string]any) PathSegment {
	if name == "" {
		panic("dalmesh: path segment name must be non-empty")
	}
	s := PathSegment{name: name}
	if len(meta) > 0 {
		s.meta = make(map[string]any, len(meta))
		for k, v := range meta {
			s.meta[k] = v
		}
	}
	return s
}

// Name returns the segment name.
func (s PathSegment) Name() string { return s.name }

// Meta returns a single metadata value by key.
func (s PathSegment) Meta(key string) (any, bool) {
	v, ok := s.meta[key]
	return v, ok
}

// MetaMap returns a copy of the segment metadata.
func (s PathSegment) MetaMap() map[string]any {
	out := make(map[string]any, len(s.meta))
	for k, v := range s.meta {
		out[k] = v
	}
	return out
}

// Equal reports whether two segments name the same hop. Metadata is ignored.
func (s PathSegment) Equal(other PathSegment) bool { return s.name == other.name }

// JoinPath renders a path as its dotted string form.
func JoinPath(path []PathSegment) string {
	if len(path) == 0 {
		return ""
	}
	names := make([]string, len(path))
	for i, seg := range path {
		names[i] = seg.name
	}
	return strings.Join(names, ".")
}

// clonePath returns a private copy of path.
func clonePath(path []PathSegment) []PathSegment {
	out := make([]PathSegment, len(path))
	copy(out, path)
	return out
}
