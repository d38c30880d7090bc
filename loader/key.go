package loader

import (
	"bytes"
	"encoding/base64"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/chatql"
)

// Key is a canonical, collision-free identifier for a logical read request.
// Keys are opaque: equality is exact and nothing else about them matters.
type Key string

// Request is the tagged union of read-request shapes a resolver can issue.
// The shape is resolved once here, at the encoder boundary, instead of being
// re-inspected at every call site.
type Request interface {
	// encode appends the canonical form of the request to buf.
	encode(buf *bytes.Buffer) error
}

// Query is a statement-shaped read request: a SQL statement together with
// its fully ordered parameter list. Two Query requests with identical
// statement and parameters encode to the same key; any difference in either
// produces a different key.
type Query struct {
	Statement string
	Args      []any
}

// Entity is a single-entity read request, such as "chat by id".
type Entity struct {
	Kind string
	ID   any
}

// ListByParent is a one-to-many read request, such as "messages of chat".
type ListByParent struct {
	Kind     string
	Parent   string
	ParentID any
}

// Filtered is a read request restricted by a set of named filters. The
// filter map is serialized in sorted key order, so two maps with the same
// content encode identically regardless of construction order.
type Filtered struct {
	Kind   string
	Filter map[string]any
}

// Encode derives the cache key for the given request. It is a pure function:
// identical requests always produce identical keys. It fails with an
// EncodingError when a parameter cannot be serialized, for example a func or
// channel value.
func Encode(r Request) (Key, error) {
	var buf bytes.Buffer
	if err := r.encode(&buf); err != nil {
		return "", err
	}
	return Key(buf.String()), nil
}

func (q Query) encode(buf *bytes.Buffer) error {
	buf.WriteString("q\x00")
	buf.WriteString(q.Statement)
	buf.WriteByte(0)
	return packArgs(buf, q.Args)
}

func (e Entity) encode(buf *bytes.Buffer) error {
	buf.WriteString("e\x00")
	buf.WriteString(e.Kind)
	buf.WriteByte(0)
	return packArgs(buf, []any{e.ID})
}

func (l ListByParent) encode(buf *bytes.Buffer) error {
	buf.WriteString("l\x00")
	buf.WriteString(l.Kind)
	buf.WriteByte(0)
	buf.WriteString(l.Parent)
	buf.WriteByte(0)
	return packArgs(buf, []any{l.ParentID})
}

func (f Filtered) encode(buf *bytes.Buffer) error {
	buf.WriteString("f\x00")
	buf.WriteString(f.Kind)
	buf.WriteByte(0)
	names := make([]string, 0, len(f.Filter))
	for name := range f.Filter {
		names = append(names, name)
	}
	sort.Strings(names)
	flat := make([]any, 0, 2*len(names))
	for _, name := range names {
		flat = append(flat, name, f.Filter[name])
	}
	return packArgs(buf, flat)
}

// packArgs serializes the ordered argument list with msgpack and appends it
// base64-encoded, keeping the key printable.
func packArgs(buf *bytes.Buffer, args []any) error {
	raw, err := msgpack.Marshal(args)
	if err != nil {
		return chatql.NewEncodingError("unserializable parameter", err)
	}
	buf.WriteString(base64.RawStdEncoding.EncodeToString(raw))
	return nil
}
