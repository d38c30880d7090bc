package chat

import (
	"encoding/base64"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/chatql"
)

// Cursor is an opaque pagination marker over one chat's message history. It
// pairs the creation timestamp with the row id so that the order is total:
// relying on the timestamp alone would let pages silently skip or repeat
// rows whenever two messages share a millisecond.
//
// A cursor is only comparable within the chat it was issued for; the chat id
// is carried inside the token and checked on use.
type Cursor struct {
	ChatID    uuid.UUID `msgpack:"c"`
	CreatedAt int64     `msgpack:"t"`
	ID        int64     `msgpack:"i"`
}

// Less reports whether c points at an older position than o.
func (c Cursor) Less(o Cursor) bool {
	if c.CreatedAt != o.CreatedAt {
		return c.CreatedAt < o.CreatedAt
	}
	return c.ID < o.ID
}

// cursorWire carries Cursor's fields without its TextMarshaler and
// TextUnmarshaler methods, so msgpack encodes the tagged fields instead of
// recursing back through MarshalText/UnmarshalText.
type cursorWire Cursor

// String returns the opaque wire form of the cursor.
func (c Cursor) String() string {
	raw, err := msgpack.Marshal(cursorWire(c))
	if err != nil {
		// A cursor holds only fixed-size scalar fields; msgpack cannot
		// fail on it.
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// MarshalText implements encoding.TextMarshaler, so a *Cursor field
// serializes to a JSON string or null.
func (c Cursor) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Cursor) UnmarshalText(text []byte) error {
	dec, err := DecodeCursor(string(text))
	if err != nil {
		return err
	}
	*c = dec
	return nil
}

// DecodeCursor parses the wire form of a cursor. Garbage input is rejected
// as an invalid argument before any I/O happens.
func DecodeCursor(s string) (Cursor, error) {
	var c Cursor
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return c, chatql.NewInvalidArgumentError("cursor", "not a valid cursor token")
	}
	if err := msgpack.Unmarshal(raw, (*cursorWire)(&c)); err != nil {
		return c, chatql.NewInvalidArgumentError("cursor", "not a valid cursor token")
	}
	return c, nil
}
