package query

import (
	"encoding/binary"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// Cursor is an opaque paging position, encoded as a big endian record id.
type Cursor []byte

var (
	EmptyCursor Cursor = Cursor([]byte{})

	ErrInvalidCursor = errors.New("invalid cursor")
)

func ToCursor(val uint64) Cursor {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, val)
	return b
}

// FromBase58 parses a cursor previously rendered with ToBase58.
func FromBase58(val string) (Cursor, error) {
	if len(val) == 0 {
		return EmptyCursor, nil
	}

	b, err := base58.Decode(val)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidCursor, err.Error())
	}

	c := Cursor(b)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c Cursor) Validate() error {
	if len(c) != 0 && len(c) != 8 {
		return ErrInvalidCursor
	}
	return nil
}

func (c Cursor) ToUint64() uint64 {
	if len(c) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(c)
}

func (c Cursor) ToBase58() string {
	return base58.Encode(c)
}
