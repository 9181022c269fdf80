// Package wire frames cache rows for stores whose values are opaque
// bytes. SQL-backed stores keep (id, ttl, element) as columns and never
// touch this format; byte stores need the expiry carried inside the value.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const version byte = 1

var (
	ErrCorrupt = errors.New("offcache: corrupt entry")
	magic4     = [...]byte{'O', 'F', 'F', 'C'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Frame layout: magic(4) | ver(1) | expiresAt(i64 be) | vlen(u32 be) | payload(vlen)
const header = 4 + 1 + 8 + 4

// Encode frames an (expiresAt, payload) row.
func Encode(expiresAt int64, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(header + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(expiresAt))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode unframes a row. Framing is strict: a bad magic, wrong version,
// short buffer, or trailing bytes all yield ErrCorrupt. The returned
// payload aliases b.
func Decode(b []byte) (expiresAt int64, payload []byte, err error) {
	if len(b) < header || !hasMagic(b) || b[4] != version {
		return 0, nil, ErrCorrupt
	}

	off := 5

	expiresAt = int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off {
		return 0, nil, ErrCorrupt
	}

	return expiresAt, b[off : off+vlen], nil
}
