// Package uuid generates UUID v7 identifiers.
// The leading timestamp makes v7 ids sort by creation time, which keeps
// response ids and audit rows naturally ordered in SQLite indexes.
package uuid

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"
)

// UUID is a 16-byte UUID v7 identifier.
type UUID [16]byte

// NewV7 generates a UUID v7 per draft-ietf-uuidrev-rfc4122bis:
// 48 bits of millisecond UNIX time, then the version nibble, the RFC 4122
// variant bits, and 74 random bits.
func NewV7() UUID {
	var u UUID

	// Bytes 0-5: millisecond timestamp, big-endian.
	now := uint64(time.Now().UnixMilli())
	u[0] = byte(now >> 40)
	u[1] = byte(now >> 32)
	u[2] = byte(now >> 24)
	u[3] = byte(now >> 16)
	u[4] = byte(now >> 8)
	u[5] = byte(now)

	// Bytes 6-15: random, with version and variant bits forced.
	var random [10]byte
	binary.BigEndian.PutUint64(random[:8], rand.Uint64())
	binary.BigEndian.PutUint16(random[8:], uint16(rand.Uint32()))
	copy(u[6:], random[:])

	u[6] = 0x70 | (u[6] & 0x0f) // version 7 nibble
	u[7] = 0x80 | (u[7] & 0x3f) // RFC 4122 variant 10xxxxxx

	return u
}

// String renders the canonical form xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx.
func (u UUID) String() string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		u[0:4], u[4:6], u[6:8], u[8:10], u[10:16])
}
