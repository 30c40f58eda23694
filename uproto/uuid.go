package uproto

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// UUID is the uProtocol rendering of an RFC 4122 UUID: two 64-bit
// halves, most significant first. Request IDs and message IDs use the
// time-ordered v7 variant so they sort by creation time.
type UUID struct {
	MSB uint64
	LSB uint64
}

// NewUUID returns a fresh time-ordered (v7) UUID.
func NewUUID() *UUID {
	// NewV7 only fails when the random source does, which crypto/rand
	// treats as unrecoverable; fall back to v4 rather than propagate.
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return FromUUID(id)
}

// FromUUID converts a github.com/google/uuid value.
func FromUUID(id uuid.UUID) *UUID {
	return &UUID{
		MSB: binary.BigEndian.Uint64(id[0:8]),
		LSB: binary.BigEndian.Uint64(id[8:16]),
	}
}

// ToUUID converts back to a github.com/google/uuid value.
func (u *UUID) ToUUID() uuid.UUID {
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[0:8], u.MSB)
	binary.BigEndian.PutUint64(id[8:16], u.LSB)
	return id
}

// Bytes returns the 16-byte big-endian form, suitable as a map key.
func (u *UUID) Bytes() [16]byte {
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], u.MSB)
	binary.BigEndian.PutUint64(b[8:16], u.LSB)
	return b
}

// IsZero reports whether the UUID is all zeroes. Nil counts as zero.
func (u *UUID) IsZero() bool {
	return u == nil || (u.MSB == 0 && u.LSB == 0)
}

// Equal reports value equality. Nil equals nil.
func (u *UUID) Equal(o *UUID) bool {
	if u == nil || o == nil {
		return u == o
	}
	return *u == *o
}

// Clone returns a copy, nil for nil.
func (u *UUID) Clone() *UUID {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// String renders the canonical hyphenated form.
func (u *UUID) String() string {
	if u == nil {
		return ""
	}
	return u.ToUUID().String()
}
