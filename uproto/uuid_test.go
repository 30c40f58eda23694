package uproto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUUIDConversionRoundTrip(t *testing.T) {
	id := uuid.New()
	u := FromUUID(id)
	assert.Equal(t, id, u.ToUUID())
	assert.Equal(t, id.String(), u.String())

	var raw [16]byte
	copy(raw[:], id[:])
	assert.Equal(t, raw, u.Bytes())
}

func TestNewUUIDUnique(t *testing.T) {
	seen := make(map[[16]byte]bool)
	for i := 0; i < 100; i++ {
		id := NewUUID()
		assert.False(t, id.IsZero())
		b := id.Bytes()
		assert.False(t, seen[b], "duplicate uuid generated")
		seen[b] = true
	}
}

func TestUUIDZeroAndEqual(t *testing.T) {
	var nilID *UUID
	assert.True(t, nilID.IsZero())
	assert.True(t, (&UUID{}).IsZero())

	a := NewUUID()
	assert.True(t, a.Equal(a.Clone()))
	assert.False(t, a.Equal(NewUUID()))
	assert.False(t, a.Equal(nil))
}
