package wire

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

// ObjectID is the unique identifier the store assigns to a document
// that was saved without one. The layout is a 4 byte unix timestamp,
// a 5 byte process random value, and a 3 byte counter.
type ObjectID [12]byte

var (
	processUnique = newProcessUnique()
	idCounter     = newIDCounter()
)

func newProcessUnique() [5]byte {
	var b [5]byte
	_, err := rand.Read(b[:])
	if err != nil {
		panic(fmt.Errorf("failed to seed object id generator: %w", err))
	}
	return b
}

func newIDCounter() *atomic.Uint32 {
	var b [4]byte
	_, err := rand.Read(b[:])
	if err != nil {
		panic(fmt.Errorf("failed to seed object id counter: %w", err))
	}
	counter := &atomic.Uint32{}
	counter.Store(binary.BigEndian.Uint32(b[:]))
	return counter
}

// NewObjectID returns a unique object id using the current time.
func NewObjectID() ObjectID {
	var id ObjectID
	binary.BigEndian.PutUint32(id[0:4], uint32(time.Now().Unix()))
	copy(id[4:9], processUnique[:])
	count := idCounter.Add(1)
	id[9] = byte(count >> 16)
	id[10] = byte(count >> 8)
	id[11] = byte(count)
	return id
}

// ObjectIDFromHex parses an object id from its hex representation.
func ObjectIDFromHex(s string) (ObjectID, error) {
	var id ObjectID
	if len(s) != 24 {
		return id, fmt.Errorf("invalid object id length: %d", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid object id: %w", err)
	}
	copy(id[:], b)
	return id, nil
}

// IsZero returns true if the id is unset.
func (id ObjectID) IsZero() bool {
	return id == ObjectID{}
}

// String returns the hex representation of the id.
func (id ObjectID) String() string {
	return hex.EncodeToString(id[:])
}
