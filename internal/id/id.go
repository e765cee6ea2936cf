// Package id mints identifiers for trades and orders. IDs are ULIDs, so
// they sort by creation time and keep the journal's time-ordered indexes
// cheap.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator mints ULID strings. Safe for concurrent use; IDs created
// within the same millisecond are strictly increasing.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

func NewGenerator() *Generator {
	var seed int64
	if err := binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed); err != nil || seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0),
	}
}

func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), g.entropy).String()
}

var defaultGenerator = NewGenerator()

// New mints an ID from the process-wide generator.
func New() string {
	return defaultGenerator.New()
}
